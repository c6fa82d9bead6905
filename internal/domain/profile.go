package domain

import "time"

// Gender values accepted on the basic profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Professional statuses.
const (
	StatusCollegeStudent      = "College Student"
	StatusWorkingProfessional = "Working Professional"
)

// Bank account types.
const (
	AccountSavings = "Savings"
	AccountCurrent = "Current"
)

// Profile is the basic-details document. PK: user_id.
// EmailVerified and MobileVerified are projections of the verification record and are never stored.
type Profile struct {
	UserID               string     `json:"user_id" dynamodbav:"user_id"`
	Name                 string     `json:"name" dynamodbav:"name"`
	FullName             string     `json:"full_name,omitempty" dynamodbav:"full_name,omitempty"`
	Gender               string     `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	DateOfBirth          *time.Time `json:"date_of_birth,omitempty" dynamodbav:"date_of_birth,omitempty"`
	Email                string     `json:"email" dynamodbav:"email"`
	EmailVerified        bool       `json:"email_verified" dynamodbav:"-"`
	MobileNumber         string     `json:"mobile_number,omitempty" dynamodbav:"mobile_number,omitempty"`
	MobileVerified       bool       `json:"mobile_verified" dynamodbav:"-"`
	Img                  string     `json:"img,omitempty" dynamodbav:"img,omitempty"`
	FullPermanentAddress string     `json:"full_permanent_address,omitempty" dynamodbav:"full_permanent_address,omitempty"`
	CurrentAddress       string     `json:"current_address,omitempty" dynamodbav:"current_address,omitempty"`
	City                 string     `json:"city,omitempty" dynamodbav:"city,omitempty"`
	State                string     `json:"state,omitempty" dynamodbav:"state,omitempty"`
	Pincode              string     `json:"pincode,omitempty" dynamodbav:"pincode,omitempty"`
	CreatedAt            time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt            time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type ProfileInput struct {
	Name                 string `json:"name" validate:"required,max=120"`
	FullName             string `json:"full_name" validate:"omitempty,max=200"`
	Gender               string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth          string `json:"date_of_birth"` // expected format: YYYY-MM-DD
	MobileNumber         string `json:"mobile_number" validate:"omitempty,mobile"`
	Img                  string `json:"img" validate:"omitempty,url"`
	FullPermanentAddress string `json:"full_permanent_address" validate:"omitempty,max=500"`
	CurrentAddress       string `json:"current_address" validate:"omitempty,max=500"`
	City                 string `json:"city" validate:"omitempty,max=100"`
	State                string `json:"state" validate:"omitempty,max=100"`
	Pincode              string `json:"pincode" validate:"omitempty,pincode"`
}

type CollegeInfo struct {
	Name        string `json:"name,omitempty" dynamodbav:"name,omitempty" validate:"required"`
	Course      string `json:"course,omitempty" dynamodbav:"course,omitempty"`
	YearOfStudy string `json:"year_of_study,omitempty" dynamodbav:"year_of_study,omitempty"`
	RollNumber  string `json:"roll_number,omitempty" dynamodbav:"roll_number,omitempty"`
	Address     string `json:"address,omitempty" dynamodbav:"address,omitempty"`
}

type WorkInfo struct {
	CompanyName     string `json:"company_name,omitempty" dynamodbav:"company_name,omitempty" validate:"required"`
	Designation     string `json:"designation,omitempty" dynamodbav:"designation,omitempty"`
	EmployeeID      string `json:"employee_id,omitempty" dynamodbav:"employee_id,omitempty"`
	ExperienceYears *int   `json:"experience_years,omitempty" dynamodbav:"experience_years,omitempty" validate:"omitempty,min=0,max=60"`
	OfficeAddress   string `json:"office_address,omitempty" dynamodbav:"office_address,omitempty"`
}

// ProfessionalDetails describes whether the resident studies or works. PK: user_id.
type ProfessionalDetails struct {
	UserID             string       `json:"user_id" dynamodbav:"user_id"`
	ProfessionalStatus string       `json:"professional_status" dynamodbav:"professional_status"`
	College            *CollegeInfo `json:"college,omitempty" dynamodbav:"college,omitempty"`
	Work               *WorkInfo    `json:"work,omitempty" dynamodbav:"work,omitempty"`
	CreatedAt          time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time    `json:"updated" dynamodbav:"updated_at"`
}

type ProfessionalDetailsInput struct {
	ProfessionalStatus string       `json:"professional_status" validate:"required,oneof='College Student' 'Working Professional'"`
	College            *CollegeInfo `json:"college"`
	Work               *WorkInfo    `json:"work"`
}

// BankDetails is the payout account. PK: user_id.
type BankDetails struct {
	UserID            string    `json:"user_id" dynamodbav:"user_id"`
	AccountHolderName string    `json:"account_holder_name" dynamodbav:"account_holder_name"`
	AccountNumber     string    `json:"account_number" dynamodbav:"account_number"`
	BankName          string    `json:"bank_name" dynamodbav:"bank_name"`
	IFSCCode          string    `json:"ifsc_code" dynamodbav:"ifsc_code"`
	BranchName        string    `json:"branch_name,omitempty" dynamodbav:"branch_name,omitempty"`
	AccountType       string    `json:"account_type" dynamodbav:"account_type"`
	CreatedAt         time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time `json:"updated" dynamodbav:"updated_at"`
}

type BankDetailsInput struct {
	AccountHolderName string `json:"account_holder_name" validate:"required,max=120"`
	AccountNumber     string `json:"account_number" validate:"required,numeric,min=6,max=20"`
	BankName          string `json:"bank_name" validate:"required,max=120"`
	IFSCCode          string `json:"ifsc_code" validate:"required,ifsc"`
	BranchName        string `json:"branch_name" validate:"omitempty,max=120"`
	AccountType       string `json:"account_type" validate:"required,oneof=Savings Current"`
}

// EmergencyContact is the resident's emergency contact. PK: user_id.
type EmergencyContact struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	ContactName  string    `json:"contact_name" dynamodbav:"contact_name"`
	Relationship string    `json:"relationship" dynamodbav:"relationship"`
	MobileNumber string    `json:"mobile_number" dynamodbav:"mobile_number"`
	Address      string    `json:"address,omitempty" dynamodbav:"address,omitempty"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type EmergencyContactInput struct {
	ContactName  string `json:"contact_name" validate:"required,max=120"`
	Relationship string `json:"relationship" validate:"required,max=60"`
	MobileNumber string `json:"mobile_number" validate:"required,mobile"`
	Address      string `json:"address" validate:"omitempty,max=500"`
}

// Documents holds links to uploaded identity documents. PK: user_id.
type Documents struct {
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	IDProof       string    `json:"id_proof" dynamodbav:"id_proof"`
	AddressProof  string    `json:"address_proof" dynamodbav:"address_proof"`
	PassportPhoto string    `json:"passport_photo" dynamodbav:"passport_photo"`
	SelfieWithID  string    `json:"selfie_with_id" dynamodbav:"selfie_with_id"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type DocumentsInput struct {
	IDProof       string `json:"id_proof" validate:"required,uri"`
	AddressProof  string `json:"address_proof" validate:"required,uri"`
	PassportPhoto string `json:"passport_photo" validate:"required,uri"`
	SelfieWithID  string `json:"selfie_with_id" validate:"required,uri"`
}

// KYC is created once per user and later approved by an administrator. PK: user_id.
type KYC struct {
	UserID            string     `json:"user_id" dynamodbav:"user_id"`
	ReferenceNumber   string     `json:"reference_number" dynamodbav:"reference_number"`
	IsVerifiedByAdmin bool       `json:"is_verified_by_admin" dynamodbav:"is_verified_by_admin"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at,omitempty"`
	CreatedAt         time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Completion summarises onboarding progress for a user.
type Completion struct {
	BasicDetails        bool `json:"basic_details"`
	ProfessionalDetails bool `json:"professional_details"`
	BankDetails         bool `json:"bank_details"`
	EmergencyContact    bool `json:"emergency_contact"`
	Documents           bool `json:"documents"`
	KYC                 bool `json:"kyc"`
	EmailVerified       bool `json:"email_verified"`
	MobileVerified      bool `json:"mobile_verified"`
	Complete            bool `json:"complete"`
}
