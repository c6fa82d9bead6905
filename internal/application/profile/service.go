package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/pkg/id"
)

const dateLayout = "2006-01-02"

// DocumentStore persists one T per user.
type DocumentStore[T any] interface {
	Get(ctx context.Context, userID string) (*T, error)
	Put(ctx context.Context, v *T) error
	Create(ctx context.Context, v *T) error
}

// StatusReader reports channel verification for a user.
type StatusReader interface {
	Status(ctx context.Context, userID string) (*domain.VerificationStatus, error)
}

// Stores groups the per-entity document stores.
type Stores struct {
	Profiles     DocumentStore[domain.Profile]
	Professional DocumentStore[domain.ProfessionalDetails]
	Bank         DocumentStore[domain.BankDetails]
	Emergency    DocumentStore[domain.EmergencyContact]
	Documents    DocumentStore[domain.Documents]
	KYC          DocumentStore[domain.KYC]
}

type Service interface {
	GetBasic(ctx context.Context, userID string) (*domain.Profile, error)
	SaveBasic(ctx context.Context, userID, email string, in domain.ProfileInput) (*domain.Profile, error)
	GetProfessional(ctx context.Context, userID string) (*domain.ProfessionalDetails, error)
	SaveProfessional(ctx context.Context, userID string, in domain.ProfessionalDetailsInput) (*domain.ProfessionalDetails, error)
	GetBank(ctx context.Context, userID string) (*domain.BankDetails, error)
	SaveBank(ctx context.Context, userID string, in domain.BankDetailsInput) (*domain.BankDetails, error)
	GetEmergencyContact(ctx context.Context, userID string) (*domain.EmergencyContact, error)
	SaveEmergencyContact(ctx context.Context, userID string, in domain.EmergencyContactInput) (*domain.EmergencyContact, error)
	GetDocuments(ctx context.Context, userID string) (*domain.Documents, error)
	SaveDocuments(ctx context.Context, userID string, in domain.DocumentsInput) (*domain.Documents, error)
	GetKYC(ctx context.Context, userID string) (*domain.KYC, error)
	CreateKYC(ctx context.Context, userID string) (*domain.KYC, error)
	Completion(ctx context.Context, userID string) (*domain.Completion, error)
}

type service struct {
	stores   Stores
	statuses StatusReader
	now      func() time.Time
}

func NewService(stores Stores, statuses StatusReader) Service {
	return &service{stores: stores, statuses: statuses, now: time.Now}
}

// --- basic details ---

func (s *service) GetBasic(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.stores.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.projectVerification(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) SaveBasic(ctx context.Context, userID, email string, in domain.ProfileInput) (*domain.Profile, error) {
	var dob *time.Time
	if in.DateOfBirth != "" {
		t, err := time.Parse(dateLayout, in.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("date_of_birth must be YYYY-MM-DD: %w", domain.ErrBadRequest)
		}
		if t.After(s.now()) {
			return nil, fmt.Errorf("date_of_birth is in the future: %w", domain.ErrBadRequest)
		}
		dob = &t
	}

	p := &domain.Profile{
		UserID:               userID,
		Name:                 strings.TrimSpace(in.Name),
		FullName:             in.FullName,
		Gender:               in.Gender,
		DateOfBirth:          dob,
		Email:                email,
		MobileNumber:         in.MobileNumber,
		Img:                  in.Img,
		FullPermanentAddress: in.FullPermanentAddress,
		CurrentAddress:       in.CurrentAddress,
		City:                 in.City,
		State:                in.State,
		Pincode:              in.Pincode,
	}
	if err := upsert(ctx, s, s.stores.Profiles, userID, p, func(prev *domain.Profile) time.Time { return prev.CreatedAt }, func(t, u time.Time) {
		p.CreatedAt, p.UpdatedAt = t, u
	}); err != nil {
		return nil, err
	}
	if err := s.projectVerification(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// projectVerification copies channel state onto the profile. The stored profile never carries it.
func (s *service) projectVerification(ctx context.Context, p *domain.Profile) error {
	st, err := s.statuses.Status(ctx, p.UserID)
	if err != nil {
		return err
	}
	p.EmailVerified = st.Email.Verified
	p.MobileVerified = st.Mobile.Verified
	return nil
}

// --- professional details ---

func (s *service) GetProfessional(ctx context.Context, userID string) (*domain.ProfessionalDetails, error) {
	return s.stores.Professional.Get(ctx, userID)
}

func (s *service) SaveProfessional(ctx context.Context, userID string, in domain.ProfessionalDetailsInput) (*domain.ProfessionalDetails, error) {
	d := &domain.ProfessionalDetails{UserID: userID, ProfessionalStatus: in.ProfessionalStatus}
	switch in.ProfessionalStatus {
	case domain.StatusCollegeStudent:
		if in.College == nil {
			return nil, fmt.Errorf("college details are required for %s: %w", in.ProfessionalStatus, domain.ErrBadRequest)
		}
		d.College = in.College
	case domain.StatusWorkingProfessional:
		if in.Work == nil {
			return nil, fmt.Errorf("work details are required for %s: %w", in.ProfessionalStatus, domain.ErrBadRequest)
		}
		d.Work = in.Work
	default:
		return nil, fmt.Errorf("unknown professional_status %q: %w", in.ProfessionalStatus, domain.ErrBadRequest)
	}
	if err := upsert(ctx, s, s.stores.Professional, userID, d, func(prev *domain.ProfessionalDetails) time.Time { return prev.CreatedAt }, func(t, u time.Time) {
		d.CreatedAt, d.UpdatedAt = t, u
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// --- bank details ---

func (s *service) GetBank(ctx context.Context, userID string) (*domain.BankDetails, error) {
	b, err := s.stores.Bank.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return masked(b), nil
}

func (s *service) SaveBank(ctx context.Context, userID string, in domain.BankDetailsInput) (*domain.BankDetails, error) {
	b := &domain.BankDetails{
		UserID:            userID,
		AccountHolderName: in.AccountHolderName,
		AccountNumber:     in.AccountNumber,
		BankName:          in.BankName,
		IFSCCode:          strings.ToUpper(in.IFSCCode),
		BranchName:        in.BranchName,
		AccountType:       in.AccountType,
	}
	if err := upsert(ctx, s, s.stores.Bank, userID, b, func(prev *domain.BankDetails) time.Time { return prev.CreatedAt }, func(t, u time.Time) {
		b.CreatedAt, b.UpdatedAt = t, u
	}); err != nil {
		return nil, err
	}
	return masked(b), nil
}

// masked returns a copy with all but the last four account digits hidden.
func masked(b *domain.BankDetails) *domain.BankDetails {
	cp := *b
	cp.AccountNumber = MaskAccountNumber(b.AccountNumber)
	return &cp
}

func MaskAccountNumber(n string) string {
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("X", len(n)-4) + n[len(n)-4:]
}

// --- emergency contact ---

func (s *service) GetEmergencyContact(ctx context.Context, userID string) (*domain.EmergencyContact, error) {
	return s.stores.Emergency.Get(ctx, userID)
}

func (s *service) SaveEmergencyContact(ctx context.Context, userID string, in domain.EmergencyContactInput) (*domain.EmergencyContact, error) {
	c := &domain.EmergencyContact{
		UserID:       userID,
		ContactName:  in.ContactName,
		Relationship: in.Relationship,
		MobileNumber: in.MobileNumber,
		Address:      in.Address,
	}
	if err := upsert(ctx, s, s.stores.Emergency, userID, c, func(prev *domain.EmergencyContact) time.Time { return prev.CreatedAt }, func(t, u time.Time) {
		c.CreatedAt, c.UpdatedAt = t, u
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// --- documents ---

func (s *service) GetDocuments(ctx context.Context, userID string) (*domain.Documents, error) {
	return s.stores.Documents.Get(ctx, userID)
}

func (s *service) SaveDocuments(ctx context.Context, userID string, in domain.DocumentsInput) (*domain.Documents, error) {
	d := &domain.Documents{
		UserID:        userID,
		IDProof:       in.IDProof,
		AddressProof:  in.AddressProof,
		PassportPhoto: in.PassportPhoto,
		SelfieWithID:  in.SelfieWithID,
	}
	if err := upsert(ctx, s, s.stores.Documents, userID, d, func(prev *domain.Documents) time.Time { return prev.CreatedAt }, func(t, u time.Time) {
		d.CreatedAt, d.UpdatedAt = t, u
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// --- KYC ---

func (s *service) GetKYC(ctx context.Context, userID string) (*domain.KYC, error) {
	return s.stores.KYC.Get(ctx, userID)
}

// CreateKYC opens a KYC application. A user gets exactly one.
func (s *service) CreateKYC(ctx context.Context, userID string) (*domain.KYC, error) {
	now := s.now().UTC()
	k := &domain.KYC{
		UserID:          userID,
		ReferenceNumber: "KYC-" + id.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.stores.KYC.Create(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// --- completion ---

func (s *service) Completion(ctx context.Context, userID string) (*domain.Completion, error) {
	var c domain.Completion
	var err error
	if c.BasicDetails, err = exists(ctx, s.stores.Profiles, userID); err != nil {
		return nil, err
	}
	if c.ProfessionalDetails, err = exists(ctx, s.stores.Professional, userID); err != nil {
		return nil, err
	}
	if c.BankDetails, err = exists(ctx, s.stores.Bank, userID); err != nil {
		return nil, err
	}
	if c.EmergencyContact, err = exists(ctx, s.stores.Emergency, userID); err != nil {
		return nil, err
	}
	if c.Documents, err = exists(ctx, s.stores.Documents, userID); err != nil {
		return nil, err
	}
	if c.KYC, err = exists(ctx, s.stores.KYC, userID); err != nil {
		return nil, err
	}

	st, err := s.statuses.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.EmailVerified = st.Email.Verified
	c.MobileVerified = st.Mobile.Verified
	c.Complete = c.BasicDetails && c.ProfessionalDetails && c.BankDetails && c.EmergencyContact &&
		c.Documents && c.KYC && c.EmailVerified && c.MobileVerified
	return &c, nil
}

func exists[T any](ctx context.Context, store DocumentStore[T], userID string) (bool, error) {
	_, err := store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// upsert keeps the first-write created_at and stamps updated_at before writing v.
func upsert[T any](ctx context.Context, s *service, store DocumentStore[T], userID string, v *T, createdAt func(*T) time.Time, stamp func(created, updated time.Time)) error {
	now := s.now().UTC()
	created := now
	prev, err := store.Get(ctx, userID)
	switch {
	case err == nil:
		created = createdAt(prev)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	stamp(created, now)
	return store.Put(ctx, v)
}
