package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends for verification records.
const (
	StoreDynamo = "dynamo"
	StoreMongo  = "mongo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	VerificationStore string // "dynamo" | "mongo"
	MongoURI          string
	MongoDatabase     string

	RedisAddr     string // empty disables the distributed issuance lock
	RedisPassword string
	RedisDB       int

	JWTPublicKeyPath string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string
	SNSEnabled   bool

	OTP      OTPConfig
	Dispatch DispatchConfig

	AllowedOrigins []string // CORS allowed origins
	TrustProxy     bool     // honour X-Forwarded-For / X-Real-Ip from a fronting proxy
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	UserVerifications   string
	Profiles            string
	ProfessionalDetails string
	BankDetails         string
	EmergencyContacts   string
	Documents           string
	KYC                 string
	Files               string
}

// OTPConfig tunes the verification code lifecycle.
type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
	LockTTL     time.Duration
}

// DispatchConfig sizes the notification worker pool.
type DispatchConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			UserVerifications:   getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			Profiles:            getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
			ProfessionalDetails: getEnv("DYNAMO_TABLE_PROFESSIONAL_DETAILS", "professional_details"),
			BankDetails:         getEnv("DYNAMO_TABLE_BANK_DETAILS", "bank_details"),
			EmergencyContacts:   getEnv("DYNAMO_TABLE_EMERGENCY_CONTACTS", "emergency_contacts"),
			Documents:           getEnv("DYNAMO_TABLE_DOCUMENTS", "documents"),
			KYC:                 getEnv("DYNAMO_TABLE_KYC", "kyc"),
			Files:               getEnv("DYNAMO_TABLE_FILES", "files"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "pg-onboarding-uploads"),

		VerificationStore: getEnv("VERIFICATION_STORE", StoreDynamo),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "pg_onboarding"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "ap-south-1"),
		SNSEnabled:   getEnvBool("SNS_ENABLED", false),

		OTP: OTPConfig{
			TTL:         getEnvDuration("OTP_TTL", 5*time.Minute),
			MaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
			LockTTL:     getEnvDuration("OTP_LOCK_TTL", 10*time.Second),
		},
		Dispatch: DispatchConfig{
			Workers:     getEnvInt("DISPATCH_WORKERS", 4),
			QueueSize:   getEnvInt("DISPATCH_QUEUE_SIZE", 256),
			SendTimeout: getEnvDuration("DISPATCH_SEND_TIMEOUT", 15*time.Second),
		},

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
