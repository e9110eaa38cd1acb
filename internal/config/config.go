package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// OTP modes.
const (
	OTPModeLegacy = "legacy" // code returned to the client, never stored or compared
	OTPModeStrict = "strict" // code stored per email and checked once by the verifier
)

// Email failure modes.
const (
	EmailFailSilent = "silent"
	EmailFailLoud   = "loud"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins
	AllowOrigin    string   // value written to Access-Control-Allow-Origin on every response

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	UserStore     string // "dynamo" | "postgres" | "mongo"
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	OTPMode        string
	OTPStore       string // "dynamo" | "redis", strict mode only
	OTPTTL         time.Duration
	OTPMaxAttempts int
	OTPReturnCode  bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	EmailProvider    string // "brevo" | "sendgrid" | "smtp"
	EmailFailureMode string
	EmailTimeout     time.Duration
	SenderEmail      string
	SenderName       string
	BrevoAPIKey      string
	BrevoEndpoint    string
	SendGridAPIKey   string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string

	SNSRegion   string
	SNSTopicARN string // empty disables registration events

	RateLimitRPS      float64 // 0 disables
	RateLimitBurst    int
	TrustProxyHeaders bool // take the client IP from X-Forwarded-For / X-Real-Ip
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users    string
	OTPCodes string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AllowOrigin:    getEnv("ALLOW_ORIGIN", "*"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:    getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPCodes: getEnv("DYNAMO_TABLE_OTP_CODES", "otp_codes"),
		},

		UserStore:     getEnv("USER_STORE", "dynamo"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "lumichat"),

		OTPMode:        getEnv("OTP_MODE", OTPModeLegacy),
		OTPStore:       getEnv("OTP_STORE", "dynamo"),
		OTPTTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
		OTPReturnCode:  getEnvBool("OTP_RETURN_CODE", true),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		EmailProvider:    getEnv("EMAIL_PROVIDER", "brevo"),
		EmailFailureMode: getEnv("EMAIL_FAILURE_MODE", EmailFailSilent),
		EmailTimeout:     getEnvDuration("EMAIL_TIMEOUT", 10*time.Second),
		SenderEmail:      getEnv("SENDER_EMAIL", ""),
		SenderName:       getEnv("SENDER_NAME", "LumiChat AI"),
		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoEndpoint:    getEnv("BREVO_ENDPOINT", "https://api.brevo.com/v3/smtp/email"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

// Validate rejects settings that would otherwise fall through to a default
// branch, such as OTP_MODE=Strict running the legacy flow.
func (c *Config) Validate() error {
	var errs []error
	oneOf := func(key, v string, allowed ...string) {
		if !slices.Contains(allowed, v) {
			errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %v)", key, v, allowed))
		}
	}

	oneOf("OTP_MODE", c.OTPMode, OTPModeLegacy, OTPModeStrict)
	oneOf("EMAIL_FAILURE_MODE", c.EmailFailureMode, EmailFailSilent, EmailFailLoud)
	oneOf("EMAIL_PROVIDER", c.EmailProvider, "brevo", "sendgrid", "smtp")
	oneOf("USER_STORE", c.UserStore, "dynamo", "postgres", "mongo")
	if c.Strict() {
		oneOf("OTP_STORE", c.OTPStore, "dynamo", "redis")
		if c.OTPMaxAttempts < 1 {
			errs = append(errs, fmt.Errorf("OTP_MAX_ATTEMPTS: must be at least 1, got %d", c.OTPMaxAttempts))
		}
	}
	return errors.Join(errs...)
}

// Strict reports whether issued codes are stored and checked.
func (c *Config) Strict() bool { return c.OTPMode == OTPModeStrict }

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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
