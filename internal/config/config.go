package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port                string
	Env                 string
	LogLevel            string
	SiteURL             string
	CORSAllowedOrigins  []string
	ExternalCallTimeout time.Duration
	MaxUploadBytes      int64

	// Notification routing
	AdminEmail       string
	DefaultFromEmail string
	DefaultFromName  string

	// Email provider: sendgrid, ses or stub
	EmailProvider  string
	SendGridAPIKey string
	AWSRegion      string

	// PayPal Orders v2
	PayPalClientID      string
	PayPalClientSecret  string
	PayPalMode          string
	PayPalBaseURL       string
	OrderNumberPrefix   string
	PurchaseDescription string

	// Cloudflare R2 (S3 API)
	R2Endpoint        string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

// Load reads configuration from environment variables
func Load() *Config {
	defaultFrom := getEnv("DEFAULT_FROM_EMAIL", "")
	adminEmail := getEnv("ADMIN_EMAIL", defaultFrom)
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SiteURL:             strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS"),
		ExternalCallTimeout: getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", 10*time.Second),
		MaxUploadBytes:      int64(getEnvAsInt("MAX_UPLOAD_BYTES", 25<<20)),

		AdminEmail:       adminEmail,
		DefaultFromEmail: defaultFrom,
		DefaultFromName:  getEnv("DEFAULT_FROM_NAME", ""),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		PayPalClientID:      getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret:  getEnv("PAYPAL_CLIENT_SECRET", ""),
		PayPalMode:          strings.ToLower(strings.TrimSpace(getEnv("PAYPAL_MODE", "sandbox"))),
		PayPalBaseURL:       getEnv("PAYPAL_BASE_URL", ""),
		OrderNumberPrefix:   getEnv("ORDER_NUMBER_PREFIX", "LP"),
		PurchaseDescription: getEnv("PURCHASE_DESCRIPTION", "Single Page Landing Page - 2 Day Turn-around"),

		R2Endpoint:        getEnv("R2_ENDPOINT", ""),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", "uploads"),
		R2PublicURL:       strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
	}
}

// StorageEndpoint resolves the S3 API endpoint for R2, preferring an explicit override.
func (c *Config) StorageEndpoint() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	if c.R2AccountID != "" {
		return "https://" + c.R2AccountID + ".r2.cloudflarestorage.com"
	}
	return ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
