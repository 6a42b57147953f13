// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseConfigured() bool
	GetMigrationsEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitPerMinute() int
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailProvider() string
	GetResendAPIKey() string
	GetResendAPIURL() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetAWSRegion() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotifierConfig provides settings for the chat webhook notifier.
type NotifierConfig interface {
	GetChatWebhookURL() string
}

// LinkConfig provides the public base URL used to build links in emails.
// When empty, links use each vertical's primary hostname.
type LinkConfig interface {
	GetAppBaseURL() string
}

// SchedulerConfig provides settings for background jobs.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetWeeklyDigestCron() string
}

// CacheConfig provides settings for the listings read cache.
type CacheConfig interface {
	GetRedisURL() string
	GetListingsCacheTTL() time.Duration
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucketDigests() string
	IsMinIOEnabled() bool
}

// AdminConfig provides settings for operator endpoints.
type AdminConfig interface {
	GetAdminJWTSecret() string
}

// DigestConfig provides settings for the weekly digest.
type DigestConfig interface {
	LinkConfig
	GetDigestBatchSize() int
	GetDigestLookbackDays() int
	GetDigestSize() int
}

// VerticalConfig provides the optional registry override file.
type VerticalConfig interface {
	GetVerticalsFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	MigrationsEnabled  bool
	CORSAllowAll       bool
	CORSOrigins        []string
	RateLimitPerMinute int
	AppBaseURL         string
	EmailProvider      string
	ResendAPIKey       string
	ResendAPIURL       string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	AWSRegion          string
	EmailFromName      string
	EmailFromAddress   string
	ChatWebhookURL     string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	WeeklyDigestCron   string
	ListingsCacheTTL   time.Duration
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketDigests string
	AdminJWTSecret     string
	DigestBatchSize    int
	DigestLookbackDays int
	DigestSize         int
	VerticalsFile      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) IsDatabaseConfigured() bool { return c.DatabaseURL != "" }
func (c *Config) GetMigrationsEnabled() bool { return c.MigrationsEnabled }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }

// EmailConfig implementation
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetResendAPIKey() string     { return c.ResendAPIKey }
func (c *Config) GetResendAPIURL() string     { return c.ResendAPIURL }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetAWSRegion() string        { return c.AWSRegion }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotifierConfig implementation
func (c *Config) GetChatWebhookURL() string { return c.ChatWebhookURL }

// LinkConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string         { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool   { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string   { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int    { return c.AsynqConcurrency }
func (c *Config) GetWeeklyDigestCron() string { return c.WeeklyDigestCron }

// CacheConfig implementation
func (c *Config) GetListingsCacheTTL() time.Duration { return c.ListingsCacheTTL }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucketDigests() string { return c.MinIOBucketDigests }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// AdminConfig implementation
func (c *Config) GetAdminJWTSecret() string { return c.AdminJWTSecret }

// DigestConfig implementation
func (c *Config) GetDigestBatchSize() int    { return c.DigestBatchSize }
func (c *Config) GetDigestLookbackDays() int { return c.DigestLookbackDays }
func (c *Config) GetDigestSize() int         { return c.DigestSize }

// VerticalConfig implementation
func (c *Config) GetVerticalsFile() string { return c.VerticalsFile }

// Email providers accepted by EMAIL_PROVIDER.
const (
	EmailProviderNone   = "none"
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"
	EmailProviderSES    = "ses"
)

// Load reads configuration from environment variables.
// DATABASE_URL is optional: without it the API starts and store-backed routes answer 503.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        strings.TrimSpace(getEnv("DATABASE_URL", "")),
		MigrationsEnabled:  strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		RateLimitPerMinute: mustInt(getEnv("RATE_LIMIT_PER_MINUTE", "20")),
		AppBaseURL:         strings.TrimRight(strings.TrimSpace(getEnv("APP_BASE_URL", "")), "/"),
		EmailProvider:      strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailProviderNone))),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		ResendAPIURL:       getEnv("RESEND_API_URL", "https://api.resend.com/emails"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", ""),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		ChatWebhookURL:     getEnv("CHAT_WEBHOOK_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		WeeklyDigestCron:   getEnv("WEEKLY_DIGEST_CRON", "0 13 * * 1"),
		ListingsCacheTTL:   mustDuration(getEnv("LISTINGS_CACHE_TTL", "10m")),
		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucketDigests: getEnv("MINIO_BUCKET_DIGESTS", "digests"),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		DigestBatchSize:    mustInt(getEnv("DIGEST_BATCH_SIZE", "100")),
		DigestLookbackDays: mustInt(getEnv("DIGEST_LOOKBACK_DAYS", "90")),
		DigestSize:         mustInt(getEnv("DIGEST_SIZE", "10")),
		VerticalsFile:      getEnv("VERTICALS_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EmailProvider {
	case EmailProviderNone:
	case EmailProviderResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when EMAIL_PROVIDER is resend")
		}
	case EmailProviderSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER is smtp")
		}
	case EmailProviderSES:
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required when EMAIL_PROVIDER is ses")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}

	if c.DigestBatchSize < 1 {
		return fmt.Errorf("DIGEST_BATCH_SIZE must be positive")
	}
	if c.DigestLookbackDays < 1 {
		return fmt.Errorf("DIGEST_LOOKBACK_DAYS must be positive")
	}
	if c.DigestSize < 1 {
		return fmt.Errorf("DIGEST_SIZE must be positive")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
