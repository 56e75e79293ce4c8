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
}

// JWTConfig provides JWT validation settings for admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MailConfig provides settings for email sending.
type MailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetAgentInboxAddress() string
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// RoutingConfig provides settings for the lead routing engine.
type RoutingConfig interface {
	GetRoutesFile() string
	GetMappingFile() string
	GetBusinessHoursStart() int
	GetBusinessHoursEnd() int
	GetIntakeAPIKeys() []string
	GetTeamMembers() []string
}

// CRMConfig provides settings for FollowUp Boss synchronization.
type CRMConfig interface {
	GetFollowUpBossAPIKey() string
	GetFollowUpBossBaseURL() string
	GetFollowUpBossSystem() string
	IsCRMSyncEnabled() bool
}

// SchedulingLinkConfig provides settings for booking link generation.
type SchedulingLinkConfig interface {
	GetCalendlyBaseURL() string
	GetCalendlyOwner() string
}

// ListingCacheConfig provides settings for the listing price cache.
type ListingCacheConfig interface {
	GetRedisURL() string
	GetListingCacheTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	EmailEnabled       bool
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EmailFromName      string
	EmailFromAddress   string
	AgentInboxAddress  string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	RoutesFile         string
	MappingFile        string
	BusinessHoursStart int
	BusinessHoursEnd   int
	IntakeAPIKeys      []string
	TeamMembers        []string
	FollowUpBossAPIKey string
	FollowUpBossURL    string
	FollowUpBossSystem string
	CalendlyBaseURL    string
	CalendlyOwner      string
	ListingCacheTTL    time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }

func (c *Config) GetEmailEnabled() bool        { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string     { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string  { return c.EmailFromAddress }
func (c *Config) GetAgentInboxAddress() string { return c.AgentInboxAddress }

func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetRoutesFile() string       { return c.RoutesFile }
func (c *Config) GetMappingFile() string      { return c.MappingFile }
func (c *Config) GetBusinessHoursStart() int  { return c.BusinessHoursStart }
func (c *Config) GetBusinessHoursEnd() int    { return c.BusinessHoursEnd }
func (c *Config) GetIntakeAPIKeys() []string  { return c.IntakeAPIKeys }
func (c *Config) GetTeamMembers() []string    { return c.TeamMembers }

func (c *Config) GetFollowUpBossAPIKey() string  { return c.FollowUpBossAPIKey }
func (c *Config) GetFollowUpBossBaseURL() string { return c.FollowUpBossURL }
func (c *Config) GetFollowUpBossSystem() string  { return c.FollowUpBossSystem }
func (c *Config) IsCRMSyncEnabled() bool {
	return c.FollowUpBossAPIKey != "" && c.RedisURL != ""
}

func (c *Config) GetCalendlyBaseURL() string      { return c.CalendlyBaseURL }
func (c *Config) GetCalendlyOwner() string        { return c.CalendlyOwner }
func (c *Config) GetListingCacheTTL() time.Duration { return c.ListingCacheTTL }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment (and an optional .env file)
// and validates it. Misconfiguration is fatal here, at process start, never
// at request time.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		EmailEnabled:       emailEnabled && smtpHost != "",
		SMTPHost:           smtpHost,
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Lead Desk"),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		AgentInboxAddress:  getEnv("AGENT_INBOX_ADDRESS", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),
		RoutesFile:         getEnv("ROUTES_FILE", ""),
		MappingFile:        getEnv("MAPPING_FILE", ""),
		BusinessHoursStart: mustInt(getEnv("BUSINESS_HOURS_START", "9"), 9),
		BusinessHoursEnd:   mustInt(getEnv("BUSINESS_HOURS_END", "17"), 17),
		IntakeAPIKeys:      splitCSV(getEnv("INTAKE_API_KEYS", "")),
		TeamMembers:        splitCSV(getEnv("TEAM_MEMBERS", "")),
		FollowUpBossAPIKey: getEnv("FUB_API_KEY", ""),
		FollowUpBossURL:    getEnv("FUB_BASE_URL", "https://api.followupboss.com"),
		FollowUpBossSystem: getEnv("FUB_SYSTEM", "realty-leads-backend"),
		CalendlyBaseURL:    getEnv("CALENDLY_BASE_URL", "https://calendly.com"),
		CalendlyOwner:      getEnv("CALENDLY_OWNER", ""),
		ListingCacheTTL:    mustDuration(getEnv("LISTING_CACHE_TTL", "10m"), 10*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.BusinessHoursStart < 0 || cfg.BusinessHoursEnd > 24 || cfg.BusinessHoursStart >= cfg.BusinessHoursEnd {
		return nil, fmt.Errorf("invalid business hours window %d-%d", cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
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
