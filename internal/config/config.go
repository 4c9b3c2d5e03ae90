package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL   string
	MigrationsDir string

	// APIKey protects the operator API. Empty disables auth (development only).
	APIKey string

	// DemoMode disables all outbound dispatch regardless of other settings.
	DemoMode bool

	DailySendLimit int
	BatchSendLimit int

	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	EnrichmentBaseURL string
	EnrichmentAPIKey  string

	RedisURL string

	IMAPHost     string
	IMAPPort     int
	IMAPUsername string
	IMAPPassword string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	PhoneRegion string
}

const (
	defaultDailySendLimit = 100
	defaultBatchSendLimit = 25
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "migrations"),
		APIKey:           getEnv("API_KEY", ""),
		DemoMode:         strings.EqualFold(getEnv("DEMO_MODE", "false"), "true"),
		DailySendLimit:   mustInt(getEnv("DAILY_SEND_LIMIT", ""), defaultDailySendLimit),
		BatchSendLimit:   mustInt(getEnv("BATCH_SEND_LIMIT", ""), defaultBatchSendLimit),
		EmailEnabled:     emailEnabled,
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Outreach"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),

		EnrichmentBaseURL: getEnv("ENRICHMENT_BASE_URL", "https://api.hunter.io/v2"),
		EnrichmentAPIKey:  getEnv("ENRICHMENT_API_KEY", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     mustInt(getEnv("IMAP_PORT", "993"), 993),
		IMAPUsername: getEnv("IMAP_USERNAME", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		PhoneRegion: getEnv("PHONE_DEFAULT_REGION", "US"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DailySendLimit < 1 {
		return nil, fmt.Errorf("DAILY_SEND_LIMIT must be positive")
	}
	if cfg.BatchSendLimit < 1 {
		return nil, fmt.Errorf("BATCH_SEND_LIMIT must be positive")
	}
	if cfg.EmailEnabled && !cfg.DemoMode {
		if cfg.SMTPHost == "" || cfg.EmailFromAddress == "" {
			return nil, fmt.Errorf("SMTP_HOST and EMAIL_FROM_ADDRESS are required when email is enabled")
		}
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// InboxConfigured reports whether an IMAP reply inbox is available.
func (c *Config) InboxConfigured() bool {
	return c.IMAPHost != "" && c.IMAPUsername != ""
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
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
