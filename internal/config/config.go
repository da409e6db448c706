package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Documents
	DataBackend   string
	SQLiteDBPath  string
	SeedFile      string
	BillsCacheTTL time.Duration

	// Sessions
	SessionBackend     string
	SessionSecret      string
	SecureCookies      bool
	SessionIdleTimeout time.Duration
	RememberMeTTL      time.Duration
	TabSessionTTL      time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Presentation
	SupportWhatsApp string
	DefaultLanguage string

	// Logging
	LogLevel  string
	LogFormat string
}

var (
	dataBackends    = []string{"memory", "sqlite"}
	sessionBackends = []string{"memory", "redis"}
	languages       = []string{"en", "ar"}
	logFormats      = []string{"tint", "text", "json"}
)

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/billhub.db"),
		SeedFile:      getEnv("SEED_FILE", ""),
		BillsCacheTTL: getEnvDuration("BILLS_CACHE_TTL", 30*time.Second),

		SessionBackend:     getEnv("SESSION_BACKEND", "memory"),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SecureCookies:      getEnvBool("COOKIE_SECURE", false),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 3*time.Minute),
		RememberMeTTL:      getEnvDuration("REMEMBER_ME_TTL", 30*24*time.Hour),
		TabSessionTTL:      getEnvDuration("TAB_SESSION_TTL", 12*time.Hour),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "billhub"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "bill_ledger"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Bill Requests"),

		SupportWhatsApp: getEnv("SUPPORT_WHATSAPP", "9647700000000"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "tint"),
	}
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(dataBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, dataBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file '%s' is not readable: %v", c.SeedFile, err))
		}
	}

	if c.BillsCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid bills cache TTL %v: must not be negative", c.BillsCacheTTL))
	}

	if !slices.Contains(sessionBackends, c.SessionBackend) {
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of %v", c.SessionBackend, sessionBackends))
	}
	if c.SessionBackend == "redis" && c.RedisAddr == "" {
		errors = append(errors, "REDIS_ADDR cannot be empty when using redis session backend")
	}
	if c.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("invalid redis db %d: must not be negative", c.RedisDB))
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		errors = append(errors, "SESSION_SECRET must be at least 32 bytes")
	}
	if c.SessionIdleTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid session idle timeout %v: must be at least 1 second", c.SessionIdleTimeout))
	}
	if c.RememberMeTTL < c.TabSessionTTL {
		errors = append(errors, fmt.Sprintf("remember-me TTL %v must not be shorter than tab session TTL %v", c.RememberMeTTL, c.TabSessionTTL))
	}
	if c.TabSessionTTL < c.SessionIdleTimeout {
		errors = append(errors, fmt.Sprintf("tab session TTL %v must not be shorter than idle timeout %v", c.TabSessionTTL, c.SessionIdleTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SupportWhatsApp == "" || strings.Trim(c.SupportWhatsApp, "0123456789") != "" {
		errors = append(errors, fmt.Sprintf("invalid support WhatsApp number '%s': digits only", c.SupportWhatsApp))
	}
	if !slices.Contains(languages, c.DefaultLanguage) {
		errors = append(errors, fmt.Sprintf("invalid default language '%s': must be one of %v", c.DefaultLanguage, languages))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, logFormats))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// HasLedger reports whether bill events should go to a Google spreadsheet.
func (c *Config) HasLedger() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
