// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"expcat/internal/log"
)

// Keys double as environment variable names once upper-cased.
const (
	KeyPort               = "port"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyMaxUploadMB        = "max_upload_mb"
	KeySessionTTL         = "session_ttl"
	KeySessionMax         = "session_max"
	KeyCookieSecure       = "cookie_secure"
	KeyShutdownTimeout    = "shutdown_timeout"
	KeyCleanupInterval    = "cleanup_interval"
	KeyUploadsPerMinute   = "uploads_per_minute"
	KeyAMQPURL            = "amqp_url"
	KeyAMQPExchange       = "amqp_exchange"
	KeyAMQPQueue          = "amqp_queue"
	KeyAMQPAttempts       = "amqp_connect_attempts"
	KeySheetsBackend      = "sheets_backend"
	KeySpreadsheetID      = "google_spreadsheet_id"
	KeySheetName          = "google_sheet_name"
	KeyServiceAccountJSON = "google_service_account_json"
	KeyServiceAccountFile = "google_service_account_file"
)

type Config struct {
	// HTTP Server
	Port            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	// UploadsPerMinute caps uploads and exports per client; 0 disables it.
	UploadsPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Sessions
	SessionTTL      time.Duration
	SessionMax      int
	CookieSecure    bool
	CleanupInterval time.Duration

	// AMQP, disabled when AMQPURL is empty
	AMQPURL             string
	AMQPExchange        string
	AMQPQueue           string
	AMQPConnectAttempts int

	// Google Sheets export: "" (off), "memory" or "google"
	SheetsBackend            string
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// NewViper returns a viper instance with defaults that reads plain
// environment variables (PORT, LOG_LEVEL, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMaxUploadMB, 10)
	v.SetDefault(KeySessionTTL, 2*time.Hour)
	v.SetDefault(KeySessionMax, 100)
	v.SetDefault(KeyCookieSecure, false)
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyCleanupInterval, 5*time.Minute)
	v.SetDefault(KeyUploadsPerMinute, 20)
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "expcat")
	v.SetDefault(KeyAMQPQueue, "import_events")
	v.SetDefault(KeyAMQPAttempts, 3)
	v.SetDefault(KeySheetsBackend, "")
	v.SetDefault(KeySpreadsheetID, "")
	v.SetDefault(KeySheetName, "Categorized Transactions")
	v.SetDefault(KeyServiceAccountJSON, "")
	v.SetDefault(KeyServiceAccountFile, "")
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from the environment.
func Load() *Config {
	return FromViper(NewViper())
}

// FromViper builds a Config from v, which may have flags bound to it.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:            strings.TrimSpace(v.GetString(KeyPort)),
		MaxUploadBytes:  v.GetInt64(KeyMaxUploadMB) << 20,
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),

		UploadsPerMinute: v.GetInt(KeyUploadsPerMinute),

		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),

		SessionTTL:      v.GetDuration(KeySessionTTL),
		SessionMax:      v.GetInt(KeySessionMax),
		CookieSecure:    v.GetBool(KeyCookieSecure),
		CleanupInterval: v.GetDuration(KeyCleanupInterval),

		AMQPURL:             strings.TrimSpace(v.GetString(KeyAMQPURL)),
		AMQPExchange:        v.GetString(KeyAMQPExchange),
		AMQPQueue:           v.GetString(KeyAMQPQueue),
		AMQPConnectAttempts: v.GetInt(KeyAMQPAttempts),

		SheetsBackend:            strings.ToLower(strings.TrimSpace(v.GetString(KeySheetsBackend))),
		GoogleSpreadsheetID:      strings.TrimSpace(v.GetString(KeySpreadsheetID)),
		GoogleSheetName:          strings.TrimSpace(v.GetString(KeySheetName)),
		GoogleServiceAccountJSON: v.GetString(KeyServiceAccountJSON),
		GoogleServiceAccountFile: strings.TrimSpace(v.GetString(KeyServiceAccountFile)),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.MaxUploadBytes < 1<<20 {
		errors = append(errors, "invalid upload limit: must be at least 1 MB")
	} else if c.MaxUploadBytes > 100<<20 {
		errors = append(errors, "invalid upload limit: must be at most 100 MB")
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session limit %d: must be at least 1", c.SessionMax))
	}
	if c.CleanupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cleanup interval %v: must be at least 1 second", c.CleanupInterval))
	}
	if c.UploadsPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid upload rate %d: must not be negative", c.UploadsPerMinute))
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, "shutdown timeout must be positive")
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

	switch c.SheetsBackend {
	case "", "memory":
	case "google":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using the google sheets backend")
		}
		if strings.TrimSpace(c.GoogleServiceAccountJSON) == "" && c.GoogleServiceAccountFile == "" &&
			os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for the google sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid sheets backend '%s': must be empty, memory or google", c.SheetsBackend))
	}
	if c.SheetsBackend != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name cannot be empty when sheets export is enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}
