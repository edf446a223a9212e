// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/posleasing/leasesync/internal/domain"
)

// Config holds application configuration
type Config struct {
	Sync     domain.SyncSettings
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Archive  ArchiveConfig
	Location *time.Location // Business calendar for the report day
	LogLevel string
	Pretty   bool
	HTTPPort int // 0 disables the ops server
}

// AppConfig identifies this service in the shared control tables
type AppConfig struct {
	SystemID int
	Phrase   string // Decryption phrase for system parameters
	User     string // Reported in error notifications
}

// DatabaseConfig holds both connection strings and shared pool settings
type DatabaseConfig struct {
	Driver         string
	DataDSN        string // Lease data (stored procedures)
	ControlDSN     string // Recipients, parameters, sync control
	CommandTimeout time.Duration
	MaxOpenConns   int
}

// SMTPConfig holds the outbound mail transport settings
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	Subject            string
	InsecureSkipVerify bool
}

// ArchiveConfig holds the optional S3-compatible report archive
type ArchiveConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // Empty for AWS, set for R2/MinIO
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	mode, err := domain.ParseReportMode(getEnv("SYNC_REPORT_MODE", string(domain.ReportModeFlexible)))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_REPORT_MODE: %w", err)
	}

	tz := getEnv("SYNC_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		Location: loc,
		Sync: domain.SyncSettings{
			// The time of day is parsed by the scheduler, which halts on a bad value
			ExecutionTime:            getEnv("SYNC_EXECUTION_TIME", "23:00"),
			AdvanceDays:              getEnvAsInt("SYNC_ADVANCE_DAYS", 0),
			SkipReportDateValidation: getEnvAsBool("SYNC_SKIP_REPORT_DATE_VALIDATION", false),
			ReportMode:               mode,
			AlertLoadEnabled:         getEnvAsBool("SYNC_ALERT_LOAD", false),
		},
		App: AppConfig{
			SystemID: getEnvAsInt("APP_SYSTEM_ID", 0),
			Phrase:   getEnv("APP_PHRASE", ""),
			User:     getEnv("APP_USER", "Sistema"),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", "sqlserver"),
			DataDSN:        getEnv("DB_DATA_DSN", ""),
			ControlDSN:     getEnv("DB_CONTROL_DSN", ""),
			CommandTimeout: time.Duration(getEnvAsInt("DB_COMMAND_TIMEOUT_SECONDS", 240)) * time.Second,
			MaxOpenConns:   getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
		},
		SMTP: SMTPConfig{
			Host:               getEnv("SMTP_HOST", ""),
			Port:               getEnvAsInt("SMTP_PORT", 587),
			Username:           getEnv("SMTP_USERNAME", ""),
			Password:           getEnv("SMTP_PASSWORD", ""),
			From:               getEnv("SMTP_FROM", ""),
			Subject:            getEnv("SMTP_SUBJECT", "Reporte de Arrendamiento POS"),
			InsecureSkipVerify: getEnvAsBool("SMTP_INSECURE_SKIP_VERIFY", false),
		},
		Archive: ArchiveConfig{
			Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
			Bucket:          getEnv("ARCHIVE_BUCKET", ""),
			Endpoint:        getEnv("ARCHIVE_ENDPOINT", ""),
			Region:          getEnv("ARCHIVE_REGION", "auto"),
			AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
			Prefix:          strings.Trim(getEnv("ARCHIVE_PREFIX", "reports"), "/"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Pretty:   getEnvAsBool("LOG_PRETTY", false),
		HTTPPort: getEnvAsInt("HTTP_PORT", 8080),
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	var errs []error

	if _, err := domain.ParseReportMode(string(c.Sync.ReportMode)); err != nil {
		errs = append(errs, err)
	}
	if c.Sync.AdvanceDays < 0 {
		errs = append(errs, fmt.Errorf("SYNC_ADVANCE_DAYS must not be negative, got %d", c.Sync.AdvanceDays))
	}
	if c.Database.DataDSN == "" {
		errs = append(errs, errors.New("DB_DATA_DSN is required"))
	}
	if c.Database.ControlDSN == "" {
		errs = append(errs, errors.New("DB_CONTROL_DSN is required"))
	}
	if c.Database.CommandTimeout <= 0 {
		errs = append(errs, errors.New("DB_COMMAND_TIMEOUT_SECONDS must be positive"))
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		errs = append(errs, errors.New("ARCHIVE_BUCKET is required when ARCHIVE_ENABLED is set"))
	}
	if c.HTTPPort < 0 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must not be negative, got %d", c.HTTPPort))
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
