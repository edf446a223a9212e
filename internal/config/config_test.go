package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posleasing/leasesync/internal/domain"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DATA_DSN", "sqlserver://data")
	t.Setenv("DB_CONTROL_DSN", "sqlserver://control")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "23:00", cfg.Sync.ExecutionTime)
	assert.Equal(t, 0, cfg.Sync.AdvanceDays)
	assert.False(t, cfg.Sync.SkipReportDateValidation)
	assert.Equal(t, domain.ReportModeFlexible, cfg.Sync.ReportMode)
	assert.Equal(t, "sqlserver", cfg.Database.Driver)
	assert.Equal(t, 240*time.Second, cfg.Database.CommandTimeout)
	assert.Equal(t, "Sistema", cfg.App.User)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SYNC_EXECUTION_TIME", "06:30:15")
	t.Setenv("SYNC_ADVANCE_DAYS", "2")
	t.Setenv("SYNC_SKIP_REPORT_DATE_VALIDATION", "true")
	t.Setenv("SYNC_REPORT_MODE", "force")
	t.Setenv("APP_SYSTEM_ID", "17")
	t.Setenv("SMTP_USERNAME", "robot@example.com")
	t.Setenv("ARCHIVE_PREFIX", "/monthly/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "06:30:15", cfg.Sync.ExecutionTime)
	assert.Equal(t, 2, cfg.Sync.AdvanceDays)
	assert.True(t, cfg.Sync.SkipReportDateValidation)
	assert.Equal(t, domain.ReportModeForce, cfg.Sync.ReportMode)
	assert.Equal(t, 17, cfg.App.SystemID)
	assert.Equal(t, "robot@example.com", cfg.SMTP.From)
	assert.Equal(t, "monthly", cfg.Archive.Prefix)
}

func TestLoad_InvalidReportMode(t *testing.T) {
	setRequired(t)
	t.Setenv("SYNC_REPORT_MODE", "sometimes")

	_, err := Load()
	assert.ErrorContains(t, err, "SYNC_REPORT_MODE")
}

func TestLoad_Timezone(t *testing.T) {
	setRequired(t)
	t.Setenv("SYNC_TIMEZONE", "Not/AZone")

	_, err := Load()
	assert.ErrorContains(t, err, "SYNC_TIMEZONE")
}

func TestLoad_KeepsUnparsableExecutionTime(t *testing.T) {
	setRequired(t)
	t.Setenv("SYNC_EXECUTION_TIME", "25:99")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "25:99", cfg.Sync.ExecutionTime)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Sync:     domain.SyncSettings{ReportMode: domain.ReportModeFlexible},
			Database: DatabaseConfig{DataDSN: "a", ControlDSN: "b", CommandTimeout: time.Second},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"negative advance days", func(c *Config) { c.Sync.AdvanceDays = -1 }, "SYNC_ADVANCE_DAYS"},
		{"missing data dsn", func(c *Config) { c.Database.DataDSN = "" }, "DB_DATA_DSN"},
		{"missing control dsn", func(c *Config) { c.Database.ControlDSN = "" }, "DB_CONTROL_DSN"},
		{"zero timeout", func(c *Config) { c.Database.CommandTimeout = 0 }, "DB_COMMAND_TIMEOUT_SECONDS"},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true }, "ARCHIVE_BUCKET"},
		{"bad mode", func(c *Config) { c.Sync.ReportMode = "x" }, "unknown report mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
