package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 100*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 14, cfg.OutboxRetentionDays)
	assert.True(t, cfg.OutboxProcessorEnabled)
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 5*time.Minute, cfg.ReminderLeadTime)
	assert.Equal(t, 15*time.Minute, cfg.ProgressCacheTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/dayblock")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "50")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")
	t.Setenv("CALENDAR_PROVIDER", "caldav")
	t.Setenv("CALENDAR_ID", "personal")
	t.Setenv("REMINDER_LEAD_TIME", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://localhost/dayblock", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 50, cfg.OutboxBatchSize)
	assert.False(t, cfg.OutboxProcessorEnabled)
	assert.Equal(t, "caldav", cfg.CalendarProvider)
	assert.Equal(t, "personal", cfg.CalendarID)
	assert.Equal(t, 10*time.Minute, cfg.ReminderLeadTime)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "not a number")
	t.Setenv("OUTBOX_POLL_INTERVAL", "eventually")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.OutboxPollInterval)
	assert.True(t, cfg.OutboxProcessorEnabled)
}
