package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artfair/curation-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/curation")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "9093", cfg.GRPCPort)
	assert.Equal(t, "@every 6h", cfg.EnrichInterval)
	assert.Equal(t, "@every 12h", cfg.ValidateInterval)
	assert.Equal(t, 60, cfg.EnrichBatchSize)
	assert.Equal(t, 1, cfg.CrawlConcurrency)
	assert.Equal(t, 1.0, cfg.CrawlHostRPS)
	assert.True(t, cfg.RunOnStart)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.JobSecret)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CURATION_PORT", "9000")
	t.Setenv("ENRICH_INTERVAL", "0 3 * * *")
	t.Setenv("CRAWL_CONCURRENCY", "5")
	t.Setenv("CRAWL_HOST_RPS", "0.5")
	t.Setenv("RUN_ON_START", "false")
	t.Setenv("JOB_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "0 3 * * *", cfg.EnrichInterval)
	assert.Equal(t, 5, cfg.CrawlConcurrency)
	assert.Equal(t, 0.5, cfg.CrawlHostRPS)
	assert.False(t, cfg.RunOnStart)
	assert.Equal(t, "s3cret", cfg.JobSecret)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"missing database", "DATABASE_URL", "", "DATABASE_URL"},
		{"missing redis", "REDIS_URL", "", "REDIS_URL"},
		{"bad cron", "VALIDATE_INTERVAL", "every day", "VALIDATE_INTERVAL"},
		{"concurrency too high", "CRAWL_CONCURRENCY", "11", "CRAWL_CONCURRENCY"},
		{"concurrency zero", "CRAWL_CONCURRENCY", "0", "CRAWL_CONCURRENCY"},
		{"batch not a number", "ENRICH_BATCH_SIZE", "lots", "ENRICH_BATCH_SIZE"},
		{"negative rps", "CRAWL_HOST_RPS", "-1", "CRAWL_HOST_RPS"},
		{"bad bool", "RUN_ON_START", "sometimes", "RUN_ON_START"},
		{"bad level", "LOG_LEVEL", "chatty", "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
