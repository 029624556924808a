package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(33554432), cfg.Server.MaxUploadBytes)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, float64(100), cfg.Server.RateLimit.RPS)
	assert.Equal(t, 50, cfg.Server.RateLimit.Burst)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, "order_product", cfg.Ingestion.DedupKey)
	assert.Equal(t, 100, cfg.Ingestion.MaxBatchErrors)
	assert.Equal(t, "UTC", cfg.Ingestion.Timezone)

	assert.Equal(t, 5, cfg.Analytics.TopRankings)
	assert.Equal(t, 30, cfg.Analytics.DailyWindow)
	assert.Equal(t, 50, cfg.Analytics.LogHistory)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHOPPULSE_SERVER_PORT", "9090")
	t.Setenv("SHOPPULSE_INGESTION_DEDUP_KEY", "order")
	t.Setenv("SHOPPULSE_STORAGE_BACKEND", "file")

	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "order", cfg.Ingestion.DedupKey)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad dedup key", "SHOPPULSE_INGESTION_DEDUP_KEY", "customer"},
		{"bad storage backend", "SHOPPULSE_STORAGE_BACKEND", "mongodb"},
		{"bad log output", "SHOPPULSE_LOGGING_OUTPUT", "syslog"},
		{"bad timezone", "SHOPPULSE_INGESTION_TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromFile("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "server:\n  port: 7070\ningestion:\n  dedup_key: order\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	// Environment still wins over the file.
	t.Setenv("SHOPPULSE_SERVER_PORT", "7071")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7071, cfg.Server.Port)
}

func TestLoadFromFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestIngestionLocation(t *testing.T) {
	c := IngestionConfig{Timezone: "Asia/Baghdad"}
	loc := c.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Baghdad", loc.String())

	bogus := IngestionConfig{Timezone: "bogus"}
	assert.Equal(t, time.UTC, bogus.Location())
}
