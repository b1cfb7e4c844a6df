package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 256, cfg.Conversation.RegistrySize)
	assert.Equal(t, 30*time.Minute, cfg.Conversation.RegistryTTL)
	assert.Equal(t, 8, cfg.WorkerPools.BulkStatus.PoolSize)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
logLevel: debug
api:
  baseURL: http://backend.internal:9000/
  timeout: 5s
workerPools:
  bulkStatus:
    poolSize: 3
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://backend.internal:9000", cfg.API.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.WorkerPools.BulkStatus.PoolSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://leads.example.com")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_TIMEOUT", "0s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://leads.example.com", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "invalid SERVER_PORT")
}
