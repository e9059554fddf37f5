package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_SQUARE_SECRET", "sq-secret")

	path := writeConfig(t, `
server:
  port: 9090
providers:
  square:
    application_id: app-id
    application_secret: ${TEST_SQUARE_SECRET}
    environment: production
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sq-secret", cfg.Providers.Square.ApplicationSecret)
	assert.Equal(t, "production", cfg.Providers.Square.Environment)
	assert.True(t, cfg.Providers.Square.Configured())
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: /tmp/pos.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Sync.LookbackDays)
	assert.Equal(t, 6, cfg.Sync.MinIntervalHours)
	assert.Equal(t, "sandbox", cfg.Providers.Square.Environment)
	assert.Equal(t, "restaurant", cfg.Providers.Lightspeed.APIType)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SQUARE_APPLICATION_ID", "app-id")
	t.Setenv("SQUARE_APPLICATION_SECRET", "secret")
	t.Setenv("SYNC_MIN_INTERVAL_HOURS", "12")
	t.Setenv("GENERIC_POS_ENABLED", "true")

	cfg := LoadFromEnv()
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Sync.MinIntervalHours)
	assert.True(t, cfg.Providers.Square.Configured())
	assert.True(t, cfg.Providers.Generic.Enabled)
	assert.False(t, cfg.Providers.Shopify.Configured())
}

func TestLoadOrEnvFallsBack(t *testing.T) {
	t.Setenv("PORT", "6060")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestConfiguredRequiresBothSquareFields(t *testing.T) {
	assert.False(t, SquareConfig{ApplicationID: "id"}.Configured())
	assert.False(t, SquareConfig{ApplicationSecret: "secret"}.Configured())
	assert.True(t, SquareConfig{ApplicationID: "id", ApplicationSecret: "secret"}.Configured())
}
