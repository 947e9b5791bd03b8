package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  path: "+filepath.Join(t.TempDir(), "test.db")+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "America/New_York", cfg.Shop.Timezone)
	assert.Equal(t, 3, cfg.Shop.NotifyPosition)
	assert.Equal(t, 1.0, cfg.Notifications.RatePerSecond)
	assert.Equal(t, 5, cfg.Notifications.RateBurst)
	assert.Equal(t, time.Duration(0), cfg.StatusCacheTTL(), "cache disabled by default")
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_RESEND_KEY", "re_secret")
	path := writeConfig(t, `
database:
  path: `+filepath.Join(t.TempDir(), "test.db")+`
shop:
  timezone: Europe/Berlin
  status_cache_ttl_seconds: 30
notifications:
  enabled: true
  provider: resend
  resend:
    api_key: ${TEST_RESEND_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Shop.Timezone)
	assert.Equal(t, "re_secret", cfg.Notifications.Resend.APIKey)
	assert.Equal(t, 30*time.Second, cfg.StatusCacheTTL())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
