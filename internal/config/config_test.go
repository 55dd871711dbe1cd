package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FLEETPULSE_POSTGRES_DSN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FLEETPULSE_POSTGRES_DSN", "postgres://localhost/fleetpulse")
	t.Setenv("FLEETPULSE_HTTP_PORT", "9090")
	t.Setenv("FLEETPULSE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, "postgres://localhost/fleetpulse", cfg.Database.DSN)
	assert.True(t, cfg.CacheEnabled())
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("http:\n  port: \"7070\"\ndatabase:\n  dsn: \"postgres://file/db\"\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("FLEETPULSE_HTTP_PORT", "8081")
	// t.Setenv registers restore; unset so the file value survives.
	t.Setenv("FLEETPULSE_POSTGRES_DSN", "")
	os.Unsetenv("FLEETPULSE_POSTGRES_DSN")
	t.Setenv("FLEETPULSE_REDIS_ADDR", "")
	os.Unsetenv("FLEETPULSE_REDIS_ADDR")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddress(), "env wins over file")
	assert.Equal(t, "postgres://file/db", cfg.Database.DSN)
	assert.False(t, cfg.CacheEnabled())
}

func TestHTTPAddressDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, ":8080", cfg.HTTPAddress())

	cfg.HTTP.Port = ":9000"
	assert.Equal(t, ":9000", cfg.HTTPAddress())
}
