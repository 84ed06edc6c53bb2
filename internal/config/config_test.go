package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	// Load reads the working directory and the process environment, so no
	// t.Parallel here.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "underwrite.db", cfg.Store.SQLitePath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 50.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, 100, cfg.Server.RateLimitBurst)
	assert.Equal(t, 180, cfg.Engine.HorizonPeriods)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UNDERWRITE_STORE_DRIVER", "postgres")
	t.Setenv("UNDERWRITE_SERVER_PORT", "9090")
	t.Setenv("UNDERWRITE_ENGINE_HORIZON_PERIODS", "240")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 240, cfg.Engine.HorizonPeriods)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir+"/config.yaml", `
store:
  driver: postgres
  database_url: postgres://localhost/underwrite
server:
  port: 3000
log:
  level: debug
  format: console
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/underwrite", cfg.Store.DatabaseURL)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 180, cfg.Engine.HorizonPeriods)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir+"/config.yaml", "store: [not: a: map")

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	t.Run("json production config", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	})

	t.Run("console development config", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	})

	t.Run("invalid level rejected", func(t *testing.T) {
		err := InitLogger(LogConfig{Level: "loudest", Format: "json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse log level")
	})
}
