package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SaveInterval)
	assert.Equal(t, int32(50), cfg.SnapshotKeep)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SAVE_INTERVAL", "5s")
	t.Setenv("ALLOWED_ORIGINS", "*")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.SaveInterval)
	assert.Equal(t, "*", cfg.AllowedOrigins)

	t.Setenv("PORT", "not-a-number")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("SAVE_INTERVAL", "0s")
	t.Setenv("SNAPSHOT_KEEP", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAVE_INTERVAL")
	assert.Contains(t, err.Error(), "SNAPSHOT_KEEP")

	t.Setenv("SAVE_INTERVAL", "10s")
	t.Setenv("SNAPSHOT_KEEP", "5")
	t.Setenv("ENV", "production")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a real secret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).Level())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "WARN"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "loud"}).Level())
}
