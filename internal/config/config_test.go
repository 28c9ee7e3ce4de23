package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":    "dev",
		"APP_PORT":   "8080",
		"DB_USER":    "wine",
		"DB_HOST":    "127.0.0.1",
		"DB_PORT":    "3306",
		"DB_NAME":    "winedine",
		"JWT_SECRET": "s3cret",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 30*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, int64(5<<20), cfg.Images.MaxBytes())
	assert.False(t, cfg.Images.Enabled())
	assert.Equal(t, "logs", cfg.Notify.LogDir)
}

func TestLoadReportsAllProblems(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("BCRYPT_COST", "high")
	t.Setenv("PASSWORD_RESET_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET")
	assert.Contains(t, msg, "DB_NAME")
	assert.Contains(t, msg, "BCRYPT_COST")
	assert.Contains(t, msg, "PASSWORD_RESET_TTL")
}
