package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, 3, cfg.Abuse.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.Abuse.RateLimitWindow)
	assert.Equal(t, 5, cfg.Abuse.SuspicionHighCount)
	assert.Equal(t, 3, cfg.Abuse.BurstCount)
	assert.Equal(t, 10*time.Minute, cfg.Abuse.BurstWindow)
	assert.Equal(t, 3, cfg.Abuse.MediumMinCount)
	assert.Equal(t, 500, cfg.Abuse.MaxContentLength)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("RATE_LIMIT_MAX", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")
	t.Setenv("IDENTITY_SALT", "pepper")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.Abuse.RateLimitMax)
	assert.Equal(t, 30*time.Minute, cfg.Abuse.RateLimitWindow)
	assert.Equal(t, "pepper", cfg.IdentitySalt)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "-5m")

	cfg := Load()

	assert.Equal(t, 3, cfg.Abuse.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.Abuse.RateLimitWindow)
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://whisperwall.app, https://www.whisperwall.app")

	cfg := Load()

	require.Len(t, cfg.AllowedOrigins, 2)
	assert.Equal(t, "https://whisperwall.app", cfg.AllowedOrigins[0])
}
