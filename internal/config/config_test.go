package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"WEREWOLF_HTTP_ADDR", "DATABASE_URL", "TOKEN_SECRET", "CORS_ALLOWED_ORIGINS", "DISCUSSION_DURATION", "AUTO_NIGHT_DELAY", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.UsingDevSecret())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60, cfg.RatePerMinute)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)

	tm := cfg.Timings()
	assert.Equal(t, 60*time.Second, tm.Discussion)
	assert.Equal(t, 30*time.Second, tm.LobbyCountdown)
	assert.Zero(t, tm.AutoNightDelay)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test ,")
	t.Setenv("DISCUSSION_DURATION", "90s")
	t.Setenv("AUTO_NIGHT_DELAY", "10s")
	t.Setenv("PUBLIC_URL", "https://wolf.test/")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.UsingDevSecret())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.Timings().Discussion)
	assert.Equal(t, 10*time.Second, cfg.Timings().AutoNightDelay)
	assert.Equal(t, "https://wolf.test", cfg.PublicURL)
	assert.Equal(t, 5, cfg.RatePerMinute)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("VOTING_DURATION", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "VOTING_DURATION")

	t.Setenv("VOTING_DURATION", "-5s")
	_, err = Load()
	assert.ErrorContains(t, err, "VOTING_DURATION")

	t.Setenv("VOTING_DURATION", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	_, err = Load()
	assert.ErrorContains(t, err, "RATE_LIMIT_PER_MINUTE")
}
