// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vntrieu/werewolf/internal/games"
)

const devTokenSecret = "dev-secret-change-in-production"

// Config is the process configuration. Zero durations fall back to the
// game defaults once passed through Timings.
type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	TokenSecret    []byte
	TokenTTL       time.Duration
	AllowedOrigins []string
	RedisURL       string
	RatePerMinute  int
	PublicURL      string
	LogLevel       string
	LogFormat      string

	LobbyCountdown  time.Duration
	Discussion      time.Duration
	Voting          time.Duration
	Tick            time.Duration
	Settle          time.Duration
	GameOverDelay   time.Duration
	RoleRevealDelay time.Duration
	NoticeTTL       time.Duration
	AutoNightDelay  time.Duration
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:       getenv("WEREWOLF_HTTP_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		TokenSecret:    []byte(getenv("TOKEN_SECRET", devTokenSecret)),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		RedisURL:       os.Getenv("REDIS_URL"),
		PublicURL:      strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "console"),
	}

	rate, err := strconv.Atoi(getenv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || rate < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: invalid value %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}
	cfg.RatePerMinute = rate

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"TOKEN_TTL", "24h", &cfg.TokenTTL},
		{"LOBBY_COUNTDOWN", "30s", &cfg.LobbyCountdown},
		{"DISCUSSION_DURATION", "60s", &cfg.Discussion},
		{"VOTING_DURATION", "30s", &cfg.Voting},
		{"TICK_INTERVAL", "1s", &cfg.Tick},
		{"SETTLE_DELAY", "2s", &cfg.Settle},
		{"GAME_OVER_DELAY", "3s", &cfg.GameOverDelay},
		{"ROLE_REVEAL_DELAY", "5s", &cfg.RoleRevealDelay},
		{"NOTICE_TTL", "5s", &cfg.NoticeTTL},
		{"AUTO_NIGHT_DELAY", "0", &cfg.AutoNightDelay},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s: negative duration %s", d.key, v)
		}
		*d.dst = v
	}
	return cfg, nil
}

// UsingDevSecret reports whether TOKEN_SECRET was left unset.
func (c *Config) UsingDevSecret() bool {
	return string(c.TokenSecret) == devTokenSecret
}

// Timings converts the duration settings for the game manager.
func (c *Config) Timings() games.Timings {
	return games.Timings{
		LobbyCountdown:  c.LobbyCountdown,
		Discussion:      c.Discussion,
		Voting:          c.Voting,
		Tick:            c.Tick,
		Settle:          c.Settle,
		GameOverDelay:   c.GameOverDelay,
		RoleRevealDelay: c.RoleRevealDelay,
		NoticeTTL:       c.NoticeTTL,
		AutoNightDelay:  c.AutoNightDelay,
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
