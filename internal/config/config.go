package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Content ratings. The adult rating is the narrative contract's default;
// family runs narrator output through the text filter.
const (
	RatingAdult  = "adult"
	RatingFamily = "family"
)

// Config holds all runtime settings, parsed from the environment.
type Config struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	ModelName     string `env:"MODEL_NAME" envDefault:"gemini-3-pro-preview"`
	RedisURL      string `env:"REDIS_URL" envDefault:"localhost:6379"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName  string `env:"LOG_LEVEL" envDefault:"info"`
	ContentRating string `env:"CONTENT_RATING" envDefault:"adult"`

	// Upstream tuning. Defaults match the narrator backend's observed
	// rate-limit behavior: two calls per turn must be spaced apart.
	RetryMax      int           `env:"RETRY_MAX" envDefault:"3"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"2s"`
	MaxToolRounds int           `env:"MAX_TOOL_ROUNDS" envDefault:"8"`
	SimCooldown   time.Duration `env:"SIM_COOLDOWN" envDefault:"2s"`

	LogLevel slog.Level `env:"-"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
