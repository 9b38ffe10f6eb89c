// Package config loads gateway configuration from the environment, with an
// optional YAML overlay for the model priority list and limit overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultModels is the ranked candidate list used when nothing overrides it.
var defaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

// Config holds the externally supplied constants.
type Config struct {
	APIKey string
	Port   int

	PerMinuteLimit      int
	PerDayLimit         int
	ProviderHourlyLimit int

	Models     []string
	MaxRetries int
	BaseDelay  time.Duration

	RequestTimeout time.Duration
}

// fileConfig is the optional YAML overlay.
type fileConfig struct {
	Models []string `yaml:"models"`
	Limits struct {
		PerMinute int `yaml:"per_minute"`
		PerDay    int `yaml:"per_day"`
		PerHour   int `yaml:"per_hour"`
	} `yaml:"limits"`
}

// Load reads .env (when present), the environment, and the optional YAML
// file named by MODEL_CONFIG. YAML values override environment values.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:              os.Getenv("GOOGLE_API_KEY"),
		Port:                envInt("PORT", 3000),
		PerMinuteLimit:      envInt("RATE_LIMIT_PER_MINUTE", 10),
		PerDayLimit:         envInt("RATE_LIMIT_PER_DAY", 1500),
		ProviderHourlyLimit: envInt("PROVIDER_HOURLY_LIMIT", 0),
		Models:              envList("MODEL_PRIORITY", defaultModels),
		MaxRetries:          envInt("MAX_RETRIES", 2),
		BaseDelay:           envDurationMs("RETRY_BASE_DELAY_MS", 500*time.Millisecond),
		RequestTimeout:      envDurationMs("REQUEST_TIMEOUT_MS", 15*time.Second),
	}

	if path := os.Getenv("MODEL_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("model priority list is empty")
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse model config: %w", err)
	}
	if len(fc.Models) > 0 {
		c.Models = fc.Models
	}
	if fc.Limits.PerMinute > 0 {
		c.PerMinuteLimit = fc.Limits.PerMinute
	}
	if fc.Limits.PerDay > 0 {
		c.PerDayLimit = fc.Limits.PerDay
	}
	if fc.Limits.PerHour > 0 {
		c.ProviderHourlyLimit = fc.Limits.PerHour
	}
	return nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDurationMs(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
