// Package config loads runtime settings for the domainfolio binaries.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the top-level configuration.
type Config struct {
	ListenAddr   string        `yaml:"listen_addr"`
	Store        Store         `yaml:"store"`
	SeedFile     string        `yaml:"seed_file"`
	Expiry       Expiry        `yaml:"expiry"`
	Rate         Rate          `yaml:"rate"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	LogLevel     string        `yaml:"log_level"`
	CacheMaxCost int64         `yaml:"cache_max_cost"`
	Debounce     time.Duration `yaml:"debounce"`
	// SearchDebounce delays recording of search text. Zero selects the
	// service default.
	SearchDebounce time.Duration `yaml:"search_debounce"`
}

// Store selects and configures the key-value backend.
type Store struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	DatabaseURL   string        `yaml:"database_url"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

// Expiry configures the expiry sweep.
type Expiry struct {
	Schedule string `yaml:"schedule"`
}

// Rate configures the per-client API rate limiter. Zero RPS disables it.
type Rate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Defaults returns a Config with sensible defaults for local development.
func Defaults() Config {
	return Config{
		ListenAddr: ":8080",
		Store: Store{
			Backend:      BackendMemory,
			RedisAddr:    "localhost:6379",
			PollInterval: time.Second,
		},
		Expiry:       Expiry{Schedule: "0 6 * * *"},
		Rate:         Rate{RequestsPerSecond: 20, Burst: 40},
		CORSOrigins:  []string{"*"},
		LogLevel:     "info",
		CacheMaxCost: 1 << 20,
		Debounce:     100 * time.Millisecond,
	}
}

// Validate checks that the settings for the selected backend are usable.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		if c.Store.PollInterval <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", c.Store.PollInterval)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Expiry.Schedule != "" {
		if _, err := cron.ParseStandard(c.Expiry.Schedule); err != nil {
			return fmt.Errorf("invalid expiry schedule %q: %w", c.Expiry.Schedule, err)
		}
	}
	if c.Rate.RequestsPerSecond < 0 || c.Rate.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if c.Rate.RequestsPerSecond > 0 && c.Rate.Burst == 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
