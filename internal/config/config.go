// Package config handles application configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all vidtally data (defaults to $XDG_DATA_HOME/vidtally)
	BaseDir string `yaml:"-"`

	Store    StoreConfig    `yaml:"store"`
	Progress ProgressConfig `yaml:"progress"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig selects the durable local key-value backend.
type StoreConfig struct {
	// Backend: "sqlite" (default), "badger", "file" or "memory"
	Backend string `yaml:"backend"`
}

// ProgressConfig tunes playback progress tracking.
type ProgressConfig struct {
	// Fraction of the duration that counts as finished (default 0.95)
	CompletionThreshold float64 `yaml:"completion_threshold"`
	// Position sampling cadence while playing (default 1s)
	SampleInterval time.Duration `yaml:"sample_interval"`
	// Window in which pause/end flushes collapse into one (default 400ms)
	FlushDebounce time.Duration `yaml:"flush_debounce"`
	// Number of entries shown by the recent list (default 5)
	RecentLimit int `yaml:"recent_limit"`
}

// RankingConfig configures the remote ranking store.
type RankingConfig struct {
	// Backend: "none" (default), "memory", "postgres" or "redis"
	Backend string `yaml:"backend"`

	PostgresDSN string `yaml:"postgres_dsn"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Minimum spacing between remote syncs; 0 disables throttling
	MinSyncInterval time.Duration `yaml:"min_sync_interval"`
	// Per-request deadline; 0 leaves the caller's context in charge
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// NotifyConfig configures where badge and warning notices are published.
type NotifyConfig struct {
	// NATS server URL; empty disables NATS publishing
	NATSURL string `yaml:"nats_url"`
	// Subject prefix for published notices (default "vidtally.notices")
	Subject string `yaml:"subject"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from the optional config file, the optional
// .env file and environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if home := os.Getenv("VIDTALLY_HOME"); home != "" {
		cfg.BaseDir = home
	}

	paths := GetPaths(cfg)

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(paths.Env); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if err := loadFile(cfg, paths.Config); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile merges a YAML config file into cfg. A missing file is not an error.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides cfg from environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("VIDTALLY_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("VIDTALLY_RANKING"); v != "" {
		cfg.Ranking.Backend = v
	}
	if v := os.Getenv("VIDTALLY_POSTGRES_DSN"); v != "" {
		cfg.Ranking.PostgresDSN = v
		if os.Getenv("VIDTALLY_RANKING") == "" {
			cfg.Ranking.Backend = "postgres"
		}
	}
	if v := os.Getenv("VIDTALLY_REDIS_ADDR"); v != "" {
		cfg.Ranking.RedisAddr = v
		if os.Getenv("VIDTALLY_RANKING") == "" && cfg.Ranking.PostgresDSN == "" {
			cfg.Ranking.Backend = "redis"
		}
	}
	if v := os.Getenv("VIDTALLY_REDIS_PASSWORD"); v != "" {
		cfg.Ranking.RedisPassword = v
	}
	if v := os.Getenv("VIDTALLY_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ranking.RedisDB = n
		}
	}
	if v := os.Getenv("VIDTALLY_NATS_URL"); v != "" {
		cfg.Notify.NATSURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	return os.MkdirAll(cfg.BaseDir, 0755)
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if c.Progress.CompletionThreshold <= 0 || c.Progress.CompletionThreshold > 1 {
		return fmt.Errorf("invalid completion_threshold %v: must be in (0, 1]", c.Progress.CompletionThreshold)
	}
	switch c.Store.Backend {
	case "sqlite", "badger", "file", "memory":
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	switch c.Ranking.Backend {
	case "none", "memory":
	case "postgres":
		if c.Ranking.PostgresDSN == "" {
			return errors.New("invalid ranking config: postgres backend needs postgres_dsn")
		}
	case "redis":
		if c.Ranking.RedisAddr == "" {
			return errors.New("invalid ranking config: redis backend needs redis_addr")
		}
	default:
		return fmt.Errorf("invalid ranking backend %q", c.Ranking.Backend)
	}
	return nil
}
