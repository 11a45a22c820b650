// Package config loads the waypoint server configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the root of the configuration file.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Metrics         bool          `mapstructure:"metrics"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects and configures the journey store.
type StoreConfig struct {
	Kind    string        `mapstructure:"kind"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// EncryptionKey is a base64 encoded 32 byte key. When set, stored tokens
	// are encrypted at rest.
	EncryptionKey string       `mapstructure:"encryption_key"`
	Redis         RedisConfig  `mapstructure:"redis"`
	SQLite        SQLiteConfig `mapstructure:"sqlite"`
}

// RedisConfig configures the Redis store and distributed lock.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	DSN    string        `mapstructure:"dsn"`
	MaxAge time.Duration `mapstructure:"max_age"`
	// PruneInterval is how often journeys older than MaxAge are removed
	// while serving.
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			Metrics:         true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Kind:    StoreMemory,
			LockTTL: 30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "waypoint:session:",
				TTL:    24 * time.Hour,
			},
			SQLite: SQLiteConfig{
				DSN:           "file:waypoint.db",
				PruneInterval: time.Hour,
			},
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Files ending in .json are parsed as JSON, everything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode applies a generic map (as produced by YAML or JSON) onto cfg.
// Durations may be given as strings ("30s") and scalars are weakly typed.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate reports every inconsistent setting.
func (c Config) Validate() error {
	var errs error
	switch c.Store.Kind {
	case StoreNone, StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = multierr.Append(errs, fmt.Errorf("store.redis.addr is required"))
		}
	case StoreSQLite:
		if c.Store.SQLite.DSN == "" {
			errs = multierr.Append(errs, fmt.Errorf("store.sqlite.dsn is required"))
		}
		if c.Store.SQLite.MaxAge > 0 && c.Store.SQLite.PruneInterval <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("store.sqlite.prune_interval must be positive when max_age is set"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown store kind '%s'", c.Store.Kind))
	}
	if c.Store.LockTTL <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("store.lock_ttl must be positive"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown log format '%s'", c.Log.Format))
	}
	return errs
}
