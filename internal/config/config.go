// Package config loads the querycache configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/electwix/querycache/internal/cache"
)

// CacheConfig mirrors the [cache] table of the TOML schema. Zero values
// take the documented defaults; out-of-range values are accepted and
// used as given.
type CacheConfig struct {
	// MaxEntries bounds the entry count. Default 1000.
	MaxEntries int `toml:"max_entries"`
	// MaxSizeBytes bounds the aggregate estimated size. Default 100 MiB.
	MaxSizeBytes int64 `toml:"max_size_bytes"`
	// TTLMillis is the entry time-to-live in milliseconds. Default
	// 300000 (5 minutes).
	TTLMillis int64 `toml:"ttl_ms"`
	// Policy is one of "lru", "lfu", "fifo". Default "lru"; an
	// unrecognized value degrades to insertion-order eviction.
	Policy string `toml:"policy"`
	// EnableStats toggles statistics tracking. Default true.
	EnableStats *bool `toml:"enable_stats"`
}

// DatabaseConfig mirrors the [database] table.
type DatabaseConfig struct {
	// Driver is the database/sql driver name. Default "sqlite".
	Driver string `toml:"driver"`
	// DSN is the connection string. Default ":memory:".
	DSN string `toml:"dsn"`
}

// Config mirrors the expected querycache TOML schema.
type Config struct {
	Cache    CacheConfig    `toml:"cache"`
	Database DatabaseConfig `toml:"database"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads and resolves a querycache configuration file.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = cache.DefaultMaxEntries
	}
	if c.Cache.MaxSizeBytes == 0 {
		c.Cache.MaxSizeBytes = cache.DefaultMaxSize
	}
	if c.Cache.TTLMillis == 0 {
		c.Cache.TTLMillis = cache.DefaultTTL.Milliseconds()
	}
	if c.Cache.Policy == "" {
		c.Cache.Policy = string(cache.PolicyLRU)
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = ":memory:"
	}
}

// ManagerOptions converts the cache table into cache.Options.
func (c CacheConfig) ManagerOptions() cache.Options {
	disable := false
	if c.EnableStats != nil {
		disable = !*c.EnableStats
	}
	return cache.Options{
		MaxEntries:   c.MaxEntries,
		MaxSize:      c.MaxSizeBytes,
		TTL:          time.Duration(c.TTLMillis) * time.Millisecond,
		Policy:       cache.Policy(c.Policy),
		DisableStats: disable,
	}
}
