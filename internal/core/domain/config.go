package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// CacheConfig configures the fast tier.
type CacheConfig struct {
	Backend    Backend
	Capacity   int
	DefaultTTL time.Duration
	GCInterval time.Duration
}

// InvalidationConfig configures retries and batch fan-out.
type InvalidationConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	Concurrency int
}

// AuditConfig configures the rotated audit trail.
type AuditConfig struct {
	Enabled    bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration
	Ignore   []string
}

// Config is the resolved configuration of one project.
type Config struct {
	Cache        CacheConfig
	Invalidation InvalidationConfig
	Audit        AuditConfig
	Watch        WatchConfig
}

// DefaultConfig returns the configuration used when no strata.yaml exists.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend:    BackendAuto,
			Capacity:   10000,
			GCInterval: 5 * time.Minute,
		},
		Invalidation: InvalidationConfig{
			MaxRetries:  3,
			RetryDelay:  100 * time.Millisecond,
			Concurrency: 4,
		},
		Audit: AuditConfig{
			Enabled:    true,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
			Ignore:   []string{"node_modules", "dist", "build", ".next"},
		},
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendAuto, BackendBadger, BackendMemory:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidBackend, "unsupported cache backend"), "backend", string(c.Cache.Backend))
	}
	return nil
}

// WithDefaults fills zero values with the defaults.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = d.Cache.Capacity
	}
	if c.Cache.GCInterval == 0 {
		c.Cache.GCInterval = d.Cache.GCInterval
	}
	if c.Invalidation.MaxRetries <= 0 {
		c.Invalidation.MaxRetries = d.Invalidation.MaxRetries
	}
	if c.Invalidation.RetryDelay <= 0 {
		c.Invalidation.RetryDelay = d.Invalidation.RetryDelay
	}
	if c.Invalidation.Concurrency <= 0 {
		c.Invalidation.Concurrency = d.Invalidation.Concurrency
	}
	if c.Audit.MaxSizeMB <= 0 {
		c.Audit.MaxSizeMB = d.Audit.MaxSizeMB
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = d.Watch.Debounce
	}
	if c.Watch.Ignore == nil {
		c.Watch.Ignore = d.Watch.Ignore
	}
	return c
}
