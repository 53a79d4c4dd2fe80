// Package config provides the configuration loader for strata.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads strata.yaml from root and merges it over the defaults.
func (l *Loader) Load(root string) (domain.Config, error) {
	path := filepath.Join(root, domain.ConfigFileName)

	data, err := os.ReadFile(path) //nolint:gosec // path is built from the project root
	if errors.Is(err, fs.ErrNotExist) {
		l.Logger.Debug("no " + domain.ConfigFileName + " found, using defaults")
		return domain.DefaultConfig(), nil
	}
	if err != nil {
		return domain.Config{}, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file Stratafile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Config{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	cfg, err := file.toDomain()
	if err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// DiscoverRoot walks up from cwd looking for strata.yaml or a .strata directory.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrProjectPathResolve.Error()), "path", cwd)
	}

	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, domain.ConfigFileName)); err == nil {
			return dir, nil
		}
		if info, err := os.Stat(filepath.Join(dir, domain.DataDirName)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

func (f *Stratafile) toDomain() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if c := f.Cache; c != nil {
		if c.Backend != "" {
			cfg.Cache.Backend = domain.Backend(c.Backend)
		}
		if c.Capacity != nil {
			cfg.Cache.Capacity = *c.Capacity
		}
		if err := parseDuration("cache.default_ttl", c.DefaultTTL, &cfg.Cache.DefaultTTL); err != nil {
			return cfg, err
		}
		if err := parseDuration("cache.gc_interval", c.GCInterval, &cfg.Cache.GCInterval); err != nil {
			return cfg, err
		}
	}

	if inv := f.Invalidation; inv != nil {
		if inv.MaxRetries != nil {
			cfg.Invalidation.MaxRetries = *inv.MaxRetries
		}
		if inv.Concurrency != nil {
			cfg.Invalidation.Concurrency = *inv.Concurrency
		}
		if err := parseDuration("invalidation.retry_delay", inv.RetryDelay, &cfg.Invalidation.RetryDelay); err != nil {
			return cfg, err
		}
	}

	if a := f.Audit; a != nil {
		if a.Enabled != nil {
			cfg.Audit.Enabled = *a.Enabled
		}
		if a.MaxSizeMB != nil {
			cfg.Audit.MaxSizeMB = *a.MaxSizeMB
		}
		if a.MaxBackups != nil {
			cfg.Audit.MaxBackups = *a.MaxBackups
		}
		if a.MaxAgeDays != nil {
			cfg.Audit.MaxAgeDays = *a.MaxAgeDays
		}
	}

	if w := f.Watch; w != nil {
		if err := parseDuration("watch.debounce", w.Debounce, &cfg.Watch.Debounce); err != nil {
			return cfg, err
		}
		if w.Ignore != nil {
			cfg.Watch.Ignore = w.Ignore
		}
	}

	return cfg.WithDefaults(), nil
}

func parseDuration(field, raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "field", field)
	}
	*dst = d
	return nil
}
