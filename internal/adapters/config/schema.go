package config

// Stratafile represents the structure of the strata.yaml configuration file.
// Pointer fields distinguish an omitted key from an explicit zero value.
type Stratafile struct {
	Version      string           `yaml:"version"`
	Cache        *CacheDTO        `yaml:"cache"`
	Invalidation *InvalidationDTO `yaml:"invalidation"`
	Audit        *AuditDTO        `yaml:"audit"`
	Watch        *WatchDTO        `yaml:"watch"`
}

// CacheDTO configures the fast tier.
type CacheDTO struct {
	Backend    string `yaml:"backend"`
	Capacity   *int   `yaml:"capacity"`
	DefaultTTL string `yaml:"default_ttl"`
	GCInterval string `yaml:"gc_interval"`
}

// InvalidationDTO configures retries and batch fan-out.
type InvalidationDTO struct {
	MaxRetries  *int   `yaml:"max_retries"`
	RetryDelay  string `yaml:"retry_delay"`
	Concurrency *int   `yaml:"concurrency"`
}

// AuditDTO configures the audit trail.
type AuditDTO struct {
	Enabled    *bool `yaml:"enabled"`
	MaxSizeMB  *int  `yaml:"max_size_mb"`
	MaxBackups *int  `yaml:"max_backups"`
	MaxAgeDays *int  `yaml:"max_age_days"`
}

// WatchDTO configures watch mode.
type WatchDTO struct {
	Debounce string   `yaml:"debounce"`
	Ignore   []string `yaml:"ignore"`
}
