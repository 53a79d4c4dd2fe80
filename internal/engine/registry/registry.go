// Package registry keeps one cache manager per project for the whole process.
package registry

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/manager"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Options override values loaded from strata.yaml. Zero fields keep the loaded
// value. Options only apply when a manager is created; a ready manager is
// returned unchanged.
type Options struct {
	Backend      domain.Backend
	Capacity     int
	DefaultTTL   time.Duration
	MaxRetries   int
	DisableAudit bool
}

func (o Options) apply(cfg *domain.Config) {
	if o.Backend != "" {
		cfg.Cache.Backend = o.Backend
	}
	if o.Capacity > 0 {
		cfg.Cache.Capacity = o.Capacity
	}
	if o.DefaultTTL > 0 {
		cfg.Cache.DefaultTTL = o.DefaultTTL
	}
	if o.MaxRetries > 0 {
		cfg.Invalidation.MaxRetries = o.MaxRetries
	}
	if o.DisableAudit {
		cfg.Audit.Enabled = false
	}
}

// Registry maps canonical project paths to live managers. Concurrent first
// requests for one path share a single initialization.
type Registry struct {
	loader ports.ConfigLoader
	deps   manager.Deps

	mu     sync.Mutex
	ready  map[string]*manager.Manager
	closed bool
	flight singleflight.Group
}

// New creates an empty registry.
func New(loader ports.ConfigLoader, deps manager.Deps) *Registry {
	return &Registry{
		loader: loader,
		deps:   deps,
		ready:  make(map[string]*manager.Manager),
	}
}

// Canonicalize returns the absolute, cleaned form of path with symlinks
// resolved. A path that does not exist yet is only made absolute.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrProjectPathResolve.Error()), "path", path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	switch {
	case err == nil:
		return filepath.Clean(resolved), nil
	case errors.Is(err, fs.ErrNotExist):
		return filepath.Clean(abs), nil
	default:
		return "", zerr.With(zerr.Wrap(err, domain.ErrProjectPathResolve.Error()), "path", path)
	}
}

// Get returns the manager of the project at projectPath, creating it on first
// use. Initialization is not cancelled when the requesting context is, since
// other callers may be waiting on it.
func (r *Registry) Get(ctx context.Context, projectPath string, opts Options) (*manager.Manager, error) {
	key, err := Canonicalize(projectPath)
	if err != nil {
		return nil, err
	}

	if m, ok, err := r.lookup(key); ok || err != nil {
		return m, err
	}

	v, err, _ := r.flight.Do(key, func() (any, error) {
		// A flight that finished between lookup and Do already stored the manager.
		if m, ok, err := r.lookup(key); ok || err != nil {
			return m, err
		}

		m, err := r.open(context.WithoutCancel(ctx), key, opts)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return nil, errors.Join(domain.ErrRegistryClosed, m.Close())
		}
		r.ready[key] = m
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*manager.Manager), nil
}

func (r *Registry) lookup(key string) (*manager.Manager, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false, domain.ErrRegistryClosed
	}
	m, ok := r.ready[key]
	return m, ok, nil
}

func (r *Registry) open(ctx context.Context, root string, opts Options) (*manager.Manager, error) {
	cfg, err := r.loader.Load(root)
	if err != nil {
		return nil, errors.Join(domain.ErrManagerInit, err)
	}
	opts.apply(&cfg)
	return manager.New(ctx, root, cfg, r.deps)
}

// InvalidateCacheInstance closes and forgets the ready manager of projectPath
// so that the next Get initializes from scratch. It reports whether a manager
// was removed. An initialization in flight is not affected.
func (r *Registry) InvalidateCacheInstance(projectPath string) (bool, error) {
	key, err := Canonicalize(projectPath)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	m, ok := r.ready[key]
	delete(r.ready, key)
	r.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, m.Close()
}

// Count returns the number of ready managers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ready)
}

// Keys returns the canonical paths of the ready managers, sorted.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.ready))
	for k := range r.ready {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Close closes every ready manager. Later calls to Get fail with ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	ready := r.ready
	r.ready = make(map[string]*manager.Manager)
	r.closed = true
	r.mu.Unlock()

	var errs error
	for _, m := range ready {
		errs = errors.Join(errs, m.Close())
	}
	return errs
}
