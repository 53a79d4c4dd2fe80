// Package app implements the application layer for strata.
package app

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/strata/internal/adapters/fs"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/invalidation"
	"go.trai.ch/strata/internal/engine/manager"
	"go.trai.ch/strata/internal/engine/registry"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	registry     *registry.Registry
	configLoader ports.ConfigLoader
	walker       *fs.Walker
	watcher      ports.Watcher
	logger       ports.Logger
	options      registry.Options
}

// New creates a new App instance.
func New(
	reg *registry.Registry,
	loader ports.ConfigLoader,
	walker *fs.Walker,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		registry:     reg,
		configLoader: loader,
		walker:       walker,
		watcher:      watcher,
		logger:       log,
	}
}

// WithOptions sets the registry options used when a project is opened.
func (a *App) WithOptions(opts registry.Options) *App {
	a.options = opts
	return a
}

// FileRegistration is the outcome of registering one file.
type FileRegistration struct {
	Path string `json:"path"`
	domain.Registration
}

// FileStatus reports where a file is cached together with its index entry.
type FileStatus struct {
	invalidation.Status
	Entry *domain.CacheEntry `json:"entry,omitempty"`
}

// open resolves the project containing dir and returns its manager.
func (a *App) open(ctx context.Context, dir string) (*manager.Manager, error) {
	if dir == "" {
		dir = "."
	}
	root, err := a.configLoader.DiscoverRoot(dir)
	if err != nil {
		return nil, err
	}
	return a.registry.Get(ctx, root, a.options)
}

// Register registers files with the cache. With no files every source file of
// the project is registered.
func (a *App) Register(ctx context.Context, project string, files []string) ([]FileRegistration, error) {
	m, err := a.open(ctx, project)
	if err != nil {
		return nil, err
	}

	paths, err := a.targets(m, project, files)
	if err != nil {
		return nil, err
	}

	out := make([]FileRegistration, 0, len(paths))
	var errs error
	for _, rel := range paths {
		content, err := a.walker.ReadFile(filepath.Join(m.Root(), filepath.FromSlash(rel)))
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		reg, err := m.RegisterFile(ctx, rel, content, nil)
		if err != nil {
			errs = errors.Join(errs, zerr.With(err, "file_path", rel))
			continue
		}
		out = append(out, FileRegistration{Path: rel, Registration: reg})
	}
	return out, errs
}

// Invalidate atomically invalidates files, retrying each up to retries times.
func (a *App) Invalidate(ctx context.Context, project string, files []string, retries int) (invalidation.BatchResult, error) {
	m, err := a.open(ctx, project)
	if err != nil {
		return invalidation.BatchResult{}, err
	}

	paths, err := a.relativize(m.Root(), project, files)
	if err != nil {
		return invalidation.BatchResult{}, err
	}

	batch := invalidation.BatchResult{Total: len(paths), Results: make([]invalidation.Result, 0, len(paths))}
	for _, rel := range paths {
		res := m.InvalidateFile(ctx, rel, retries)
		if res.Success {
			batch.Success++
		} else {
			batch.Failed++
		}
		batch.Results = append(batch.Results, res)
	}
	return batch, nil
}

// Status reports where file is cached.
func (a *App) Status(ctx context.Context, project, file string) (FileStatus, error) {
	m, err := a.open(ctx, project)
	if err != nil {
		return FileStatus{}, err
	}

	paths, err := a.relativize(m.Root(), project, []string{file})
	if err != nil {
		return FileStatus{}, err
	}

	st, err := m.Status(ctx, paths[0])
	if err != nil {
		return FileStatus{}, err
	}
	entry, _ := m.Entry(paths[0])
	return FileStatus{Status: st, Entry: entry}, nil
}

// Stats summarizes the project cache.
func (a *App) Stats(ctx context.Context, project string) (manager.Summary, error) {
	m, err := a.open(ctx, project)
	if err != nil {
		return manager.Summary{}, err
	}
	return m.Summary(ctx)
}

// Cleanup removes cache state of registered files that no longer exist.
func (a *App) Cleanup(ctx context.Context, project string) (int, error) {
	m, err := a.open(ctx, project)
	if err != nil {
		return 0, err
	}

	root := m.Root()
	var existing []string
	for p := range a.walker.Existing(root, m.Config().Watch.Ignore) {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		existing = append(existing, filepath.ToSlash(rel))
	}
	return m.CleanupDeletedFiles(ctx, existing)
}

// Watch re-registers changed source files and invalidates removed ones until
// ctx is cancelled.
func (a *App) Watch(ctx context.Context, project string) error {
	m, err := a.open(ctx, project)
	if err != nil {
		return err
	}

	cfg := m.Config()
	if err := a.watcher.Start(ctx, m.Root(), cfg.Watch.Ignore, cfg.Watch.Debounce); err != nil {
		return err
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Error(err)
		}
	}()

	unsubscribe := m.Invalidator().Subscribe(func(ev domain.InvalidationEvent) {
		if ev.Name == domain.EventInvalidationRetrying {
			a.logger.Warn("retrying invalidation of " + ev.FilePath + " (attempt " +
				strconv.Itoa(ev.Attempt) + "/" + strconv.Itoa(ev.MaxRetries) + ")")
		}
	})
	defer unsubscribe()

	a.logger.Info("watching " + m.Root())
	for batch := range a.watcher.Changes() {
		a.applyChanges(ctx, m, batch)
	}
	return nil
}

func (a *App) applyChanges(ctx context.Context, m *manager.Manager, batch []ports.FileChange) {
	root := m.Root()
	for _, change := range batch {
		if !fs.IsSource(change.Path) {
			continue
		}
		rel, err := filepath.Rel(root, change.Path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if change.Removed {
			if _, ok := m.Entry(rel); !ok {
				continue
			}
			res := m.InvalidateFile(ctx, rel, 0)
			if !res.Success {
				a.logger.Error(res.Err)
				continue
			}
			a.logger.Info("invalidated " + rel)
			continue
		}

		content, err := a.walker.ReadFile(change.Path)
		if err != nil {
			a.logger.Error(err)
			continue
		}
		reg, err := m.RegisterFile(ctx, rel, content, nil)
		if err != nil {
			a.logger.Error(zerr.With(err, "file_path", rel))
			continue
		}
		if reg.ChangeType == domain.ChangeNone {
			continue
		}
		msg := rel + ": " + string(reg.ChangeType)
		if len(reg.Cascaded) > 0 {
			msg += " (" + strconv.Itoa(len(reg.Cascaded)) + " dependents stale)"
		}
		a.logger.Info(msg)
	}
}

// Clean closes the project cache and removes its data directory.
func (a *App) Clean(_ context.Context, project string) error {
	if project == "" {
		project = "."
	}
	root, err := a.configLoader.DiscoverRoot(project)
	if err != nil {
		return err
	}

	if _, err := a.registry.InvalidateCacheInstance(root); err != nil {
		a.logger.Warn("failed to close cache before cleaning: " + err.Error())
	}

	dir := domain.DataPath(root)
	a.logger.Info("removing " + dir + "...")
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCleanFailed, err.Error()), "path", dir)
	}
	a.logger.Info("removed " + dir)
	return nil
}

// Close releases every open project cache.
func (a *App) Close() error {
	return a.registry.Close()
}

// targets returns the project-relative paths to register. With no files it
// walks the project for sources.
func (a *App) targets(m *manager.Manager, project string, files []string) ([]string, error) {
	if len(files) > 0 {
		return a.relativize(m.Root(), project, files)
	}

	root := m.Root()
	var out []string
	for p := range a.walker.WalkSources(root, m.Config().Watch.Ignore) {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out, nil
}

// relativize turns file arguments into slash-separated paths relative to root.
// Relative arguments are taken relative to the project directory the command
// runs in, and symlinks are resolved the same way root was.
func (a *App) relativize(root, project string, files []string) ([]string, error) {
	if project == "" {
		project = "."
	}
	base, err := filepath.Abs(project)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidFilePath, err.Error()), "path", project)
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		p := f
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		resolved, err := resolveSymlinks(p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidFilePath, err.Error()), "file_path", f)
		}
		rel, err := filepath.Rel(root, resolved)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidFilePath, "file is outside the project"), "file_path", f)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

// resolveSymlinks resolves symlinks in path. A file that no longer exists is
// resolved through its directory, so deleted files can still be invalidated.
func resolveSymlinks(path string) (string, error) {
	path = filepath.Clean(path)
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, iofs.ErrNotExist) {
		return "", err
	}
	dir, derr := filepath.EvalSymlinks(filepath.Dir(path))
	if derr != nil {
		return path, nil //nolint:nilerr // an unresolvable directory is compared as given
	}
	return filepath.Join(dir, filepath.Base(path)), nil
}
