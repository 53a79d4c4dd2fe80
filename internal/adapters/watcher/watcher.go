package watcher

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// alwaysSkip are directories never watched.
var alwaysSkip = []string{".git", ".jj", domain.DataDirName}

const batchChannelBuffer = 16

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	logger    ports.Logger
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	skip      map[string]bool
	batches   chan []ports.FileChange

	mu       sync.Mutex
	closed   bool
	done     chan struct{}
	inflight sync.WaitGroup
	stopOnce sync.Once
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherStart.Error())
	}
	return &Watcher{
		logger:    logger,
		fsWatcher: fw,
		batches:   make(chan []ports.FileChange, batchChannelBuffer),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching root recursively.
func (w *Watcher) Start(ctx context.Context, root string, ignore []string, debounce time.Duration) error {
	w.skip = make(map[string]bool, len(alwaysSkip)+len(ignore))
	for _, name := range alwaysSkip {
		w.skip[name] = true
	}
	for _, name := range ignore {
		w.skip[name] = true
	}
	w.debouncer = NewDebouncer(debounce, w.emit)

	for dir := range w.watchRecursively(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherStart.Error()), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Changes returns an iterator of coalesced change batches.
func (w *Watcher) Changes() iter.Seq[[]ports.FileChange] {
	return func(yield func([]ports.FileChange) bool) {
		for batch := range w.batches {
			if !yield(batch) {
				return
			}
		}
	}
}

func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if d.IsDir() {
				if path != root && w.skip[d.Name()] {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// skipped reports whether any element of path is an ignored directory name.
func (w *Watcher) skipped(path string) bool {
	for part := range strings.SplitSeq(filepath.ToSlash(filepath.Dir(path)), "/") {
		if w.skip[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: file system error: " + err.Error())
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.skipped(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skip[info.Name()] {
				for dir := range w.watchRecursively(event.Name) {
					_ = w.fsWatcher.Add(dir)
				}
			}
			return
		}
	}

	w.debouncer.Add(event.Name)
}

// emit turns a debounced path set into a batch, resolving removals at emit time.
func (w *Watcher) emit(paths []string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	batch := make([]ports.FileChange, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			batch = append(batch, ports.FileChange{Path: p, Removed: true})
		case err == nil && !info.IsDir():
			batch = append(batch, ports.FileChange{Path: p})
		}
	}
	if len(batch) == 0 {
		return
	}

	select {
	case w.batches <- batch:
	case <-w.done:
	}
}

func (w *Watcher) shutdown() {
	w.stopOnce.Do(func() {
		if w.debouncer != nil {
			w.debouncer.Stop()
		}
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
		w.inflight.Wait()
		close(w.batches)
	})
}
