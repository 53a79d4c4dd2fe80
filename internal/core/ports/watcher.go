package ports

import (
	"context"
	"iter"
	"time"
)

// FileChange is one debounced change notification.
type FileChange struct {
	// Path is the absolute path of the file that changed.
	Path string
	// Removed is true when the file no longer exists once the batch is emitted.
	Removed bool
}

// Watcher defines the interface for watching a project for file changes.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively, skipping directories named in ignore.
	// Events are coalesced over the debounce window.
	Start(ctx context.Context, root string, ignore []string, debounce time.Duration) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Changes returns an iterator of coalesced change batches.
	// The iterator ends when the watcher stops.
	Changes() iter.Seq[[]FileChange]
}
