package ports

import (
	"context"
	"time"

	"go.trai.ch/strata/internal/core/domain"
)

// FastStore is the low-latency key/value tier.
// Keys passed to Invalidate and Snapshot may be glob patterns ("analysis:*").
//
//go:generate go run go.uber.org/mock/mockgen -source=fast_store.go -destination=mocks/mock_fast_store.go -package=mocks
type FastStore interface {
	// Get returns the value stored at key. Expired items are reported as missing.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value at key. A zero ttl means the item never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate deletes key, or every key matching a glob pattern, in one logical
	// operation and returns the number of deleted keys.
	Invalidate(ctx context.Context, keyOrPattern string) (int, error)

	// Snapshot returns the live items matching keyOrPattern.
	Snapshot(ctx context.Context, keyOrPattern string) ([]domain.FastItem, error)

	// Restore writes items back with their original creation time and expiry.
	// Items that expired in the meantime are skipped.
	Restore(ctx context.Context, items []domain.FastItem) error

	// Clear deletes every item.
	Clear(ctx context.Context) error

	// Stats reports the state of the tier.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Backend names the implementation.
	Backend() domain.Backend

	// Close releases the underlying resources.
	Close() error
}
