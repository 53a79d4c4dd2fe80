package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

// IndexStore persists the cache index.
//
//go:generate go run go.uber.org/mock/mockgen -source=index_store.go -destination=mocks/mock_index_store.go -package=mocks
type IndexStore interface {
	// Load returns the persisted index, or an empty index if none was saved yet.
	Load(ctx context.Context) (*domain.CacheIndex, error)

	// Save replaces the persisted index atomically.
	Save(ctx context.Context, index *domain.CacheIndex) error
}
