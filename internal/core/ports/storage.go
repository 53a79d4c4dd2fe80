package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

// Storage groups the stores backing one project.
type Storage struct {
	Fast      FastStore
	Index     IndexStore
	Artifacts ArtifactStore
	// Close releases every store. It is safe to call once.
	Close func() error
}

// StorageProvider opens the stores of a project.
// The fast-tier backend is selected once, when Open runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks
type StorageProvider interface {
	Open(ctx context.Context, root string, cfg domain.CacheConfig) (*Storage, error)
}
