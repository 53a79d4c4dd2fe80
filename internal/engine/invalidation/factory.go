// Package invalidation builds and runs the transactions that invalidate a file's
// cached state, with retries, cascades through dependents and lifecycle events.
package invalidation

import (
	"context"
	"errors"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/index"
	"go.trai.ch/strata/internal/engine/txn"
)

// Operation names.
const (
	OpInvalidateAnalysis = "invalidate-analysis"
	OpInvalidateAtoms    = "invalidate-atoms"
	OpDeleteArtifacts    = "delete-artifacts"
	OpRemoveIndexEntry   = "remove-index-entry"
)

// OperationFactory builds the standard operations of a file invalidation.
type OperationFactory struct {
	fast      ports.FastStore
	artifacts ports.ArtifactStore
	index     *index.Index
}

// NewOperationFactory creates a factory over the stores of one project.
func NewOperationFactory(fast ports.FastStore, artifacts ports.ArtifactStore, idx *index.Index) *OperationFactory {
	return &OperationFactory{fast: fast, artifacts: artifacts, index: idx}
}

type fastInvalidation struct {
	store ports.FastStore
	key   string
}

func (s fastInvalidation) Execute(ctx context.Context) ([]domain.FastItem, error) {
	snap, err := s.store.Snapshot(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Invalidate(ctx, s.key); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s fastInvalidation) Rollback(ctx context.Context, snap []domain.FastItem) error {
	if len(snap) == 0 {
		return nil
	}
	return s.store.Restore(ctx, snap)
}

// FastInvalidation deletes a fast-tier key or pattern, snapshotting the
// matching items first so rollback can restore them.
func (f *OperationFactory) FastInvalidation(name, keyOrPattern string) *txn.Operation[[]domain.FastItem] {
	return txn.NewOperation[[]domain.FastItem](name, fastInvalidation{store: f.fast, key: keyOrPattern})
}

type artifactDeletion struct {
	store    ports.ArtifactStore
	filePath string
}

func (s artifactDeletion) Execute(ctx context.Context) ([]domain.Artifact, error) {
	backup, err := s.store.Delete(ctx, s.filePath)
	if err != nil {
		// A partial delete is restored here since the failing operation itself
		// is not rolled back by the transaction.
		if len(backup) > 0 {
			err = errors.Join(err, s.store.Restore(context.WithoutCancel(ctx), backup))
		}
		return nil, err
	}
	return backup, nil
}

func (s artifactDeletion) Rollback(ctx context.Context, backup []domain.Artifact) error {
	if len(backup) == 0 {
		return nil
	}
	return s.store.Restore(ctx, backup)
}

// ArtifactDeletion removes every durable artifact of filePath, keeping the
// removed artifacts as the rollback backup.
func (f *OperationFactory) ArtifactDeletion(filePath string) *txn.Operation[[]domain.Artifact] {
	return txn.NewOperation[[]domain.Artifact](OpDeleteArtifacts, artifactDeletion{store: f.artifacts, filePath: filePath})
}

type indexRemoval struct {
	index    *index.Index
	filePath string
}

func (s indexRemoval) Execute(context.Context) (*domain.CacheEntry, error) {
	removed, _ := s.index.RemoveEntry(s.filePath)
	return removed, nil
}

func (s indexRemoval) Rollback(_ context.Context, removed *domain.CacheEntry) error {
	if removed != nil {
		s.index.RestoreEntry(removed)
	}
	return nil
}

// IndexRemoval removes the index entry of filePath, retaining it for re-insertion.
func (f *OperationFactory) IndexRemoval(filePath string) *txn.Operation[*domain.CacheEntry] {
	return txn.NewOperation[*domain.CacheEntry](OpRemoveIndexEntry, indexRemoval{index: f.index, filePath: filePath})
}
