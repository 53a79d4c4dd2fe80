// Package index owns the cache index of one project and persists it through an
// IndexStore.
package index

import (
	"context"
	"sync"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
)

// Index is a concurrency-safe owner of a domain.CacheIndex.
// Entries handed out are copies; mutation goes through Index methods.
type Index struct {
	mu    sync.RWMutex
	idx   *domain.CacheIndex
	store ports.IndexStore

	persistMu sync.Mutex
}

// Load reads the persisted index from store.
func Load(ctx context.Context, store ports.IndexStore) (*Index, error) {
	idx, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx.Normalize()
	return &Index{idx: idx, store: store}, nil
}

// Entry returns a copy of the entry for filePath.
func (i *Index) Entry(filePath string) (*domain.CacheEntry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.idx.Get(filePath)
	return e.Clone(), ok
}

// Has reports whether filePath is indexed.
func (i *Index) Has(filePath string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.idx.Get(filePath)
	return ok
}

// Put stores a copy of e.
func (i *Index) Put(e *domain.CacheEntry) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.idx.Put(e.Clone())
}

// Update applies fn to the stored entry under the write lock and returns a copy
// of the result. It reports false when filePath is not indexed.
func (i *Index) Update(filePath string, fn func(*domain.CacheEntry)) (*domain.CacheEntry, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.idx.Get(filePath)
	if !ok {
		return nil, false
	}
	fn(e)
	return e.Clone(), true
}

// SetDependencies replaces the imports of filePath.
func (i *Index) SetDependencies(filePath string, deps []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.idx.SetDependencies(filePath, deps)
}

// RemoveEntry removes filePath and returns the removed entry for re-insertion.
func (i *Index) RemoveEntry(filePath string) (*domain.CacheEntry, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Remove(filePath)
}

// RestoreEntry re-inserts an entry returned by RemoveEntry.
func (i *Index) RestoreEntry(e *domain.CacheEntry) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.idx.Restore(e)
}

// Dependents returns the direct dependents of filePath.
func (i *Index) Dependents(filePath string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.idx.Dependents(filePath)
}

// Paths returns every indexed path, sorted.
func (i *Index) Paths() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.idx.Paths()
}

// Metadata returns the aggregate counters.
func (i *Index) Metadata() domain.IndexMetadata {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.idx.Metadata
}

// Cycles reports dependency cycles.
func (i *Index) Cycles() []error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.idx.Cycles()
}

// Snapshot returns a deep copy of the whole index.
func (i *Index) Snapshot() *domain.CacheIndex {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.idx.Clone()
}

// Persist writes the current index to the store. Concurrent calls are
// serialized so that a later state is never overwritten by an earlier one.
func (i *Index) Persist(ctx context.Context) error {
	i.persistMu.Lock()
	defer i.persistMu.Unlock()
	return i.store.Save(ctx, i.Snapshot())
}
