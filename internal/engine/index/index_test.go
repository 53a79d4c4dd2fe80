package index_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/index"
	"go.uber.org/mock/gomock"
)

func TestIndex_LoadPersist(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIndexStore(ctrl)

	persisted := domain.NewCacheIndex()
	persisted.Put(&domain.CacheEntry{FilePath: "a.js", Version: 3})
	store.EXPECT().Load(gomock.Any()).Return(persisted, nil)

	idx, err := index.Load(t.Context(), store)
	require.NoError(t, err)

	e, ok := idx.Entry("a.js")
	require.True(t, ok)
	assert.Equal(t, 3, e.Version)

	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, saved *domain.CacheIndex) error {
			assert.Len(t, saved.Entries, 2)
			return nil
		})
	idx.Put(&domain.CacheEntry{FilePath: "b.js", Version: 1})
	require.NoError(t, idx.Persist(t.Context()))
}

func TestIndex_LoadError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIndexStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(nil, errors.Join(domain.ErrIndexCorrupt, errors.New("bad json")))

	_, err := index.Load(t.Context(), store)
	require.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestIndex_EntriesAreCopies(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIndexStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(domain.NewCacheIndex(), nil)

	idx, err := index.Load(t.Context(), store)
	require.NoError(t, err)

	e := &domain.CacheEntry{FilePath: "a.js", Version: 1}
	idx.Put(e)
	e.Version = 99

	got, _ := idx.Entry("a.js")
	assert.Equal(t, 1, got.Version)
	got.Version = 42

	updated, ok := idx.Update("a.js", func(e *domain.CacheEntry) { e.Version++ })
	require.True(t, ok)
	assert.Equal(t, 2, updated.Version)

	_, ok = idx.Update("missing.js", func(*domain.CacheEntry) {})
	assert.False(t, ok)
}

func TestIndex_RemoveRestore(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIndexStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(domain.NewCacheIndex(), nil)

	idx, err := index.Load(t.Context(), store)
	require.NoError(t, err)

	idx.Put(&domain.CacheEntry{FilePath: "a.js"})
	idx.Put(&domain.CacheEntry{FilePath: "b.js"})
	idx.SetDependencies("b.js", []string{"a.js"})
	assert.Equal(t, []string{"b.js"}, idx.Dependents("a.js"))

	removed, ok := idx.RemoveEntry("b.js")
	require.True(t, ok)
	assert.False(t, idx.Has("b.js"))
	assert.Empty(t, idx.Dependents("a.js"))
	assert.Equal(t, 1, idx.Metadata().TotalFiles)

	idx.RestoreEntry(removed)
	assert.True(t, idx.Has("b.js"))
	assert.Equal(t, []string{"b.js"}, idx.Dependents("a.js"))
	assert.Equal(t, []string{"a.js", "b.js"}, idx.Paths())
}
