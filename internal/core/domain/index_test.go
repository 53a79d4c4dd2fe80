package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

func entry(path string) *domain.CacheEntry {
	return &domain.CacheEntry{FilePath: path, Version: 1}
}

func TestCacheIndex_SetDependencies(t *testing.T) {
	t.Parallel()

	idx := domain.NewCacheIndex()
	idx.Put(entry("a.js"))
	idx.Put(entry("b.js"))
	idx.Put(entry("c.js"))

	idx.SetDependencies("b.js", []string{"a.js", "c.js", "a.js", "b.js"})

	b, _ := idx.Get("b.js")
	a, _ := idx.Get("a.js")
	c, _ := idx.Get("c.js")
	assert.Equal(t, []string{"a.js", "c.js"}, b.DependsOn)
	assert.Equal(t, []string{"b.js"}, a.UsedBy)
	assert.Equal(t, []string{"b.js"}, c.UsedBy)
	assert.Equal(t, 3, idx.Metadata.TotalFiles)
	assert.Equal(t, 2, idx.Metadata.TotalDependencies)

	idx.SetDependencies("b.js", []string{"a.js"})

	c, _ = idx.Get("c.js")
	assert.Empty(t, c.UsedBy)
	assert.Equal(t, []string{"b.js"}, idx.Dependents("a.js"))
	assert.Nil(t, idx.Dependents("c.js"))
	assert.Equal(t, 1, idx.Metadata.TotalDependencies)
}

func TestCacheIndex_PutMergesKnownDependents(t *testing.T) {
	t.Parallel()

	idx := domain.NewCacheIndex()
	idx.Put(entry("b.js"))
	idx.SetDependencies("b.js", []string{"a.js"})

	idx.Put(entry("a.js"))

	a, ok := idx.Get("a.js")
	require.True(t, ok)
	assert.Equal(t, []string{"b.js"}, a.UsedBy)
}

func TestCacheIndex_RemoveRestore(t *testing.T) {
	t.Parallel()

	idx := domain.NewCacheIndex()
	idx.Put(entry("a.js"))
	idx.Put(entry("b.js"))
	idx.SetDependencies("b.js", []string{"a.js"})
	before := idx.Clone()

	removed, ok := idx.Remove("b.js")
	require.True(t, ok)
	assert.Equal(t, "b.js", removed.FilePath)
	assert.Nil(t, idx.Dependents("a.js"))
	assert.Equal(t, 1, idx.Metadata.TotalFiles)

	_, ok = idx.Remove("missing.js")
	assert.False(t, ok)

	idx.Restore(removed)
	assert.Equal(t, before.Entries, idx.Entries)
	assert.Equal(t, before.DependencyGraph, idx.DependencyGraph)
	assert.Equal(t, before.Metadata, idx.Metadata)
}

func TestCacheIndex_Cycles(t *testing.T) {
	t.Parallel()

	idx := domain.NewCacheIndex()
	idx.Put(entry("a.js"))
	idx.Put(entry("b.js"))
	idx.Put(entry("c.js"))
	idx.SetDependencies("a.js", []string{"b.js"})
	idx.SetDependencies("b.js", []string{"a.js"})
	idx.SetDependencies("c.js", []string{"a.js"})

	cycles := idx.Cycles()
	require.Len(t, cycles, 1)
	assert.ErrorContains(t, cycles[0], domain.ErrCycleDetected.Error())

	var zErr *zerr.Error
	require.ErrorAs(t, cycles[0], &zErr)
	assert.Equal(t, "a.js -> b.js -> a.js", zErr.Metadata()["cycle"])
}

func TestCacheIndex_CloneIsDeep(t *testing.T) {
	t.Parallel()

	idx := domain.NewCacheIndex()
	idx.Put(entry("a.js"))
	idx.Put(entry("b.js"))
	idx.SetDependencies("b.js", []string{"a.js"})

	clone := idx.Clone()
	e, _ := clone.Get("a.js")
	e.UsedBy = append(e.UsedBy, "x.js")
	e.Version = 9

	orig, _ := idx.Get("a.js")
	assert.Equal(t, []string{"b.js"}, orig.UsedBy)
	assert.Equal(t, 1, orig.Version)
}
