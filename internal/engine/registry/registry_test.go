package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/audit"
	"go.trai.ch/strata/internal/adapters/storage"
	"go.trai.ch/strata/internal/adapters/telemetry"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/manager"
	"go.trai.ch/strata/internal/engine/registry"
	"go.uber.org/mock/gomock"
)

var memoryOnly = registry.Options{Backend: domain.BackendMemory, DisableAudit: true}

func newRegistry(t *testing.T) (*registry.Registry, *mocks.MockConfigLoader) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	loader := mocks.NewMockConfigLoader(ctrl)
	r := registry.New(loader, manager.Deps{
		Storage: storage.NewProvider(log, afero.NewMemMapFs()),
		Audit:   audit.NewProvider(log),
		Logger:  log,
		Tracer:  telemetry.NewNoOpTracer(),
		Metrics: telemetry.NoOpMetrics{},
	})
	t.Cleanup(func() { _ = r.Close() })
	return r, loader
}

func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := registry.Canonicalize(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestRegistry_ConcurrentGetSharesOneInstance(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	dir := canonicalTempDir(t)
	loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil).Times(1)

	const callers = 16
	got := make([]*manager.Manager, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		path := dir
		if i%2 == 1 {
			path = dir + string(filepath.Separator) + "."
		}
		wg.Go(func() {
			got[i], errs[i] = r.Get(t.Context(), path, memoryOnly)
		})
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, got[0], got[i])
	}
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, []string{dir}, r.Keys())
}

func TestRegistry_DistinctPaths(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	first := canonicalTempDir(t)
	second := canonicalTempDir(t)
	loader.EXPECT().Load(gomock.Any()).Return(domain.DefaultConfig(), nil).Times(2)

	a, err := r.Get(t.Context(), first, memoryOnly)
	require.NoError(t, err)
	b, err := r.Get(t.Context(), second, memoryOnly)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, first, a.Root())
	assert.Equal(t, second, b.Root())
	assert.Equal(t, 2, r.Count())

	want := []string{first, second}
	if second < first {
		want = []string{second, first}
	}
	assert.Equal(t, want, r.Keys())
}

func TestRegistry_SymlinkResolvesToSameInstance(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	dir := canonicalTempDir(t)
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))
	loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil).Times(1)

	a, err := r.Get(t.Context(), dir, memoryOnly)
	require.NoError(t, err)
	b, err := r.Get(t.Context(), link, memoryOnly)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistry_InvalidateCacheInstance(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	dir := canonicalTempDir(t)
	loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil).Times(2)

	first, err := r.Get(t.Context(), dir, memoryOnly)
	require.NoError(t, err)

	removed, err := r.InvalidateCacheInstance(dir)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, r.Count())

	removed, err = r.InvalidateCacheInstance(dir)
	require.NoError(t, err)
	assert.False(t, removed)

	second, err := r.Get(t.Context(), dir, memoryOnly)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistry_FailedInitIsNotKept(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	dir := canonicalTempDir(t)
	gomock.InOrder(
		loader.EXPECT().Load(dir).Return(domain.Config{}, errors.New("bad yaml")),
		loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil),
	)

	_, err := r.Get(t.Context(), dir, memoryOnly)
	require.ErrorIs(t, err, domain.ErrManagerInit)
	assert.Zero(t, r.Count())

	m, err := r.Get(t.Context(), dir, memoryOnly)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestRegistry_OptionsOverrideConfig(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	dir := canonicalTempDir(t)
	loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil)

	m, err := r.Get(t.Context(), dir, registry.Options{Backend: domain.BackendMemory, Capacity: 7, MaxRetries: 9, DisableAudit: true})
	require.NoError(t, err)

	cfg := m.Config()
	assert.Equal(t, domain.BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 7, cfg.Cache.Capacity)
	assert.Equal(t, 9, cfg.Invalidation.MaxRetries)
	assert.False(t, cfg.Audit.Enabled)
}

func TestRegistry_Close(t *testing.T) {
	t.Parallel()
	r, loader := newRegistry(t)
	dir := canonicalTempDir(t)
	loader.EXPECT().Load(dir).Return(domain.DefaultConfig(), nil)

	_, err := r.Get(t.Context(), dir, memoryOnly)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Zero(t, r.Count())

	_, err = r.Get(t.Context(), dir, memoryOnly)
	require.ErrorIs(t, err, domain.ErrRegistryClosed)
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()
	dir := canonicalTempDir(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already canonical", in: dir, want: dir},
		{name: "trailing dot", in: filepath.Join(dir, "."), want: dir},
		{name: "parent segment", in: dir + "/sub/..", want: dir},
		{name: "missing path", in: filepath.Join(dir, "nope"), want: filepath.Join(dir, "nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := registry.Canonicalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
