package invalidation_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/artifacts"
	"go.trai.ch/strata/internal/adapters/audit"
	"go.trai.ch/strata/internal/adapters/memstore"
	"go.trai.ch/strata/internal/adapters/telemetry"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/index"
	"go.trai.ch/strata/internal/engine/invalidation"
	"go.uber.org/mock/gomock"
)

type env struct {
	fast      *memstore.FastStore
	artifacts ports.ArtifactStore
	index     *index.Index
	logger    *mocks.MockLogger
	deps      invalidation.Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	fsys := afero.NewMemMapFs()
	fast, err := memstore.NewFastStore(100)
	require.NoError(t, err)

	idx, err := index.Load(t.Context(), memstore.NewIndexFile(fsys, domain.IndexFilePath("/proj")))
	require.NoError(t, err)

	arts := artifacts.NewStore(fsys, domain.ArtifactsPath("/proj"))

	e := &env{fast: fast, artifacts: arts, index: idx, logger: log}
	e.deps = invalidation.Deps{
		Fast:      fast,
		Artifacts: arts,
		Index:     idx,
		Audit:     audit.Nop{},
		Logger:    log,
		Tracer:    telemetry.NewNoOpTracer(),
		Metrics:   telemetry.NoOpMetrics{},
	}
	return e
}

func (e *env) orchestrator() *invalidation.Orchestrator {
	return invalidation.NewOrchestrator(e.deps, invalidation.Options{
		MaxRetries:  3,
		RetryDelay:  time.Millisecond,
		Concurrency: 4,
	})
}

// seed registers path with cached analysis, atoms and a static artifact.
func (e *env) seed(t *testing.T, path string) *domain.CacheEntry {
	t.Helper()
	ctx := t.Context()
	entry := &domain.CacheEntry{FilePath: path, ContentHash: "h", CombinedHash: "h", Version: 1, StaticAnalyzed: true}
	e.index.Put(entry)
	require.NoError(t, e.fast.Set(ctx, domain.AnalysisKey(path), []byte("analysis"), 0))
	require.NoError(t, e.fast.Set(ctx, domain.AtomKey(path, "f1"), []byte("atom1"), 0))
	require.NoError(t, e.fast.Set(ctx, domain.AtomKey(path, "f2"), []byte("atom2"), 0))
	require.NoError(t, e.artifacts.Save(ctx, domain.Artifact{Kind: domain.ArtifactStatic, FilePath: path, Version: 1, Payload: []byte("{}")}))
	return entry
}

func (e *env) get(t *testing.T, key string) ([]byte, bool) {
	t.Helper()
	v, ok, err := e.fast.Get(t.Context(), key)
	require.NoError(t, err)
	return v, ok
}
