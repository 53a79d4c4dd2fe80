package artifacts_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/artifacts"
	"go.trai.ch/strata/internal/core/domain"
)

const root = "/proj/.strata/artifacts"

func newStore(t *testing.T) (*artifacts.Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return artifacts.NewStore(fsys, root), fsys
}

func TestStore_SaveLoad(t *testing.T) {
	t.Parallel()
	s, fsys := newStore(t)
	ctx := t.Context()

	a := domain.Artifact{Kind: domain.ArtifactStatic, FilePath: "src/a.js", Version: 1, Payload: []byte(`{"n":1}`)}
	require.NoError(t, s.Save(ctx, a))

	dir := filepath.Join(root, "static", domain.FingerprintString("src/a.js"))
	exists, err := afero.Exists(fsys, filepath.Join(dir, "v1.json"))
	require.NoError(t, err)
	assert.True(t, exists)

	got, ok, err := s.Load(ctx, domain.ArtifactStatic, "src/a.js", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "src/a.js", got.FilePath)
	assert.JSONEq(t, `{"n":1}`, string(got.Payload))
	assert.False(t, got.SavedAt.IsZero())

	_, ok, err = s.Load(ctx, domain.ArtifactLLM, "src/a.js", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveKeepsNewestVersion(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := t.Context()

	for v := 1; v <= 3; v++ {
		require.NoError(t, s.Save(ctx, domain.Artifact{Kind: domain.ArtifactLLM, FilePath: "a.js", Version: v}))
	}

	_, ok, err := s.Load(ctx, domain.ArtifactLLM, "a.js", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	latest, ok, err := s.Load(ctx, domain.ArtifactLLM, "a.js", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, latest.Version)
}

func TestStore_DeleteRestore(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := t.Context()

	require.NoError(t, s.Save(ctx, domain.Artifact{Kind: domain.ArtifactStatic, FilePath: "a.js", Version: 2}))
	require.NoError(t, s.Save(ctx, domain.Artifact{Kind: domain.ArtifactSource, FilePath: "a.js", Version: 2, Payload: []byte("code")}))
	require.NoError(t, s.Save(ctx, domain.Artifact{Kind: domain.ArtifactStatic, FilePath: "b.js", Version: 1}))

	removed, err := s.Delete(ctx, "a.js")
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	exists, err := s.Exists(ctx, "a.js")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.Exists(ctx, "b.js")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Restore(ctx, removed))
	got, ok, err := s.Load(ctx, domain.ArtifactSource, "a.js", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("code"), got.Payload)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)

	removed, err := s.Delete(t.Context(), "never.js")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestStore_InvalidKind(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)

	err := s.Save(t.Context(), domain.Artifact{Kind: "bogus", FilePath: "a.js", Version: 1})
	require.ErrorIs(t, err, domain.ErrInvalidArtifactKind)

	_, _, err = s.Load(t.Context(), "bogus", "a.js", 1)
	require.ErrorIs(t, err, domain.ErrInvalidArtifactKind)
}
