package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/config"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), domain.FilePerm))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := newLoader(t).Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
version: "1"
cache:
  backend: memory
  capacity: 50
  default_ttl: 30m
invalidation:
  max_retries: 5
  retry_delay: 250ms
audit:
  enabled: false
watch:
  debounce: 1s
  ignore: [vendor]
`)

	cfg, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.GCInterval)
	assert.Equal(t, 5, cfg.Invalidation.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Invalidation.RetryDelay)
	assert.Equal(t, 4, cfg.Invalidation.Concurrency)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, 10, cfg.Audit.MaxSizeMB)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{"vendor"}, cfg.Watch.Ignore)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "invalid yaml",
			content: "cache: [",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "invalid duration",
			content: "invalidation:\n  retry_delay: soon\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "unknown backend",
			content: "cache:\n  backend: redis\n",
			wantErr: domain.ErrInvalidBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := newLoader(t).Load(dir)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestDiscoverRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "version: \"1\"\n")
	nested := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	got, err := newLoader(t).DiscoverRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestDiscoverRoot_DataDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, domain.DataDirName), domain.DirPerm))
	nested := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	got, err := newLoader(t).DiscoverRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}
