package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/watcher"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func nextBatch(t *testing.T, w *watcher.Watcher) []ports.FileChange {
	t.Helper()
	got := make(chan []ports.FileChange, 1)
	go func() {
		for batch := range w.Changes() {
			got <- batch
			return
		}
	}()
	select {
	case b := <-got:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestWatcher_ReportsChangesAndRemovals(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	file := filepath.Join(root, "a.js")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o750))

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx, root, []string{"node_modules"}, 20*time.Millisecond))

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "x.js"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(file, []byte("b"), 0o600))

	batch := nextBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, file, batch[0].Path)
	assert.False(t, batch[0].Removed)

	require.NoError(t, os.Remove(file))

	batch = nextBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, file, batch[0].Path)
	assert.True(t, batch[0].Removed)
}

func TestWatcher_ChangesEndAfterCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, w.Start(ctx, t.TempDir(), nil, 10*time.Millisecond))
	cancel()

	done := make(chan struct{})
	go func() {
		for range w.Changes() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("changes iterator did not end")
	}
	require.NoError(t, w.Stop())
}
