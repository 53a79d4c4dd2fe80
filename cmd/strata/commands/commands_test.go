package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/cmd/strata/commands"
	"go.trai.ch/strata/internal/app"
	"go.trai.ch/strata/internal/build"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/engine/invalidation"
	"go.trai.ch/strata/internal/engine/manager"
)

type mockApp struct {
	project string

	registerFunc   func(files []string) ([]app.FileRegistration, error)
	invalidateFunc func(files []string, retries int) (invalidation.BatchResult, error)
	statusFunc     func(file string) (app.FileStatus, error)
	statsFunc      func() (manager.Summary, error)
	cleanupFunc    func() (int, error)
	watchCalled    bool
	cleanCalled    bool
}

func (m *mockApp) Register(_ context.Context, project string, files []string) ([]app.FileRegistration, error) {
	m.project = project
	if m.registerFunc != nil {
		return m.registerFunc(files)
	}
	return nil, nil
}

func (m *mockApp) Invalidate(_ context.Context, project string, files []string, retries int) (invalidation.BatchResult, error) {
	m.project = project
	if m.invalidateFunc != nil {
		return m.invalidateFunc(files, retries)
	}
	return invalidation.BatchResult{}, nil
}

func (m *mockApp) Status(_ context.Context, project, file string) (app.FileStatus, error) {
	m.project = project
	if m.statusFunc != nil {
		return m.statusFunc(file)
	}
	return app.FileStatus{}, nil
}

func (m *mockApp) Stats(_ context.Context, project string) (manager.Summary, error) {
	m.project = project
	if m.statsFunc != nil {
		return m.statsFunc()
	}
	return manager.Summary{}, nil
}

func (m *mockApp) Cleanup(_ context.Context, project string) (int, error) {
	m.project = project
	if m.cleanupFunc != nil {
		return m.cleanupFunc()
	}
	return 0, nil
}

func (m *mockApp) Watch(_ context.Context, project string) error {
	m.project = project
	m.watchCalled = true
	return nil
}

func (m *mockApp) Clean(_ context.Context, project string) error {
	m.project = project
	m.cleanCalled = true
	return nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Register(t *testing.T) {
	t.Run("passes files and project", func(t *testing.T) {
		var got []string
		mock := &mockApp{registerFunc: func(files []string) ([]app.FileRegistration, error) {
			got = files
			return []app.FileRegistration{{
				Path: "src/a.js",
				Registration: domain.Registration{
					ChangeType:  domain.ChangeCritical,
					NeedsStatic: true,
					NeedsLLM:    true,
					Cascaded:    []string{"src/b.js"},
				},
			}}, nil
		}}

		out, err := execute(t, mock, "-C", "/work", "register", "src/a.js")
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a.js"}, got)
		assert.Equal(t, "/work", mock.project)
		assert.Contains(t, out, "src/a.js\tCRITICAL\tneeds static+llm")
		assert.Contains(t, out, "stale dependents: src/b.js")
	})

	t.Run("prints JSON", func(t *testing.T) {
		mock := &mockApp{registerFunc: func(_ []string) ([]app.FileRegistration, error) {
			return []app.FileRegistration{{Path: "a.js", Registration: domain.Registration{ChangeType: domain.ChangeNone}}}, nil
		}}

		out, err := execute(t, mock, "register", "--json")
		require.NoError(t, err)

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "a.js", decoded[0]["path"])
		assert.Equal(t, "NONE", decoded[0]["changeType"])
	})

	t.Run("returns error after printing partial results", func(t *testing.T) {
		mock := &mockApp{registerFunc: func(_ []string) ([]app.FileRegistration, error) {
			return []app.FileRegistration{{Path: "ok.js"}}, errors.New("unreadable")
		}}

		out, err := execute(t, mock, "register")
		require.Error(t, err)
		assert.Contains(t, out, "ok.js")
	})
}

func TestCommands_Invalidate(t *testing.T) {
	t.Run("wires retries flag", func(t *testing.T) {
		var gotRetries int
		mock := &mockApp{invalidateFunc: func(files []string, retries int) (invalidation.BatchResult, error) {
			gotRetries = retries
			return invalidation.BatchResult{
				Total:   1,
				Success: 1,
				Results: []invalidation.Result{{Success: true, FilePath: files[0], Duration: time.Millisecond, OperationsCompleted: 4, Attempts: 1}},
			}, nil
		}}

		out, err := execute(t, mock, "invalidate", "a.js", "--retries", "5")
		require.NoError(t, err)
		assert.Equal(t, 5, gotRetries)
		assert.Contains(t, out, "a.js\tinvalidated")
		assert.Contains(t, out, "1/1 invalidated")
	})

	t.Run("fails when a file fails", func(t *testing.T) {
		mock := &mockApp{invalidateFunc: func(_ []string, _ int) (invalidation.BatchResult, error) {
			return invalidation.BatchResult{
				Total:   1,
				Failed:  1,
				Results: []invalidation.Result{{FilePath: "a.js", RolledBack: true, Error: "disk full"}},
			}, nil
		}}

		out, err := execute(t, mock, "invalidate", "a.js")
		require.ErrorIs(t, err, domain.ErrOperationFailed)
		assert.Contains(t, out, "a.js\trolled back: disk full")
	})

	t.Run("requires a file", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "invalidate")
		require.Error(t, err)
	})
}

func TestCommands_Status(t *testing.T) {
	mock := &mockApp{statusFunc: func(file string) (app.FileStatus, error) {
		return app.FileStatus{
			Status: invalidation.Status{FilePath: file, InFastTier: true, InIndex: true},
			Entry:  &domain.CacheEntry{FilePath: file, Version: 3, ChangeType: domain.ChangeStatic, StaticAnalyzed: true},
		}, nil
	}}

	out, err := execute(t, mock, "status", "a.js")
	require.NoError(t, err)
	assert.Contains(t, out, "fast tier:  yes")
	assert.Contains(t, out, "version:    3")
	assert.Contains(t, out, "llm:        no")
}

func TestCommands_Stats(t *testing.T) {
	mock := &mockApp{statsFunc: func() (manager.Summary, error) {
		return manager.Summary{
			Root:    "/work",
			Fast:    domain.StoreStats{Backend: domain.BackendBadger, Keys: 4},
			Entries: 2,
			Cycles:  []string{"a.js -> b.js -> a.js"},
		}, nil
	}}

	out, err := execute(t, mock, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "backend:      badger")
	assert.Contains(t, out, "a.js -> b.js -> a.js")
}

func TestCommands_Cleanup(t *testing.T) {
	mock := &mockApp{cleanupFunc: func() (int, error) { return 3, nil }}

	out, err := execute(t, mock, "cleanup", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":3}`, out)
}

func TestCommands_WatchAndClean(t *testing.T) {
	mock := &mockApp{}

	_, err := execute(t, mock, "watch", "--project", "/p")
	require.NoError(t, err)
	assert.True(t, mock.watchCalled)
	assert.Equal(t, "/p", mock.project)

	_, err = execute(t, mock, "clean")
	require.NoError(t, err)
	assert.True(t, mock.cleanCalled)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
