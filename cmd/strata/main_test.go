package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/strata/internal/adapters/fs"
	"go.trai.ch/strata/internal/app"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/manager"
	"go.trai.ch/strata/internal/engine/registry"
	"go.uber.org/mock/gomock"
)

func provider(t *testing.T, log *mocks.MockLogger, loader *mocks.MockConfigLoader) ComponentProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	application := app.New(
		registry.New(loader, manager.Deps{}),
		loader,
		fs.NewWalker(afero.NewMemMapFs()),
		mocks.NewMockWatcher(ctrl),
		log,
	)
	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: log}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, stderr, provider(t, log, loader))

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "strata version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	failing := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, failing)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)

	loader.EXPECT().DiscoverRoot(".").Return("", errors.New("no project"))
	log.EXPECT().Error(gomock.Any()).Times(1)

	exitCode := run(context.Background(), []string{"stats"}, new(bytes.Buffer), new(bytes.Buffer), provider(t, log, loader))
	assert.Equal(t, 1, exitCode)
}

// TestRun_UnknownCommand verifies that an unknown command fails.
func TestRun_UnknownCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)
	log.EXPECT().Error(gomock.Any()).Times(1)

	exitCode := run(context.Background(), []string{"frobnicate"}, new(bytes.Buffer), new(bytes.Buffer), provider(t, log, loader))
	assert.Equal(t, 1, exitCode)
}
