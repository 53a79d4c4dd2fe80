package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/txn"
	"go.uber.org/mock/gomock"
)

// recorder builds steps that append to a shared log.
type recorder struct {
	log []string
}

func (r *recorder) step(name string, fail error) txn.Step[string] {
	return txn.StepFuncs[string]{
		ExecuteFunc: func(context.Context) (string, error) {
			r.log = append(r.log, "exec:"+name)
			return "pre-" + name, fail
		},
		RollbackFunc: func(_ context.Context, state string) error {
			r.log = append(r.log, "undo:"+name+":"+state)
			return nil
		},
	}
}

func TestOperation_RunSuccess(t *testing.T) {
	t.Parallel()
	r := &recorder{}
	op := txn.NewOperation("a", r.step("a", nil))
	assert.Equal(t, domain.StatusPending, op.Status())

	out := op.Run(t.Context())
	assert.True(t, out.Success)
	assert.Equal(t, "pre-a", out.Result)
	require.NoError(t, out.Err)
	assert.Equal(t, domain.StatusSuccess, op.Status())
	assert.Equal(t, "pre-a", op.State())
}

func TestOperation_RunFailureDoesNotPanicOrReturn(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	op := txn.NewOperation("a", (&recorder{}).step("a", boom))

	out := op.Run(t.Context())
	assert.False(t, out.Success)
	require.ErrorIs(t, out.Err, boom)
	assert.Equal(t, domain.StatusFailed, op.Status())
}

func TestOperation_UndoOnlyAfterRun(t *testing.T) {
	t.Parallel()
	r := &recorder{}
	op := txn.NewOperation("a", r.step("a", nil))

	require.NoError(t, op.Undo(t.Context()))
	assert.Empty(t, r.log)
	assert.Equal(t, domain.StatusPending, op.Status())

	op.Run(t.Context())
	require.NoError(t, op.Undo(t.Context()))
	assert.Equal(t, []string{"exec:a", "undo:a:pre-a"}, r.log)
	assert.Equal(t, domain.StatusRolledBack, op.Status())

	// Already rolled back.
	require.NoError(t, op.Undo(t.Context()))
	assert.Len(t, r.log, 2)
}

func TestOperation_UndoFailure(t *testing.T) {
	t.Parallel()
	op := txn.NewOperation("a", txn.StepFuncs[int]{
		ExecuteFunc:  func(context.Context) (int, error) { return 1, nil },
		RollbackFunc: func(context.Context, int) error { return errors.New("disk gone") },
	})
	op.Run(t.Context())

	err := op.Undo(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Equal(t, domain.StatusFailed, op.Status())
}

func TestTransaction_Success(t *testing.T) {
	t.Parallel()
	r := &recorder{}
	tx := txn.New("a.js", nil,
		txn.NewOperation("one", r.step("one", nil)),
		txn.NewOperation("two", r.step("two", nil)),
	)

	require.NoError(t, tx.Execute(t.Context()))
	assert.Equal(t, domain.StatusSuccess, tx.Status())
	assert.Equal(t, 2, tx.Completed())
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, []string{"exec:one", "exec:two"}, r.log)

	snap, ok := tx.Snapshot("two")
	require.True(t, ok)
	assert.Equal(t, "pre-two", snap)
}

func TestTransaction_RollsBackCompletedInReverse(t *testing.T) {
	t.Parallel()
	r := &recorder{}
	boom := errors.New("boom")
	tx := txn.New("a.js", nil,
		txn.NewOperation("one", r.step("one", nil)),
		txn.NewOperation("two", r.step("two", nil)),
		txn.NewOperation("three", r.step("three", boom)),
		txn.NewOperation("four", r.step("four", nil)),
	)

	err := tx.Execute(t.Context())
	require.ErrorIs(t, err, domain.ErrOperationFailed)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{
		"exec:one", "exec:two", "exec:three",
		"undo:two:pre-two", "undo:one:pre-one",
	}, r.log)
	assert.Equal(t, domain.StatusRolledBack, tx.Status())
	assert.True(t, tx.RolledBack())
	assert.Equal(t, "three", tx.FailedOperation())
	assert.Equal(t, 2, tx.Completed())
	assert.Equal(t, []domain.OperationStatus{
		domain.StatusPending,
		domain.StatusInProgress,
		domain.StatusFailed,
		domain.StatusRollingBack,
		domain.StatusRolledBack,
	}, tx.History())

	for _, op := range tx.Operations()[:2] {
		assert.Equal(t, domain.StatusRolledBack, op.Status())
	}
	assert.Equal(t, domain.StatusPending, tx.Operations()[3].Status())
}

func TestTransaction_RollbackErrorsAreLoggedAndDoNotStopRollback(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).Times(1)

	var undone []string
	first := txn.NewOperation("one", txn.StepFuncs[int]{
		ExecuteFunc: func(context.Context) (int, error) { return 0, nil },
		RollbackFunc: func(context.Context, int) error {
			undone = append(undone, "one")
			return nil
		},
	})
	second := txn.NewOperation("two", txn.StepFuncs[int]{
		ExecuteFunc:  func(context.Context) (int, error) { return 0, nil },
		RollbackFunc: func(context.Context, int) error { return errors.New("cannot restore") },
	})
	third := txn.NewOperation("three", txn.StepFuncs[int]{
		ExecuteFunc: func(context.Context) (int, error) { return 0, errors.New("boom") },
	})

	tx := txn.New("a.js", log, first, second, third)
	require.Error(t, tx.Execute(t.Context()))

	assert.Equal(t, []string{"one"}, undone)
	assert.Len(t, tx.RollbackErrors(), 1)
	assert.Equal(t, domain.StatusRolledBack, tx.Status())
}

func TestTransaction_RollbackSurvivesCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())

	var rollbackCtxErr error
	first := txn.NewOperation("one", txn.StepFuncs[int]{
		ExecuteFunc: func(context.Context) (int, error) { return 0, nil },
		RollbackFunc: func(ctx context.Context, _ int) error {
			rollbackCtxErr = ctx.Err()
			return nil
		},
	})
	second := txn.NewOperation("two", txn.StepFuncs[int]{
		ExecuteFunc: func(context.Context) (int, error) {
			cancel()
			return 0, context.Canceled
		},
	})

	err := txn.New("a.js", nil, first, second).Execute(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, rollbackCtxErr)
}
