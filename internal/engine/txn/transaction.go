package txn

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

// Transaction runs an ordered list of operations for one file. Operations run
// strictly in order; on the first failure the operations that completed before
// it are undone in reverse order.
type Transaction struct {
	ID       string
	FilePath string

	ops    []Runner
	logger ports.Logger

	mu           sync.Mutex
	status       domain.OperationStatus
	history      []domain.OperationStatus
	snapshots    map[string]any
	completed    int
	failed       string
	rollbackErrs []error
}

// New creates a pending transaction for filePath.
func New(filePath string, logger ports.Logger, ops ...Runner) *Transaction {
	return &Transaction{
		ID:        uuid.NewString(),
		FilePath:  filePath,
		ops:       ops,
		logger:    logger,
		status:    domain.StatusPending,
		history:   []domain.OperationStatus{domain.StatusPending},
		snapshots: make(map[string]any),
	}
}

// Add appends operations. It must be called before Execute.
func (t *Transaction) Add(ops ...Runner) {
	t.ops = append(t.ops, ops...)
}

// Operations returns the operations in execution order.
func (t *Transaction) Operations() []Runner {
	return slices.Clone(t.ops)
}

func (t *Transaction) setStatus(s domain.OperationStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
	t.history = append(t.history, s)
}

// Execute runs every operation. On failure it rolls back and returns the
// triggering error joined with domain.ErrOperationFailed.
// Rollback is not interrupted by cancellation of ctx.
func (t *Transaction) Execute(ctx context.Context) error {
	t.setStatus(domain.StatusInProgress)

	for i, op := range t.ops {
		out := op.Run(ctx)
		if !out.Success {
			t.mu.Lock()
			t.failed = op.Name()
			t.mu.Unlock()
			t.setStatus(domain.StatusFailed)

			t.rollback(context.WithoutCancel(ctx), t.ops[:i])

			return errors.Join(domain.ErrOperationFailed, zerr.With(out.Err, "file_path", t.FilePath))
		}

		t.mu.Lock()
		t.snapshots[op.Name()] = out.Result
		t.completed++
		t.mu.Unlock()
	}

	t.setStatus(domain.StatusSuccess)
	return nil
}

// rollback undoes completed in reverse order. Rollback errors are logged and
// collected without stopping the remaining rollbacks.
func (t *Transaction) rollback(ctx context.Context, completed []Runner) {
	t.setStatus(domain.StatusRollingBack)

	for _, op := range slices.Backward(completed) {
		if err := op.Undo(ctx); err != nil {
			err = zerr.With(zerr.With(err, "file_path", t.FilePath), "transaction", t.ID)
			if t.logger != nil {
				t.logger.Error(err)
			}
			t.mu.Lock()
			t.rollbackErrs = append(t.rollbackErrs, err)
			t.mu.Unlock()
		}
	}

	t.setStatus(domain.StatusRolledBack)
}

// Status returns the current state.
func (t *Transaction) Status() domain.OperationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// History returns every state the transaction passed through.
func (t *Transaction) History() []domain.OperationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

// Snapshot returns the pre-state recorded by the named operation.
func (t *Transaction) Snapshot(name string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.snapshots[name]
	return v, ok
}

// Completed returns the number of operations that succeeded.
func (t *Transaction) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// FailedOperation names the operation that failed, if any.
func (t *Transaction) FailedOperation() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// RolledBack reports whether a rollback ran to completion.
func (t *Transaction) RolledBack() bool {
	return t.Status() == domain.StatusRolledBack
}

// RollbackErrors returns the rollback failures that were logged.
func (t *Transaction) RollbackErrors() []error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rollbackErrs)
}
