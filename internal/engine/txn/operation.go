// Package txn implements all-or-nothing execution of ordered operations with
// snapshot-based rollback.
package txn

import (
	"context"
	"sync"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// Step is the work behind an Operation. Execute returns the pre-state that
// Rollback needs to undo the change.
type Step[S any] interface {
	Execute(ctx context.Context) (S, error)
	Rollback(ctx context.Context, state S) error
}

// StepFuncs adapts a pair of functions to Step.
type StepFuncs[S any] struct {
	ExecuteFunc  func(ctx context.Context) (S, error)
	RollbackFunc func(ctx context.Context, state S) error
}

// Execute calls ExecuteFunc.
func (f StepFuncs[S]) Execute(ctx context.Context) (S, error) {
	return f.ExecuteFunc(ctx)
}

// Rollback calls RollbackFunc, or does nothing when it is nil.
func (f StepFuncs[S]) Rollback(ctx context.Context, state S) error {
	if f.RollbackFunc == nil {
		return nil
	}
	return f.RollbackFunc(ctx, state)
}

// Outcome is the tagged result of running an operation.
type Outcome struct {
	Success bool
	Result  any
	Err     error
}

// Runner is the type-erased view of an Operation used by Transaction.
type Runner interface {
	Name() string
	Run(ctx context.Context) Outcome
	Undo(ctx context.Context) error
	Status() domain.OperationStatus
}

// Operation is a named unit of work carrying its typed pre-state.
type Operation[S any] struct {
	name string
	step Step[S]

	mu     sync.Mutex
	status domain.OperationStatus
	state  S
	err    error
}

var _ Runner = (*Operation[struct{}])(nil)

// NewOperation creates a pending operation.
func NewOperation[S any](name string, step Step[S]) *Operation[S] {
	return &Operation[S]{name: name, step: step, status: domain.StatusPending}
}

// Name returns the operation name.
func (o *Operation[S]) Name() string {
	return o.name
}

// Status returns the current state.
func (o *Operation[S]) Status() domain.OperationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// State returns the pre-state captured by the last run.
func (o *Operation[S]) State() S {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the error of a failed run.
func (o *Operation[S]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Run executes the step once. It never returns an error directly; failures are
// reported in the Outcome and leave the operation FAILED.
func (o *Operation[S]) Run(ctx context.Context) Outcome {
	o.mu.Lock()
	o.status = domain.StatusInProgress
	o.mu.Unlock()

	state, err := o.step.Execute(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = state
	if err != nil {
		o.err = zerr.With(err, "operation", o.name)
		o.status = domain.StatusFailed
		return Outcome{Success: false, Result: state, Err: o.err}
	}
	o.status = domain.StatusSuccess
	return Outcome{Success: true, Result: state}
}

// Undo rolls the operation back using the captured pre-state. It does nothing
// unless the operation is SUCCESS or FAILED. A rollback error leaves the
// operation FAILED and is returned for the caller to report.
func (o *Operation[S]) Undo(ctx context.Context) error {
	o.mu.Lock()
	if o.status != domain.StatusSuccess && o.status != domain.StatusFailed {
		o.mu.Unlock()
		return nil
	}
	o.status = domain.StatusRollingBack
	state := o.state
	o.mu.Unlock()

	err := o.step.Rollback(ctx, state)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.status = domain.StatusFailed
		return zerr.With(zerr.Wrap(err, "rollback failed"), "operation", o.name)
	}
	o.status = domain.StatusRolledBack
	return nil
}
