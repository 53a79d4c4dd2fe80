package invalidation

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/index"
	"go.trai.ch/strata/internal/engine/txn"
	"go.trai.ch/zerr"
)

// Metric outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailed     = "failed"
	OutcomeRolledBack = "rolled_back"
)

// Result is the structured outcome of invalidating one file.
type Result struct {
	Success             bool          `json:"success"`
	FilePath            string        `json:"filePath"`
	Duration            time.Duration `json:"duration"`
	OperationsCompleted int           `json:"operationsCompleted"`
	Attempts            int           `json:"attempts,omitempty"`
	RolledBack          bool          `json:"rolledBack,omitempty"`
	Error               string        `json:"error,omitempty"`
	TxID                string        `json:"txId,omitempty"`

	Err error `json:"-"`
}

// BatchResult aggregates InvalidateMultiple.
type BatchResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

// Status reports where a file is cached.
type Status struct {
	FilePath   string `json:"filePath"`
	InFastTier bool   `json:"inFastTier"`
	InIndex    bool   `json:"inIndex"`
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Fast      ports.FastStore
	Artifacts ports.ArtifactStore
	Index     *index.Index
	Audit     ports.AuditLogger
	Logger    ports.Logger
	Tracer    ports.Tracer
	Metrics   ports.Metrics
}

// Options tune retries and fan-out.
type Options struct {
	MaxRetries  int
	RetryDelay  time.Duration
	Concurrency int
}

// Orchestrator invalidates files atomically and reports lifecycle events.
// Invalidations of different files may interleave. Concurrent invalidations of
// the same file are not serialized; the later one finds nothing to remove and
// succeeds.
type Orchestrator struct {
	deps    Deps
	opts    Options
	factory *OperationFactory
	bus     *Bus
	retrier *Retrier
	now     func() time.Time
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	defaults := domain.DefaultConfig().Invalidation
	if opts.MaxRetries < 1 {
		opts.MaxRetries = defaults.MaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = defaults.Concurrency
	}

	bus := NewBus()
	return &Orchestrator{
		deps:    deps,
		opts:    opts,
		factory: NewOperationFactory(deps.Fast, deps.Artifacts, deps.Index),
		bus:     bus,
		retrier: NewRetrier(opts.RetryDelay, bus),
		now:     time.Now,
	}
}

// Subscribe registers an observer of invalidation events.
func (o *Orchestrator) Subscribe(fn Observer) (unsubscribe func()) {
	return o.bus.Subscribe(fn)
}

// Retrier returns the retrier sharing this orchestrator's event bus.
func (o *Orchestrator) Retrier() *Retrier {
	return o.retrier
}

// CreateTransaction builds, in order: analysis key invalidation, atom key
// invalidation, artifact deletion and index entry removal.
func (o *Orchestrator) CreateTransaction(filePath string) *txn.Transaction {
	return txn.New(filePath, o.deps.Logger,
		o.factory.FastInvalidation(OpInvalidateAnalysis, domain.AnalysisKey(filePath)),
		o.factory.FastInvalidation(OpInvalidateAtoms, domain.AtomPattern(filePath)),
		o.factory.ArtifactDeletion(filePath),
		o.factory.IndexRemoval(filePath),
	)
}

// Execute runs tx and persists the index. It never returns an error; failures
// are reported in the Result.
func (o *Orchestrator) Execute(ctx context.Context, tx *txn.Transaction, filePath string) Result {
	ctx, span := o.deps.Tracer.Start(ctx, "invalidate",
		ports.WithAttribute("file_path", filePath),
		ports.WithAttribute("transaction", tx.ID))
	defer span.End()

	start := o.now()
	o.bus.Emit(domain.InvalidationEvent{
		Name:      domain.EventInvalidationStarted,
		FilePath:  filePath,
		Timestamp: start,
	})

	err := tx.Execute(ctx)
	if err == nil {
		if perr := o.deps.Index.Persist(ctx); perr != nil {
			err = zerr.With(zerr.With(perr, "file_path", filePath), "operation", "persist-index")
		}
	}

	res := Result{
		Success:             err == nil,
		FilePath:            filePath,
		Duration:            o.now().Sub(start),
		OperationsCompleted: tx.Completed(),
		RolledBack:          tx.RolledBack(),
		TxID:                tx.ID,
		Err:                 err,
	}
	span.SetAttribute("operations_completed", res.OperationsCompleted)

	if err != nil {
		res.Error = err.Error()
		span.RecordError(err)
		o.deps.Logger.Error(err)
		o.finish(ctx, res)
		o.bus.Emit(domain.InvalidationEvent{
			Name:       domain.EventInvalidationFailed,
			FilePath:   filePath,
			Timestamp:  o.now(),
			Error:      res.Error,
			RolledBack: res.RolledBack,
		})
		return res
	}

	o.finish(ctx, res)
	o.bus.Emit(domain.InvalidationEvent{
		Name:      domain.EventInvalidationSuccess,
		FilePath:  filePath,
		Timestamp: o.now(),
		Duration:  res.Duration,
	})
	return res
}

// finish writes the audit records and metrics of a finished invalidation.
func (o *Orchestrator) finish(ctx context.Context, res Result) {
	outcome := OutcomeSuccess
	switch {
	case res.RolledBack:
		outcome = OutcomeRolledBack
	case !res.Success:
		outcome = OutcomeFailed
	}
	o.deps.Metrics.Invalidation(ctx, outcome)

	o.deps.Audit.Record(ctx, domain.AuditRecord{
		Time:     o.now(),
		Action:   domain.AuditInvalidate,
		FilePath: res.FilePath,
		TxID:     res.TxID,
		Success:  res.Success,
		Error:    res.Error,
	})
	if res.RolledBack {
		o.deps.Audit.Record(ctx, domain.AuditRecord{
			Time:     o.now(),
			Action:   domain.AuditRollback,
			FilePath: res.FilePath,
			TxID:     res.TxID,
			Success:  true,
		})
	}
}

// InvalidateSync invalidates filePath once. A file that was never registered
// succeeds with nothing to remove.
func (o *Orchestrator) InvalidateSync(ctx context.Context, filePath string) Result {
	return o.Execute(ctx, o.CreateTransaction(filePath), filePath)
}

// InvalidateWithRetry invalidates filePath, retrying failed transactions.
// A maxRetries below one uses the configured default.
func (o *Orchestrator) InvalidateWithRetry(ctx context.Context, filePath string, maxRetries int) Result {
	if maxRetries < 1 {
		maxRetries = o.opts.MaxRetries
	}

	var last Result
	rr := o.retrier.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		last = o.InvalidateSync(ctx, filePath)
		return last.Err
	}, filePath, maxRetries)

	last.FilePath = filePath
	last.Attempts = rr.Attempts
	if !rr.Success {
		last.Success = false
		last.Err = rr.Err
		last.Error = rr.Err.Error()
	}
	return last
}

// InvalidateMultiple invalidates filePaths concurrently. Results keep the input order.
func (o *Orchestrator) InvalidateMultiple(ctx context.Context, filePaths []string) BatchResult {
	results := make([]Result, len(filePaths))

	p := pool.New().WithMaxGoroutines(o.opts.Concurrency)
	for i, path := range filePaths {
		p.Go(func() {
			results[i] = o.InvalidateSync(ctx, path)
		})
	}
	p.Wait()

	batch := BatchResult{Total: len(filePaths), Results: results}
	for _, r := range results {
		if r.Success {
			batch.Success++
		} else {
			batch.Failed++
		}
	}
	return batch
}

// GetStatus reports whether filePath has a fast-tier analysis entry and an index entry.
func (o *Orchestrator) GetStatus(ctx context.Context, filePath string) (Status, error) {
	items, err := o.deps.Fast.Snapshot(ctx, domain.AnalysisKey(filePath))
	if err != nil {
		return Status{}, err
	}
	return Status{
		FilePath:   filePath,
		InFastTier: len(items) > 0,
		InIndex:    o.deps.Index.Has(filePath),
	}, nil
}
