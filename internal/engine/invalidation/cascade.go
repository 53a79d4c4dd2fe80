package invalidation

import (
	"context"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/index"
	"go.trai.ch/zerr"
)

// Cascader marks every transitive dependent of a changed file as stale.
type Cascader struct {
	index   *index.Index
	fast    ports.FastStore
	audit   ports.AuditLogger
	logger  ports.Logger
	metrics ports.Metrics
	now     func() time.Time
}

// NewCascader creates a cascader over one project's index.
func NewCascader(idx *index.Index, fast ports.FastStore, audit ports.AuditLogger, logger ports.Logger, metrics ports.Metrics) *Cascader {
	return &Cascader{index: idx, fast: fast, audit: audit, logger: logger, metrics: metrics, now: time.Now}
}

// InvalidateDependents walks the dependents of filePath depth-first. Each
// dependent is marked stale exactly once: its analysis flags are cleared, its
// version is bumped, an audit record is written and its analysis key is dropped
// from the fast tier. Revisiting a file is a no-op, so cycles terminate.
// It returns the stale files in visit order. The index is not persisted.
func (c *Cascader) InvalidateDependents(ctx context.Context, filePath string) []string {
	visited := map[string]bool{filePath: true}
	onPath := map[string]bool{filePath: true}
	var stale []string

	var visit func(trigger string)
	visit = func(trigger string) {
		for _, dep := range c.index.Dependents(trigger) {
			if onPath[dep] {
				c.logger.Warn("dependency cycle: " + trigger + " -> " + dep + ", skipping")
				c.audit.Record(ctx, domain.AuditRecord{
					Time:     c.now(),
					Action:   domain.AuditCycleSkipped,
					FilePath: dep,
					Trigger:  trigger,
					Success:  true,
				})
				continue
			}
			if visited[dep] {
				continue
			}
			visited[dep] = true

			c.markStale(ctx, dep, trigger)
			stale = append(stale, dep)

			onPath[dep] = true
			visit(dep)
			delete(onPath, dep)
		}
	}
	visit(filePath)

	c.metrics.Cascade(ctx, len(stale))
	return stale
}

func (c *Cascader) markStale(ctx context.Context, dep, trigger string) {
	var oldVersion int
	updated, ok := c.index.Update(dep, func(e *domain.CacheEntry) {
		oldVersion = e.Version
		e.MarkStale(c.now())
	})
	if !ok {
		// Edge to a file that is not indexed. Its own dependents are still walked.
		c.logger.Debug("cascade: " + dep + " is not indexed")
		return
	}

	rec := domain.AuditRecord{
		Time:       c.now(),
		Action:     domain.AuditCascade,
		FilePath:   dep,
		Trigger:    trigger,
		OldVersion: oldVersion,
		NewVersion: updated.Version,
		Success:    true,
	}
	if _, err := c.fast.Invalidate(ctx, domain.AnalysisKey(dep)); err != nil {
		err = zerr.With(zerr.With(err, "file_path", dep), "operation", "cascade")
		c.logger.Error(err)
		rec.Error = err.Error()
	}
	c.audit.Record(ctx, rec)
	c.logger.Debug("cascade: marked " + dep + " stale (triggered by " + trigger + ")")
}
