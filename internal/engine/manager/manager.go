// Package manager implements the per-project cache manager.
//
// A Manager owns the fast tier, the artifact store and the cache index of one
// project. Every other component reaches them through its methods, which makes
// one Manager per project the consistency boundary for the cache.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/index"
	"go.trai.ch/strata/internal/engine/invalidation"
	"go.trai.ch/zerr"
)

// Deps are the providers a Manager is built from.
type Deps struct {
	Storage ports.StorageProvider
	Audit   ports.AuditProvider
	Logger  ports.Logger
	Tracer  ports.Tracer
	Metrics ports.Metrics
}

// Summary describes the state of a project cache.
type Summary struct {
	Root    string               `json:"root"`
	Fast    domain.StoreStats    `json:"fast"`
	Index   domain.IndexMetadata `json:"index"`
	Cycles  []string             `json:"cycles,omitempty"`
	Stale   int                  `json:"stale"`
	Entries int                  `json:"entries"`
}

// Manager is the cache façade of one project.
type Manager struct {
	root    string
	cfg     domain.Config
	storage *ports.Storage
	audit   ports.AuditLogger
	index   *index.Index

	invalidator *invalidation.Orchestrator
	cascader    *invalidation.Cascader

	logger  ports.Logger
	tracer  ports.Tracer
	metrics ports.Metrics
	now     func() time.Time

	closeOnce sync.Once
	closeErr  error
}

// New opens the stores of the project at root and loads its index.
func New(ctx context.Context, root string, cfg domain.Config, deps Deps) (*Manager, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(domain.ErrManagerInit, err)
	}

	storage, err := deps.Storage.Open(ctx, root, cfg.Cache)
	if err != nil {
		return nil, errors.Join(domain.ErrManagerInit, zerr.With(err, "project", root))
	}

	trail, err := deps.Audit.Open(root, cfg.Audit)
	if err != nil {
		return nil, errors.Join(domain.ErrManagerInit, zerr.With(err, "project", root), storage.Close())
	}

	idx, err := index.Load(ctx, storage.Index)
	if err != nil {
		return nil, errors.Join(domain.ErrManagerInit, zerr.With(err, "project", root), trail.Close(), storage.Close())
	}

	m := &Manager{
		root:    root,
		cfg:     cfg,
		storage: storage,
		audit:   trail,
		index:   idx,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		metrics: deps.Metrics,
		now:     time.Now,
	}
	m.invalidator = invalidation.NewOrchestrator(invalidation.Deps{
		Fast:      storage.Fast,
		Artifacts: storage.Artifacts,
		Index:     idx,
		Audit:     trail,
		Logger:    deps.Logger,
		Tracer:    deps.Tracer,
		Metrics:   deps.Metrics,
	}, invalidation.Options{
		MaxRetries:  cfg.Invalidation.MaxRetries,
		RetryDelay:  cfg.Invalidation.RetryDelay,
		Concurrency: cfg.Invalidation.Concurrency,
	})
	m.cascader = invalidation.NewCascader(idx, storage.Fast, trail, deps.Logger, deps.Metrics)

	deps.Logger.Debug("cache manager ready for " + root + " (" + string(storage.Fast.Backend()) + " backend)")
	return m, nil
}

// Root returns the project root the manager was opened for.
func (m *Manager) Root() string {
	return m.root
}

// Config returns the resolved configuration.
func (m *Manager) Config() domain.Config {
	return m.cfg
}

// Invalidator returns the orchestrator used for file invalidation.
func (m *Manager) Invalidator() *invalidation.Orchestrator {
	return m.invalidator
}

// Entry returns a copy of the index entry of filePath.
func (m *Manager) Entry(filePath string) (*domain.CacheEntry, bool) {
	return m.index.Entry(filePath)
}

// Paths returns every registered file, sorted.
func (m *Manager) Paths() []string {
	return m.index.Paths()
}

// RegisterFile records content as the current version of filePath and reports
// which analyses must run again. An unchanged file is a no-op. A CRITICAL change
// marks every transitive dependent stale before RegisterFile returns.
func (m *Manager) RegisterFile(ctx context.Context, filePath string, content []byte, metadata map[string]any) (domain.Registration, error) {
	if filePath == "" {
		return domain.Registration{}, domain.ErrInvalidFilePath
	}

	ctx, span := m.tracer.Start(ctx, "register", ports.WithAttribute("file_path", filePath))
	defer span.End()

	contentHash := domain.Fingerprint(content)
	metadataHash, err := fingerprintMetadata(metadata)
	if err != nil {
		span.RecordError(err)
		return domain.Registration{}, zerr.With(err, "file_path", filePath)
	}
	combinedHash := domain.CombinedFingerprint(content, contentHash, metadataHash)

	prev, exists := m.index.Entry(filePath)
	if exists && prev.CombinedHash == combinedHash {
		return domain.Registration{ChangeType: domain.ChangeNone, Entry: prev}, nil
	}

	reg, err := m.classify(ctx, prev, filePath, content)
	if err != nil {
		span.RecordError(err)
		return domain.Registration{}, err
	}

	now := m.now()
	var entry *domain.CacheEntry
	if !exists {
		entry = &domain.CacheEntry{
			FilePath:     filePath,
			ContentHash:  contentHash,
			MetadataHash: metadataHash,
			CombinedHash: combinedHash,
			ChangeType:   reg.ChangeType,
			Version:      1,
			Timestamp:    now,
		}
		m.index.Put(entry)
	} else {
		var ok bool
		entry, ok = m.index.Update(filePath, func(e *domain.CacheEntry) {
			e.ContentHash = contentHash
			e.MetadataHash = metadataHash
			e.CombinedHash = combinedHash
			e.ChangeType = reg.ChangeType
			e.Version++
			e.Timestamp = now
			e.StaticAnalyzed = false
			e.StaticHash = ""
			if reg.NeedsLLM {
				e.LLMAnalyzed = false
				e.LLMHash = ""
			}
		})
		if !ok {
			// Removed by a concurrent invalidation.
			return domain.Registration{}, zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "entry removed during registration"), "file_path", filePath)
		}
	}

	carried := false
	if exists && !reg.NeedsLLM {
		kept, err := m.carryInsights(ctx, filePath, prev.Version, entry.Version)
		if err != nil {
			m.revert(filePath, prev)
			span.RecordError(err)
			return domain.Registration{}, err
		}
		carried = kept
		if !kept {
			reg.NeedsLLM = true
			if updated, ok := m.index.Update(filePath, func(e *domain.CacheEntry) {
				e.LLMAnalyzed = false
				e.LLMHash = ""
			}); ok {
				entry = updated
			}
		}
	}

	if err := m.storage.Artifacts.Save(ctx, domain.Artifact{
		Kind:     domain.ArtifactSource,
		FilePath: filePath,
		Version:  entry.Version,
		SavedAt:  now,
		Payload:  content,
	}); err != nil {
		if carried {
			if _, cerr := m.carryInsights(ctx, filePath, entry.Version, prev.Version); cerr != nil {
				m.logger.Warn("failed to restore insights of " + filePath + ": " + cerr.Error())
			}
		}
		m.revert(filePath, prev)
		span.RecordError(err)
		return domain.Registration{}, err
	}

	if exists {
		if _, err := m.storage.Fast.Invalidate(ctx, domain.AnalysisKey(filePath)); err != nil {
			m.logger.Warn("failed to drop cached analysis of " + filePath + ": " + err.Error())
		}
	}

	if reg.ChangeType.Cascades() {
		reg.Cascaded = m.cascader.InvalidateDependents(ctx, filePath)
		span.SetAttribute("cascaded", len(reg.Cascaded))
	}

	if err := m.index.Persist(ctx); err != nil {
		span.RecordError(err)
		return domain.Registration{}, err
	}

	reg.Entry, _ = m.index.Entry(filePath)
	span.SetAttribute("change_type", string(reg.ChangeType))
	return reg, nil
}

// revert undoes the index change of a registration that could not be completed,
// so that retrying it classifies the change again.
func (m *Manager) revert(filePath string, prev *domain.CacheEntry) {
	if prev == nil {
		m.index.RemoveEntry(filePath)
		return
	}
	m.index.Update(filePath, func(e *domain.CacheEntry) {
		e.ContentHash = prev.ContentHash
		e.MetadataHash = prev.MetadataHash
		e.CombinedHash = prev.CombinedHash
		e.ChangeType = prev.ChangeType
		e.Version = prev.Version
		e.Timestamp = prev.Timestamp
		e.StaticAnalyzed = prev.StaticAnalyzed
		e.StaticHash = prev.StaticHash
		e.LLMAnalyzed = prev.LLMAnalyzed
		e.LLMHash = prev.LLMHash
	})
}

// classify decides the change type and the analyses a registration needs.
func (m *Manager) classify(ctx context.Context, prev *domain.CacheEntry, filePath string, content []byte) (domain.Registration, error) {
	if prev == nil {
		return domain.Registration{
			ChangeType:  domain.ChangeSemantic,
			NeedsStatic: true,
			NeedsLLM:    true,
			IsNew:       true,
		}, nil
	}

	// The newest snapshot is the last registered content. A cascade bumps the
	// version without touching the snapshot, so an exact version lookup would miss.
	ct := domain.ChangeSemantic
	old, ok, err := m.storage.Artifacts.Load(ctx, domain.ArtifactSource, filePath, 0)
	switch {
	case err != nil:
		return domain.Registration{}, err
	case ok:
		ct = domain.DetectChangeType(string(old.Payload), string(content), prev)
	default:
		m.logger.Debug("no source snapshot for " + filePath + ", treating change as " + string(ct))
	}

	return domain.Registration{
		ChangeType:  ct,
		NeedsStatic: true,
		NeedsLLM:    domain.ShouldReanalyzeLLM(prev, ct),
	}, nil
}

// carryInsights moves the LLM insights of a file to its new version so they
// keep loading after a change that does not require new insights.
func (m *Manager) carryInsights(ctx context.Context, filePath string, from, to int) (bool, error) {
	art, ok, err := m.storage.Artifacts.Load(ctx, domain.ArtifactLLM, filePath, from)
	if err != nil || !ok {
		return false, err
	}
	art.Version = to
	if err := m.storage.Artifacts.Save(ctx, *art); err != nil {
		return false, err
	}
	return true, nil
}

// SaveStaticAnalysis stores a static-analysis result for the current version of
// filePath, marks the entry analyzed and records its declared imports.
func (m *Manager) SaveStaticAnalysis(ctx context.Context, filePath string, analysis domain.Analysis) error {
	if err := m.saveAnalysis(ctx, domain.ArtifactStatic, filePath, analysis); err != nil {
		return err
	}
	if err := m.storage.Fast.Set(ctx, domain.AnalysisKey(filePath), analysis.Payload, m.cfg.Cache.DefaultTTL); err != nil {
		// The artifact is the source of truth; a cold fast tier only costs a lookup.
		m.logger.Warn("failed to cache analysis of " + filePath + ": " + err.Error())
		return nil
	}
	m.metrics.CacheSet(ctx, string(m.storage.Fast.Backend()))
	return nil
}

// SaveLLMInsights stores LLM insights for the current version of filePath.
func (m *Manager) SaveLLMInsights(ctx context.Context, filePath string, insights domain.Analysis) error {
	return m.saveAnalysis(ctx, domain.ArtifactLLM, filePath, insights)
}

func (m *Manager) saveAnalysis(ctx context.Context, kind domain.ArtifactKind, filePath string, analysis domain.Analysis) error {
	entry, ok := m.index.Entry(filePath)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "file is not registered"), "file_path", filePath)
	}

	hash := domain.Fingerprint(analysis.Payload)
	analyzed, current := entry.StaticAnalyzed, entry.StaticHash
	if kind == domain.ArtifactLLM {
		analyzed, current = entry.LLMAnalyzed, entry.LLMHash
	}

	if !analyzed || current != hash {
		if err := m.storage.Artifacts.Save(ctx, domain.Artifact{
			Kind:     kind,
			FilePath: filePath,
			Version:  entry.Version,
			SavedAt:  m.now(),
			Payload:  analysis.Payload,
		}); err != nil {
			return err
		}
	}

	m.index.Update(filePath, func(e *domain.CacheEntry) {
		if kind == domain.ArtifactLLM {
			e.LLMAnalyzed, e.LLMHash = true, hash
			return
		}
		e.StaticAnalyzed, e.StaticHash = true, hash
	})
	if analysis.DependsOn != nil {
		m.index.SetDependencies(filePath, analysis.DependsOn)
	}
	return m.index.Persist(ctx)
}

// LoadStaticAnalysis returns the static analysis of the current version of
// filePath. It misses when the entry is not analyzed.
func (m *Manager) LoadStaticAnalysis(ctx context.Context, filePath string) ([]byte, bool, error) {
	entry, ok := m.index.Entry(filePath)
	if !ok || !entry.IsStaticHit() {
		return nil, false, nil
	}

	if v, hit, err := m.Get(ctx, domain.AnalysisKey(filePath)); err == nil && hit {
		return v, true, nil
	}

	art, ok, err := m.storage.Artifacts.Load(ctx, domain.ArtifactStatic, filePath, entry.Version)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := m.storage.Fast.Set(ctx, domain.AnalysisKey(filePath), art.Payload, m.cfg.Cache.DefaultTTL); err != nil {
		m.logger.Warn("failed to warm analysis of " + filePath + ": " + err.Error())
	}
	return art.Payload, true, nil
}

// LoadLLMInsights returns the LLM insights of the current version of filePath.
func (m *Manager) LoadLLMInsights(ctx context.Context, filePath string) ([]byte, bool, error) {
	entry, ok := m.index.Entry(filePath)
	if !ok || !entry.LLMAnalyzed {
		return nil, false, nil
	}
	art, ok, err := m.storage.Artifacts.Load(ctx, domain.ArtifactLLM, filePath, entry.Version)
	if err != nil || !ok {
		return nil, false, err
	}
	return art.Payload, true, nil
}

// Get reads key from the fast tier.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := m.storage.Fast.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	backend := string(m.storage.Fast.Backend())
	if ok {
		m.metrics.CacheHit(ctx, backend)
	} else {
		m.metrics.CacheMiss(ctx, backend)
	}
	return v, ok, nil
}

// Set writes key to the fast tier. A zero ttl means the item never expires.
func (m *Manager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.storage.Fast.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	m.metrics.CacheSet(ctx, string(m.storage.Fast.Backend()))
	return nil
}

// Invalidate deletes key, or every key matching a glob pattern, from the fast tier.
func (m *Manager) Invalidate(ctx context.Context, keyOrPattern string) (int, error) {
	return m.storage.Fast.Invalidate(ctx, keyOrPattern)
}

// Clear empties the fast tier. Artifacts and the index are untouched.
func (m *Manager) Clear(ctx context.Context) error {
	return m.storage.Fast.Clear(ctx)
}

// Stats reports the state of the fast tier.
func (m *Manager) Stats(ctx context.Context) (domain.StoreStats, error) {
	return m.storage.Fast.Stats(ctx)
}

// Summary reports the fast tier, the index counters and any dependency cycles.
func (m *Manager) Summary(ctx context.Context) (Summary, error) {
	fast, err := m.Stats(ctx)
	if err != nil {
		return Summary{}, err
	}

	snap := m.index.Snapshot()
	s := Summary{
		Root:    m.root,
		Fast:    fast,
		Index:   snap.Metadata,
		Entries: len(snap.Entries),
	}
	for _, e := range snap.Entries {
		if !e.IsStaticHit() {
			s.Stale++
		}
	}
	for _, c := range snap.Cycles() {
		var zErr *zerr.Error
		if errors.As(c, &zErr) {
			if cycle, ok := zErr.Metadata()["cycle"].(string); ok {
				s.Cycles = append(s.Cycles, cycle)
				continue
			}
		}
		s.Cycles = append(s.Cycles, c.Error())
	}
	return s, nil
}

// InvalidateFile atomically removes every cached trace of filePath, retrying up
// to maxRetries times. A maxRetries below one uses the configured default.
func (m *Manager) InvalidateFile(ctx context.Context, filePath string, maxRetries int) invalidation.Result {
	return m.invalidator.InvalidateWithRetry(ctx, filePath, maxRetries)
}

// Status reports where filePath is cached.
func (m *Manager) Status(ctx context.Context, filePath string) (invalidation.Status, error) {
	return m.invalidator.GetStatus(ctx, filePath)
}

// CleanupDeletedFiles invalidates every registered file missing from existing
// and returns how many were removed.
func (m *Manager) CleanupDeletedFiles(ctx context.Context, existing []string) (int, error) {
	keep := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		keep[p] = struct{}{}
	}

	var gone []string
	for _, p := range m.index.Paths() {
		if _, ok := keep[p]; !ok {
			gone = append(gone, p)
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}

	batch := m.invalidator.InvalidateMultiple(ctx, gone)

	var errs error
	for _, r := range batch.Results {
		m.audit.Record(ctx, domain.AuditRecord{
			Time:     m.now(),
			Action:   domain.AuditCleanup,
			FilePath: r.FilePath,
			TxID:     r.TxID,
			Success:  r.Success,
			Error:    r.Error,
		})
		if !r.Success {
			errs = errors.Join(errs, r.Err)
		}
	}
	m.logger.Info("removed " + strconv.Itoa(batch.Success) + " deleted files from the cache")
	return batch.Success, errs
}

// Close releases the stores. It is safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = errors.Join(m.audit.Close(), m.storage.Close())
	})
	return m.closeErr
}

// fingerprintMetadata hashes metadata in its canonical JSON form; map keys are
// encoded sorted. Nil or empty metadata yields no hash.
func fingerprintMetadata(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", zerr.Wrap(err, "failed to encode file metadata")
	}
	return domain.Fingerprint(data), nil
}
