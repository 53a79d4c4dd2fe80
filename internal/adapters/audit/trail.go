// Package audit writes the append-only audit trail of invalidations and cascades.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	_ ports.AuditLogger   = (*Trail)(nil)
	_ ports.AuditLogger   = Nop{}
	_ ports.AuditProvider = (*Provider)(nil)
)

// Trail writes one JSON object per line. Write failures are reported to the
// logger and never fail the caller.
type Trail struct {
	mu     sync.Mutex
	w      io.WriteCloser
	enc    *json.Encoder
	logger ports.Logger
}

// NewTrail creates a trail writing to w.
func NewTrail(w io.WriteCloser, logger ports.Logger) *Trail {
	return &Trail{w: w, enc: json.NewEncoder(w), logger: logger}
}

// Record appends rec, stamping the time if unset.
func (t *Trail) Record(_ context.Context, rec domain.AuditRecord) {
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.enc.Encode(rec); err != nil {
		t.logger.Error(zerr.With(zerr.Wrap(err, "failed to write audit record"), "file", rec.FilePath))
	}
}

// Close flushes and closes the underlying writer.
func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Close()
}

// Nop discards every record.
type Nop struct{}

// Record does nothing.
func (Nop) Record(context.Context, domain.AuditRecord) {}

// Close does nothing.
func (Nop) Close() error { return nil }

// Provider opens rotating audit trails.
type Provider struct {
	Logger ports.Logger
}

// NewProvider creates a provider.
func NewProvider(logger ports.Logger) *Provider {
	return &Provider{Logger: logger}
}

// Open returns the trail at <root>/.strata/audit.log, or Nop when disabled.
func (p *Provider) Open(root string, cfg domain.AuditConfig) (ports.AuditLogger, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}

	path := domain.AuditLogPath(root)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrAuditOpen.Error()), "path", path)
	}

	return NewTrail(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}, p.Logger), nil
}
