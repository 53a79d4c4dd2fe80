package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

// AuditLogger appends records to the audit trail.
//
//go:generate go run go.uber.org/mock/mockgen -source=audit.go -destination=mocks/mock_audit.go -package=mocks
type AuditLogger interface {
	Record(ctx context.Context, rec domain.AuditRecord)
	Close() error
}

// AuditProvider opens the audit trail of a project.
type AuditProvider interface {
	Open(root string, cfg domain.AuditConfig) (AuditLogger, error)
}
