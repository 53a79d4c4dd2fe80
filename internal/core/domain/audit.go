package domain

import "time"

// AuditAction names what an audit record describes.
type AuditAction string

const (
	AuditCascade      AuditAction = "cascade"
	AuditInvalidate   AuditAction = "invalidate"
	AuditRollback     AuditAction = "rollback"
	AuditCleanup      AuditAction = "cleanup"
	AuditCycleSkipped AuditAction = "cycle_skipped"
)

// AuditRecord is one line of the audit trail.
type AuditRecord struct {
	Time       time.Time   `json:"time"`
	Action     AuditAction `json:"action"`
	FilePath   string      `json:"filePath"`
	Trigger    string      `json:"trigger,omitempty"`
	OldVersion int         `json:"oldVersion,omitempty"`
	NewVersion int         `json:"newVersion,omitempty"`
	TxID       string      `json:"txId,omitempty"`
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
}
