package domain

// OperationStatus is the lifecycle state of an operation or a transaction.
type OperationStatus string

const (
	StatusPending     OperationStatus = "PENDING"
	StatusInProgress  OperationStatus = "IN_PROGRESS"
	StatusSuccess     OperationStatus = "SUCCESS"
	StatusFailed      OperationStatus = "FAILED"
	StatusRollingBack OperationStatus = "ROLLING_BACK"
	StatusRolledBack  OperationStatus = "ROLLED_BACK"
)
