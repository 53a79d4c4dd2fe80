package domain

import "time"

// EventName identifies an invalidation lifecycle event.
// The string values are part of the public contract.
type EventName string

const (
	EventInvalidationStarted  EventName = "invalidation:started"
	EventInvalidationSuccess  EventName = "invalidation:success"
	EventInvalidationFailed   EventName = "invalidation:failed"
	EventInvalidationRetrying EventName = "invalidation:retrying"
)

// InvalidationEvent is the payload delivered to invalidation observers.
// Fields not defined for an event name are left at their zero value.
type InvalidationEvent struct {
	Name       EventName     `json:"-"`
	FilePath   string        `json:"filePath"`
	Timestamp  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"duration,omitempty"`
	Error      string        `json:"error,omitempty"`
	RolledBack bool          `json:"rolledBack,omitempty"`
	Attempt    int           `json:"attempt,omitempty"`
	MaxRetries int           `json:"maxRetries,omitempty"`
}
