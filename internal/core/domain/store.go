package domain

import (
	"strings"
	"time"
)

// Backend names the implementation behind a fast tier.
type Backend string

const (
	// BackendAuto prefers badger and falls back to memory.
	BackendAuto Backend = "auto"
	// BackendBadger is the durable embedded store.
	BackendBadger Backend = "badger"
	// BackendMemory is the process-local fallback. It is not safe across processes.
	BackendMemory Backend = "memory"
)

// FastItem is one record of the fast tier.
type FastItem struct {
	Key       string     `json:"key"`
	Value     []byte     `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Expired reports whether the item is past its expiry at now.
func (i *FastItem) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// TTL returns the remaining lifetime of the item, zero meaning no expiry.
func (i *FastItem) TTL(now time.Time) time.Duration {
	if i.ExpiresAt == nil {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

// NewFastItem builds an item created at now living for ttl (zero for no expiry).
func NewFastItem(key string, value []byte, ttl time.Duration, now time.Time) FastItem {
	item := FastItem{Key: key, Value: value, CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		item.ExpiresAt = &exp
	}
	return item
}

// StoreStats describes the state of a fast tier.
type StoreStats struct {
	Backend   Backend `json:"backend"`
	Keys      int     `json:"keys"`
	Expired   int     `json:"expired"`
	Capacity  int     `json:"capacity,omitempty"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
}

// ArtifactKind names a family of durable artifacts.
type ArtifactKind string

const (
	// ArtifactStatic holds static-analysis payloads.
	ArtifactStatic ArtifactKind = "static"
	// ArtifactLLM holds LLM-derived insights.
	ArtifactLLM ArtifactKind = "llm"
	// ArtifactSource holds the last registered source of a file.
	ArtifactSource ArtifactKind = "source"
)

// ArtifactKinds lists every known kind.
var ArtifactKinds = []ArtifactKind{ArtifactStatic, ArtifactLLM, ArtifactSource}

// Valid reports whether k is a known kind.
func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactStatic, ArtifactLLM, ArtifactSource:
		return true
	default:
		return false
	}
}

// Artifact is one versioned payload stored on disk.
type Artifact struct {
	Kind     ArtifactKind `json:"kind"`
	FilePath string       `json:"filePath"`
	Version  int          `json:"version"`
	SavedAt  time.Time    `json:"savedAt"`
	Payload  []byte       `json:"payload"`
}

// AnalysisKey is the fast-tier key holding a file's analysis result.
func AnalysisKey(filePath string) string {
	return "analysis:" + filePath
}

// AtomPattern matches every atom-level fast-tier key of a file.
func AtomPattern(filePath string) string {
	return "atom:" + filePath + ":*"
}

// AtomKey is the fast-tier key of one atom inside a file.
func AtomKey(filePath, atom string) string {
	return "atom:" + filePath + ":" + atom
}

// IsPattern reports whether key contains glob metacharacters.
func IsPattern(key string) bool {
	return strings.ContainsAny(key, "*?")
}
