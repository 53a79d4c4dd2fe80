package domain

import (
	"slices"
	"time"
)

// CacheEntry is the per-file record kept in the cache index.
type CacheEntry struct {
	FilePath       string     `json:"filePath"`
	ContentHash    string     `json:"contentHash"`
	MetadataHash   string     `json:"metadataHash,omitempty"`
	CombinedHash   string     `json:"combinedHash"`
	ChangeType     ChangeType `json:"changeType"`
	Version        int        `json:"version"`
	Timestamp      time.Time  `json:"timestamp"`
	StaticAnalyzed bool       `json:"staticAnalyzed"`
	LLMAnalyzed    bool       `json:"llmAnalyzed"`
	DependsOn      []string   `json:"dependsOn"`
	UsedBy         []string   `json:"usedBy"`
	StaticHash     string     `json:"staticHash,omitempty"`
	LLMHash        string     `json:"llmHash,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e *CacheEntry) Clone() *CacheEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.DependsOn = slices.Clone(e.DependsOn)
	c.UsedBy = slices.Clone(e.UsedBy)
	return &c
}

// IsStaticHit reports whether the entry can serve cached static analysis.
func (e *CacheEntry) IsStaticHit() bool {
	return e != nil && e.StaticAnalyzed
}

// MarkStale clears both analysis flags and bumps the version.
func (e *CacheEntry) MarkStale(now time.Time) {
	e.StaticAnalyzed = false
	e.LLMAnalyzed = false
	e.Version++
	e.Timestamp = now
}

// Registration is the outcome of registering a file with the cache manager.
type Registration struct {
	ChangeType  ChangeType  `json:"changeType"`
	NeedsStatic bool        `json:"needsStatic"`
	NeedsLLM    bool        `json:"needsLLM"`
	IsNew       bool        `json:"isNew"`
	Entry       *CacheEntry `json:"entry"`
	// Cascaded lists dependents invalidated because the change was CRITICAL.
	Cascaded []string `json:"cascaded,omitempty"`
}

// Analysis is a payload produced by an analyzer together with its declared imports.
type Analysis struct {
	DependsOn []string `json:"dependsOn"`
	Payload   []byte   `json:"payload"`
}
