package domain

// ChangeType classifies how much a file change affects derived analysis.
type ChangeType string

const (
	// ChangeNone means the content and metadata are byte-identical to the last registration.
	ChangeNone ChangeType = "NONE"
	// ChangeCosmetic means only comments or whitespace changed.
	ChangeCosmetic ChangeType = "COSMETIC"
	// ChangeStatic means internal logic changed without touching contract or behavior patterns.
	ChangeStatic ChangeType = "STATIC"
	// ChangeSemantic means behavior that connects the file to others changed.
	ChangeSemantic ChangeType = "SEMANTIC"
	// ChangeCritical means the imports or exports of the file changed.
	ChangeCritical ChangeType = "CRITICAL"
)

// Rank orders change types by increasing invalidation impact.
// Unknown values rank above CRITICAL.
func (c ChangeType) Rank() int {
	switch c {
	case ChangeNone:
		return 0
	case ChangeCosmetic:
		return 1
	case ChangeStatic:
		return 2
	case ChangeSemantic:
		return 3
	case ChangeCritical:
		return 4
	default:
		return 5
	}
}

// Cascades reports whether dependents of the file must be invalidated.
func (c ChangeType) Cascades() bool {
	return c == ChangeCritical
}

func (c ChangeType) String() string {
	return string(c)
}

// ShouldReanalyzeLLM decides whether LLM insights must be regenerated for a change.
// Files that were never LLM-analyzed always need it. Cosmetic and static changes keep
// existing insights. Every other value, known or not, forces re-analysis.
func ShouldReanalyzeLLM(entry *CacheEntry, ct ChangeType) bool {
	if entry == nil || !entry.LLMAnalyzed {
		return true
	}
	switch ct {
	case ChangeCosmetic, ChangeStatic:
		return false
	default:
		return true
	}
}
