package domain

import (
	"slices"
	"sort"
	"time"

	"go.trai.ch/zerr"
)

// IndexMetadata holds aggregate counters kept consistent with the index content.
type IndexMetadata struct {
	TotalFiles        int       `json:"totalFiles"`
	TotalDependencies int       `json:"totalDependencies"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// CacheIndex aggregates every cache entry of a project plus its dependency graph.
// DependencyGraph maps a file to the files that depend on it.
// CacheIndex is not safe for concurrent use.
type CacheIndex struct {
	Entries         map[string]*CacheEntry `json:"entries"`
	DependencyGraph map[string][]string    `json:"dependencyGraph"`
	Metadata        IndexMetadata          `json:"metadata"`
}

// NewCacheIndex creates an empty index.
func NewCacheIndex() *CacheIndex {
	return &CacheIndex{
		Entries:         make(map[string]*CacheEntry),
		DependencyGraph: make(map[string][]string),
	}
}

// Normalize fills nil maps left by decoding an older or partial index.
func (idx *CacheIndex) Normalize() {
	if idx.Entries == nil {
		idx.Entries = make(map[string]*CacheEntry)
	}
	if idx.DependencyGraph == nil {
		idx.DependencyGraph = make(map[string][]string)
	}
	idx.recount()
}

// Get returns the entry for filePath.
func (idx *CacheIndex) Get(filePath string) (*CacheEntry, bool) {
	e, ok := idx.Entries[filePath]
	return e, ok
}

// Put inserts or replaces an entry.
// Dependents already recorded in the graph are merged into the entry's usedBy.
func (idx *CacheIndex) Put(e *CacheEntry) {
	if users := idx.DependencyGraph[e.FilePath]; len(users) > 0 {
		e.UsedBy = append(e.UsedBy, users...)
		slices.Sort(e.UsedBy)
		e.UsedBy = slices.Compact(e.UsedBy)
	}
	idx.Entries[e.FilePath] = e
	idx.recount()
}

// Remove deletes the entry for filePath and returns it.
// Edges pointing from the file to its dependencies are dropped; edges from its
// dependents are kept so that a re-registered file still cascades to them.
func (idx *CacheIndex) Remove(filePath string) (*CacheEntry, bool) {
	e, ok := idx.Entries[filePath]
	if !ok {
		return nil, false
	}
	delete(idx.Entries, filePath)
	for _, dep := range e.DependsOn {
		idx.unlink(dep, filePath)
	}
	idx.recount()
	return e, true
}

// Restore re-inserts a previously removed entry and its outgoing edges.
func (idx *CacheIndex) Restore(e *CacheEntry) {
	idx.Entries[e.FilePath] = e
	for _, dep := range e.DependsOn {
		idx.link(dep, e.FilePath)
	}
	idx.recount()
}

// SetDependencies replaces the declared imports of filePath and updates the
// usedBy lists of the old and new dependencies.
func (idx *CacheIndex) SetDependencies(filePath string, deps []string) {
	e, ok := idx.Entries[filePath]
	if !ok {
		return
	}

	next := slices.Clone(deps)
	slices.Sort(next)
	next = slices.Compact(next)
	next = slices.DeleteFunc(next, func(d string) bool { return d == filePath || d == "" })

	for _, old := range e.DependsOn {
		if !slices.Contains(next, old) {
			idx.unlink(old, filePath)
		}
	}
	for _, dep := range next {
		idx.link(dep, filePath)
	}
	e.DependsOn = next
	idx.recount()
}

// Dependents returns the files that directly depend on filePath, sorted.
// It merges the entry's usedBy list with the dependency graph.
func (idx *CacheIndex) Dependents(filePath string) []string {
	var out []string
	if e, ok := idx.Entries[filePath]; ok {
		out = append(out, e.UsedBy...)
	}
	out = append(out, idx.DependencyGraph[filePath]...)
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Paths returns every indexed file path, sorted.
func (idx *CacheIndex) Paths() []string {
	paths := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy of the index.
func (idx *CacheIndex) Clone() *CacheIndex {
	c := &CacheIndex{
		Entries:         make(map[string]*CacheEntry, len(idx.Entries)),
		DependencyGraph: make(map[string][]string, len(idx.DependencyGraph)),
		Metadata:        idx.Metadata,
	}
	for k, v := range idx.Entries {
		c.Entries[k] = v.Clone()
	}
	for k, v := range idx.DependencyGraph {
		c.DependencyGraph[k] = slices.Clone(v)
	}
	return c
}

// Cycles returns every dependency cycle reachable in the graph as a zerr error
// carrying the cycle path. Each cycle is reported once.
func (idx *CacheIndex) Cycles() []error {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int)
	var path []string
	var cycles []error

	var visit func(u string)
	visit = func(u string) {
		state[u] = visiting
		path = append(path, u)

		for _, v := range idx.Dependents(u) {
			switch state[v] {
			case visiting:
				cycles = append(cycles, cycleError(path, v))
			case unvisited:
				visit(v)
			}
		}

		state[u] = done
		path = path[:len(path)-1]
	}

	nodes := idx.Paths()
	for k := range idx.DependencyGraph {
		if _, ok := idx.Entries[k]; !ok {
			nodes = append(nodes, k)
		}
	}
	sort.Strings(nodes)

	for _, n := range nodes {
		if state[n] == unvisited {
			visit(n)
		}
	}
	return cycles
}

func cycleError(path []string, back string) error {
	start := slices.Index(path, back)
	cycle := ""
	for _, p := range path[start:] {
		cycle += p + " -> "
	}
	cycle += back
	return zerr.With(ErrCycleDetected, "cycle", cycle)
}

func (idx *CacheIndex) link(dep, dependent string) {
	if !slices.Contains(idx.DependencyGraph[dep], dependent) {
		idx.DependencyGraph[dep] = append(idx.DependencyGraph[dep], dependent)
		slices.Sort(idx.DependencyGraph[dep])
	}
	if e, ok := idx.Entries[dep]; ok && !slices.Contains(e.UsedBy, dependent) {
		e.UsedBy = append(e.UsedBy, dependent)
		slices.Sort(e.UsedBy)
	}
}

func (idx *CacheIndex) unlink(dep, dependent string) {
	if users := slices.DeleteFunc(idx.DependencyGraph[dep], func(s string) bool { return s == dependent }); len(users) > 0 {
		idx.DependencyGraph[dep] = users
	} else {
		delete(idx.DependencyGraph, dep)
	}
	if e, ok := idx.Entries[dep]; ok {
		e.UsedBy = slices.DeleteFunc(e.UsedBy, func(s string) bool { return s == dependent })
	}
}

func (idx *CacheIndex) recount() {
	idx.Metadata.TotalFiles = len(idx.Entries)
	total := 0
	for _, users := range idx.DependencyGraph {
		total += len(users)
	}
	idx.Metadata.TotalDependencies = total
}
