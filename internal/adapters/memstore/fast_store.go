// Package memstore implements the process-local fallback fast tier and a JSON
// index file.
//
// The fallback tier lives in the memory of one process. Two processes working on
// the same project each see their own copy, so it is not safe across processes.
// It is selected only when the durable backend cannot be opened or is disabled.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FastStore = (*FastStore)(nil)

// FastStore is a capacity-bounded map with per-item expiry.
// Reads use Peek so that eviction order stays insertion order: once capacity is
// exceeded the oldest-inserted item goes first. Expired items are purged before
// a live item is evicted.
type FastStore struct {
	mu        sync.Mutex
	items     *lru.Cache[string, domain.FastItem]
	capacity  int
	now       func() time.Time
	closed    bool
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// Option configures a FastStore.
type Option func(*FastStore)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *FastStore) {
		s.now = now
	}
}

// NewFastStore creates a fallback tier holding at most capacity items.
func NewFastStore(capacity int, opts ...Option) (*FastStore, error) {
	if capacity <= 0 {
		capacity = domain.DefaultConfig().Cache.Capacity
	}
	items, err := lru.New[string, domain.FastItem](capacity)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFastStoreOpen.Error()), "capacity", capacity)
	}

	s := &FastStore{items: items, capacity: capacity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Backend returns domain.BackendMemory.
func (s *FastStore) Backend() domain.Backend {
	return domain.BackendMemory
}

// Get returns the value at key. Expired items are dropped and reported missing.
func (s *FastStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, domain.ErrFastStoreClosed
	}

	item, ok := s.items.Peek(key)
	if !ok {
		s.misses.Add(1)
		return nil, false, nil
	}
	if item.Expired(s.now()) {
		s.items.Remove(key)
		s.misses.Add(1)
		return nil, false, nil
	}

	s.hits.Add(1)
	return item.Value, true, nil
}

// Set stores value at key as the newest item.
func (s *FastStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrFastStoreClosed
	}

	s.insert(domain.NewFastItem(key, value, ttl, s.now()))
	return nil
}

// insert adds item as the newest entry. Callers must hold mu.
func (s *FastStore) insert(item domain.FastItem) {
	s.items.Remove(item.Key)
	if s.items.Len() >= s.capacity {
		s.purgeExpired()
	}
	if evicted := s.items.Add(item.Key, item); evicted {
		s.evictions.Add(1)
	}
}

func (s *FastStore) purgeExpired() {
	now := s.now()
	for _, k := range s.items.Keys() {
		if item, ok := s.items.Peek(k); ok && item.Expired(now) {
			s.items.Remove(k)
		}
	}
}

// Invalidate deletes key or every key matching a glob pattern under one lock.
func (s *FastStore) Invalidate(_ context.Context, keyOrPattern string) (int, error) {
	m, err := domain.NewKeyMatcher(keyOrPattern)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, domain.ErrFastStoreClosed
	}

	if m.Exact() {
		if s.items.Remove(keyOrPattern) {
			return 1, nil
		}
		return 0, nil
	}

	deleted := 0
	for _, k := range s.items.Keys() {
		if m.Match(k) {
			s.items.Remove(k)
			deleted++
		}
	}
	return deleted, nil
}

// Snapshot returns copies of the live items matching keyOrPattern, oldest first.
func (s *FastStore) Snapshot(_ context.Context, keyOrPattern string) ([]domain.FastItem, error) {
	m, err := domain.NewKeyMatcher(keyOrPattern)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrFastStoreClosed
	}

	now := s.now()
	var out []domain.FastItem
	for _, k := range s.items.Keys() {
		if !m.Match(k) {
			continue
		}
		if item, ok := s.items.Peek(k); ok && !item.Expired(now) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Restore re-inserts items, skipping expired ones.
func (s *FastStore) Restore(_ context.Context, items []domain.FastItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrFastStoreClosed
	}

	now := s.now()
	for _, item := range items {
		if !item.Expired(now) {
			s.insert(item)
		}
	}
	return nil
}

// Clear removes every item.
func (s *FastStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrFastStoreClosed
	}
	s.items.Purge()
	return nil
}

// Stats reports item counts and counters.
func (s *FastStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.StoreStats{
		Backend:   domain.BackendMemory,
		Capacity:  s.capacity,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
	}

	now := s.now()
	for _, k := range s.items.Keys() {
		if item, ok := s.items.Peek(k); ok {
			if item.Expired(now) {
				stats.Expired++
			} else {
				stats.Keys++
			}
		}
	}
	return stats, nil
}

// Close drops every item and rejects further use.
func (s *FastStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Purge()
	s.closed = true
	return nil
}
