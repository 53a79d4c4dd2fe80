package invalidation

import (
	"slices"
	"sync"

	"go.trai.ch/strata/internal/core/domain"
)

// Observer receives invalidation lifecycle events. Observers run synchronously
// on the emitting goroutine and must not block.
type Observer func(domain.InvalidationEvent)

type subscription struct {
	id int
	fn Observer
}

// Bus fans events out to registered observers.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function removing it.
func (b *Bus) Subscribe(fn Observer) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
	}
}

// Emit delivers ev to every observer in subscription order.
func (b *Bus) Emit(ev domain.InvalidationEvent) {
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
