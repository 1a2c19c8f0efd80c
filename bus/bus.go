// Package bus delivers events to runners and fans out their state changes
// inside one process.
package bus

import (
	"sync"

	"github.com/felixgeelhaar/automaton"
)

// Bus is an in-process publish/subscribe hub filtered by trigger key.
// Deliveries run synchronously on the publishing goroutine, outside the
// bus lock, so subscribers may subscribe or unsubscribe from a callback.
type Bus[K comparable] struct {
	mu   sync.RWMutex
	subs []*subscription[K]
}

type subscription[K comparable] struct {
	keys    map[K]struct{}
	deliver func(automaton.Event[K])
}

// New creates an empty bus
func New[K comparable]() *Bus[K] {
	return &Bus[K]{}
}

// Subscribe registers deliver for events whose key is in keys. The returned
// function removes the subscription and may be called more than once.
func (b *Bus[K]) Subscribe(keys []K, deliver func(ev automaton.Event[K])) func() {
	sub := &subscription[K]{
		keys:    make(map[K]struct{}, len(keys)),
		deliver: deliver,
	}
	for _, k := range keys {
		sub.keys[k] = struct{}{}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub) })
	}
}

func (b *Bus[K]) remove(sub *subscription[K]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.subs[:0]
	for _, s := range b.subs {
		if s != sub {
			out = append(out, s)
		}
	}
	clear(b.subs[len(out):])
	b.subs = out
}

// Publish delivers ev to every subscriber interested in its key, in
// subscription order, and returns the number of deliveries.
func (b *Bus[K]) Publish(ev automaton.Event[K]) int {
	b.mu.RLock()
	var targets []func(automaton.Event[K])
	for _, s := range b.subs {
		if _, ok := s.keys[ev.Key]; ok {
			targets = append(targets, s.deliver)
		}
	}
	b.mu.RUnlock()

	for _, deliver := range targets {
		deliver(ev)
	}
	return len(targets)
}

// Send publishes an event carrying only key
func (b *Bus[K]) Send(key K) int {
	return b.Publish(automaton.Event[K]{Key: key})
}

// Len returns the number of active subscriptions
func (b *Bus[K]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

var _ automaton.EventSource[string] = (*Bus[string])(nil)
