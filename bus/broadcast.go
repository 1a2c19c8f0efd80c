package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/automaton"
)

// Broadcaster republishes state changes to channel subscribers. It is a
// Notifier: register it on every runner whose changes should be broadcast.
// A subscriber whose buffer is full misses the change rather than blocking
// the runner's worker.
type Broadcaster[K comparable] struct {
	mu         sync.RWMutex
	subs       map[chan automaton.StateChange[K]]struct{}
	bufferSize int
	closed     bool
	dropped    atomic.Uint64
	done       chan struct{}
	cleanupWg  sync.WaitGroup
}

// NewBroadcaster creates a broadcaster. bufferSize is at least 1.
func NewBroadcaster[K comparable](bufferSize int) *Broadcaster[K] {
	return &Broadcaster[K]{
		subs:       make(map[chan automaton.StateChange[K]]struct{}),
		bufferSize: max(bufferSize, 1),
		done:       make(chan struct{}),
	}
}

// Subscribe returns a channel receiving every change until ctx is done or
// the broadcaster is closed, at which point the channel is closed.
func (b *Broadcaster[K]) Subscribe(ctx context.Context) <-chan automaton.StateChange[K] {
	ch := make(chan automaton.StateChange[K], b.bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			select {
			case <-ctx.Done():
				b.unsubscribe(ch)
			case <-b.done:
			}
		}()
	}
	return ch
}

// StateChanged implements automaton.Notifier
func (b *Broadcaster[K]) StateChanged(c automaton.StateChange[K]) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Broadcaster[K]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Safe to call more than once.
func (b *Broadcaster[K]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	for ch := range b.subs {
		close(ch)
	}
	clear(b.subs)
	b.mu.Unlock()

	b.cleanupWg.Wait()
}

func (b *Broadcaster[K]) unsubscribe(ch chan automaton.StateChange[K]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

var _ automaton.Notifier[string] = (*Broadcaster[string])(nil)
