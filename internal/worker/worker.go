// Package worker provides a single-goroutine serial task queue with delayed posting.
package worker

import (
	"sync"
	"time"
)

// PanicHandler receives the value recovered from a panicking task
type PanicHandler func(recovered any)

// Worker runs posted tasks one at a time, in FIFO order, on its own goroutine.
// Delayed tasks join the queue when their timer fires.
type Worker struct {
	name    string
	onPanic PanicHandler

	mu     sync.Mutex
	queue  []func()
	timers map[*time.Timer]struct{}
	closed bool

	wake     chan struct{}
	quit     chan struct{}
	exited   chan struct{}
	quitOnce sync.Once
}

// Option configures a Worker
type Option func(*Worker)

// WithPanicHandler installs a handler for panicking tasks.
// Without one the panic is swallowed and the worker keeps running.
func WithPanicHandler(h PanicHandler) Option {
	return func(w *Worker) { w.onPanic = h }
}

// New creates a worker and starts its goroutine
func New(name string, opts ...Option) *Worker {
	w := &Worker{
		name:   name,
		timers: make(map[*time.Timer]struct{}),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w
}

// Name returns the worker name
func (w *Worker) Name() string {
	return w.name
}

// Post enqueues fn behind all pending tasks. Returns false once the worker has quit.
func (w *Worker) Post(fn func()) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, fn)
	w.mu.Unlock()
	w.signal()
	return true
}

// PostDelayed enqueues fn after d. A non-positive d behaves like Post.
func (w *Worker) PostDelayed(fn func(), d time.Duration) bool {
	if d <= 0 {
		return w.Post(fn)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		w.mu.Lock()
		delete(w.timers, t)
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.queue = append(w.queue, fn)
		w.mu.Unlock()
		w.signal()
	})
	w.timers[t] = struct{}{}
	return true
}

// Pending returns the number of queued and delayed tasks
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue) + len(w.timers)
}

// Quit cancels every pending and delayed task and stops the goroutine.
// It does not wait: a task already running finishes first. Safe to call from a task.
func (w *Worker) Quit() {
	w.mu.Lock()
	w.closed = true
	w.queue = nil
	for t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[*time.Timer]struct{})
	w.mu.Unlock()

	w.quitOnce.Do(func() { close(w.quit) })
}

// Done is closed when the goroutine has exited
func (w *Worker) Done() <-chan struct{} {
	return w.exited
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) loop() {
	defer close(w.exited)
	for {
		select {
		case <-w.quit:
			return
		case <-w.wake:
		}

		for {
			fn := w.pop()
			if fn == nil {
				break
			}
			w.run(fn)

			select {
			case <-w.quit:
				return
			default:
			}
		}
	}
}

func (w *Worker) pop() func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || len(w.queue) == 0 {
		return nil
	}
	fn := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	return fn
}

func (w *Worker) run(fn func()) {
	defer func() {
		if r := recover(); r != nil && w.onPanic != nil {
			w.onPanic(r)
		}
	}()
	fn()
}
