package automaton

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/automaton/internal/ir"
	xlog "github.com/felixgeelhaar/automaton/internal/log"
)

const tracerName = "github.com/felixgeelhaar/automaton"

// finalStopMargin separates the last delayed enter action of a final state
// from the stop it schedules.
const finalStopMargin = time.Millisecond

// Runner walks an Automaton. All actions, guards and notifications of one
// runner execute on its own worker, one at a time, in submission order.
// Lifecycle methods and Dispatch are safe to call from any goroutine.
type Runner[K comparable] struct {
	automaton  *Automaton[K]
	graph      *ir.Graph[K, *Context]
	initial    StateID
	name       string
	instanceID int64
	rc         *Context
	logger     zerolog.Logger
	tracer     trace.Tracer
	scheduler  SchedulerFactory

	// current is written only by the worker, or by Restore/Start while no
	// worker is attached.
	current atomic.Int64

	mu        sync.Mutex
	started   bool
	paused    bool
	sched     Scheduler
	gen       uint64
	source    EventSource[K]
	sourceGen uint64

	// srcMu serializes calls into the event source. r.mu is never held
	// while the source runs.
	srcMu         sync.Mutex
	unsubscribe   func()
	subscribedGen uint64

	obsMu     sync.RWMutex
	notifiers []Notifier[K]
}

// NewRunner creates a stopped runner positioned on the automaton's initial state.
// It fails with a structural error unless exactly one state is typed Initial.
func NewRunner[K comparable](a *Automaton[K], opts ...Option) (*Runner[K], error) {
	if a == nil {
		return nil, ErrNilAutomaton
	}
	initial, err := a.Initial()
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = a.ID()
	}
	if !o.hasID {
		o.instanceID = newInstanceID()
	}
	if o.rc == nil {
		o.rc = NewContext()
	}

	r := &Runner[K]{
		automaton:  a,
		graph:      a.graph,
		initial:    initial,
		name:       o.name,
		instanceID: o.instanceID,
		rc:         o.rc,
		tracer:     o.tracer,
		scheduler:  o.scheduler,
		paused:     true,
	}
	r.logger = o.logger.With().
		Str(xlog.FieldAutomaton, a.ID()).
		Str(xlog.FieldRunner, o.name).
		Int64(xlog.FieldInstanceID, o.instanceID).
		Logger()
	r.current.Store(int64(initial))
	return r, nil
}

func newInstanceID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]) &^ (1 << 63))
}

// Automaton returns the graph this runner walks
func (r *Runner[K]) Automaton() *Automaton[K] { return r.automaton }

// Name returns the runner name
func (r *Runner[K]) Name() string { return r.name }

// InstanceID returns the runner's instance ID
func (r *Runner[K]) InstanceID() int64 { return r.instanceID }

// Context returns the runner's context
func (r *Runner[K]) Context() *Context { return r.rc }

// CurrentState returns the id of the current state
func (r *Runner[K]) CurrentState() StateID {
	return StateID(r.current.Load())
}

// CurrentStateName returns the name of the current state
func (r *Runner[K]) CurrentStateName() string {
	if s := r.graph.GetState(r.CurrentState()); s != nil {
		return s.Name
	}
	return ""
}

// Status returns the lifecycle status
func (r *Runner[K]) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Runner[K]) statusLocked() Status {
	switch {
	case r.started && !r.paused:
		return StatusRunning
	case r.started:
		return StatusPaused
	default:
		return StatusStopped
	}
}

// IsStarted reports whether the runner was started and not stopped since
func (r *Runner[K]) IsStarted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// IsRunning reports whether the runner accepts events
func (r *Runner[K]) IsRunning() bool { return r.Status() == StatusRunning }

// IsPaused reports whether the runner is started but paused
func (r *Runner[K]) IsPaused() bool { return r.Status() == StatusPaused }

// IsStopped reports whether the runner is stopped
func (r *Runner[K]) IsStopped() bool { return r.Status() == StatusStopped }

// AddNotifier registers n. If n also implements DropNotifier or FaultNotifier
// it receives those notifications too.
func (r *Runner[K]) AddNotifier(n Notifier[K]) {
	if n == nil {
		return
	}
	r.obsMu.Lock()
	r.notifiers = append(r.notifiers, n)
	r.obsMu.Unlock()
}

// SetEventSource attaches an event source. A running runner subscribes
// immediately; a previous source is unsubscribed.
func (r *Runner[K]) SetEventSource(src EventSource[K]) {
	r.mu.Lock()
	r.source = src
	r.sourceGen++
	r.mu.Unlock()
	r.syncSource()
}

// Start attaches a worker if none is attached and resumes delivery. From the
// Stopped status the runner moves to the initial state and schedules its
// enter action. Starting a restored runner keeps the restored state; starting
// a running runner does nothing.
func (r *Runner[K]) Start() {
	r.mu.Lock()
	r.attachLocked()
	cold := !r.started
	if cold {
		r.current.Store(int64(r.initial))
		s := r.graph.GetState(r.initial)
		r.postStateAction(r.sched, r.gen, s.Enter, PhaseEnter, s.Name)
	}
	r.started = true
	r.paused = false
	r.logger.Debug().Bool("cold", cold).Str(xlog.FieldState, r.CurrentStateName()).Msg("runner started")
	r.mu.Unlock()

	r.syncSource()
}

// Pause stops event delivery and makes Dispatch fail. Work already queued on
// the worker still runs. No-op unless running.
func (r *Runner[K]) Pause() {
	r.mu.Lock()
	if !r.started || r.paused {
		r.mu.Unlock()
		return
	}
	r.paused = true
	r.logger.Debug().Msg("runner paused")
	r.mu.Unlock()

	r.syncSource()
}

// Restart resumes a paused runner. No-op unless paused.
func (r *Runner[K]) Restart() {
	r.mu.Lock()
	if !r.started || !r.paused {
		r.mu.Unlock()
		return
	}
	r.attachLocked()
	r.paused = false
	r.logger.Debug().Msg("runner restarted")
	r.mu.Unlock()

	r.syncSource()
}

// Stop pauses the runner, cancels all pending work and detaches the worker.
// The current state is kept until the next Start.
func (r *Runner[K]) Stop() {
	r.mu.Lock()
	r.paused = true
	r.detachLocked()
	if r.started {
		r.logger.Debug().Str(xlog.FieldState, r.CurrentStateName()).Msg("runner stopped")
	}
	r.started = false
	r.mu.Unlock()

	r.syncSource()
}

// Reenter re-runs the current state's enter action without changing state
// or notifying.
func (r *Runner[K]) Reenter() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sched == nil {
		return ErrNotRunning
	}
	s := r.graph.GetState(r.CurrentState())
	if s != nil {
		r.postStateAction(r.sched, r.gen, s.Enter, PhaseEnter, s.Name)
	}
	return nil
}

// Dispatch queues ev for the worker. It fails with ErrNotRunning unless the
// runner is running.
func (r *Runner[K]) Dispatch(ev Event[K]) error {
	r.mu.Lock()
	if !r.started || r.paused || r.sched == nil {
		r.mu.Unlock()
		r.notifyDrop(ev, r.CurrentState(), DropNotRunning)
		return ErrNotRunning
	}
	sched, gen := r.sched, r.gen
	r.mu.Unlock()

	if !sched.Post(func() { r.handle(sched, gen, ev) }) {
		return ErrNotRunning
	}
	return nil
}

// Send dispatches an event carrying only a trigger
func (r *Runner[K]) Send(key K) error {
	return r.Dispatch(Event[K]{Key: key})
}

func (r *Runner[K]) attachLocked() {
	if r.sched != nil {
		return
	}
	r.gen++
	r.sched = r.scheduler(fmt.Sprintf("%s#%d", r.name, r.instanceID))
}

func (r *Runner[K]) detachLocked() {
	if r.sched == nil {
		return
	}
	r.sched.Quit()
	r.sched = nil
	r.gen++
}

// syncSource brings the event source subscription in line with the
// lifecycle. The last call to run observes the latest lifecycle change.
func (r *Runner[K]) syncSource() {
	r.srcMu.Lock()
	defer r.srcMu.Unlock()

	r.mu.Lock()
	src, gen := r.source, r.sourceGen
	want := r.started && !r.paused && src != nil
	r.mu.Unlock()

	if r.unsubscribe != nil && (!want || r.subscribedGen != gen) {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	if want && r.unsubscribe == nil {
		r.unsubscribe = src.Subscribe(r.graph.Triggers(), r.deliver)
		r.subscribedGen = gen
	}
}

func (r *Runner[K]) deliver(ev Event[K]) {
	_ = r.Dispatch(ev)
}

// live reports whether work posted under gen may still run
func (r *Runner[K]) live(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sched != nil && r.gen == gen
}

// handle resolves ev against the current state's edges. Edges are tried in
// order; within an edge, transitions whose trigger matches are tried in
// registration order and the first one whose guard does not block wins.
func (r *Runner[K]) handle(sched Scheduler, gen uint64, ev Event[K]) {
	if !r.live(gen) {
		return
	}

	from := r.CurrentState()
	fromState := r.graph.GetState(from)

	_, span := r.tracer.Start(context.Background(), "automaton.dispatch",
		trace.WithAttributes(
			attribute.String("automaton.id", r.graph.ID),
			attribute.String("automaton.runner", r.name),
			attribute.Int64("automaton.instance_id", r.instanceID),
			attribute.String("automaton.trigger", fmt.Sprint(ev.Key)),
			attribute.String("automaton.from", fromState.Name),
		))
	defer span.End()

	outcome := DropNoTransition
	ok := r.protect(PhaseDispatch, fromState.Name, func() {
		for _, edge := range r.graph.Edges(from) {
			for _, t := range edge.Transitions {
				if t.Trigger != ev.Key {
					continue
				}
				if t.Guarded(ev, r.rc) {
					outcome = DropGuarded
					continue
				}
				r.fire(sched, gen, fromState, t, ev)
				span.SetAttributes(attribute.String("automaton.to", r.graph.GetState(t.To).Name))
				outcome = ""
				return
			}
		}
	})
	if !ok {
		span.SetStatus(codes.Error, "guard panicked")
		return
	}
	if outcome != "" {
		span.SetAttributes(attribute.String("automaton.outcome", string(outcome)))
		r.logger.Debug().
			Str(xlog.FieldState, fromState.Name).
			Str(xlog.FieldTrigger, fmt.Sprint(ev.Key)).
			Str(xlog.FieldReason, string(outcome)).
			Msg("event dropped")
		r.notifyDrop(ev, from, outcome)
		return
	}
	span.SetAttributes(attribute.String("automaton.outcome", "transition"))
}

// fire applies t. Leaving a final state runs no actions and publishes no
// change; entering one always schedules a stop after its enter action.
func (r *Runner[K]) fire(sched Scheduler, gen uint64, fromState *ir.StateConfig[*Context], t *ir.TransitionConfig[K, *Context], ev Event[K]) {
	toState := r.graph.GetState(t.To)

	if fromState.Type != StateTypeFinal {
		r.postStateAction(sched, gen, fromState.Exit, PhaseExit, fromState.Name)
		if t.Action != nil {
			a := t.Action
			r.post(sched, gen, a.Delay, PhaseTransition, fromState.Name, func() { a.Run(ev, r.rc) })
		}
		r.postStateAction(sched, gen, toState.Enter, PhaseEnter, toState.Name)
		r.current.Store(int64(toState.ID))

		r.logger.Debug().
			Str(xlog.FieldOldState, fromState.Name).
			Str(xlog.FieldNewState, toState.Name).
			Str(xlog.FieldTrigger, fmt.Sprint(ev.Key)).
			Msg("transition")
		r.notifyChange(StateChange[K]{
			Automaton:  r.graph.ID,
			Runner:     r.name,
			InstanceID: r.instanceID,
			From:       fromState.ID,
			To:         toState.ID,
			FromName:   fromState.Name,
			ToName:     toState.Name,
			Trigger:    ev.Key,
			Payload:    ev.Payload,
			At:         time.Now(),
		})
	}

	if toState.Type == StateTypeFinal {
		var delay time.Duration
		if toState.Enter != nil && toState.Enter.Delay > 0 {
			delay = toState.Enter.Delay + finalStopMargin
		}
		r.post(sched, gen, delay, PhaseDispatch, toState.Name, r.Stop)
	}
}

func (r *Runner[K]) postStateAction(sched Scheduler, gen uint64, a *ir.StateAction[*Context], phase, state string) {
	if a == nil {
		return
	}
	r.post(sched, gen, a.Delay, phase, state, func() { a.Run(r.rc) })
}

// post queues fn on sched. fn is skipped if the worker was replaced or
// detached in the meantime.
func (r *Runner[K]) post(sched Scheduler, gen uint64, delay time.Duration, phase, state string, fn func()) {
	task := func() {
		if !r.live(gen) {
			return
		}
		r.protect(phase, state, fn)
	}
	if delay > 0 {
		sched.PostDelayed(task, delay)
		return
	}
	sched.Post(task)
}

// protect runs fn and turns a panic into a logged Fault. It reports whether
// fn returned normally.
func (r *Runner[K]) protect(phase, state string, fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			r.logger.Error().
				Str(xlog.FieldPhase, phase).
				Str(xlog.FieldState, state).
				Interface("recovered", rec).
				Msg("action panicked")
			r.notifyFault(Fault{
				Automaton:  r.graph.ID,
				Runner:     r.name,
				InstanceID: r.instanceID,
				Phase:      phase,
				State:      state,
				Recovered:  rec,
			})
		}
	}()
	fn()
	return true
}

func (r *Runner[K]) observers() []Notifier[K] {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	return r.notifiers
}

func (r *Runner[K]) notifyChange(c StateChange[K]) {
	for _, n := range r.observers() {
		n.StateChanged(c)
	}
}

func (r *Runner[K]) notifyDrop(ev Event[K], state StateID, reason DropReason) {
	d := Drop[K]{
		Automaton:  r.graph.ID,
		Runner:     r.name,
		InstanceID: r.instanceID,
		State:      state,
		Trigger:    ev.Key,
		Reason:     reason,
	}
	if s := r.graph.GetState(state); s != nil {
		d.StateName = s.Name
	}
	for _, n := range r.observers() {
		if dn, ok := n.(DropNotifier[K]); ok {
			dn.EventDropped(d)
		}
	}
}

func (r *Runner[K]) notifyFault(f Fault) {
	for _, n := range r.observers() {
		if fn, ok := n.(FaultNotifier); ok {
			fn.ActionFailed(f)
		}
	}
}
