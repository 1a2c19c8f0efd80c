package automaton

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	xlog "github.com/felixgeelhaar/automaton/internal/log"
)

// StateChange is published after a runner moves to a new state
type StateChange[K comparable] struct {
	Automaton  string
	Runner     string
	InstanceID int64
	From       StateID
	To         StateID
	FromName   string
	ToName     string
	Trigger    K
	Payload    any
	At         time.Time
}

// Notifier receives state changes. It is called on the runner's worker and
// must not block.
type Notifier[K comparable] interface {
	StateChanged(change StateChange[K])
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc[K comparable] func(change StateChange[K])

// StateChanged implements Notifier
func (f NotifierFunc[K]) StateChanged(change StateChange[K]) { f(change) }

// DropReason explains why an event did not move the runner
type DropReason string

const (
	DropNoTransition DropReason = "no_transition"
	DropGuarded      DropReason = "guarded"
	DropNotRunning   DropReason = "not_running"
)

// Drop describes an event that did not cause a transition
type Drop[K comparable] struct {
	Automaton  string
	Runner     string
	InstanceID int64
	State      StateID
	StateName  string
	Trigger    K
	Reason     DropReason
}

// DropNotifier is optionally implemented by a Notifier to observe dropped events.
// Events rejected by Dispatch are reported on the caller's goroutine.
type DropNotifier[K comparable] interface {
	EventDropped(drop Drop[K])
}

// Action phases reported in a Fault
const (
	PhaseEnter      = "enter"
	PhaseExit       = "exit"
	PhaseTransition = "transition"
	PhaseDispatch   = "dispatch"
)

// Fault describes an action or guard that panicked on a runner's worker
type Fault struct {
	Automaton  string
	Runner     string
	InstanceID int64
	Phase      string
	State      string
	Recovered  any
}

// FaultNotifier is optionally implemented by a Notifier to observe action failures
type FaultNotifier interface {
	ActionFailed(fault Fault)
}

// LogNotifier writes one structured log line per notification
type LogNotifier[K comparable] struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier writing to logger
func NewLogNotifier[K comparable](logger zerolog.Logger) *LogNotifier[K] {
	return &LogNotifier[K]{logger: logger}
}

// StateChanged implements Notifier
func (n *LogNotifier[K]) StateChanged(c StateChange[K]) {
	n.logger.Info().
		Str(xlog.FieldAutomaton, c.Automaton).
		Str(xlog.FieldRunner, c.Runner).
		Int64(xlog.FieldInstanceID, c.InstanceID).
		Str(xlog.FieldOldState, c.FromName).
		Str(xlog.FieldNewState, c.ToName).
		Str(xlog.FieldTrigger, fmt.Sprint(c.Trigger)).
		Msg("state changed")
}

// EventDropped implements DropNotifier
func (n *LogNotifier[K]) EventDropped(d Drop[K]) {
	n.logger.Debug().
		Str(xlog.FieldAutomaton, d.Automaton).
		Str(xlog.FieldRunner, d.Runner).
		Int64(xlog.FieldInstanceID, d.InstanceID).
		Str(xlog.FieldState, d.StateName).
		Str(xlog.FieldTrigger, fmt.Sprint(d.Trigger)).
		Str(xlog.FieldReason, string(d.Reason)).
		Msg("event dropped")
}

// ActionFailed implements FaultNotifier
func (n *LogNotifier[K]) ActionFailed(f Fault) {
	n.logger.Error().
		Str(xlog.FieldAutomaton, f.Automaton).
		Str(xlog.FieldRunner, f.Runner).
		Int64(xlog.FieldInstanceID, f.InstanceID).
		Str(xlog.FieldPhase, f.Phase).
		Str(xlog.FieldState, f.State).
		Interface("recovered", f.Recovered).
		Msg("action panicked")
}
