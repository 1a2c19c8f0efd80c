package automaton

import (
	"time"

	"github.com/felixgeelhaar/automaton/internal/ir"
)

// Re-export non-generic types from internal/ir for public API
type (
	// StateID uniquely identifies a state within an automaton
	StateID = ir.StateID
	// StateType classifies a state as initial, final or default
	StateType = ir.StateType
)

// Event is a runtime trigger delivered to a Runner. Transitions match on Key;
// Payload carries the extras of a structured event to guards and actions.
type Event[K comparable] = ir.Event[K]

// StateFunc is executed when a state is entered or exited.
type StateFunc func(rc *Context)

// TransitionFunc is executed when a transition fires.
// It receives the triggering event and the runner context.
type TransitionFunc[K comparable] func(ev Event[K], rc *Context)

// Guard blocks a transition when it returns true. A nil guard never blocks.
type Guard[K comparable] func(ev Event[K], rc *Context) bool

// Re-export constants
const (
	StateTypeDefault = ir.StateTypeDefault
	StateTypeInitial = ir.StateTypeInitial
	StateTypeFinal   = ir.StateTypeFinal
)

// Message is the trigger key of integer-message automata
type Message = int64

// Status is the lifecycle position of a Runner
type Status int

const (
	StatusStopped Status = iota
	StatusPaused
	StatusRunning
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPaused:
		return "paused"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// StateInfo is a read-only view of a state
type StateInfo struct {
	ID         StateID
	Name       string
	Type       StateType
	HasEnter   bool
	HasExit    bool
	EnterDelay time.Duration
	ExitDelay  time.Duration
}

// TransitionInfo is a read-only view of a transition
type TransitionInfo[K comparable] struct {
	From        StateID
	To          StateID
	Trigger     K
	Guarded     bool
	HasAction   bool
	ActionDelay time.Duration
}
