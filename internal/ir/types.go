package ir

import "time"

// StateType classifies a state node
type StateType int

const (
	// StateTypeDefault is an ordinary state
	StateTypeDefault StateType = iota
	// StateTypeInitial is the state a runner starts in; exactly one per graph
	StateTypeInitial
	// StateTypeFinal stops the runner once entered
	StateTypeFinal
)

// String returns the string representation of StateType
func (s StateType) String() string {
	switch s {
	case StateTypeDefault:
		return "default"
	case StateTypeInitial:
		return "initial"
	case StateTypeFinal:
		return "final"
	default:
		return "unknown"
	}
}

// StateID uniquely identifies a state within a graph
type StateID int

// Event is a runtime trigger. Only Key takes part in transition matching.
type Event[K comparable] struct {
	Key     K
	Payload any
}

// StateAction runs when a state is entered or exited
type StateAction[C any] struct {
	Run   func(ctx C)
	Delay time.Duration
}

// TransitionAction runs when a transition fires
type TransitionAction[K comparable, C any] struct {
	Run   func(ev Event[K], ctx C)
	Delay time.Duration
}

// Guard blocks a transition when it returns true
type Guard[K comparable, C any] func(ev Event[K], ctx C) bool
