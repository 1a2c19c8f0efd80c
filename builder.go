package automaton

import (
	"time"

	"github.com/felixgeelhaar/automaton/internal/ir"
)

// Builder accumulates states and transitions. Build freezes the result into an
// immutable Automaton; the builder can keep being used afterwards without
// affecting automata already built.
type Builder[K comparable] struct {
	graph *ir.Graph[K, *Context]
}

// StateOption configures a state added with AddState
type StateOption func(s *ir.StateConfig[*Context])

// TransitionOption configures a transition added with AddTransition
type TransitionOption[K comparable] func(t *ir.TransitionConfig[K, *Context])

// NewBuilder creates a new Builder with the given automaton ID
func NewBuilder[K comparable](id string) *Builder[K] {
	return &Builder[K]{graph: ir.NewGraph[K, *Context](id)}
}

// AddState registers a state. The state type is Default unless an option or
// SetInitialState/SetFinalState changes it. Re-using an id is a structural error.
func (b *Builder[K]) AddState(id StateID, name string, opts ...StateOption) error {
	s := &ir.StateConfig[*Context]{
		ID:   id,
		Name: name,
		Type: StateTypeDefault,
	}
	for _, opt := range opts {
		opt(s)
	}
	return b.graph.AddState(s)
}

// AddTransition appends a transition from -> to fired by trigger.
// Without options the transition is unconditional. Several transitions may
// share the same pair; they are tried in registration order.
func (b *Builder[K]) AddTransition(from, to StateID, trigger K, opts ...TransitionOption[K]) *Builder[K] {
	t := &ir.TransitionConfig[K, *Context]{
		From:    from,
		To:      to,
		Trigger: trigger,
	}
	for _, opt := range opts {
		opt(t)
	}
	b.graph.AddTransition(t)
	return b
}

// SetInitialState marks a state as initial. Unknown ids are ignored.
func (b *Builder[K]) SetInitialState(id StateID) *Builder[K] {
	b.graph.SetType(id, StateTypeInitial)
	return b
}

// SetFinalState marks a state as final. Unknown ids are ignored.
func (b *Builder[K]) SetFinalState(id StateID) *Builder[K] {
	b.graph.SetType(id, StateTypeFinal)
	return b
}

// Build validates the graph and returns an immutable Automaton.
// Transitions referencing unknown states are reported as a ValidationError.
func (b *Builder[K]) Build() (*Automaton[K], error) {
	g := b.graph.Clone()
	if errs := ir.Validate(g); errs != nil {
		return nil, errs
	}
	return &Automaton[K]{graph: g}, nil
}

// --- State options ---

// AsInitial marks the state as the initial state
func AsInitial() StateOption {
	return func(s *ir.StateConfig[*Context]) { s.Type = StateTypeInitial }
}

// AsFinal marks the state as a final state
func AsFinal() StateOption {
	return func(s *ir.StateConfig[*Context]) { s.Type = StateTypeFinal }
}

// OnEnter sets the enter action
func OnEnter(fn StateFunc) StateOption {
	return OnEnterAfter(0, fn)
}

// OnEnterAfter sets an enter action that runs d after the state is entered
func OnEnterAfter(d time.Duration, fn StateFunc) StateOption {
	return func(s *ir.StateConfig[*Context]) {
		if fn != nil {
			s.Enter = &ir.StateAction[*Context]{Run: fn, Delay: d}
		}
	}
}

// OnExit sets the exit action
func OnExit(fn StateFunc) StateOption {
	return OnExitAfter(0, fn)
}

// OnExitAfter sets an exit action that runs d after the state is left
func OnExitAfter(d time.Duration, fn StateFunc) StateOption {
	return func(s *ir.StateConfig[*Context]) {
		if fn != nil {
			s.Exit = &ir.StateAction[*Context]{Run: fn, Delay: d}
		}
	}
}

// --- Transition options ---

// Do sets the transition action
func Do[K comparable](fn TransitionFunc[K]) TransitionOption[K] {
	return DoAfter(0, fn)
}

// DoAfter sets a transition action that runs d after the transition fires
func DoAfter[K comparable](d time.Duration, fn TransitionFunc[K]) TransitionOption[K] {
	return func(t *ir.TransitionConfig[K, *Context]) {
		if fn != nil {
			t.Action = &ir.TransitionAction[K, *Context]{Run: fn, Delay: d}
		}
	}
}

// GuardedBy sets the guard. The transition is skipped whenever g returns true.
func GuardedBy[K comparable](g Guard[K]) TransitionOption[K] {
	return func(t *ir.TransitionConfig[K, *Context]) {
		if g != nil {
			t.Guard = ir.Guard[K, *Context](g)
		}
	}
}
