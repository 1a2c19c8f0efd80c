package ir

import "fmt"

// StateConfig represents a single state node
type StateConfig[C any] struct {
	ID    StateID
	Name  string
	Type  StateType
	Enter *StateAction[C] // Optional
	Exit  *StateAction[C] // Optional
}

// TransitionConfig represents a single transition
type TransitionConfig[K comparable, C any] struct {
	From    StateID
	To      StateID
	Trigger K
	Guard   Guard[K, C]             // Optional, nil never blocks
	Action  *TransitionAction[K, C] // Optional
}

// Guarded reports whether the guard blocks this transition for ev
func (t *TransitionConfig[K, C]) Guarded(ev Event[K], ctx C) bool {
	return t.Guard != nil && t.Guard(ev, ctx)
}

// Edge groups the transitions between one source and one target, in registration order
type Edge[K comparable, C any] struct {
	To          StateID
	Transitions []*TransitionConfig[K, C]
}

// Graph is the internal representation of an automaton.
// It is mutated only while being built; runners treat it as read-only.
type Graph[K comparable, C any] struct {
	ID       string
	States   map[StateID]*StateConfig[C]
	order    []StateID
	outgoing map[StateID][]*Edge[K, C]
	triggers []K
	seen     map[K]struct{}
}

// NewGraph creates an empty graph with initialized maps
func NewGraph[K comparable, C any](id string) *Graph[K, C] {
	return &Graph[K, C]{
		ID:       id,
		States:   make(map[StateID]*StateConfig[C]),
		outgoing: make(map[StateID][]*Edge[K, C]),
		seen:     make(map[K]struct{}),
	}
}

// AddState registers a state. A duplicate id is a structural error.
func (g *Graph[K, C]) AddState(s *StateConfig[C]) error {
	if prev, ok := g.States[s.ID]; ok {
		errs := &ValidationError{}
		errs.AddIssue(ErrCodeDuplicateState,
			fmt.Sprintf("state %d (%s) already defined as '%s'", s.ID, s.Name, prev.Name),
			"states", fmt.Sprintf("%d", s.ID))
		return errs
	}
	g.States[s.ID] = s
	g.order = append(g.order, s.ID)
	return nil
}

// AddTransition appends t to the edge from t.From to t.To.
// Repeated calls for the same pair accumulate.
func (g *Graph[K, C]) AddTransition(t *TransitionConfig[K, C]) {
	edges := g.outgoing[t.From]
	var edge *Edge[K, C]
	for _, e := range edges {
		if e.To == t.To {
			edge = e
			break
		}
	}
	if edge == nil {
		edge = &Edge[K, C]{To: t.To}
		g.outgoing[t.From] = append(edges, edge)
	}
	edge.Transitions = append(edge.Transitions, t)

	if _, ok := g.seen[t.Trigger]; !ok {
		g.seen[t.Trigger] = struct{}{}
		g.triggers = append(g.triggers, t.Trigger)
	}
}

// SetType changes the type of a state. Returns false if the state is unknown.
func (g *Graph[K, C]) SetType(id StateID, t StateType) bool {
	s, ok := g.States[id]
	if !ok {
		return false
	}
	s.Type = t
	return true
}

// GetState returns the state config for the given ID, or nil if not found
func (g *Graph[K, C]) GetState(id StateID) *StateConfig[C] {
	return g.States[id]
}

// Edges returns the outgoing edges of a state in resolution order
func (g *Graph[K, C]) Edges(from StateID) []*Edge[K, C] {
	return g.outgoing[from]
}

// Triggers returns the distinct triggers in first-registration order
func (g *Graph[K, C]) Triggers() []K {
	out := make([]K, len(g.triggers))
	copy(out, g.triggers)
	return out
}

// StateIDs returns all state IDs in registration order
func (g *Graph[K, C]) StateIDs() []StateID {
	out := make([]StateID, len(g.order))
	copy(out, g.order)
	return out
}

// InitialStates returns the IDs of all states typed Initial, in registration order
func (g *Graph[K, C]) InitialStates() []StateID {
	var ids []StateID
	for _, id := range g.order {
		if g.States[id].Type == StateTypeInitial {
			ids = append(ids, id)
		}
	}
	return ids
}

// Sources returns the source states that have outgoing edges, in registration order
// of their first transition.
func (g *Graph[K, C]) Sources() []StateID {
	var ids []StateID
	for _, id := range g.order {
		if len(g.outgoing[id]) > 0 {
			ids = append(ids, id)
		}
	}
	for from := range g.outgoing {
		if _, ok := g.States[from]; !ok {
			ids = append(ids, from)
		}
	}
	return ids
}

// Clone returns a deep copy of the graph structure.
// Action and guard functions are shared.
func (g *Graph[K, C]) Clone() *Graph[K, C] {
	c := NewGraph[K, C](g.ID)
	for _, id := range g.order {
		s := *g.States[id]
		c.States[id] = &s
		c.order = append(c.order, id)
	}
	for from, edges := range g.outgoing {
		cloned := make([]*Edge[K, C], 0, len(edges))
		for _, e := range edges {
			ce := &Edge[K, C]{To: e.To, Transitions: make([]*TransitionConfig[K, C], 0, len(e.Transitions))}
			for _, t := range e.Transitions {
				ct := *t
				ce.Transitions = append(ce.Transitions, &ct)
			}
			cloned = append(cloned, ce)
		}
		c.outgoing[from] = cloned
	}
	c.triggers = append(c.triggers, g.triggers...)
	for k := range g.seen {
		c.seen[k] = struct{}{}
	}
	return c
}
