package automaton

import "github.com/felixgeelhaar/automaton/internal/ir"

// Automaton is an immutable state/transition graph. It holds no execution
// state, so any number of Runners may walk it concurrently.
type Automaton[K comparable] struct {
	graph *ir.Graph[K, *Context]
}

// ID returns the automaton identifier
func (a *Automaton[K]) ID() string {
	return a.graph.ID
}

// Triggers returns every distinct trigger used by a transition, in first
// registration order. Event sources use it to filter what they deliver.
func (a *Automaton[K]) Triggers() []K {
	return a.graph.Triggers()
}

// Initial returns the single initial state, or a structural error when there
// is none or more than one.
func (a *Automaton[K]) Initial() (StateID, error) {
	id, errs := ir.ValidateInitial(a.graph)
	if errs != nil {
		return 0, errs
	}
	return id, nil
}

// State returns a view of the given state
func (a *Automaton[K]) State(id StateID) (StateInfo, bool) {
	s := a.graph.GetState(id)
	if s == nil {
		return StateInfo{}, false
	}
	return stateInfo(s), true
}

// States returns every state in registration order
func (a *Automaton[K]) States() []StateInfo {
	ids := a.graph.StateIDs()
	out := make([]StateInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, stateInfo(a.graph.GetState(id)))
	}
	return out
}

// Transitions returns every transition, grouped by source state in
// registration order and, per source, in resolution order.
func (a *Automaton[K]) Transitions() []TransitionInfo[K] {
	var out []TransitionInfo[K]
	for _, from := range a.graph.StateIDs() {
		for _, edge := range a.graph.Edges(from) {
			for _, t := range edge.Transitions {
				info := TransitionInfo[K]{
					From:    t.From,
					To:      t.To,
					Trigger: t.Trigger,
					Guarded: t.Guard != nil,
				}
				if t.Action != nil {
					info.HasAction = true
					info.ActionDelay = t.Action.Delay
				}
				out = append(out, info)
			}
		}
	}
	return out
}

func stateInfo(s *ir.StateConfig[*Context]) StateInfo {
	info := StateInfo{ID: s.ID, Name: s.Name, Type: s.Type}
	if s.Enter != nil {
		info.HasEnter = true
		info.EnterDelay = s.Enter.Delay
	}
	if s.Exit != nil {
		info.HasExit = true
		info.ExitDelay = s.Exit.Delay
	}
	return info
}
