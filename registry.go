package automaton

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/felixgeelhaar/automaton/internal/ir"
	"github.com/felixgeelhaar/automaton/internal/parser"
)

// Registry holds the named actions and guards that YAML definitions refer to.
// A guard reference prefixed with "!" uses the negation of the named guard.
type Registry struct {
	mu          sync.RWMutex
	states      map[string]StateFunc
	transitions map[string]TransitionFunc[string]
	guards      map[string]Guard[string]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		states:      make(map[string]StateFunc),
		transitions: make(map[string]TransitionFunc[string]),
		guards:      make(map[string]Guard[string]),
	}
}

// WithStateAction registers an enter/exit action by name
func (r *Registry) WithStateAction(name string, fn StateFunc) *Registry {
	r.mu.Lock()
	r.states[name] = fn
	r.mu.Unlock()
	return r
}

// WithAction registers a transition action by name
func (r *Registry) WithAction(name string, fn TransitionFunc[string]) *Registry {
	r.mu.Lock()
	r.transitions[name] = fn
	r.mu.Unlock()
	return r
}

// WithGuard registers a guard by name
func (r *Registry) WithGuard(name string, g Guard[string]) *Registry {
	r.mu.Lock()
	r.guards[name] = g
	r.mu.Unlock()
	return r
}

func (r *Registry) stateAction(name string) (StateFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.states[name]
	return fn, ok
}

func (r *Registry) action(name string) (TransitionFunc[string], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transitions[name]
	return fn, ok
}

func (r *Registry) guard(ref string) (Guard[string], bool) {
	name, negate := strings.CutPrefix(ref, "!")
	r.mu.RLock()
	g, ok := r.guards[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if negate {
		return Not(g), true
	}
	return g, true
}

// FromYAML builds an automaton keyed by string triggers from a YAML
// definition. Every referenced action and guard must be registered.
func FromYAML(data []byte, reg *Registry) (*Automaton[string], error) {
	schema, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return buildFromSchema(schema, reg)
}

// LoadFile reads and builds a YAML definition from path
func LoadFile(path string, reg *Registry) (*Automaton[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	a, err := FromYAML(data, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func buildFromSchema(schema *parser.MachineSchema, reg *Registry) (*Automaton[string], error) {
	errs := &ValidationError{}
	b := NewBuilder[string](schema.ID)
	ids := make(map[string]StateID, len(schema.States))

	for i, s := range schema.States {
		path := []string{"states", fmt.Sprintf("%d", i)}
		var opts []StateOption
		switch s.Type {
		case parser.TypeInitial:
			opts = append(opts, AsInitial())
		case parser.TypeFinal:
			opts = append(opts, AsFinal())
		}
		if s.Enter != nil {
			if fn, ok := reg.stateAction(s.Enter.Name); ok {
				opts = append(opts, OnEnterAfter(s.Enter.Delay, fn))
			} else {
				errs.AddIssue(ir.ErrCodeMissingAction, fmt.Sprintf("enter action %q not registered", s.Enter.Name), path...)
			}
		}
		if s.Exit != nil {
			if fn, ok := reg.stateAction(s.Exit.Name); ok {
				opts = append(opts, OnExitAfter(s.Exit.Delay, fn))
			} else {
				errs.AddIssue(ir.ErrCodeMissingAction, fmt.Sprintf("exit action %q not registered", s.Exit.Name), path...)
			}
		}
		if err := b.AddState(StateID(*s.ID), s.Name, opts...); err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				return nil, err
			}
			errs.Issues = append(errs.Issues, verr.Issues...)
		}
		ids[s.Name] = StateID(*s.ID)
	}

	for i, t := range schema.Transitions {
		path := []string{"transitions", fmt.Sprintf("%d", i)}
		var opts []TransitionOption[string]
		if t.Guard != "" {
			if g, ok := reg.guard(t.Guard); ok {
				opts = append(opts, GuardedBy(g))
			} else {
				errs.AddIssue(ir.ErrCodeMissingGuard, fmt.Sprintf("guard %q not registered", t.Guard), path...)
			}
		}
		if t.Action != nil {
			if fn, ok := reg.action(t.Action.Name); ok {
				opts = append(opts, DoAfter(t.Action.Delay, fn))
			} else {
				errs.AddIssue(ir.ErrCodeMissingAction, fmt.Sprintf("action %q not registered", t.Action.Name), path...)
			}
		}
		b.AddTransition(ids[t.From], ids[t.To], t.Event, opts...)
	}

	if errs.HasIssues() {
		return nil, errs
	}
	return b.Build()
}
