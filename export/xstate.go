// Package export provides exporters for converting automata to external
// formats like XState JSON.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/automaton"
)

// XStateExporter converts an Automaton to XState-compatible JSON format.
// The exported JSON can be used with:
// - XState Visualizer (stately.ai/viz)
// - XState Inspector
// - XState v5 compatible tools
//
// States are keyed by name and events by the printed trigger. Actions and
// guards are functions, so they are exported as generated labels.
type XStateExporter[K comparable] struct {
	automaton *automaton.Automaton[K]
}

// NewXStateExporter creates a new exporter for the given automaton
func NewXStateExporter[K comparable](a *automaton.Automaton[K]) *XStateExporter[K] {
	return &XStateExporter[K]{automaton: a}
}

// XStateMachine represents an XState machine configuration
type XStateMachine struct {
	ID      string                `json:"id"`
	Initial string                `json:"initial,omitempty"`
	States  map[string]XStateNode `json:"states"`
}

// XStateNode represents a single state in XState format
type XStateNode struct {
	Type  string                        `json:"type,omitempty"` // "final" or empty
	Entry []string                      `json:"entry,omitempty"`
	Exit  []string                      `json:"exit,omitempty"`
	On    map[string][]XStateTransition `json:"on,omitempty"`
}

// XStateTransition represents a transition in XState format. Candidates for
// one event are listed in resolution order.
type XStateTransition struct {
	Target  string   `json:"target"`
	Actions []string `json:"actions,omitempty"`
	Guard   string   `json:"guard,omitempty"`
}

// Export converts the automaton to XState JSON format
func (e *XStateExporter[K]) Export() (*XStateMachine, error) {
	if e.automaton == nil {
		return nil, automaton.ErrNilAutomaton
	}

	states := e.automaton.States()
	names := make(map[automaton.StateID]string, len(states))
	machine := &XStateMachine{
		ID:     e.automaton.ID(),
		States: make(map[string]XStateNode, len(states)),
	}

	for _, s := range states {
		if _, dup := machine.States[s.Name]; dup {
			return nil, fmt.Errorf("state name %q is used twice", s.Name)
		}
		names[s.ID] = s.Name
		node := XStateNode{}
		if s.Type == automaton.StateTypeFinal {
			node.Type = "final"
		}
		if s.HasEnter {
			node.Entry = []string{actionLabel(s.Name+".enter", s.EnterDelay.Milliseconds())}
		}
		if s.HasExit {
			node.Exit = []string{actionLabel(s.Name+".exit", s.ExitDelay.Milliseconds())}
		}
		machine.States[s.Name] = node
	}

	if initial, err := e.automaton.Initial(); err == nil {
		machine.Initial = names[initial]
	}

	for _, t := range e.automaton.Transitions() {
		from := names[t.From]
		event := fmt.Sprint(t.Trigger)
		node := machine.States[from]
		if node.On == nil {
			node.On = make(map[string][]XStateTransition)
		}

		transition := XStateTransition{Target: names[t.To]}
		if t.HasAction {
			transition.Actions = []string{actionLabel(fmt.Sprintf("%s.%s", from, event), t.ActionDelay.Milliseconds())}
		}
		if t.Guarded {
			transition.Guard = fmt.Sprintf("unless.%s.%s.%d", from, event, len(node.On[event]))
		}
		node.On[event] = append(node.On[event], transition)
		machine.States[from] = node
	}

	return machine, nil
}

// ExportJSON returns the machine configuration as a JSON string
func (e *XStateExporter[K]) ExportJSON() (string, error) {
	machine, err := e.Export()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(machine)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ExportJSONIndent returns the machine configuration as a formatted JSON string
func (e *XStateExporter[K]) ExportJSONIndent(prefix, indent string) (string, error) {
	machine, err := e.Export()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(machine, prefix, indent)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func actionLabel(name string, delayMs int64) string {
	if delayMs > 0 {
		return fmt.Sprintf("%s@%dms", name, delayMs)
	}
	return name
}
