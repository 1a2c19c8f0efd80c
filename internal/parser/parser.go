// Package parser reads declarative automaton definitions written in YAML.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/automaton/internal/ir"
)

// State type names accepted in definitions
const (
	TypeDefault = "default"
	TypeInitial = "initial"
	TypeFinal   = "final"
)

// ActionSchema names a registered action. In YAML it is either a bare name or
// a mapping with name and delay.
type ActionSchema struct {
	Name  string        `yaml:"name"`
	Delay time.Duration `yaml:"delay"`
}

// UnmarshalYAML accepts the scalar shorthand
func (a *ActionSchema) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		a.Name = strings.TrimSpace(n.Value)
		return nil
	}
	type plain ActionSchema
	return n.Decode((*plain)(a))
}

// StateSchema is a parsed state definition. ID is nil until assigned, so an
// explicit id of 0 is kept. On holds transitions written in the compact
// "trigger->target/action:guard" form.
type StateSchema struct {
	ID    *int          `yaml:"id"`
	Name  string        `yaml:"name"`
	Type  string        `yaml:"type"`
	Enter *ActionSchema `yaml:"enter"`
	Exit  *ActionSchema `yaml:"exit"`
	On    []string      `yaml:"on"`
}

// TransitionSchema is a parsed transition. From and To are state names.
type TransitionSchema struct {
	From   string        `yaml:"from"`
	To     string        `yaml:"to"`
	Event  string        `yaml:"on"`
	Guard  string        `yaml:"guard"`
	Action *ActionSchema `yaml:"do"`
}

// MachineSchema is a parsed definition
type MachineSchema struct {
	ID          string             `yaml:"id"`
	States      []StateSchema      `yaml:"states"`
	Transitions []TransitionSchema `yaml:"transitions"`
}

// Parse decodes a YAML definition. States without an id get the lowest
// positive id not declared elsewhere, in state order. Compact transitions declared on states come first, in state
// order, followed by the transitions list.
func Parse(data []byte) (*MachineSchema, error) {
	var schema MachineSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	if errs := checkIDs(schema.States); errs != nil {
		return nil, errs
	}
	assignIDs(schema.States)

	var compact []TransitionSchema
	for i := range schema.States {
		s := &schema.States[i]
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		for j, on := range s.On {
			t, err := ParseTransition(on)
			if err != nil {
				return nil, fmt.Errorf("state %q transition %d: %w", s.Name, j+1, err)
			}
			t.From = s.Name
			compact = append(compact, t)
		}
	}
	schema.Transitions = append(compact, schema.Transitions...)

	if errs := Validate(&schema); errs != nil {
		return nil, errs
	}
	return &schema, nil
}

// checkIDs reports explicit ids shared by two states
func checkIDs(states []StateSchema) *ir.ValidationError {
	errs := &ir.ValidationError{}
	owner := make(map[int]string, len(states))
	for i, s := range states {
		if s.ID == nil {
			continue
		}
		if prev, ok := owner[*s.ID]; ok {
			errs.AddIssue(ir.ErrCodeDuplicateState,
				fmt.Sprintf("states %q and %q share id %d", prev, s.Name, *s.ID),
				"states", fmt.Sprintf("%d", i), "id")
			continue
		}
		owner[*s.ID] = s.Name
	}
	if errs.HasIssues() {
		return errs
	}
	return nil
}

func assignIDs(states []StateSchema) {
	taken := make(map[int]bool, len(states))
	for _, s := range states {
		if s.ID != nil {
			taken[*s.ID] = true
		}
	}
	next := 1
	for i := range states {
		if states[i].ID != nil {
			continue
		}
		for taken[next] {
			next++
		}
		id := next
		states[i].ID = &id
		taken[id] = true
	}
}

// Validate checks names and references. Graph-level rules are left to the
// builder.
func Validate(schema *MachineSchema) *ir.ValidationError {
	errs := &ir.ValidationError{}
	if schema.ID == "" {
		errs.AddIssue("MISSING_ID", "definition must have an id", "id")
	}

	names := make(map[string]bool, len(schema.States))
	for i, s := range schema.States {
		path := []string{"states", fmt.Sprintf("%d", i)}
		switch {
		case s.Name == "":
			errs.AddIssue("MISSING_NAME", "state must have a name", path...)
		case names[s.Name]:
			errs.AddIssue(ir.ErrCodeDuplicateState, fmt.Sprintf("state %q declared twice", s.Name), path...)
		}
		names[s.Name] = true

		switch s.Type {
		case "", TypeDefault, TypeInitial, TypeFinal:
		default:
			errs.AddIssue("INVALID_TYPE", fmt.Sprintf("state %q has unknown type %q", s.Name, s.Type), path...)
		}
	}

	for i, t := range schema.Transitions {
		path := []string{"transitions", fmt.Sprintf("%d", i)}
		if !names[t.From] {
			errs.AddIssue(ir.ErrCodeInvalidSource, fmt.Sprintf("transition source %q not found", t.From), path...)
		}
		if !names[t.To] {
			errs.AddIssue(ir.ErrCodeInvalidTarget, fmt.Sprintf("transition target %q not found", t.To), path...)
		}
		if t.Event == "" {
			errs.AddIssue("MISSING_EVENT", "transition must have a trigger", path...)
		}
	}

	if errs.HasIssues() {
		return errs
	}
	return nil
}

// ParseTransition parses the compact form.
// Format: "EVENT->target", "EVENT->target:guard", "EVENT->target/action" or
// "EVENT->target/action:guard".
func ParseTransition(s string) (TransitionSchema, error) {
	trans := TransitionSchema{}

	arrowIdx := strings.Index(s, "->")
	if arrowIdx == -1 {
		return trans, fmt.Errorf("missing '->' in transition: %s", s)
	}

	trans.Event = strings.TrimSpace(s[:arrowIdx])
	rest := strings.TrimSpace(s[arrowIdx+2:])

	if trans.Event == "" {
		return trans, fmt.Errorf("empty event in transition: %s", s)
	}

	if colonIdx := strings.LastIndex(rest, ":"); colonIdx != -1 {
		trans.Guard = strings.TrimSpace(rest[colonIdx+1:])
		rest = rest[:colonIdx]
	}

	if slashIdx := strings.Index(rest, "/"); slashIdx != -1 {
		trans.To = strings.TrimSpace(rest[:slashIdx])
		if name := strings.TrimSpace(rest[slashIdx+1:]); name != "" {
			trans.Action = &ActionSchema{Name: name}
		}
	} else {
		trans.To = strings.TrimSpace(rest)
	}

	if trans.To == "" {
		return trans, fmt.Errorf("empty target in transition: %s", s)
	}

	return trans, nil
}
