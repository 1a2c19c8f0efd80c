package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructural is matched by every ValidationError via errors.Is
var ErrStructural = errors.New("structural error")

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Code    string   // e.g., "NO_INITIAL", "INVALID_TARGET"
	Message string   // Human-readable description
	Path    []string // e.g., ["transitions", "0", "2"]
}

// String returns a human-readable representation of the issue
func (v ValidationIssue) String() string {
	if len(v.Path) > 0 {
		return fmt.Sprintf("[%s] %s (at %s)", v.Code, v.Message, strings.Join(v.Path, "."))
	}
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// ValidationError contains all validation issues found during validation
type ValidationError struct {
	Issues []ValidationIssue
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d issues:\n", len(e.Issues)))
	for i, issue := range e.Issues {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, issue.String()))
	}
	return b.String()
}

// Is makes every ValidationError match ErrStructural
func (e *ValidationError) Is(target error) bool {
	return target == ErrStructural
}

// AddIssue adds a validation issue to the error
func (e *ValidationError) AddIssue(code, message string, path ...string) {
	e.Issues = append(e.Issues, ValidationIssue{
		Code:    code,
		Message: message,
		Path:    path,
	})
}

// HasIssues returns true if there are any validation issues
func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// HasCode reports whether any issue carries the given code
func (e *ValidationError) HasCode(code string) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Validation error codes
const (
	ErrCodeNoInitial       = "NO_INITIAL"
	ErrCodeMultipleInitial = "MULTIPLE_INITIAL"
	ErrCodeDuplicateState  = "DUPLICATE_STATE"
	ErrCodeInvalidSource   = "INVALID_SOURCE"
	ErrCodeInvalidTarget   = "INVALID_TARGET"
	ErrCodeUnknownState    = "UNKNOWN_STATE"
	ErrCodeMissingAction   = "MISSING_ACTION"
	ErrCodeMissingGuard    = "MISSING_GUARD"
)

// Validate checks that every transition references registered states
func Validate[K comparable, C any](g *Graph[K, C]) *ValidationError {
	errs := &ValidationError{}

	for _, from := range g.Sources() {
		for i, edge := range g.Edges(from) {
			edgePath := []string{"transitions", fmt.Sprintf("%d", from), fmt.Sprintf("%d", i)}

			if _, ok := g.States[from]; !ok {
				errs.AddIssue(ErrCodeInvalidSource,
					fmt.Sprintf("transition source %d not found", from),
					edgePath...)
			}
			if _, ok := g.States[edge.To]; !ok {
				errs.AddIssue(ErrCodeInvalidTarget,
					fmt.Sprintf("transition target %d not found", edge.To),
					edgePath...)
			}
		}
	}

	if errs.HasIssues() {
		return errs
	}
	return nil
}

// ValidateInitial checks that exactly one state is typed Initial and returns it
func ValidateInitial[K comparable, C any](g *Graph[K, C]) (StateID, *ValidationError) {
	initial := g.InitialStates()
	switch len(initial) {
	case 1:
		return initial[0], nil
	case 0:
		errs := &ValidationError{}
		errs.AddIssue(ErrCodeNoInitial, fmt.Sprintf("automaton '%s' must have an initial state", g.ID))
		return 0, errs
	default:
		errs := &ValidationError{}
		names := make([]string, 0, len(initial))
		for _, id := range initial {
			names = append(names, g.States[id].Name)
		}
		errs.AddIssue(ErrCodeMultipleInitial,
			fmt.Sprintf("automaton '%s' cannot have more than one initial state (found %s)",
				g.ID, strings.Join(names, ", ")))
		return 0, errs
	}
}
