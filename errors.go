package automaton

import (
	"errors"

	"github.com/felixgeelhaar/automaton/internal/ir"
)

var (
	// ErrStructural is matched by every graph validation error, including a
	// missing or duplicated initial state at runner construction.
	ErrStructural = ir.ErrStructural

	ErrNilAutomaton = errors.New("automaton is nil")
	ErrNotRunning   = errors.New("runner is not running")
	ErrRunnerActive = errors.New("runner has an active worker")
	ErrNilStore     = errors.New("store is nil")
)

// ValidationError lists every structural problem found in a graph
type ValidationError = ir.ValidationError

// ValidationIssue is a single structural problem
type ValidationIssue = ir.ValidationIssue

// Validation error codes
const (
	ErrCodeNoInitial       = ir.ErrCodeNoInitial
	ErrCodeMultipleInitial = ir.ErrCodeMultipleInitial
	ErrCodeDuplicateState  = ir.ErrCodeDuplicateState
	ErrCodeInvalidSource   = ir.ErrCodeInvalidSource
	ErrCodeInvalidTarget   = ir.ErrCodeInvalidTarget
	ErrCodeUnknownState    = ir.ErrCodeUnknownState
	ErrCodeMissingAction   = ir.ErrCodeMissingAction
	ErrCodeMissingGuard    = ir.ErrCodeMissingGuard
)

// IsValidationCode reports whether err is a ValidationError carrying code
func IsValidationCode(err error, code string) bool {
	var v *ValidationError
	return errors.As(err, &v) && v.HasCode(code)
}
