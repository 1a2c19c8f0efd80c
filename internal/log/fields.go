package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"

	// Automaton fields
	FieldAutomaton  = "automaton"
	FieldRunner     = "runner"
	FieldInstanceID = "instance_id"
	FieldTrigger    = "trigger"
	FieldOldState   = "old_state"
	FieldNewState   = "new_state"
	FieldState      = "state"
	FieldReason     = "reason"
	FieldPhase      = "phase"

	// Storage fields
	FieldStore = "store"
	FieldKey   = "key"
)
