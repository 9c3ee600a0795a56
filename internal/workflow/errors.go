package workflow

import "fmt"

// ValidationError is a local precondition failure. It is raised before any
// persistence work happens and is surfaced to the client as a field error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-scoped validation failure.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CapabilityError means the acting user lacks the role/permission the
// transition requires. Capability checks fail closed.
type CapabilityError struct {
	ActorID    int64
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("actor %d lacks capability %s", e.ActorID, e.Capability)
}

// TransitionError means the requested event is not defined from the entity's
// current state.
type TransitionError struct {
	Entity string
	From   string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: transition %q not allowed from state %q", e.Entity, e.Event, e.From)
}

// ConflictError is an optimistic-concurrency failure: the caller's last-seen
// version no longer matches the stored row. Clients reload and retry.
type ConflictError struct {
	Entity          string
	ID              string
	ExpectedVersion int64
	ActualVersion   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently (expected version %d, found %d)",
		e.Entity, e.ID, e.ExpectedVersion, e.ActualVersion)
}
