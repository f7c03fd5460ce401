package service

import "fmt"

// ValidationError reports malformed or missing required input. It is
// surfaced to the caller with field-level detail and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError reports a record that is absent or outside the caller's
// tenant scope. The two cases are deliberately indistinguishable so that
// cross-tenant existence never leaks.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidStateTransitionError reports an action attempted from a state that
// does not permit it. Carries current and attempted status for diagnostics.
type InvalidStateTransitionError struct {
	Current   string
	Attempted string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a record in state %s", e.Attempted, e.Current)
}
