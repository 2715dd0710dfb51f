package clinical

import (
	"fmt"
	"strings"

	"hivcare-app-server/internal/models"
)

// InvalidTransitionError is returned when an operation is not permitted
// from the appointment's current lifecycle state.
type InvalidTransitionError struct {
	Current   models.AppointmentStatus
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("operation %q is not valid from status %q", e.Operation, e.Current)
}

// TerminalStateError is returned when an operation is attempted against
// an appointment already in a terminal status.
type TerminalStateError struct {
	Current   models.AppointmentStatus
	Operation string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("appointment is already %q; operation %q is not allowed", e.Current, e.Operation)
}

// DuplicateEnrollmentError is returned when the patient already has an
// active enrollment in the requested program.
type DuplicateEnrollmentError struct {
	PatientID string
	Program   models.Program
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("patient %s already has an active %s enrollment", e.PatientID, e.Program)
}

// FieldError is a single field-scoped validation failure. Item is the
// zero-based index of the offending prescription item, or -1 when the
// failure is not item-scoped.
type FieldError struct {
	Item   int
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	if e.Item >= 0 {
		return fmt.Sprintf("item %d: %s: %s", e.Item, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError aggregates field-scoped failures for one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Warning codes attached to otherwise-successful decisions.
const (
	WarnDerivedDataMismatch      = "DerivedDataMismatch"
	WarnNonFatalSideEffectFailed = "NonFatalSideEffectFailure"
	WarnInsufficientStock        = "InsufficientStock"
)

// Warning reports a non-fatal condition alongside a successful decision.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
