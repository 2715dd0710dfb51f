// Package clinical implements the decision core of the care workflow:
// the appointment lifecycle, program enrollment policy, and
// prescription consistency rules. Every function here is pure: it is
// handed current state and returns either a decision plus the
// side-effect commands the caller must execute, or a typed rejection.
// Nothing in this package touches the database or the network.
package clinical

import (
	"fmt"
	"time"

	"hivcare-app-server/internal/models"
)

// Operation names used in transition rejections.
const (
	OpCheckIn    = "check-in"
	OpStartVisit = "start-visit"
	OpMarkNoShow = "mark-no-show"
	OpCancel     = "cancel"
	OpReschedule = "reschedule"
	OpComplete   = "complete"
)

// AppointmentDecision is the accepted outcome of a lifecycle operation.
// The caller applies Status (and any populated fields) to the
// appointment record, then executes Commands.
type AppointmentDecision struct {
	Status             models.AppointmentStatus
	CancellationReason string
	ClinicalSummary    string
	NewDate            *time.Time
	NewTime            string
	Commands           []Command
}

// RescheduleInput carries the replacement slot for a reschedule.
type RescheduleInput struct {
	NewDate time.Time
	NewTime string
	Reason  string
}

// CompleteInput carries the clinical outcome of a finished visit.
type CompleteInput struct {
	ClinicalSummary string
	Visit           CreateVisitDetails
}

func isTerminal(s models.AppointmentStatus) bool {
	switch s {
	case models.StatusCompleted, models.StatusCancelled, models.StatusNoShow, models.StatusRescheduled:
		return true
	}
	return false
}

// Scheduled and Confirmed are both "not yet arrived" for transition
// purposes.
func isNotYetArrived(s models.AppointmentStatus) bool {
	return s == models.StatusScheduled || s == models.StatusConfirmed
}

func reject(current models.AppointmentStatus, op string) error {
	if isTerminal(current) {
		return &TerminalStateError{Current: current, Operation: op}
	}
	return &InvalidTransitionError{Current: current, Operation: op}
}

// CheckIn moves a not-yet-arrived appointment to Checked-in.
func CheckIn(current models.AppointmentStatus) (AppointmentDecision, error) {
	if !isNotYetArrived(current) {
		return AppointmentDecision{}, reject(current, OpCheckIn)
	}
	return AppointmentDecision{Status: models.StatusCheckedIn}, nil
}

// StartVisit moves a checked-in appointment to In Progress.
func StartVisit(current models.AppointmentStatus) (AppointmentDecision, error) {
	if current != models.StatusCheckedIn {
		return AppointmentDecision{}, reject(current, OpStartVisit)
	}
	return AppointmentDecision{Status: models.StatusInProgress}, nil
}

// MarkNoShow records that the patient never arrived.
func MarkNoShow(current models.AppointmentStatus) (AppointmentDecision, error) {
	if !isNotYetArrived(current) {
		return AppointmentDecision{}, reject(current, OpMarkNoShow)
	}
	return AppointmentDecision{
		Status: models.StatusNoShow,
		Commands: []Command{
			NotifyPatient{Type: "missed-appointment", Message: "You missed your scheduled appointment. Please contact the clinic to rebook."},
		},
	}, nil
}

// Cancel terminates an appointment before the visit starts. A reason is
// required.
func Cancel(current models.AppointmentStatus, reason string) (AppointmentDecision, error) {
	if !isNotYetArrived(current) && current != models.StatusCheckedIn {
		return AppointmentDecision{}, reject(current, OpCancel)
	}
	if reason == "" {
		return AppointmentDecision{}, &ValidationError{Fields: []FieldError{
			{Item: -1, Field: "cancellationReason", Reason: "a cancellation reason is required"},
		}}
	}
	return AppointmentDecision{
		Status:             models.StatusCancelled,
		CancellationReason: reason,
		Commands: []Command{
			NotifyPatient{Type: "appointment-cancelled", Message: "Your appointment has been cancelled: " + reason},
		},
	}, nil
}

// Reschedule terminal-states a not-yet-arrived appointment in favour of
// a new slot. The caller is expected to book the replacement visit.
func Reschedule(current models.AppointmentStatus, in RescheduleInput) (AppointmentDecision, error) {
	if !isNotYetArrived(current) {
		return AppointmentDecision{}, reject(current, OpReschedule)
	}
	var fields []FieldError
	if in.NewDate.IsZero() {
		fields = append(fields, FieldError{Item: -1, Field: "newAppointmentDate", Reason: "a new appointment date is required"})
	}
	if in.Reason == "" {
		fields = append(fields, FieldError{Item: -1, Field: "reason", Reason: "a reschedule reason is required"})
	}
	if len(fields) > 0 {
		return AppointmentDecision{}, &ValidationError{Fields: fields}
	}
	newDate := in.NewDate
	return AppointmentDecision{
		Status:  models.StatusRescheduled,
		NewDate: &newDate,
		NewTime: in.NewTime,
		Commands: []Command{
			NotifyPatient{Type: "appointment-rescheduled", Message: fmt.Sprintf("Your appointment has been moved to %s. Reason: %s", newDate.Format("2006-01-02"), in.Reason)},
		},
	}, nil
}

// Complete closes an in-progress visit. It is the only transition that
// produces a dependent record: exactly one VisitDetails creation
// command is emitted.
func Complete(current models.AppointmentStatus, in CompleteInput) (AppointmentDecision, error) {
	if current != models.StatusInProgress {
		return AppointmentDecision{}, reject(current, OpComplete)
	}
	if in.ClinicalSummary == "" {
		return AppointmentDecision{}, &ValidationError{Fields: []FieldError{
			{Item: -1, Field: "clinicalSummary", Reason: "a clinical summary is required to complete a visit"},
		}}
	}
	return AppointmentDecision{
		Status:          models.StatusCompleted,
		ClinicalSummary: in.ClinicalSummary,
		Commands:        []Command{in.Visit},
	}, nil
}
