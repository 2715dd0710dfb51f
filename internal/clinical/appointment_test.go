package clinical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hivcare-app-server/internal/models"
)

var allStatuses = []models.AppointmentStatus{
	models.StatusScheduled,
	models.StatusConfirmed,
	models.StatusCheckedIn,
	models.StatusInProgress,
	models.StatusCompleted,
	models.StatusCancelled,
	models.StatusNoShow,
	models.StatusRescheduled,
}

func TestTransitionCompleteness(t *testing.T) {
	validFrom := map[string][]models.AppointmentStatus{
		OpCheckIn:    {models.StatusScheduled, models.StatusConfirmed},
		OpMarkNoShow: {models.StatusScheduled, models.StatusConfirmed},
		OpReschedule: {models.StatusScheduled, models.StatusConfirmed},
		OpCancel:     {models.StatusScheduled, models.StatusConfirmed, models.StatusCheckedIn},
		OpStartVisit: {models.StatusCheckedIn},
		OpComplete:   {models.StatusInProgress},
	}

	invoke := func(op string, from models.AppointmentStatus) error {
		var err error
		switch op {
		case OpCheckIn:
			_, err = CheckIn(from)
		case OpMarkNoShow:
			_, err = MarkNoShow(from)
		case OpReschedule:
			_, err = Reschedule(from, RescheduleInput{NewDate: time.Now().AddDate(0, 0, 7), Reason: "clinician unavailable"})
		case OpCancel:
			_, err = Cancel(from, "patient request")
		case OpStartVisit:
			_, err = StartVisit(from)
		case OpComplete:
			_, err = Complete(from, CompleteInput{ClinicalSummary: "stable"})
		}
		return err
	}

	for op, allowed := range validFrom {
		allowedSet := make(map[models.AppointmentStatus]bool)
		for _, s := range allowed {
			allowedSet[s] = true
		}
		for _, from := range allStatuses {
			err := invoke(op, from)
			if allowedSet[from] {
				assert.NoError(t, err, "%s from %s should be allowed", op, from)
				continue
			}
			require.Error(t, err, "%s from %s should be rejected", op, from)
			switch from {
			case models.StatusCompleted, models.StatusCancelled, models.StatusNoShow, models.StatusRescheduled:
				var terminalErr *TerminalStateError
				assert.ErrorAs(t, err, &terminalErr, "%s from terminal %s", op, from)
			default:
				var invalidErr *InvalidTransitionError
				assert.ErrorAs(t, err, &invalidErr, "%s from %s", op, from)
			}
		}
	}
}

func TestCheckIn(t *testing.T) {
	t.Run("From Scheduled", func(t *testing.T) {
		decision, err := CheckIn(models.StatusScheduled)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCheckedIn, decision.Status)
		assert.Empty(t, decision.Commands)
	})

	t.Run("Confirmed Treated As Scheduled", func(t *testing.T) {
		decision, err := CheckIn(models.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCheckedIn, decision.Status)
	})
}

func TestCancelRequiresReason(t *testing.T) {
	_, err := Cancel(models.StatusScheduled, "")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "cancellationReason", validationErr.Fields[0].Field)

	decision, err := Cancel(models.StatusScheduled, "patient travelled")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, decision.Status)
	assert.Equal(t, "patient travelled", decision.CancellationReason)
}

func TestRescheduleGuards(t *testing.T) {
	t.Run("Missing Date And Reason", func(t *testing.T) {
		_, err := Reschedule(models.StatusConfirmed, RescheduleInput{})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Fields, 2)
	})

	t.Run("Valid Input", func(t *testing.T) {
		newDate := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
		decision, err := Reschedule(models.StatusScheduled, RescheduleInput{NewDate: newDate, NewTime: "09:30", Reason: "clinic closed"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusRescheduled, decision.Status)
		require.NotNil(t, decision.NewDate)
		assert.Equal(t, newDate, *decision.NewDate)
	})
}

func TestCompleteInvariant(t *testing.T) {
	t.Run("Requires In Progress", func(t *testing.T) {
		_, err := Complete(models.StatusCheckedIn, CompleteInput{ClinicalSummary: "stable"})
		var invalidErr *InvalidTransitionError
		require.ErrorAs(t, err, &invalidErr)
		assert.Equal(t, OpComplete, invalidErr.Operation)
	})

	t.Run("Requires Clinical Summary", func(t *testing.T) {
		_, err := Complete(models.StatusInProgress, CompleteInput{})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("Emits Exactly One VisitDetails Command", func(t *testing.T) {
		decision, err := Complete(models.StatusInProgress, CompleteInput{
			ClinicalSummary: "Patient stable",
			Visit:           CreateVisitDetails{ChiefComplaint: "headache", Diagnosis: "tension headache"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, decision.Status)
		require.Len(t, decision.Commands, 1)
		visit, ok := decision.Commands[0].(CreateVisitDetails)
		require.True(t, ok)
		assert.Equal(t, "headache", visit.ChiefComplaint)
	})
}

// Full walk of the happy path followed by a rejected post-terminal
// operation.
func TestVisitLifecycleScenario(t *testing.T) {
	status := models.StatusCheckedIn

	decision, err := StartVisit(status)
	require.NoError(t, err)
	status = decision.Status
	assert.Equal(t, models.StatusInProgress, status)

	decision, err = Complete(status, CompleteInput{
		ClinicalSummary: "Patient stable",
		Visit:           CreateVisitDetails{Assessment: "responding to treatment"},
	})
	require.NoError(t, err)
	status = decision.Status
	assert.Equal(t, models.StatusCompleted, status)
	assert.Len(t, decision.Commands, 1)

	_, err = Cancel(status, "attempted after completion")
	var terminalErr *TerminalStateError
	require.ErrorAs(t, err, &terminalErr)
	assert.Equal(t, models.StatusCompleted, terminalErr.Current)
}

// Two operators race on the same Checked-in appointment. Transitions
// are decided against the status as stored at write time, so whichever
// request lands second sees the first one's result and must lose.
func TestStaleTransitionRejected(t *testing.T) {
	first, err := Cancel(models.StatusCheckedIn, "patient left the facility")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, first.Status)

	_, err = StartVisit(first.Status)
	var terminalErr *TerminalStateError
	require.ErrorAs(t, err, &terminalErr)
	assert.Equal(t, models.StatusCancelled, terminalErr.Current)
}
