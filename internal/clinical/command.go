package clinical

import (
	"time"
)

// Command is a side effect the caller must execute after a successful
// decision. The core itself performs no I/O.
type Command interface {
	CommandName() string
}

// CreateVisitDetails records the clinical outcome of a completed visit.
// Emitted only by the complete transition.
type CreateVisitDetails struct {
	ChiefComplaint        string
	Assessment            string
	Diagnosis             string
	TreatmentPlan         string
	LabTestsOrdered       bool
	DrugsPrescribed       bool
	CounselingProvided    bool
	ReferralMade          bool
	NextAppointmentDate   *time.Time
	NextAppointmentReason string
}

func (CreateVisitDetails) CommandName() string { return "create-visit-details" }

// CreateLabOrder requests a laboratory test. Emitted by ART enrollment
// for the baseline viral load; its failure must not unwind the
// enrollment.
type CreateLabOrder struct {
	TestType   string
	Indication string
}

func (CreateLabOrder) CommandName() string { return "create-lab-order" }

// NotifyPatient asks the caller to record a patient-facing notification
// for an appointment event.
type NotifyPatient struct {
	Type    string
	Message string
}

func (NotifyPatient) CommandName() string { return "notify-patient" }
