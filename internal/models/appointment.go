package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "Scheduled"
	StatusConfirmed   AppointmentStatus = "Confirmed"
	StatusCheckedIn   AppointmentStatus = "Checked-in"
	StatusInProgress  AppointmentStatus = "In Progress"
	StatusCompleted   AppointmentStatus = "Completed"
	StatusCancelled   AppointmentStatus = "Cancelled"
	StatusNoShow      AppointmentStatus = "No Show"
	StatusRescheduled AppointmentStatus = "Rescheduled"
)

// Appointment represents a scheduled patient visit
type Appointment struct {
	BaseModel
	AppointmentNumber  string            `gorm:"uniqueIndex;size:30" json:"appointmentNumber"`
	PatientID          string            `gorm:"size:36;index" json:"patientId"`
	ClinicianID        string            `gorm:"size:36;index" json:"clinicianId"`
	AppointmentDate    time.Time         `json:"appointmentDate"`
	AppointmentTime    string            `gorm:"size:10" json:"appointmentTime"`
	AppointmentType    string            `gorm:"size:50" json:"appointmentType"`
	Status             AppointmentStatus `gorm:"size:20;default:'Scheduled'" json:"status"`
	Reason             string            `gorm:"size:255" json:"reason"`
	Notes              string            `gorm:"type:text" json:"notes"`
	ClinicalSummary    string            `gorm:"type:text" json:"clinicalSummary,omitempty"`
	CancellationReason string            `gorm:"size:255" json:"cancellationReason,omitempty"`

	// Relations
	Patient       Patient        `gorm:"foreignKey:PatientID" json:"-"`
	Clinician     User           `gorm:"foreignKey:ClinicianID" json:"-"`
	VisitDetails  *VisitDetails  `gorm:"foreignKey:AppointmentID" json:"visitDetails,omitempty"`
	Notifications []Notification `gorm:"foreignKey:AppointmentID" json:"-"`
}

// VisitDetails captures the clinical outcome of a completed appointment.
// Written exactly once, by the complete transition.
type VisitDetails struct {
	BaseModel
	AppointmentID         string     `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	ChiefComplaint        string     `gorm:"type:text" json:"chiefComplaint"`
	Assessment            string     `gorm:"type:text" json:"assessment"`
	Diagnosis             string     `gorm:"size:255" json:"diagnosis"`
	TreatmentPlan         string     `gorm:"type:text" json:"treatmentPlan"`
	LabTestsOrdered       bool       `gorm:"default:false" json:"labTestsOrdered"`
	DrugsPrescribed       bool       `gorm:"default:false" json:"drugsPrescribed"`
	CounselingProvided    bool       `gorm:"default:false" json:"counselingProvided"`
	ReferralMade          bool       `gorm:"default:false" json:"referralMade"`
	NextAppointmentDate   *time.Time `json:"nextAppointmentDate,omitempty"`
	NextAppointmentReason string     `gorm:"size:255" json:"nextAppointmentReason,omitempty"`
}

// Notification is a patient-facing notice tied to an appointment event
// (cancellation, reschedule, reminder).
type Notification struct {
	BaseModel
	PatientID     string     `gorm:"size:36;index" json:"patientId"`
	AppointmentID string     `gorm:"size:36;index" json:"appointmentId"`
	Type          string     `gorm:"size:30" json:"type"`
	Message       string     `gorm:"type:text" json:"message"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
}
