package models

import (
	"time"
)

// Program identifies a care program a patient can be enrolled into
type Program string

const (
	ProgramART  Program = "ART"
	ProgramPEP  Program = "PEP"
	ProgramPrEP Program = "PREP"
)

// EnrollmentStatus represents the status of a program enrollment
type EnrollmentStatus string

const (
	EnrollmentActive       EnrollmentStatus = "Active"
	EnrollmentCompleted    EnrollmentStatus = "Completed"
	EnrollmentDiscontinued EnrollmentStatus = "Discontinued"
	EnrollmentTransferred  EnrollmentStatus = "Transferred Out"
)

// Enrollment represents a patient's enrollment into ART, PEP or PrEP.
// The three programs share one shape; PEP-specific exposure fields are
// empty for the others.
type Enrollment struct {
	BaseModel
	Program        Program          `gorm:"size:10;index:idx_patient_program" json:"program"`
	ProgramNumber  string           `gorm:"uniqueIndex;size:30" json:"programNumber"`
	PatientID      string           `gorm:"size:36;index:idx_patient_program" json:"patientId"`
	Status         EnrollmentStatus `gorm:"size:20;default:'Active'" json:"status"`
	EnrollmentDate time.Time        `json:"enrollmentDate"`

	// Upstream testing record; required for PEP and PrEP, empty for ART.
	HTSRecordID string `gorm:"size:36;index" json:"htsRecordId,omitempty"`

	// ART
	RegimenCode     string `gorm:"size:30" json:"regimenCode,omitempty"`
	WHOStage        string `gorm:"size:10" json:"whoStage,omitempty"`
	PriorARTHistory string `gorm:"size:255" json:"priorArtHistory,omitempty"`

	// PEP
	ExposureDate        *time.Time `json:"exposureDate,omitempty"`
	ModeOfExposure      string     `gorm:"size:100" json:"modeOfExposure,omitempty"`
	DurationBeforePEP   string     `gorm:"size:10" json:"durationBeforePep,omitempty"`
	Urgency             string     `gorm:"size:20" json:"urgency,omitempty"`
	HIVStatusAtExposure string     `gorm:"size:10" json:"hivStatusAtExposure,omitempty"`

	// Treatment supporter / next of kin contact
	SupporterName  string `gorm:"size:100" json:"supporterName,omitempty"`
	SupporterPhone string `gorm:"size:30" json:"supporterPhone,omitempty"`

	// Relations
	Patient   Patient    `gorm:"foreignKey:PatientID" json:"-"`
	HTSRecord *HTSRecord `gorm:"foreignKey:HTSRecordID" json:"-"`
}
