package models

import (
	"time"
)

// HTSResult represents the final result of an HIV testing services record
type HTSResult string

const (
	HTSResultReactive      HTSResult = "Reactive"
	HTSResultNonReactive   HTSResult = "Non-Reactive"
	HTSResultIndeterminate HTSResult = "Indeterminate"
)

// HTSRecord represents an HIV Testing Services encounter. PEP and PrEP
// enrollments are conditioned on one of these.
type HTSRecord struct {
	BaseModel
	PatientID     string    `gorm:"size:36;index" json:"patientId"`
	TestNumber    string    `gorm:"uniqueIndex;size:30" json:"testNumber"`
	TestDate      time.Time `json:"testDate"`
	TestType      string    `gorm:"size:50" json:"testType"`
	EntryPoint    string    `gorm:"size:100" json:"entryPoint,omitempty"`
	FinalResult   HTSResult `gorm:"size:20" json:"finalResult"`
	ResultIssued  bool      `gorm:"default:false" json:"resultIssued"`
	CounselorName string    `gorm:"size:100" json:"counselorName,omitempty"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}
