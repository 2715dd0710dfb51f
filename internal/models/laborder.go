package models

import (
	"time"
)

// LabOrderStatus represents the status of a laboratory order
type LabOrderStatus string

const (
	LabOrderOrdered         LabOrderStatus = "Ordered"
	LabOrderSampleCollected LabOrderStatus = "Sample Collected"
	LabOrderInProgress      LabOrderStatus = "In Progress"
	LabOrderCompleted       LabOrderStatus = "Completed"
	LabOrderReviewed        LabOrderStatus = "Reviewed"
	LabOrderCancelled       LabOrderStatus = "Cancelled"
	LabOrderRejected        LabOrderStatus = "Rejected"
)

// LabOrder represents a laboratory test order. It may be placed manually
// or created automatically as the baseline order of an ART enrollment.
type LabOrder struct {
	BaseModel
	OrderNumber          string         `gorm:"uniqueIndex;size:30" json:"orderNumber"`
	PatientID            string         `gorm:"size:36;index" json:"patientId"`
	EnrollmentID         string         `gorm:"size:36;index" json:"enrollmentId,omitempty"`
	OrderedByID          string         `gorm:"size:36;index" json:"orderedById"`
	TestType             string         `gorm:"size:100;not null" json:"testType"`
	Indication           string         `gorm:"size:255" json:"indication,omitempty"`
	Status               LabOrderStatus `gorm:"size:20;default:'Ordered'" json:"status"`
	ResultValue          string         `gorm:"size:100" json:"resultValue,omitempty"`
	ResultUnit           string         `gorm:"size:30" json:"resultUnit,omitempty"`
	ResultInterpretation string         `gorm:"size:255" json:"resultInterpretation,omitempty"`
	CollectedAt          *time.Time     `json:"collectedAt,omitempty"`
	ResultEnteredAt      *time.Time     `json:"resultEnteredAt,omitempty"`
	ReviewedAt           *time.Time     `json:"reviewedAt,omitempty"`

	// Relations
	Patient   Patient `gorm:"foreignKey:PatientID" json:"-"`
	OrderedBy User    `gorm:"foreignKey:OrderedByID" json:"-"`
}
