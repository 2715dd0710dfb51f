package models

import (
	"time"
)

// Patient represents a clinical patient record. A patient may or may not
// have a portal login (User); the clinical chart stands on its own.
type Patient struct {
	BaseModel
	PatientNumber    string     `gorm:"uniqueIndex;size:30" json:"patientNumber"`
	FirstName        string     `gorm:"size:100;not null" json:"firstName"`
	LastName         string     `gorm:"size:100;not null" json:"lastName"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Gender           string     `gorm:"size:20" json:"gender,omitempty"`
	PhoneNumber      string     `gorm:"size:30" json:"phoneNumber,omitempty"`
	Address          string     `gorm:"size:255" json:"address,omitempty"`
	NextOfKinName    string     `gorm:"size:100" json:"nextOfKinName,omitempty"`
	NextOfKinPhone   string     `gorm:"size:30" json:"nextOfKinPhone,omitempty"`
	UserID           string     `gorm:"size:36;index" json:"userId,omitempty"`
	RegistrationDate time.Time  `json:"registrationDate"`

	// Relations
	Appointments  []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
	HTSRecords    []HTSRecord    `gorm:"foreignKey:PatientID" json:"-"`
	Enrollments   []Enrollment   `gorm:"foreignKey:PatientID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:PatientID" json:"-"`
	LabOrders     []LabOrder     `gorm:"foreignKey:PatientID" json:"-"`
}
