package models

// PrescriptionStatus represents the dispensing status of a prescription
type PrescriptionStatus string

const (
	PrescriptionPending            PrescriptionStatus = "Pending"
	PrescriptionPartiallyDispensed PrescriptionStatus = "Partially Dispensed"
	PrescriptionDispensed          PrescriptionStatus = "Dispensed"
	PrescriptionCancelled          PrescriptionStatus = "Cancelled"
	PrescriptionExpired            PrescriptionStatus = "Expired"
)

// Frequency is a dosing frequency. Each frequency maps to a
// tablets-per-day factor used to keep quantity and duration consistent.
type Frequency string

const (
	FreqOnceDaily      Frequency = "Once Daily"
	FreqTwiceDaily     Frequency = "Twice Daily"
	FreqThreeTimes     Frequency = "Three Times Daily"
	FreqFourTimes      Frequency = "Four Times Daily"
	FreqEvery12Hours   Frequency = "Every 12 Hours"
	FreqEvery8Hours    Frequency = "Every 8 Hours"
	FreqEvery6Hours    Frequency = "Every 6 Hours"
	FreqEvery4Hours    Frequency = "Every 4 Hours"
	FreqEveryOtherDay  Frequency = "Every other day"
	FreqWeekly         Frequency = "Weekly"
	FreqAsNeeded       Frequency = "As Needed"
)

// Prescription represents a multi-item drug prescription
type Prescription struct {
	BaseModel
	PrescriptionNumber string             `gorm:"uniqueIndex;size:30" json:"prescriptionNumber"`
	PatientID          string             `gorm:"size:36;index" json:"patientId"`
	PrescriberID       string             `gorm:"size:36;index" json:"prescriberId"`
	Diagnosis          string             `gorm:"size:255" json:"diagnosis,omitempty"`
	ClinicalNotes      string             `gorm:"type:text" json:"clinicalNotes,omitempty"`
	Status             PrescriptionStatus `gorm:"size:30;default:'Pending'" json:"status"`

	// Relations
	Patient    Patient            `gorm:"foreignKey:PatientID" json:"-"`
	Prescriber User               `gorm:"foreignKey:PrescriberID" json:"-"`
	Items      []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items"`
}

// PrescriptionItem is a single drug line on a prescription
type PrescriptionItem struct {
	BaseModel
	PrescriptionID     string    `gorm:"size:36;index;not null" json:"prescriptionId"`
	DrugID             string    `gorm:"size:36;index;not null" json:"drugId"`
	Dosage             string    `gorm:"size:100" json:"dosage"`
	Frequency          Frequency `gorm:"size:30" json:"frequency"`
	DurationDays       int       `json:"durationDays"`
	QuantityPrescribed int       `json:"quantityPrescribed"`
	Instructions       string    `gorm:"type:text" json:"instructions,omitempty"`

	// Relations
	Drug Drug `gorm:"foreignKey:DrugID" json:"-"`
}
