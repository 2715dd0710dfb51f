package clinical

import (
	"fmt"

	"hivcare-app-server/internal/models"
)

// tabletsPerDay returns the dosing factor for a frequency as an exact
// rational (tablets = num/den per day). Rational arithmetic keeps
// Weekly (1/7) and Every other day (1/2) round-trips exact under ceil,
// which float64 does not.
func tabletsPerDay(f models.Frequency) (num, den int, ok bool) {
	switch f {
	case models.FreqOnceDaily:
		return 1, 1, true
	case models.FreqTwiceDaily, models.FreqEvery12Hours:
		return 2, 1, true
	case models.FreqThreeTimes, models.FreqEvery8Hours:
		return 3, 1, true
	case models.FreqFourTimes, models.FreqEvery6Hours:
		return 4, 1, true
	case models.FreqEvery4Hours:
		return 6, 1, true
	case models.FreqEveryOtherDay:
		return 1, 2, true
	case models.FreqWeekly:
		return 1, 7, true
	case models.FreqAsNeeded:
		// No well-defined per-day dose; 1/day is the working assumption.
		return 1, 1, true
	}
	return 0, 0, false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Dose ties a prescription item's frequency, duration and quantity
// together. Editing any one field goes through the With* methods so the
// other fields stay consistent.
type Dose struct {
	Frequency    models.Frequency
	DurationDays int
	Quantity     int
}

func unknownFrequency(f models.Frequency) error {
	return &ValidationError{Fields: []FieldError{
		{Item: -1, Field: "frequency", Reason: "unknown frequency " + string(f)},
	}}
}

// WithDuration sets the duration and recomputes quantity.
func (d Dose) WithDuration(days int) (Dose, error) {
	num, den, ok := tabletsPerDay(d.Frequency)
	if !ok {
		return d, unknownFrequency(d.Frequency)
	}
	if days < 1 {
		return d, &ValidationError{Fields: []FieldError{
			{Item: -1, Field: "durationDays", Reason: "duration must be at least one day"},
		}}
	}
	d.DurationDays = days
	d.Quantity = ceilDiv(days*num, den)
	return d, nil
}

// WithQuantity sets the quantity and recomputes duration.
func (d Dose) WithQuantity(qty int) (Dose, error) {
	num, den, ok := tabletsPerDay(d.Frequency)
	if !ok {
		return d, unknownFrequency(d.Frequency)
	}
	if qty < 1 {
		return d, &ValidationError{Fields: []FieldError{
			{Item: -1, Field: "quantityPrescribed", Reason: "quantity must be at least one"},
		}}
	}
	d.Quantity = qty
	d.DurationDays = ceilDiv(qty*den, num)
	return d, nil
}

// WithFrequency changes the frequency and recomputes quantity from the
// existing duration; duration is treated as the prescriber's intent.
func (d Dose) WithFrequency(f models.Frequency) (Dose, error) {
	num, den, ok := tabletsPerDay(f)
	if !ok {
		return d, unknownFrequency(f)
	}
	d.Frequency = f
	if d.DurationDays > 0 {
		d.Quantity = ceilDiv(d.DurationDays*num, den)
	}
	return d, nil
}

// PrescriptionItemInput is one drug line of a prescription submission.
type PrescriptionItemInput struct {
	DrugID             string
	Dosage             string
	Frequency          models.Frequency
	DurationDays       int
	QuantityPrescribed int
	Instructions       string
}

// PrescriptionInput is a full prescription submission.
type PrescriptionInput struct {
	PatientID     string
	Diagnosis     string
	ClinicalNotes string
	Items         []PrescriptionItemInput
}

// StockFlag reports stock sufficiency for one prescription item.
type StockFlag struct {
	Item         int    `json:"item"`
	DrugID       string `json:"drugId"`
	OnHand       int    `json:"onHand"`
	Requested    int    `json:"requested"`
	Insufficient bool   `json:"insufficient"`
}

// CompleteItemDose fills in whichever of duration or quantity the item
// left blank by deriving it from the other through the frequency
// factor. Items with both fields present, or with a frequency the
// table does not know, are returned unchanged; ValidatePrescription
// reports those cases with the item index attached.
func CompleteItemDose(item PrescriptionItemInput) PrescriptionItemInput {
	dose := Dose{Frequency: item.Frequency}
	var err error
	switch {
	case item.DurationDays > 0 && item.QuantityPrescribed < 1:
		dose, err = dose.WithDuration(item.DurationDays)
	case item.QuantityPrescribed > 0 && item.DurationDays < 1:
		dose, err = dose.WithQuantity(item.QuantityPrescribed)
	default:
		return item
	}
	if err != nil {
		return item
	}
	item.DurationDays = dose.DurationDays
	item.QuantityPrescribed = dose.Quantity
	return item
}

// ValidatePrescription runs the submission-time checks over the whole
// item list against an immutable drug-catalog snapshot keyed by drug
// id. It returns per-item stock flags (insufficient stock warns, it
// does not block) or a field-scoped ValidationError that blocks the
// submission.
func ValidatePrescription(in PrescriptionInput, catalog map[string]models.Drug) ([]StockFlag, error) {
	var fields []FieldError
	if in.PatientID == "" {
		fields = append(fields, FieldError{Item: -1, Field: "patientId", Reason: "patient is required"})
	}
	if len(in.Items) == 0 {
		fields = append(fields, FieldError{Item: -1, Field: "items", Reason: "at least one prescription item is required"})
	}

	flags := make([]StockFlag, 0, len(in.Items))
	for i, item := range in.Items {
		drug, found := catalog[item.DrugID]
		if item.DrugID == "" || !found {
			fields = append(fields, FieldError{Item: i, Field: "drugId", Reason: "drug is not resolved against the catalog"})
		}
		if item.Dosage == "" {
			fields = append(fields, FieldError{Item: i, Field: "dosage", Reason: "dosage is required"})
		}
		if _, _, ok := tabletsPerDay(item.Frequency); !ok {
			fields = append(fields, FieldError{Item: i, Field: "frequency", Reason: "unknown frequency " + string(item.Frequency)})
		}
		if item.QuantityPrescribed < 1 {
			fields = append(fields, FieldError{Item: i, Field: "quantityPrescribed", Reason: "quantity must be at least one"})
		}
		if item.DurationDays < 1 {
			fields = append(fields, FieldError{Item: i, Field: "durationDays", Reason: "duration must be at least one day"})
		}
		if found {
			flags = append(flags, StockFlag{
				Item:         i,
				DrugID:       item.DrugID,
				OnHand:       drug.Quantity,
				Requested:    item.QuantityPrescribed,
				Insufficient: item.QuantityPrescribed > drug.Quantity,
			})
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return flags, nil
}

// StockWarnings converts the insufficient flags of a validated
// submission into caller-facing warnings.
func StockWarnings(flags []StockFlag) []Warning {
	var warnings []Warning
	for _, f := range flags {
		if f.Insufficient {
			warnings = append(warnings, Warning{
				Code:    WarnInsufficientStock,
				Message: warnStockMessage(f),
			})
		}
	}
	return warnings
}

func warnStockMessage(f StockFlag) string {
	return fmt.Sprintf("item %d: prescribed quantity %d exceeds on-hand stock %d", f.Item, f.Requested, f.OnHand)
}
