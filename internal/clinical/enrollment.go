package clinical

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"hivcare-app-server/internal/models"
)

// UrgencyTier grades how quickly a PEP enrollment must be acted on.
type UrgencyTier string

const (
	UrgencyCritical      UrgencyTier = "Critical"
	UrgencyUrgent        UrgencyTier = "Urgent"
	UrgencyTimeSensitive UrgencyTier = "Time-Sensitive"
	UrgencyStandard      UrgencyTier = "Standard"
)

// PEPUrgency maps the reported time since exposure to an urgency tier.
// The second return is false for an unrecognised duration value.
func PEPUrgency(durationBeforePEP string) (UrgencyTier, bool) {
	switch durationBeforePEP {
	case "<24hrs":
		return UrgencyCritical, true
	case "<48hrs":
		return UrgencyUrgent, true
	case "<72hrs":
		return UrgencyTimeSensitive, true
	case ">72hrs":
		return UrgencyStandard, true
	}
	return "", false
}

// NewProgramNumber builds a PREFIX-YYYYMMDD-NNNNN program number. It
// must be called at submission time, never precomputed for display, so
// concurrent submissions cannot reuse a stale value.
func NewProgramNumber(program models.Program, now time.Time) string {
	return NewDocumentNumber(string(program), now)
}

// NewDocumentNumber builds a display code for any numbered clinical
// document (lab orders, prescriptions, appointments).
func NewDocumentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, now.Format("20060102"), randomSuffix())
}

func randomSuffix() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		// crypto/rand failing is effectively unrecoverable; a clock-based
		// suffix still keeps numbers distinct enough to not block intake.
		return time.Now().UnixNano() % 100000
	}
	return n.Int64()
}

// EnrollmentDecision is the accepted outcome of an enrollment
// submission. Enrollment is ready for the caller to persist verbatim.
type EnrollmentDecision struct {
	Enrollment models.Enrollment
	Commands   []Command
	Warnings   []Warning
}

// ARTInput carries an ART enrollment submission.
type ARTInput struct {
	PatientID       string
	EnrollmentDate  time.Time
	RegimenCode     string
	WHOStage        string
	PriorARTHistory string
	SupporterName   string
	SupporterPhone  string
}

// EnrollART decides an ART enrollment. hasActive reports whether the
// patient already holds an active ART record; the caller queries it
// immediately before this call. On success the decision carries a
// baseline viral-load lab order command whose failure downstream is
// reported, not rolled back.
func EnrollART(in ARTInput, hasActive bool, now time.Time) (EnrollmentDecision, error) {
	if hasActive {
		return EnrollmentDecision{}, &DuplicateEnrollmentError{PatientID: in.PatientID, Program: models.ProgramART}
	}
	var fields []FieldError
	if in.PatientID == "" {
		fields = append(fields, FieldError{Item: -1, Field: "patientId", Reason: "patient is required"})
	}
	if in.RegimenCode == "" {
		fields = append(fields, FieldError{Item: -1, Field: "regimenCode", Reason: "an initial regimen is required"})
	}
	if len(fields) > 0 {
		return EnrollmentDecision{}, &ValidationError{Fields: fields}
	}

	enrollmentDate := in.EnrollmentDate
	if enrollmentDate.IsZero() {
		enrollmentDate = now
	}
	return EnrollmentDecision{
		Enrollment: models.Enrollment{
			Program:         models.ProgramART,
			ProgramNumber:   NewProgramNumber(models.ProgramART, now),
			PatientID:       in.PatientID,
			Status:          models.EnrollmentActive,
			EnrollmentDate:  enrollmentDate,
			RegimenCode:     in.RegimenCode,
			WHOStage:        in.WHOStage,
			PriorARTHistory: in.PriorARTHistory,
			SupporterName:   in.SupporterName,
			SupporterPhone:  in.SupporterPhone,
		},
		Commands: []Command{
			CreateLabOrder{TestType: "HIV Viral Load", Indication: "ART baseline"},
		},
	}, nil
}

// PEPInput carries a PEP enrollment submission. ReportedHIVStatus is
// whatever the client form sent; it is never trusted.
type PEPInput struct {
	PatientID         string
	HTSRecordID       string
	EnrollmentDate    time.Time
	ExposureDate      time.Time
	ModeOfExposure    string
	DurationBeforePEP string
	ReportedHIVStatus string
	SupporterName     string
	SupporterPhone    string
}

// EnrollPEP decides a PEP enrollment against the linked HTS record.
// hiv_status_at_exposure is derived from the HTS result; a conflicting
// client-supplied value is overridden and reported as a warning.
// htsConsumed reports whether the record is already linked to an active
// PEP enrollment; the caller queries it alongside hasActive, so a stale
// eligible-records listing cannot double-link one test.
func EnrollPEP(in PEPInput, hts models.HTSRecord, hasActive, htsConsumed bool, now time.Time) (EnrollmentDecision, error) {
	if hasActive {
		return EnrollmentDecision{}, &DuplicateEnrollmentError{PatientID: in.PatientID, Program: models.ProgramPEP}
	}
	var fields []FieldError
	if in.PatientID == "" {
		fields = append(fields, FieldError{Item: -1, Field: "patientId", Reason: "patient is required"})
	}
	if in.HTSRecordID == "" {
		fields = append(fields, FieldError{Item: -1, Field: "htsRecordId", Reason: "a linked HTS record is required"})
	} else if htsConsumed {
		fields = append(fields, FieldError{Item: -1, Field: "htsRecordId", Reason: "the HTS record is already linked to an active enrollment"})
	}
	if in.ExposureDate.IsZero() {
		fields = append(fields, FieldError{Item: -1, Field: "exposureDate", Reason: "the exposure date is required"})
	}
	if in.ModeOfExposure == "" {
		fields = append(fields, FieldError{Item: -1, Field: "modeOfExposure", Reason: "the mode of exposure is required"})
	}
	urgency, ok := PEPUrgency(in.DurationBeforePEP)
	if !ok {
		fields = append(fields, FieldError{Item: -1, Field: "durationBeforePep", Reason: "must be one of <24hrs, <48hrs, <72hrs, >72hrs"})
	}
	if len(fields) > 0 {
		return EnrollmentDecision{}, &ValidationError{Fields: fields}
	}

	derivedStatus := "Negative"
	if hts.FinalResult == models.HTSResultReactive {
		derivedStatus = "Positive"
	}
	var warnings []Warning
	if in.ReportedHIVStatus != "" && in.ReportedHIVStatus != derivedStatus {
		warnings = append(warnings, Warning{
			Code:    WarnDerivedDataMismatch,
			Message: fmt.Sprintf("client-supplied hiv_status_at_exposure %q disagrees with the linked HTS result; stored %q", in.ReportedHIVStatus, derivedStatus),
		})
	}

	enrollmentDate := in.EnrollmentDate
	if enrollmentDate.IsZero() {
		enrollmentDate = now
	}
	exposureDate := in.ExposureDate
	return EnrollmentDecision{
		Enrollment: models.Enrollment{
			Program:             models.ProgramPEP,
			ProgramNumber:       NewProgramNumber(models.ProgramPEP, now),
			PatientID:           in.PatientID,
			Status:              models.EnrollmentActive,
			EnrollmentDate:      enrollmentDate,
			HTSRecordID:         in.HTSRecordID,
			ExposureDate:        &exposureDate,
			ModeOfExposure:      in.ModeOfExposure,
			DurationBeforePEP:   in.DurationBeforePEP,
			Urgency:             string(urgency),
			HIVStatusAtExposure: derivedStatus,
			SupporterName:       in.SupporterName,
			SupporterPhone:      in.SupporterPhone,
		},
		Warnings: warnings,
	}, nil
}

// PrEPInput carries a PrEP commencement submission.
type PrEPInput struct {
	PatientID      string
	HTSRecordID    string
	EnrollmentDate time.Time
	SupporterName  string
	SupporterPhone string
}

// EnrollPrEP decides a PrEP commencement. PrEP requires a completed,
// non-reactive HTS test that no other active enrollment has consumed.
func EnrollPrEP(in PrEPInput, hts models.HTSRecord, hasActive, htsConsumed bool, now time.Time) (EnrollmentDecision, error) {
	if hasActive {
		return EnrollmentDecision{}, &DuplicateEnrollmentError{PatientID: in.PatientID, Program: models.ProgramPrEP}
	}
	var fields []FieldError
	if in.PatientID == "" {
		fields = append(fields, FieldError{Item: -1, Field: "patientId", Reason: "patient is required"})
	}
	if in.HTSRecordID == "" {
		fields = append(fields, FieldError{Item: -1, Field: "htsRecordId", Reason: "a linked HTS record is required"})
	} else if htsConsumed {
		fields = append(fields, FieldError{Item: -1, Field: "htsRecordId", Reason: "the HTS record is already linked to an active enrollment"})
	}
	if hts.FinalResult == "" {
		fields = append(fields, FieldError{Item: -1, Field: "htsRecordId", Reason: "the linked HTS test has no final result"})
	} else if hts.FinalResult == models.HTSResultReactive {
		fields = append(fields, FieldError{Item: -1, Field: "htsRecordId", Reason: "PrEP requires a non-reactive HTS result"})
	}
	if len(fields) > 0 {
		return EnrollmentDecision{}, &ValidationError{Fields: fields}
	}

	enrollmentDate := in.EnrollmentDate
	if enrollmentDate.IsZero() {
		enrollmentDate = now
	}
	return EnrollmentDecision{
		Enrollment: models.Enrollment{
			Program:        models.ProgramPrEP,
			ProgramNumber:  NewProgramNumber(models.ProgramPrEP, now),
			PatientID:      in.PatientID,
			Status:         models.EnrollmentActive,
			EnrollmentDate: enrollmentDate,
			HTSRecordID:    in.HTSRecordID,
			SupporterName:  in.SupporterName,
			SupporterPhone: in.SupporterPhone,
		},
	}, nil
}

// EligibleHTSRecords returns the HTS records not yet consumed by an
// active enrollment in the program being considered. Recomputed from
// the two collections on every call; never cached.
func EligibleHTSRecords(all []models.HTSRecord, consumedIDs []string) []models.HTSRecord {
	consumed := make(map[string]struct{}, len(consumedIDs))
	for _, id := range consumedIDs {
		consumed[id] = struct{}{}
	}
	eligible := make([]models.HTSRecord, 0, len(all))
	for _, rec := range all {
		if _, taken := consumed[rec.ID]; !taken {
			eligible = append(eligible, rec)
		}
	}
	return eligible
}
