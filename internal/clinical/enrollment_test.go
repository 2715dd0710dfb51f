package clinical

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hivcare-app-server/internal/models"
)

func TestProgramNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ART-20260314-\d{5}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		num := NewProgramNumber(models.ProgramART, now)
		assert.Regexp(t, pattern, num)
		seen[num] = true
	}
	// 50 draws from a 100000 value space colliding down to a handful
	// would indicate a broken suffix source.
	assert.Greater(t, len(seen), 40)
}

func TestEnrollART(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	input := ARTInput{PatientID: "p-1", RegimenCode: "TDF/3TC/DTG"}

	t.Run("Success Emits Baseline Lab Order", func(t *testing.T) {
		decision, err := EnrollART(input, false, now)
		require.NoError(t, err)
		assert.Equal(t, models.ProgramART, decision.Enrollment.Program)
		assert.Equal(t, models.EnrollmentActive, decision.Enrollment.Status)
		assert.Equal(t, now, decision.Enrollment.EnrollmentDate)
		require.Len(t, decision.Commands, 1)
		order, ok := decision.Commands[0].(CreateLabOrder)
		require.True(t, ok)
		assert.Equal(t, "HIV Viral Load", order.TestType)
		assert.Equal(t, "ART baseline", order.Indication)
	})

	t.Run("Duplicate Enrollment Rejected", func(t *testing.T) {
		_, err := EnrollART(input, true, now)
		var dupErr *DuplicateEnrollmentError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "p-1", dupErr.PatientID)
		assert.Equal(t, models.ProgramART, dupErr.Program)
	})

	t.Run("Missing Regimen Rejected", func(t *testing.T) {
		_, err := EnrollART(ARTInput{PatientID: "p-1"}, false, now)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "regimenCode", validationErr.Fields[0].Field)
	})
}

func TestPEPUrgencyMapping(t *testing.T) {
	cases := map[string]UrgencyTier{
		"<24hrs": UrgencyCritical,
		"<48hrs": UrgencyUrgent,
		"<72hrs": UrgencyTimeSensitive,
		">72hrs": UrgencyStandard,
	}
	for duration, want := range cases {
		got, ok := PEPUrgency(duration)
		require.True(t, ok, duration)
		assert.Equal(t, want, got)
	}

	_, ok := PEPUrgency("yesterday")
	assert.False(t, ok)
}

func TestEnrollPEP(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	input := PEPInput{
		PatientID:         "p-2",
		HTSRecordID:       "hts-1",
		ExposureDate:      now.Add(-20 * time.Hour),
		ModeOfExposure:    "Needle stick",
		DurationBeforePEP: "<24hrs",
	}

	t.Run("Derives HIV Status From Reactive HTS", func(t *testing.T) {
		in := input
		in.ReportedHIVStatus = "Negative" // tampered or stale client value
		hts := models.HTSRecord{FinalResult: models.HTSResultReactive}

		decision, err := EnrollPEP(in, hts, false, false, now)
		require.NoError(t, err)
		assert.Equal(t, "Positive", decision.Enrollment.HIVStatusAtExposure, "derived value wins over client value")
		require.Len(t, decision.Warnings, 1)
		assert.Equal(t, WarnDerivedDataMismatch, decision.Warnings[0].Code)
	})

	t.Run("Non-Reactive Derives Negative Without Warning", func(t *testing.T) {
		hts := models.HTSRecord{FinalResult: models.HTSResultNonReactive}
		decision, err := EnrollPEP(input, hts, false, false, now)
		require.NoError(t, err)
		assert.Equal(t, "Negative", decision.Enrollment.HIVStatusAtExposure)
		assert.Empty(t, decision.Warnings)
	})

	t.Run("Urgency Recorded", func(t *testing.T) {
		hts := models.HTSRecord{FinalResult: models.HTSResultNonReactive}
		decision, err := EnrollPEP(input, hts, false, false, now)
		require.NoError(t, err)
		assert.Equal(t, string(UrgencyCritical), decision.Enrollment.Urgency)
	})

	t.Run("Invalid Duration Rejected", func(t *testing.T) {
		in := input
		in.DurationBeforePEP = "last week"
		_, err := EnrollPEP(in, models.HTSRecord{FinalResult: models.HTSResultNonReactive}, false, false, now)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("Duplicate Rejected", func(t *testing.T) {
		_, err := EnrollPEP(input, models.HTSRecord{FinalResult: models.HTSResultNonReactive}, true, false, now)
		var dupErr *DuplicateEnrollmentError
		require.ErrorAs(t, err, &dupErr)
	})

	t.Run("Consumed HTS Record Rejected", func(t *testing.T) {
		// A stale eligible-records listing may still show a record
		// another enrollment has since claimed.
		_, err := EnrollPEP(input, models.HTSRecord{FinalResult: models.HTSResultNonReactive}, false, true, now)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "htsRecordId", validationErr.Fields[0].Field)
	})
}

func TestEnrollPrEP(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	input := PrEPInput{PatientID: "p-3", HTSRecordID: "hts-2"}

	t.Run("Requires Non-Reactive Result", func(t *testing.T) {
		_, err := EnrollPrEP(input, models.HTSRecord{FinalResult: models.HTSResultReactive}, false, false, now)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("Requires A Final Result", func(t *testing.T) {
		_, err := EnrollPrEP(input, models.HTSRecord{}, false, false, now)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("Consumed HTS Record Rejected", func(t *testing.T) {
		_, err := EnrollPrEP(input, models.HTSRecord{FinalResult: models.HTSResultNonReactive}, false, true, now)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "htsRecordId", validationErr.Fields[0].Field)
	})

	t.Run("Success", func(t *testing.T) {
		decision, err := EnrollPrEP(input, models.HTSRecord{FinalResult: models.HTSResultNonReactive}, false, false, now)
		require.NoError(t, err)
		assert.Equal(t, models.ProgramPrEP, decision.Enrollment.Program)
		assert.Equal(t, "hts-2", decision.Enrollment.HTSRecordID)
		assert.Empty(t, decision.Commands, "PrEP has no baseline order")
	})
}

func TestEligibleHTSRecords(t *testing.T) {
	all := []models.HTSRecord{
		{BaseModel: models.BaseModel{ID: "a"}},
		{BaseModel: models.BaseModel{ID: "b"}},
		{BaseModel: models.BaseModel{ID: "c"}},
	}

	t.Run("Consumed Records Excluded", func(t *testing.T) {
		eligible := EligibleHTSRecords(all, []string{"b"})
		require.Len(t, eligible, 2)
		assert.Equal(t, "a", eligible[0].ID)
		assert.Equal(t, "c", eligible[1].ID)
	})

	t.Run("Nothing Consumed", func(t *testing.T) {
		assert.Len(t, EligibleHTSRecords(all, nil), 3)
	})

	t.Run("Everything Consumed", func(t *testing.T) {
		assert.Empty(t, EligibleHTSRecords(all, []string{"a", "b", "c"}))
	})
}
