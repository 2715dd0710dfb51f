package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hivcare-app-server/internal/models"
)

func TestDoseRoundTrip(t *testing.T) {
	t.Run("Twice Daily", func(t *testing.T) {
		dose := Dose{Frequency: models.FreqTwiceDaily}

		dose, err := dose.WithDuration(14)
		require.NoError(t, err)
		assert.Equal(t, 28, dose.Quantity)

		dose, err = dose.WithQuantity(20)
		require.NoError(t, err)
		assert.Equal(t, 10, dose.DurationDays)

		// Repeating the same edits is idempotent on the final duration.
		dose, err = dose.WithDuration(14)
		require.NoError(t, err)
		dose, err = dose.WithQuantity(20)
		require.NoError(t, err)
		dose, err = dose.WithDuration(14)
		require.NoError(t, err)
		assert.Equal(t, 14, dose.DurationDays)
		assert.Equal(t, 28, dose.Quantity)
	})

	t.Run("Weekly Is Exact", func(t *testing.T) {
		dose := Dose{Frequency: models.FreqWeekly}

		dose, err := dose.WithDuration(14)
		require.NoError(t, err)
		assert.Equal(t, 2, dose.Quantity, "14 days weekly is exactly 2 tablets")

		dose, err = dose.WithQuantity(2)
		require.NoError(t, err)
		assert.Equal(t, 14, dose.DurationDays)
	})

	t.Run("Every Other Day Rounds Up", func(t *testing.T) {
		dose := Dose{Frequency: models.FreqEveryOtherDay}

		dose, err := dose.WithDuration(7)
		require.NoError(t, err)
		assert.Equal(t, 4, dose.Quantity, "ceil(7 * 1/2)")
	})

	t.Run("Frequency Change Recomputes Quantity From Duration", func(t *testing.T) {
		dose := Dose{Frequency: models.FreqOnceDaily}
		dose, err := dose.WithDuration(10)
		require.NoError(t, err)
		assert.Equal(t, 10, dose.Quantity)

		dose, err = dose.WithFrequency(models.FreqEvery8Hours)
		require.NoError(t, err)
		assert.Equal(t, 10, dose.DurationDays, "duration is the operator's intent")
		assert.Equal(t, 30, dose.Quantity)
	})

	t.Run("Rejects Invalid Inputs", func(t *testing.T) {
		dose := Dose{Frequency: models.FreqOnceDaily}
		_, err := dose.WithDuration(0)
		assert.Error(t, err)
		_, err = dose.WithQuantity(0)
		assert.Error(t, err)
		_, err = Dose{Frequency: "Fortnightly"}.WithDuration(5)
		assert.Error(t, err)
	})
}

func TestFrequencyMultipliers(t *testing.T) {
	expected := map[models.Frequency][2]int{
		models.FreqOnceDaily:     {1, 1},
		models.FreqTwiceDaily:    {2, 1},
		models.FreqThreeTimes:    {3, 1},
		models.FreqFourTimes:     {4, 1},
		models.FreqEvery12Hours:  {2, 1},
		models.FreqEvery8Hours:   {3, 1},
		models.FreqEvery6Hours:   {4, 1},
		models.FreqEvery4Hours:   {6, 1},
		models.FreqEveryOtherDay: {1, 2},
		models.FreqWeekly:        {1, 7},
		models.FreqAsNeeded:      {1, 1},
	}
	for freq, want := range expected {
		num, den, ok := tabletsPerDay(freq)
		require.True(t, ok, freq)
		assert.Equal(t, want[0], num, freq)
		assert.Equal(t, want[1], den, freq)
	}
}

func testCatalog() map[string]models.Drug {
	return map[string]models.Drug{
		"drug-1": {BaseModel: models.BaseModel{ID: "drug-1"}, CommodityName: "TDF/3TC/DTG 300/300/50mg", Quantity: 100},
		"drug-2": {BaseModel: models.BaseModel{ID: "drug-2"}, CommodityName: "Cotrimoxazole 960mg", Quantity: 5},
	}
}

func validItem() PrescriptionItemInput {
	return PrescriptionItemInput{
		DrugID:             "drug-1",
		Dosage:             "1 tablet",
		Frequency:          models.FreqOnceDaily,
		DurationDays:       30,
		QuantityPrescribed: 30,
	}
}

func TestValidatePrescription(t *testing.T) {
	t.Run("Valid Submission", func(t *testing.T) {
		flags, err := ValidatePrescription(PrescriptionInput{
			PatientID: "p-1",
			Items:     []PrescriptionItemInput{validItem()},
		}, testCatalog())
		require.NoError(t, err)
		require.Len(t, flags, 1)
		assert.False(t, flags[0].Insufficient)
	})

	t.Run("Empty Item List Blocked", func(t *testing.T) {
		_, err := ValidatePrescription(PrescriptionInput{PatientID: "p-1"}, testCatalog())
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "items", validationErr.Fields[0].Field)
	})

	t.Run("Unresolved Drug Blocked With Item Index", func(t *testing.T) {
		item := validItem()
		item.DrugID = "typed-by-hand"
		_, err := ValidatePrescription(PrescriptionInput{
			PatientID: "p-1",
			Items:     []PrescriptionItemInput{validItem(), item},
		}, testCatalog())
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Len(t, validationErr.Fields, 1)
		assert.Equal(t, 1, validationErr.Fields[0].Item)
		assert.Equal(t, "drugId", validationErr.Fields[0].Field)
	})

	t.Run("Missing Dosage And Bad Quantities Blocked", func(t *testing.T) {
		item := validItem()
		item.Dosage = ""
		item.QuantityPrescribed = 0
		item.DurationDays = 0
		_, err := ValidatePrescription(PrescriptionInput{
			PatientID: "p-1",
			Items:     []PrescriptionItemInput{item},
		}, testCatalog())
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Fields, 3)
	})
}

func TestCompleteItemDose(t *testing.T) {
	t.Run("Quantity Derived From Duration", func(t *testing.T) {
		item := validItem()
		item.Frequency = models.FreqTwiceDaily
		item.QuantityPrescribed = 0

		item = CompleteItemDose(item)
		assert.Equal(t, 60, item.QuantityPrescribed)
		assert.Equal(t, 30, item.DurationDays)
	})

	t.Run("Duration Derived From Quantity", func(t *testing.T) {
		item := validItem()
		item.Frequency = models.FreqWeekly
		item.DurationDays = 0
		item.QuantityPrescribed = 4

		item = CompleteItemDose(item)
		assert.Equal(t, 28, item.DurationDays)
	})

	t.Run("Fully Specified Item Untouched", func(t *testing.T) {
		item := validItem()
		item.QuantityPrescribed = 25 // the prescriber's call, even if off-table

		item = CompleteItemDose(item)
		assert.Equal(t, 25, item.QuantityPrescribed)
		assert.Equal(t, 30, item.DurationDays)
	})

	t.Run("Unknown Frequency Left For Validation", func(t *testing.T) {
		item := validItem()
		item.Frequency = "Fortnightly"
		item.QuantityPrescribed = 0

		item = CompleteItemDose(item)
		assert.Equal(t, 0, item.QuantityPrescribed)
	})
}

func TestStockSufficiency(t *testing.T) {
	t.Run("Over Stock Flagged", func(t *testing.T) {
		item := validItem()
		item.DrugID = "drug-2" // 5 on hand
		item.QuantityPrescribed = 10
		item.DurationDays = 10

		flags, err := ValidatePrescription(PrescriptionInput{
			PatientID: "p-1",
			Items:     []PrescriptionItemInput{item},
		}, testCatalog())
		require.NoError(t, err, "insufficient stock warns, it does not block")
		require.Len(t, flags, 1)
		assert.True(t, flags[0].Insufficient)

		warnings := StockWarnings(flags)
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnInsufficientStock, warnings[0].Code)
	})

	t.Run("Exact Stock Not Flagged", func(t *testing.T) {
		item := validItem()
		item.DrugID = "drug-2"
		item.QuantityPrescribed = 5
		item.DurationDays = 5

		flags, err := ValidatePrescription(PrescriptionInput{
			PatientID: "p-1",
			Items:     []PrescriptionItemInput{item},
		}, testCatalog())
		require.NoError(t, err)
		require.Len(t, flags, 1)
		assert.False(t, flags[0].Insufficient)
		assert.Empty(t, StockWarnings(flags))
	})
}
