package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hivcare-app-server/internal/models"
)

func TestLabOrderProgression(t *testing.T) {
	t.Run("Full Chain", func(t *testing.T) {
		status := models.LabOrderOrdered

		status, err := CollectSample(status)
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderSampleCollected, status)

		status, err = BeginProcessing(status)
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderInProgress, status)

		status, err = EnterResult(status, LabResultInput{Value: "1500", Unit: "copies/mL", Interpretation: "Unsuppressed"})
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderCompleted, status)

		status, err = ReviewResult(status)
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderReviewed, status)
	})

	t.Run("Processing Step Is Optional", func(t *testing.T) {
		status, err := EnterResult(models.LabOrderSampleCollected, LabResultInput{Value: "Suppressed"})
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderCompleted, status)
	})
}

func TestLabOrderGuards(t *testing.T) {
	t.Run("Result Entry Requires Collected Sample", func(t *testing.T) {
		_, err := EnterResult(models.LabOrderOrdered, LabResultInput{Value: "1500"})
		var transitionErr *LabOrderTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, OpEnterResult, transitionErr.Operation)
	})

	t.Run("Processing Only From Collected Sample", func(t *testing.T) {
		_, err := BeginProcessing(models.LabOrderOrdered)
		var transitionErr *LabOrderTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, OpBeginProcessing, transitionErr.Operation)

		_, err = BeginProcessing(models.LabOrderInProgress)
		require.ErrorAs(t, err, &transitionErr)
	})

	t.Run("Result Entry Requires A Value", func(t *testing.T) {
		_, err := EnterResult(models.LabOrderSampleCollected, LabResultInput{})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("Collection Only From Ordered", func(t *testing.T) {
		_, err := CollectSample(models.LabOrderCompleted)
		var transitionErr *LabOrderTransitionError
		require.ErrorAs(t, err, &transitionErr)
	})

	t.Run("Cancel Only Before Collection", func(t *testing.T) {
		_, err := CancelOrder(models.LabOrderSampleCollected)
		assert.Error(t, err)

		status, err := CancelOrder(models.LabOrderOrdered)
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderCancelled, status)
	})

	t.Run("Reject Only After Collection", func(t *testing.T) {
		_, err := RejectSample(models.LabOrderOrdered)
		assert.Error(t, err)

		status, err := RejectSample(models.LabOrderSampleCollected)
		require.NoError(t, err)
		assert.Equal(t, models.LabOrderRejected, status)
	})
}
