package clinical

import (
	"fmt"

	"hivcare-app-server/internal/models"
)

// Lab order operations. Sample collection is only valid on an ordered
// test, result entry only once the sample is in hand.
const (
	OpCollectSample   = "collect-sample"
	OpBeginProcessing = "begin-processing"
	OpEnterResult     = "enter-result"
	OpReviewResult    = "review-result"
	OpCancelOrder     = "cancel-order"
	OpRejectSample    = "reject-sample"
)

// LabOrderTransitionError is returned when a lab order operation is not
// valid from the order's current status.
type LabOrderTransitionError struct {
	Current   models.LabOrderStatus
	Operation string
}

func (e *LabOrderTransitionError) Error() string {
	return fmt.Sprintf("lab order operation %q is not valid from status %q", e.Operation, e.Current)
}

// LabResultInput carries an entered test result.
type LabResultInput struct {
	Value          string
	Unit           string
	Interpretation string
}

// CollectSample marks the sample as taken.
func CollectSample(current models.LabOrderStatus) (models.LabOrderStatus, error) {
	if current != models.LabOrderOrdered {
		return current, &LabOrderTransitionError{Current: current, Operation: OpCollectSample}
	}
	return models.LabOrderSampleCollected, nil
}

// BeginProcessing marks a collected sample as being run. Optional in
// the progression; result entry is valid with or without it.
func BeginProcessing(current models.LabOrderStatus) (models.LabOrderStatus, error) {
	if current != models.LabOrderSampleCollected {
		return current, &LabOrderTransitionError{Current: current, Operation: OpBeginProcessing}
	}
	return models.LabOrderInProgress, nil
}

// EnterResult records the test result once the sample is in hand,
// whether or not processing was explicitly started.
func EnterResult(current models.LabOrderStatus, in LabResultInput) (models.LabOrderStatus, error) {
	if current != models.LabOrderSampleCollected && current != models.LabOrderInProgress {
		return current, &LabOrderTransitionError{Current: current, Operation: OpEnterResult}
	}
	if in.Value == "" {
		return current, &ValidationError{Fields: []FieldError{
			{Item: -1, Field: "resultValue", Reason: "a result value is required"},
		}}
	}
	return models.LabOrderCompleted, nil
}

// ReviewResult marks a completed result as reviewed and communicated.
func ReviewResult(current models.LabOrderStatus) (models.LabOrderStatus, error) {
	if current != models.LabOrderCompleted {
		return current, &LabOrderTransitionError{Current: current, Operation: OpReviewResult}
	}
	return models.LabOrderReviewed, nil
}

// CancelOrder withdraws an order before the sample is taken.
func CancelOrder(current models.LabOrderStatus) (models.LabOrderStatus, error) {
	if current != models.LabOrderOrdered {
		return current, &LabOrderTransitionError{Current: current, Operation: OpCancelOrder}
	}
	return models.LabOrderCancelled, nil
}

// RejectSample discards a collected sample (hemolysed, mislabelled).
func RejectSample(current models.LabOrderStatus) (models.LabOrderStatus, error) {
	if current != models.LabOrderSampleCollected {
		return current, &LabOrderTransitionError{Current: current, Operation: OpRejectSample}
	}
	return models.LabOrderRejected, nil
}
