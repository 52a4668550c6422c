package order

import (
	"testing"
	"time"

	"foodbooking_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

func pendingOrder(createdAt time.Time) models.Order {
	return models.Order{
		OrderID:       "A20250314150926",
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     createdAt,
	}
}

func TestCanCancelWithinWindow(t *testing.T) {
	now := time.Now()
	o := pendingOrder(now.Add(-3 * time.Minute))

	assert.NoError(t, canCancel(o, now, 5*time.Minute))
}

func TestCanCancelWindowExpired(t *testing.T) {
	now := time.Now()
	o := pendingOrder(now.Add(-6 * time.Minute))

	assert.ErrorIs(t, canCancel(o, now, 5*time.Minute), errWindowExpired)
}

func TestCanCancelExactBoundary(t *testing.T) {
	now := time.Now()
	o := pendingOrder(now.Add(-5 * time.Minute))

	// Pile sur la limite : encore annulable
	assert.NoError(t, canCancel(o, now, 5*time.Minute))
}

func TestCanCancelUnlimitedWindow(t *testing.T) {
	now := time.Now()
	o := pendingOrder(now.Add(-48 * time.Hour))

	assert.NoError(t, canCancel(o, now, 0))
}

func TestCanCancelOnlyPending(t *testing.T) {
	now := time.Now()

	for _, status := range []string{models.StatusProcessing, models.StatusSuccess, models.StatusCancelled} {
		o := pendingOrder(now)
		o.Status = status
		assert.ErrorIs(t, canCancel(o, now, 5*time.Minute), errInvalidTransition, "statut %s", status)
	}
}

func TestCheckStatusUpdateTerminalStates(t *testing.T) {
	cancelled := models.Order{Status: models.StatusCancelled, PaymentStatus: models.PaymentFailed}
	assert.ErrorIs(t, checkStatusUpdate(cancelled, models.StatusProcessing, ""), errInvalidTransition)

	delivered := models.Order{Status: models.StatusSuccess, PaymentStatus: models.PaymentSuccess}
	assert.ErrorIs(t, checkStatusUpdate(delivered, models.StatusPending, ""), errInvalidTransition)
}

func TestCheckStatusUpdateValidTransitions(t *testing.T) {
	pending := models.Order{Status: models.StatusPending, PaymentStatus: models.PaymentPending}

	assert.NoError(t, checkStatusUpdate(pending, models.StatusProcessing, models.PaymentSuccess))
	assert.NoError(t, checkStatusUpdate(pending, models.StatusCancelled, models.PaymentFailed))

	processing := models.Order{Status: models.StatusProcessing, PaymentStatus: models.PaymentSuccess}
	assert.NoError(t, checkStatusUpdate(processing, models.StatusSuccess, ""))
}

func TestCheckStatusUpdateUnknownValues(t *testing.T) {
	pending := models.Order{Status: models.StatusPending, PaymentStatus: models.PaymentPending}

	assert.ErrorIs(t, checkStatusUpdate(pending, "shipped", ""), errUnknownStatus)
	assert.ErrorIs(t, checkStatusUpdate(pending, "", "refunded"), errUnknownStatus)
}

func TestCheckStatusUpdateNoChangeOnTerminal(t *testing.T) {
	// Réécrire le même statut terminal n'est pas une transition
	delivered := models.Order{Status: models.StatusSuccess, PaymentStatus: models.PaymentSuccess}
	assert.NoError(t, checkStatusUpdate(delivered, models.StatusSuccess, ""))
}
