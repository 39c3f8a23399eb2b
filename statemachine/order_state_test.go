package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushub/campus-services/models"
)

func TestNextStatusWalksForwardSequence(t *testing.T) {
	status := models.StatusPlaced
	want := []models.OrderStatus{
		models.StatusPacking,
		models.StatusShipped,
		models.StatusOutForDelivery,
		models.StatusDelivered,
	}

	for _, expected := range want {
		next, err := NextStatus(status)
		assert.NoError(t, err)
		assert.Equal(t, expected, next)
		status = next
	}
}

func TestNextStatusTerminalStates(t *testing.T) {
	_, err := NextStatus(models.StatusDelivered)
	assert.ErrorIs(t, err, ErrTerminalState)

	// Cancelled is not on the forward sequence at all.
	_, err = NextStatus(models.StatusCancelled)
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = NextStatus(models.OrderStatus("garbage"))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanCancel(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.StatusPlaced,
		models.StatusPacking,
		models.StatusShipped,
		models.StatusOutForDelivery,
	} {
		assert.NoError(t, CanCancel(s), "status %s should be cancellable", s)
	}

	assert.ErrorIs(t, CanCancel(models.StatusDelivered), ErrAlreadyDone)
	assert.ErrorIs(t, CanCancel(models.StatusCancelled), ErrAlreadyDone)
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown(models.StatusPlaced))
	assert.True(t, IsKnown(models.StatusCancelled))
	assert.False(t, IsKnown(models.OrderStatus("refunded")))
}

func TestSequenceIsACopy(t *testing.T) {
	seq := Sequence()
	seq[0] = models.StatusCancelled
	assert.Equal(t, models.StatusPlaced, Sequence()[0])
}
