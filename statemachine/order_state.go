package statemachine

import (
	"errors"

	"github.com/campushub/campus-services/models"
)

// forwardSequence is the authoritative delivery progression. An order only
// ever moves rightward through it, or jumps to cancelled from any
// non-terminal state.
var forwardSequence = []models.OrderStatus{
	models.StatusPlaced,
	models.StatusPacking,
	models.StatusShipped,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

var sequenceIndex = func() map[models.OrderStatus]int {
	m := make(map[models.OrderStatus]int, len(forwardSequence))
	for i, s := range forwardSequence {
		m[s] = i
	}
	return m
}()

var (
	ErrTerminalState = errors.New("order is already in a terminal state")
	ErrUnknownStatus = errors.New("order is not in a known progressable status")
	ErrAlreadyDone   = errors.New("order is already completed or cancelled")
)

// IsTerminal reports whether a status can never change again.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// NextStatus returns the single step forward from the given status.
func NextStatus(s models.OrderStatus) (models.OrderStatus, error) {
	idx, ok := sequenceIndex[s]
	if !ok {
		return "", ErrUnknownStatus
	}
	if idx == len(forwardSequence)-1 {
		return "", ErrTerminalState
	}
	return forwardSequence[idx+1], nil
}

// CanCancel reports whether an order in the given status may still be
// cancelled (any non-terminal state may).
func CanCancel(s models.OrderStatus) error {
	if IsTerminal(s) {
		return ErrAlreadyDone
	}
	return nil
}

// Sequence returns the full forward delivery sequence for documentation
// and validation.
func Sequence() []models.OrderStatus {
	out := make([]models.OrderStatus, len(forwardSequence))
	copy(out, forwardSequence)
	return out
}

// IsKnown reports whether s is any recognised order status.
func IsKnown(s models.OrderStatus) bool {
	if _, ok := sequenceIndex[s]; ok {
		return true
	}
	return s == models.StatusCancelled
}
