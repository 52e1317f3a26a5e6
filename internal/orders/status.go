package orders

import (
	"errors"
	"fmt"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

// ErrTransition marks a status move rejected by the state machine, so
// handlers can tell a conflicting request apart from a storage failure.
var ErrTransition = errors.New("status transition rejected")

// validTransitions is the order status machine. Cancellation is reachable
// from any state that is not terminal; delivered and cancelled are terminal.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPendingPayment:  {models.OrderPaymentUploaded, models.OrderCancelled},
	models.OrderPaymentUploaded: {models.OrderProcessing, models.OrderPendingPayment, models.OrderCancelled},
	models.OrderProcessing:      {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:         {models.OrderDelivered, models.OrderCancelled},
	models.OrderDelivered:       {},
	models.OrderCancelled:       {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a descriptive error, wrapping ErrTransition, when
// the move is not allowed.
func CheckTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrTransition, to)
	}
	if from == to {
		return fmt.Errorf("%w: order is already %s", ErrTransition, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrTransition, from, to)
	}
	return nil
}
