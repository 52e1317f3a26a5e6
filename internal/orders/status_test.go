package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderPendingPayment, models.OrderPaymentUploaded, true},
		{models.OrderPendingPayment, models.OrderCancelled, true},
		{models.OrderPendingPayment, models.OrderShipped, false},
		{models.OrderPaymentUploaded, models.OrderProcessing, true},
		{models.OrderPaymentUploaded, models.OrderPendingPayment, true}, // rejection path
		{models.OrderPaymentUploaded, models.OrderDelivered, false},
		{models.OrderProcessing, models.OrderShipped, true},
		{models.OrderProcessing, models.OrderDelivered, false},
		{models.OrderShipped, models.OrderDelivered, true},
		{models.OrderShipped, models.OrderProcessing, false},
		{models.OrderDelivered, models.OrderCancelled, false},
		{models.OrderCancelled, models.OrderPendingPayment, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s): got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	if err := CheckTransition(models.OrderProcessing, models.OrderShipped); err != nil {
		t.Fatalf("valid transition returned error: %v", err)
	}
	if err := CheckTransition(models.OrderProcessing, models.OrderProcessing); err == nil {
		t.Fatal("no-op transition must error")
	}
	if err := CheckTransition(models.OrderProcessing, models.OrderStatus("teleported")); err == nil {
		t.Fatal("unknown status must error")
	}
	if err := CheckTransition(models.OrderDelivered, models.OrderCancelled); err == nil {
		t.Fatal("leaving a terminal state must error")
	}
}

// Rejections carry the sentinel so handlers map them to 409 instead of 500.
func TestCheckTransitionWrapsSentinel(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderProcessing, models.OrderProcessing},
		{models.OrderProcessing, models.OrderStatus("teleported")},
		{models.OrderDelivered, models.OrderCancelled},
	}
	for _, tc := range cases {
		err := CheckTransition(tc.from, tc.to)
		if !errors.Is(err, ErrTransition) {
			t.Fatalf("CheckTransition(%s, %s): %v does not wrap ErrTransition", tc.from, tc.to, err)
		}
	}

	storageErr := fmt.Errorf("update status: %w", errors.New("connection reset"))
	if errors.Is(storageErr, ErrTransition) {
		t.Fatal("storage errors must not match ErrTransition")
	}
}
