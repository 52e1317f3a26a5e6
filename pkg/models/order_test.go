package models

import "testing"

func TestVariantSnapshotScan(t *testing.T) {
	var s VariantSnapshot
	if err := s.Scan([]byte(`{"variant_name":"Tote Red"}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if s.VariantName != "Tote Red" {
		t.Fatalf("got %q", s.VariantName)
	}

	if err := s.Scan(`{"variant_name":"Tote Blue"}`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if s.VariantName != "Tote Blue" {
		t.Fatalf("got %q", s.VariantName)
	}

	if err := s.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if s.VariantName != "" {
		t.Fatal("nil scan must reset the snapshot")
	}

	if err := s.Scan(42); err == nil {
		t.Fatal("unsupported source type must error")
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderPendingPayment, OrderPaymentUploaded, OrderProcessing,
		OrderShipped, OrderDelivered, OrderCancelled,
	} {
		if !s.Valid() {
			t.Fatalf("%s must be valid", s)
		}
	}
	if OrderStatus("refunded").Valid() {
		t.Fatal("unknown status must be invalid")
	}
}
