package model

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentPending, false},
		{PaymentPaid, PaymentFailed, false},
		{PaymentPaid, PaymentPaid, false},
		{PaymentFailed, PaymentPaid, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	if PaymentPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !PaymentPaid.Terminal() || !PaymentFailed.Terminal() {
		t.Error("paid and failed must be terminal")
	}
}

func TestFulfillmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from FulfillmentStatus
		to   FulfillmentStatus
		want bool
	}{
		{FulfillmentPending, FulfillmentAccepted, true},
		{FulfillmentPending, FulfillmentRejected, true},
		{FulfillmentPending, FulfillmentCompleted, false},
		{FulfillmentAccepted, FulfillmentCompleted, true},
		{FulfillmentAccepted, FulfillmentRejected, false},
		{FulfillmentAccepted, FulfillmentPending, false},
		{FulfillmentCompleted, FulfillmentAccepted, false},
		{FulfillmentCompleted, FulfillmentCompleted, false},
		{FulfillmentRejected, FulfillmentAccepted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
