package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const testSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way the provider
// signs deliveries: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEventCheckoutCompleted(t *testing.T) {
	p := &StripeProvider{webhookSecret: testSecret}
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_123","payment_intent":"pi_test_456"}}}`)
	header := signPayload(t, payload, testSecret, time.Now())

	ev, err := p.VerifyEvent(payload, header)
	if err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if ev.Type != EventCheckoutCompleted {
		t.Errorf("type = %q, want %q", ev.Type, EventCheckoutCompleted)
	}
	if ev.SessionID != "cs_test_123" {
		t.Errorf("session id = %q, want cs_test_123", ev.SessionID)
	}
	if ev.PaymentIntentID != "pi_test_456" {
		t.Errorf("payment intent id = %q, want pi_test_456", ev.PaymentIntentID)
	}
}

func TestVerifyEventPaymentFailed(t *testing.T) {
	p := &StripeProvider{webhookSecret: testSecret}
	payload := []byte(`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_test_789"}}}`)
	header := signPayload(t, payload, testSecret, time.Now())

	ev, err := p.VerifyEvent(payload, header)
	if err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if ev.Type != EventPaymentFailed {
		t.Errorf("type = %q, want %q", ev.Type, EventPaymentFailed)
	}
	if ev.PaymentIntentID != "pi_test_789" {
		t.Errorf("payment intent id = %q, want pi_test_789", ev.PaymentIntentID)
	}
}

func TestVerifyEventRejectsBadSignature(t *testing.T) {
	p := &StripeProvider{webhookSecret: testSecret}
	payload := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_x"}}}`)

	// Signed with the wrong secret.
	header := signPayload(t, payload, "whsec_wrong", time.Now())
	if _, err := p.VerifyEvent(payload, header); err == nil {
		t.Fatal("expected error for signature from wrong secret")
	}

	// Payload tampered after signing.
	header = signPayload(t, payload, testSecret, time.Now())
	tampered := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_y"}}}`)
	if _, err := p.VerifyEvent(tampered, header); err == nil {
		t.Fatal("expected error for tampered payload")
	}

	// Garbage header.
	if _, err := p.VerifyEvent(payload, "not-a-signature"); err == nil {
		t.Fatal("expected error for malformed header")
	}
}

func TestVerifyEventRejectsStaleTimestamp(t *testing.T) {
	p := &StripeProvider{webhookSecret: testSecret}
	payload := []byte(`{"id":"evt_4","type":"checkout.session.completed","data":{"object":{"id":"cs_old"}}}`)
	header := signPayload(t, payload, testSecret, time.Now().Add(-time.Hour))
	if _, err := p.VerifyEvent(payload, header); err == nil {
		t.Fatal("expected error for stale signature timestamp")
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"9.50", 950},
		{"19.00", 1900},
		{"0.01", 1},
		{"100", 10000},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := minorUnits(d); got != tt.want {
			t.Errorf("minorUnits(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
