package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/qr-table-ordering/internal/fanout"
	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/payment"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
	"github.com/iliyamo/qr-table-ordering/internal/service"
)

// fakeVerifier returns a canned event, or an error to simulate a
// signature failure.
type fakeVerifier struct {
	event payment.Event
	err   error
}

func (f *fakeVerifier) VerifyEvent(payload []byte, sig string) (payment.Event, error) {
	return f.event, f.err
}

// fakeLedger holds a single order and mimics the conditional-update
// semantics of the real repository.
type fakeLedger struct {
	order *model.Order
}

func (f *fakeLedger) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if f.order != nil && f.order.ID == id {
		cp := *f.order
		return &cp, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeLedger) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	if f.order != nil && f.order.StripeSessionID != nil && *f.order.StripeSessionID == sessionID {
		cp := *f.order
		return &cp, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeLedger) GetByPaymentIntentID(ctx context.Context, intentID string) (*model.Order, error) {
	if f.order != nil && f.order.StripePaymentIntentID != nil && *f.order.StripePaymentIntentID == intentID {
		cp := *f.order
		return &cp, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeLedger) MarkPaid(ctx context.Context, id uuid.UUID, intentID string) (bool, error) {
	if f.order == nil || f.order.ID != id || f.order.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	f.order.PaymentStatus = model.PaymentPaid
	if intentID != "" {
		f.order.StripePaymentIntentID = &intentID
	}
	return true, nil
}

func (f *fakeLedger) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.order == nil || f.order.ID != id || f.order.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	f.order.PaymentStatus = model.PaymentFailed
	return true, nil
}

func testOrder(sessionID string) *model.Order {
	return &model.Order{
		ID:                uuid.New(),
		TableID:           1,
		TableNumber:       4,
		TotalAmount:       decimal.RequireFromString("19.00"),
		PaymentStatus:     model.PaymentPending,
		FulfillmentStatus: model.FulfillmentPending,
		StripeSessionID:   &sessionID,
	}
}

func postWebhook(h *WebhookHandler) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.HandleStripe(c)
	return rec
}

func TestHandleStripeRejectsBadSignature(t *testing.T) {
	ledger := &fakeLedger{order: testOrder("cs_1")}
	h := NewWebhookHandler(
		&fakeVerifier{err: errors.New("bad signature")},
		service.NewReconciler(ledger),
		fanout.NewHub(),
	)

	rec := postWebhook(h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ledger.order.PaymentStatus != model.PaymentPending {
		t.Errorf("order mutated despite signature failure: %s", ledger.order.PaymentStatus)
	}
}

func TestHandleStripeCompletedMarksPaidAndBroadcasts(t *testing.T) {
	ledger := &fakeLedger{order: testOrder("cs_1")}
	hub := fanout.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	h := NewWebhookHandler(
		&fakeVerifier{event: payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_1", PaymentIntentID: "pi_1"}},
		service.NewReconciler(ledger),
		hub,
	)

	rec := postWebhook(h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ledger.order.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", ledger.order.PaymentStatus)
	}
	select {
	case msg := <-sub:
		if !strings.Contains(string(msg), "order_status_update") {
			t.Errorf("broadcast = %s, want order_status_update event", msg)
		}
	default:
		t.Error("expected a broadcast after the transition applied")
	}
}

func TestHandleStripeRedeliveryIsAcknowledgedOnce(t *testing.T) {
	ledger := &fakeLedger{order: testOrder("cs_1")}
	hub := fanout.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	h := NewWebhookHandler(
		&fakeVerifier{event: payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_1", PaymentIntentID: "pi_1"}},
		service.NewReconciler(ledger),
		hub,
	)

	if rec := postWebhook(h); rec.Code != http.StatusOK {
		t.Fatalf("first delivery status = %d, want 200", rec.Code)
	}
	<-sub
	if rec := postWebhook(h); rec.Code != http.StatusOK {
		t.Fatalf("redelivery status = %d, want 200", rec.Code)
	}
	if ledger.order.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", ledger.order.PaymentStatus)
	}
	select {
	case msg := <-sub:
		t.Errorf("redelivery must not broadcast again, got %s", msg)
	default:
	}
}

func TestHandleStripeUnknownSessionIsNotFound(t *testing.T) {
	ledger := &fakeLedger{order: testOrder("cs_1")}
	h := NewWebhookHandler(
		&fakeVerifier{event: payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_other"}},
		service.NewReconciler(ledger),
		fanout.NewHub(),
	)

	rec := postWebhook(h)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ledger.order.PaymentStatus != model.PaymentPending {
		t.Errorf("order mutated for an unknown session: %s", ledger.order.PaymentStatus)
	}
}

func TestHandleStripeUnknownIntentIsAcknowledged(t *testing.T) {
	ledger := &fakeLedger{order: testOrder("cs_1")}
	h := NewWebhookHandler(
		&fakeVerifier{event: payment.Event{Type: payment.EventPaymentFailed, PaymentIntentID: "pi_unlinked"}},
		service.NewReconciler(ledger),
		fanout.NewHub(),
	)

	rec := postWebhook(h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ledger.order.PaymentStatus != model.PaymentPending {
		t.Errorf("order mutated for an unlinked intent: %s", ledger.order.PaymentStatus)
	}
}
