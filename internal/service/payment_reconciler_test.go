package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/payment"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// memLedger is an in-memory Ledger with the same conditional-update
// semantics as the SQL repository.
type memLedger struct {
	orders map[uuid.UUID]*model.Order
}

func newMemLedger(orders ...*model.Order) *memLedger {
	m := &memLedger{orders: make(map[uuid.UUID]*model.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memLedger) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *memLedger) GetBySessionID(_ context.Context, sessionID string) (*model.Order, error) {
	for _, o := range m.orders {
		if o.StripeSessionID != nil && *o.StripeSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *memLedger) GetByPaymentIntentID(_ context.Context, intentID string) (*model.Order, error) {
	for _, o := range m.orders {
		if o.StripePaymentIntentID != nil && *o.StripePaymentIntentID == intentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *memLedger) MarkPaid(_ context.Context, id uuid.UUID, intentID string) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	o.PaymentStatus = model.PaymentPaid
	// An empty intent id stays NULL, mirroring the SQL repository.
	if intentID != "" {
		o.StripePaymentIntentID = &intentID
	}
	return true, nil
}

func (m *memLedger) MarkFailed(_ context.Context, id uuid.UUID) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	o.PaymentStatus = model.PaymentFailed
	return true, nil
}

func pendingOrder(sessionID string) *model.Order {
	sid := sessionID
	return &model.Order{
		ID:                uuid.New(),
		PaymentStatus:     model.PaymentPending,
		FulfillmentStatus: model.FulfillmentPending,
		StripeSessionID:   &sid,
	}
}

func TestApplyCheckoutCompleted(t *testing.T) {
	order := pendingOrder("cs_1")
	ledger := newMemLedger(order)
	r := NewReconciler(ledger)

	ev := payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_1", PaymentIntentID: "pi_1"}
	updated, applied, err := r.Apply(context.Background(), ev)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !applied {
		t.Error("expected the transition to be applied")
	}
	if updated.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", updated.PaymentStatus)
	}
	if updated.StripePaymentIntentID == nil || *updated.StripePaymentIntentID != "pi_1" {
		t.Error("payment intent id not persisted")
	}
}

func TestApplyCheckoutCompletedWithoutIntentID(t *testing.T) {
	order := pendingOrder("cs_noint")
	ledger := newMemLedger(order)
	r := NewReconciler(ledger)

	// A completed session can arrive before the provider exposes the
	// payment intent; the order is still paid, but no empty intent id
	// may be stored where a later lookup by "" could match it.
	ev := payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_noint"}
	updated, applied, err := r.Apply(context.Background(), ev)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !applied || updated.PaymentStatus != model.PaymentPaid {
		t.Errorf("applied=%v status=%s, want applied paid", applied, updated.PaymentStatus)
	}
	if updated.StripePaymentIntentID != nil {
		t.Errorf("intent id = %q, want unset", *updated.StripePaymentIntentID)
	}
	if _, err := ledger.GetByPaymentIntentID(context.Background(), ""); err != repository.ErrOrderNotFound {
		t.Fatalf("lookup by empty intent id: got %v, want ErrOrderNotFound", err)
	}
}

func TestApplyCheckoutCompletedIdempotent(t *testing.T) {
	order := pendingOrder("cs_2")
	ledger := newMemLedger(order)
	r := NewReconciler(ledger)
	ev := payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_2", PaymentIntentID: "pi_2"}

	if _, applied, err := r.Apply(context.Background(), ev); err != nil || !applied {
		t.Fatalf("first delivery: applied=%v err=%v", applied, err)
	}
	// Identical redelivery: no error, no second application.
	updated, applied, err := r.Apply(context.Background(), ev)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if applied {
		t.Error("second delivery must be a no-op")
	}
	if updated.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", updated.PaymentStatus)
	}
}

func TestApplyCheckoutCompletedUnknownSession(t *testing.T) {
	r := NewReconciler(newMemLedger())
	ev := payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_missing"}
	if _, _, err := r.Apply(context.Background(), ev); err != repository.ErrOrderNotFound {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
}

func TestApplyPaymentFailed(t *testing.T) {
	order := pendingOrder("cs_3")
	pi := "pi_3"
	order.StripePaymentIntentID = &pi
	ledger := newMemLedger(order)
	r := NewReconciler(ledger)

	updated, applied, err := r.Apply(context.Background(), payment.Event{Type: payment.EventPaymentFailed, PaymentIntentID: "pi_3"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !applied || updated.PaymentStatus != model.PaymentFailed {
		t.Errorf("applied=%v status=%s, want applied failed", applied, updated.PaymentStatus)
	}
}

func TestApplyPaymentFailedUnknownIntentAcknowledged(t *testing.T) {
	r := NewReconciler(newMemLedger(pendingOrder("cs_4")))
	// The failure event may race ahead of intent-id persistence;
	// an unknown intent is acknowledged without mutation.
	updated, applied, err := r.Apply(context.Background(), payment.Event{Type: payment.EventPaymentFailed, PaymentIntentID: "pi_unknown"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied || updated != nil {
		t.Errorf("applied=%v updated=%v, want no-op", applied, updated)
	}
}

func TestApplyPaymentFailedAfterPaidIsNoOp(t *testing.T) {
	order := pendingOrder("cs_5")
	order.PaymentStatus = model.PaymentPaid
	pi := "pi_5"
	order.StripePaymentIntentID = &pi
	r := NewReconciler(newMemLedger(order))

	updated, applied, err := r.Apply(context.Background(), payment.Event{Type: payment.EventPaymentFailed, PaymentIntentID: "pi_5"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied {
		t.Error("terminal status must not be overwritten")
	}
	if updated.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", updated.PaymentStatus)
	}
}

func TestApplyIgnoresUnhandledEventTypes(t *testing.T) {
	r := NewReconciler(newMemLedger())
	updated, applied, err := r.Apply(context.Background(), payment.Event{Type: "charge.refunded"})
	if err != nil || applied || updated != nil {
		t.Errorf("got (%v, %v, %v), want clean no-op", updated, applied, err)
	}
}
