package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/payment"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// Ledger is the slice of the order repository the reconciler needs.
// The *repository.OrderRepo satisfies it; tests substitute an
// in-memory implementation.
type Ledger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*model.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, intentID string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

// Reconciler maps verified payment events onto ledger transitions.
// Signature verification happens before Apply is called; Apply only
// ever sees authenticated events.
type Reconciler struct {
	Ledger Ledger
}

// NewReconciler returns a Reconciler over the given ledger.
func NewReconciler(ledger Ledger) *Reconciler { return &Reconciler{Ledger: ledger} }

// Apply processes one verified event. It returns the affected order
// (nil when the event touched nothing) and whether a transition was
// actually applied. Semantics per event type:
//
//   - checkout.session.completed: the order is looked up by exact
//     session id; an unknown session is repository.ErrOrderNotFound so
//     the delivery is rejected rather than silently dropped. A row
//     already out of pending is left untouched and reported as
//     applied=false - redelivery of the same event is a harmless no-op.
//   - payment_intent.payment_failed: the order is looked up by intent
//     id. An unknown intent is acknowledged without mutation, since
//     the failure event can race ahead of intent-id persistence.
//   - anything else: acknowledged without mutation.
func (r *Reconciler) Apply(ctx context.Context, ev payment.Event) (*model.Order, bool, error) {
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		order, err := r.Ledger.GetBySessionID(ctx, ev.SessionID)
		if err != nil {
			return nil, false, err
		}
		applied, err := r.Ledger.MarkPaid(ctx, order.ID, ev.PaymentIntentID)
		if err != nil {
			return nil, false, err
		}
		updated, err := r.Ledger.GetByID(ctx, order.ID)
		if err != nil {
			return nil, false, err
		}
		return updated, applied, nil

	case payment.EventPaymentFailed:
		order, err := r.Ledger.GetByPaymentIntentID(ctx, ev.PaymentIntentID)
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		applied, err := r.Ledger.MarkFailed(ctx, order.ID)
		if err != nil {
			return nil, false, err
		}
		updated, err := r.Ledger.GetByID(ctx, order.ID)
		if err != nil {
			return nil, false, err
		}
		return updated, applied, nil
	}
	return nil, false, nil
}
