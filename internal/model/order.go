package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus tracks whether an order has been paid for. The only
// legal transitions are pending→paid and pending→failed; paid and
// failed are terminal. A failed payment does not block re-checkout,
// the customer simply creates a new order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Terminal reports whether no further payment transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s != PaymentPending {
		return false
	}
	return next == PaymentPaid || next == PaymentFailed
}

// FulfillmentStatus tracks kitchen-side progress of an order. Legal
// transitions are pending→accepted→completed and pending→rejected.
// Rejected and completed are terminal; completed is reachable only
// from accepted.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "pending"
	FulfillmentAccepted  FulfillmentStatus = "accepted"
	FulfillmentRejected  FulfillmentStatus = "rejected"
	FulfillmentCompleted FulfillmentStatus = "completed"
)

// CanTransitionTo reports whether moving from s to next is legal.
func (s FulfillmentStatus) CanTransitionTo(next FulfillmentStatus) bool {
	switch s {
	case FulfillmentPending:
		return next == FulfillmentAccepted || next == FulfillmentRejected
	case FulfillmentAccepted:
		return next == FulfillmentCompleted
	default:
		return false
	}
}

// OrderLineItem is a snapshot of a menu item at order-creation time.
// Name and Price are copied from the catalog so that later catalog
// edits never change what the customer agreed to pay.
type OrderLineItem struct {
	ItemID   int64           `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Order is the authoritative ledger record for a customer order.
// TotalAmount always equals the sum of line-item subtotals computed at
// creation; it is never recomputed from live catalog prices. The
// Stripe session id, once set, is immutable and globally unique - it
// is the sole key used to reconcile checkout webhook events before a
// payment-intent id is known. Orders are never deleted.
//
// TableNumber is populated from the joined tables row for responses
// and broadcast projections; TableID is the stored foreign key.
type Order struct {
	ID                    uuid.UUID         `json:"id"`
	TableID               int64             `json:"table_id"`
	TableNumber           int64             `json:"table_number"`
	Items                 []OrderLineItem   `json:"items"`
	TotalAmount           decimal.Decimal   `json:"total_amount"`
	CustomerName          *string           `json:"customer_name"`
	SpecialInstructions   *string           `json:"special_instructions"`
	PaymentStatus         PaymentStatus     `json:"payment_status"`
	FulfillmentStatus     FulfillmentStatus `json:"fulfillment_status"`
	StripeSessionID       *string           `json:"-"`
	StripePaymentIntentID *string           `json:"-"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}
