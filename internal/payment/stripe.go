// Package payment bridges the order ledger to the hosted checkout
// provider. Session creation embeds the order id in session metadata so
// asynchronous webhook events can be mapped back to exactly one order,
// and webhook payloads are never trusted before their signature has
// been verified against the shared endpoint secret. Monetary amounts
// cross into the provider's minor-unit integer representation here and
// nowhere else; the ledger keeps its own fixed-point values.
package payment

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/webhook"
)

// Event types the reconciler reacts to. Other event types are
// acknowledged without any state change.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// Event is the provider-neutral projection of a verified webhook
// delivery. Only the identifiers needed for reconciliation are kept.
type Event struct {
	Type            string
	SessionID       string
	PaymentIntentID string
}

// Line is one checkout line item. UnitPrice is the exact ledger price;
// it is converted to minor units when the session is created.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// SessionRequest carries everything needed to open a hosted checkout
// session scoped to a single order.
type SessionRequest struct {
	OrderID     string
	TableNumber int64
	Lines       []Line
	SuccessURL  string
	CancelURL   string
}

// Session is the result of a successful session creation: the provider
// session id (stored on the order) and the URL the customer is
// redirected to.
type Session struct {
	ID  string
	URL string
}

// Provider abstracts hosted checkout session creation so the checkout
// handler can be exercised without calling Stripe.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// StripeProvider implements Provider against the Stripe API and
// verifies inbound webhook signatures with the endpoint secret.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the global Stripe key and returns a
// provider bound to the given webhook endpoint secret.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

// minorUnits converts an exact decimal amount into the provider's
// integer minor-unit representation (cents for USD).
func minorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// CreateCheckoutSession opens a hosted checkout session for one order.
// The order id and table number travel in session metadata so the
// completed-checkout webhook can be reconciled later.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, l := range req.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(minorUnits(l.UnitPrice)),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("table_number", decimal.NewFromInt(req.TableNumber).String())

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw
// payload and the endpoint secret, then extracts the identifiers the
// reconciler needs. Verification failure returns an error and the
// payload must be treated as untrusted.
func (p *StripeProvider) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, p.webhookSecret)
	if err != nil {
		return Event{}, err
	}
	switch ev.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return Event{}, err
		}
		out := Event{Type: ev.Type, SessionID: cs.ID}
		if cs.PaymentIntent != nil {
			out.PaymentIntentID = cs.PaymentIntent.ID
		}
		return out, nil
	case EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, err
		}
		return Event{Type: ev.Type, PaymentIntentID: pi.ID}, nil
	}
	return Event{Type: ev.Type}, nil
}
