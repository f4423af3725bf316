package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/qr-table-ordering/internal/fanout"
	"github.com/iliyamo/qr-table-ordering/internal/payment"
	"github.com/iliyamo/qr-table-ordering/internal/queue"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
	"github.com/iliyamo/qr-table-ordering/internal/service"
)

// EventVerifier authenticates a raw webhook delivery and projects it
// into a payment event. *payment.StripeProvider satisfies it.
type EventVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (payment.Event, error)
}

// WebhookHandler receives payment provider webhooks. Nothing in the
// payload is trusted before signature verification; an unverifiable
// delivery is rejected with 400 and applies no state change.
type WebhookHandler struct {
	Verifier   EventVerifier
	Reconciler *service.Reconciler
	Hub        *fanout.Hub
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(verifier EventVerifier, rec *service.Reconciler, hub *fanout.Hub) *WebhookHandler {
	return &WebhookHandler{Verifier: verifier, Reconciler: rec, Hub: hub}
}

// HandleStripe handles POST /api/webhooks/stripe. A completed checkout
// for an unknown session id returns 404 so the provider retries the
// delivery instead of dropping it; redelivery of an already-applied
// event is acknowledged without a second transition or broadcast.
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read body"})
	}
	sig := c.Request().Header.Get("Stripe-Signature")

	ev, err := h.Verifier.VerifyEvent(payload, sig)
	if err != nil {
		c.Logger().Warnf("webhook: signature verification failed: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	order, applied, err := h.Reconciler.Apply(c.Request().Context(), ev)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not process event"})
	}

	if applied && order != nil {
		h.Hub.Broadcast(fanout.StatusUpdateEvent(order, string(order.PaymentStatus)))
		publishAsync(queue.EventFromOrder("status_changed", order))
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
