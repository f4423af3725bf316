package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/qr-table-ordering/internal/fanout"
	"github.com/iliyamo/qr-table-ordering/internal/payment"
	"github.com/iliyamo/qr-table-ordering/internal/queue"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
	"github.com/iliyamo/qr-table-ordering/internal/service"
)

// publishAsync sends a queue event without tying it to the request
// lifetime; a broker outage must never fail an order operation.
func publishAsync(ev queue.OrderEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishOrderEvent(ctx, ev)
	}()
}

// CheckoutHandler creates orders, either paired with a hosted checkout
// session or directly for pay-at-counter flows.
type CheckoutHandler struct {
	Builder     *service.OrderBuilder
	Orders      *repository.OrderRepo
	Provider    payment.Provider
	Hub         *fanout.Hub
	FrontendURL string
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(builder *service.OrderBuilder, orders *repository.OrderRepo, provider payment.Provider, hub *fanout.Hub, frontendURL string) *CheckoutHandler {
	return &CheckoutHandler{Builder: builder, Orders: orders, Provider: provider, Hub: hub, FrontendURL: frontendURL}
}

// checkoutRequest is the JSON body shared by both order-creation
// endpoints. Prices are never accepted from the client; only item ids
// and quantities.
type checkoutRequest struct {
	TableNumber         int64                  `json:"table_number"`
	Items               []service.CheckoutItem `json:"items"`
	CustomerName        *string                `json:"customer_name"`
	SpecialInstructions *string                `json:"special_instructions"`
}

func (r checkoutRequest) toCreateRequest() service.CreateOrderRequest {
	return service.CreateOrderRequest{
		TableNumber:         r.TableNumber,
		Items:               r.Items,
		CustomerName:        r.CustomerName,
		SpecialInstructions: r.SpecialInstructions,
	}
}

// respondBuildError maps order-builder failures to HTTP responses.
// Validation failures name every offending item id at once.
func respondBuildError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		body := echo.Map{"error": ve.Error()}
		if len(ve.MissingIDs) > 0 {
			body["missing_ids"] = ve.MissingIDs
		}
		if len(ve.UnavailableIDs) > 0 {
			body["unavailable_ids"] = ve.UnavailableIDs
		}
		return c.JSON(http.StatusBadRequest, body)
	}
	if errors.Is(err, repository.ErrTableNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create order"})
}

// CreateSession handles POST /api/checkout/create-session. The order
// insert and the payment-session creation happen in one unit of work:
// the row is committed only after the provider call succeeds and the
// session id is stored, so a provider failure leaves nothing behind
// and no order can exist half-attached to a session.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var body checkoutRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TableNumber <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number is required"})
	}
	ctx := c.Request().Context()

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create order"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := h.Builder.BuildTx(ctx, tx, body.toCreateRequest())
	if err != nil {
		return respondBuildError(c, err)
	}

	lines := make([]payment.Line, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, payment.Line{Name: it.Name, UnitPrice: it.Price, Quantity: it.Quantity})
	}
	// {CHECKOUT_SESSION_ID} is substituted by Stripe on redirect.
	sess, err := h.Provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		OrderID:     order.ID.String(),
		TableNumber: order.TableNumber,
		Lines:       lines,
		SuccessURL:  fmt.Sprintf("%s/order-confirmation?session_id={CHECKOUT_SESSION_ID}", h.FrontendURL),
		CancelURL:   fmt.Sprintf("%s/menu?table=%d&cancelled=true", h.FrontendURL, order.TableNumber),
	})
	if err != nil {
		c.Logger().Errorf("checkout: session creation failed for order %s: %v", order.ID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
	}

	if err := h.Orders.SetStripeSessionTx(ctx, tx, order.ID, sess.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create order"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create order"})
	}
	committed = true
	order.StripeSessionID = &sess.ID

	h.Hub.Broadcast(fanout.NewOrderEvent(order))
	publishAsync(queue.EventFromOrder("created", order))

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":     order.ID,
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
	})
}

// CreateOrder handles POST /api/orders: direct order creation with no
// payment session attached. The order stays payment-pending until it
// is settled out of band.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	var body checkoutRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TableNumber <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number is required"})
	}

	order, err := h.Builder.Build(c.Request().Context(), body.toCreateRequest())
	if err != nil {
		return respondBuildError(c, err)
	}

	h.Hub.Broadcast(fanout.NewOrderEvent(order))
	publishAsync(queue.EventFromOrder("created", order))

	return c.JSON(http.StatusCreated, order)
}
