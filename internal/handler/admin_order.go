package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/qr-table-ordering/internal/fanout"
	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/queue"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// AdminOrderHandler drives the kitchen side of the order lifecycle:
// listing incoming orders and moving them through accept/reject/
// complete. Transitions are applied conditionally at the row level so
// two staff members acting at once cannot double-apply one.
type AdminOrderHandler struct {
	Orders *repository.OrderRepo
	Hub    *fanout.Hub
}

// NewAdminOrderHandler constructs an AdminOrderHandler.
func NewAdminOrderHandler(orders *repository.OrderRepo, hub *fanout.Hub) *AdminOrderHandler {
	return &AdminOrderHandler{Orders: orders, Hub: hub}
}

// ListOrders handles GET /api/admin/orders?limit=N, newest first.
func (h *AdminOrderHandler) ListOrders(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	orders, err := h.Orders.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}

// Accept handles POST /api/admin/orders/:id/accept (pending→accepted).
func (h *AdminOrderHandler) Accept(c echo.Context) error {
	return h.transition(c, model.FulfillmentAccepted)
}

// Reject handles POST /api/admin/orders/:id/reject (pending→rejected).
func (h *AdminOrderHandler) Reject(c echo.Context) error {
	return h.transition(c, model.FulfillmentRejected)
}

// Complete handles POST /api/admin/orders/:id/complete (accepted→completed).
func (h *AdminOrderHandler) Complete(c echo.Context) error {
	return h.transition(c, model.FulfillmentCompleted)
}

// transition loads the order, checks the requested move against the
// state machine, then applies it with a conditional update. A false
// result from the update means another writer got there first; the
// conflict response names the status stored at that moment.
func (h *AdminOrderHandler) transition(c echo.Context, to model.FulfillmentStatus) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()

	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !order.FulfillmentStatus.CanTransitionTo(to) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": fmt.Sprintf("cannot move order from %s to %s", order.FulfillmentStatus, to),
		})
	}

	applied, err := h.Orders.TransitionFulfillment(ctx, id, order.FulfillmentStatus, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !applied {
		// Lost the race; report what the row holds now.
		current, err := h.Orders.GetByID(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return c.JSON(http.StatusConflict, echo.Map{
			"error": fmt.Sprintf("cannot move order from %s to %s", current.FulfillmentStatus, to),
		})
	}

	updated, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.Hub.Broadcast(fanout.StatusUpdateEvent(updated, string(updated.FulfillmentStatus)))
	publishAsync(queue.EventFromOrder("status_changed", updated))

	return c.JSON(http.StatusOK, updated)
}
