package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	"github.com/iliyamo/qr-table-ordering/internal/fanout"
	"github.com/iliyamo/qr-table-ordering/internal/utils"
)

// WSHandler upgrades admin dashboard connections and streams order
// events from the fanout hub. Browsers cannot set an Authorization
// header on websocket upgrades, so the admin token travels as a query
// parameter instead.
type WSHandler struct {
	Hub       *fanout.Hub
	JWTSecret string
}

// NewWSHandler constructs a WSHandler.
func NewWSHandler(hub *fanout.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

// Stream handles GET /api/ws/orders?token=... The subscription lives
// for the lifetime of the connection; when the hub prunes a slow
// subscriber the channel closes and the loop ends, dropping the
// connection so the client reconnects with a clean buffer.
func (h *WSHandler) Stream(c echo.Context) error {
	if !utils.VerifyAdminToken(h.JWTSecret, c.QueryParam("token")) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()
		ch := h.Hub.Subscribe()
		defer h.Hub.Unsubscribe(ch)
		for msg := range ch {
			if err := websocket.Message.Send(ws, string(msg)); err != nil {
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}
