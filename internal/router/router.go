package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/qr-table-ordering/internal/handler"    // handlers implementing the business logic
	"github.com/iliyamo/qr-table-ordering/internal/middleware" // middleware for admin auth, caching and rate limiting
)

// PublicHandlers bundles the handlers mounted without authentication:
// everything a customer touches between scanning a QR code and paying.
type PublicHandlers struct {
	Menu     *handler.MenuHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Webhook  *handler.WebhookHandler
	WS       *handler.WSHandler
}

// AdminHandlers bundles the handlers mounted behind the admin JWT.
type AdminHandlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.AdminCatalogHandler
	Tables  *handler.AdminTableHandler
	Orders  *handler.AdminOrderHandler
}

// RegisterPublic registers the customer-facing routes under /api.
// The menu route sits behind the Redis response cache and all public
// routes behind the token-bucket rate limiter. The webhook route is
// excluded from rate limiting: deliveries are authenticated by
// signature and must not be throttled into provider retries.
func RegisterPublic(e *echo.Echo, h PublicHandlers, cacheMW, rateMW echo.MiddlewareFunc) {
	e.GET("/api/health", handler.Health)

	pub := e.Group("/api", rateMW)
	pub.GET("/menu", h.Menu.GetMenu, cacheMW)
	pub.POST("/checkout/create-session", h.Checkout.CreateSession)
	pub.POST("/orders", h.Checkout.CreateOrder)
	pub.GET("/orders/:id", h.Orders.GetByID)
	pub.GET("/orders/by-session/:session_id", h.Orders.GetBySession)

	e.POST("/api/webhooks/stripe", h.Webhook.HandleStripe)

	// Admin dashboard stream; token is checked in the handler because
	// websocket upgrades cannot carry an Authorization header.
	e.GET("/api/ws/orders", h.WS.Stream)
}

// RegisterAdmin registers the admin panel routes. Login is the only
// route outside the JWT group.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	e.POST("/api/admin/login", h.Auth.Login)

	g := e.Group("/api/admin")
	g.Use(middleware.AdminAuth(jwtSecret))
	g.POST("/logout", h.Auth.Logout)

	g.GET("/categories", h.Catalog.ListCategories)
	g.POST("/categories", h.Catalog.CreateCategory)
	g.PUT("/categories/:id", h.Catalog.UpdateCategory)
	g.DELETE("/categories/:id", h.Catalog.DeleteCategory)

	g.GET("/menu-items", h.Catalog.ListMenuItems)
	g.POST("/menu-items", h.Catalog.CreateMenuItem)
	g.PUT("/menu-items/:id", h.Catalog.UpdateMenuItem)
	g.DELETE("/menu-items/:id", h.Catalog.DeleteMenuItem)

	g.GET("/tables", h.Tables.ListTables)
	g.POST("/tables", h.Tables.CreateTable)
	g.PUT("/tables/:id", h.Tables.UpdateTable)
	g.DELETE("/tables/:id", h.Tables.DeleteTable)
	g.GET("/tables/:id/qr.png", h.Tables.TableQRPNG)
	g.GET("/qr-codes", h.Tables.ListQRCodes)

	g.GET("/orders", h.Orders.ListOrders)
	g.POST("/orders/:id/accept", h.Orders.Accept)
	g.POST("/orders/:id/reject", h.Orders.Reject)
	g.POST("/orders/:id/complete", h.Orders.Complete)
}
