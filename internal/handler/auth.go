package handler // handler package contains the HTTP handlers for the ordering API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/qr-table-ordering/internal/config"
	"github.com/iliyamo/qr-table-ordering/internal/utils"
)

// AuthHandler issues admin tokens. There is a single shared admin
// credential; tokens are stateless JWTs so logout is a client-side
// discard and the endpoint only acknowledges.
type AuthHandler struct {
	cfg config.Config
}

// NewAuthHandler constructs an AuthHandler over the loaded configuration.
func NewAuthHandler(cfg config.Config) *AuthHandler { return &AuthHandler{cfg: cfg} }

// Login handles POST /api/admin/login. It compares the submitted
// password against the configured credential and returns a signed JWT
// on success.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !utils.CheckAdminPassword(h.cfg.AdminPassword, h.cfg.AdminPasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid password"})
	}
	tok, err := utils.NewAdminToken(h.cfg.JWTSecret, h.cfg.TokenTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      tok.Token,
		"expires_at": tok.Exp,
	})
}

// Logout handles POST /api/admin/logout. Tokens are not tracked server
// side, so this only acknowledges; the client discards its token.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "logged out"})
}
