package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// TableStore is the slice of the table repository the admin handler
// needs. *repository.TableRepo satisfies it; tests substitute an
// in-memory implementation.
type TableStore interface {
	Create(ctx context.Context, t *model.Table) error
	GetByID(ctx context.Context, id int64) (*model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	ListActive(ctx context.Context) ([]model.Table, error)
	Update(ctx context.Context, t *model.Table) error
	Delete(ctx context.Context, id int64) error
}

// AdminTableHandler manages physical tables and their QR codes. A QR
// code encodes the frontend menu URL for the table's number, so codes
// printed once stay valid across table edits.
type AdminTableHandler struct {
	Tables      TableStore
	FrontendURL string
}

// NewAdminTableHandler constructs an AdminTableHandler.
func NewAdminTableHandler(tables TableStore, frontendURL string) *AdminTableHandler {
	return &AdminTableHandler{Tables: tables, FrontendURL: frontendURL}
}

func (h *AdminTableHandler) menuURL(tableNumber int64) string {
	return fmt.Sprintf("%s/menu?table=%d", h.FrontendURL, tableNumber)
}

// ListTables handles GET /api/admin/tables.
func (h *AdminTableHandler) ListTables(c echo.Context) error {
	tables, err := h.Tables.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tables})
}

// CreateTable handles POST /api/admin/tables. Table numbers are unique;
// a duplicate is reported as a conflict.
func (h *AdminTableHandler) CreateTable(c echo.Context) error {
	var body struct {
		TableNumber int64 `json:"table_number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TableNumber <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number must be positive"})
	}
	url := h.menuURL(body.TableNumber)
	t := &model.Table{TableNumber: body.TableNumber, QRCodeURL: &url, IsActive: true}
	if err := h.Tables.Create(c.Request().Context(), t); err != nil {
		if err == repository.ErrDuplicateTableNumber {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create table"})
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTable handles PUT /api/admin/tables/:id. Only the active flag
// is mutable; the table number is fixed because printed QR codes
// reference it.
func (h *AdminTableHandler) UpdateTable(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	t.IsActive = body.IsActive
	if err := h.Tables.Update(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTable handles DELETE /api/admin/tables/:id. Tables referenced
// by orders cannot be deleted and must be deactivated instead, so
// order rows never dangle.
func (h *AdminTableHandler) DeleteTable(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete table with existing orders; deactivate it instead"})
		case repository.ErrTableNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListQRCodes handles GET /api/admin/qr-codes and returns the menu URL
// for every active table, for printing.
func (h *AdminTableHandler) ListQRCodes(c echo.Context) error {
	tables, err := h.Tables.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	type qrEntry struct {
		TableID     int64  `json:"table_id"`
		TableNumber int64  `json:"table_number"`
		URL         string `json:"url"`
	}
	out := make([]qrEntry, 0, len(tables))
	for _, t := range tables {
		out = append(out, qrEntry{TableID: t.ID, TableNumber: t.TableNumber, URL: h.menuURL(t.TableNumber)})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// TableQRPNG handles GET /api/admin/tables/:id/qr.png and renders the
// table's menu URL as a QR code image.
func (h *AdminTableHandler) TableQRPNG(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	png, err := qrcode.Encode(h.menuURL(t.TableNumber), qrcode.Medium, 512)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not render qr code"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
