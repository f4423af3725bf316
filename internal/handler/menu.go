package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// MenuHandler serves the public menu that a customer sees after
// scanning a table QR code.
type MenuHandler struct {
	Tables     *repository.TableRepo
	Categories *repository.CategoryRepo
	Items      *repository.MenuItemRepo
}

// NewMenuHandler constructs a MenuHandler over the given repositories.
func NewMenuHandler(tables *repository.TableRepo, categories *repository.CategoryRepo, items *repository.MenuItemRepo) *MenuHandler {
	return &MenuHandler{Tables: tables, Categories: categories, Items: items}
}

// menuCategory is one category with its orderable items, as returned
// by the public menu endpoint.
type menuCategory struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	DisplayOrder int64            `json:"display_order"`
	Items        []model.MenuItem `json:"items"`
}

// GetMenu handles GET /api/menu?table=N. The table number must resolve
// to an active table; otherwise the QR code points at a retired table
// and ordering is refused. Only available items are returned, grouped
// by category; categories with no available items are omitted.
func (h *MenuHandler) GetMenu(c echo.Context) error {
	tableNum, err := strconv.ParseInt(c.QueryParam("table"), 10, 64)
	if err != nil || tableNum <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table query parameter is required"})
	}
	ctx := c.Request().Context()

	table, err := h.Tables.GetActiveByNumber(ctx, tableNum)
	if err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.Items.ListAvailable(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	byCategory := make(map[int64][]model.MenuItem, len(cats))
	for _, it := range items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
	}
	out := make([]menuCategory, 0, len(cats))
	for _, cat := range cats {
		group := byCategory[cat.ID]
		if len(group) == 0 {
			continue
		}
		out = append(out, menuCategory{
			ID:           cat.ID,
			Name:         cat.Name,
			DisplayOrder: cat.DisplayOrder,
			Items:        group,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"table_number": table.TableNumber,
		"categories":   out,
	})
}
