package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// AdminCatalogHandler owns category and menu-item management. Catalog
// edits never touch existing orders; those carry their own snapshots.
type AdminCatalogHandler struct {
	Categories *repository.CategoryRepo
	Items      *repository.MenuItemRepo
}

// NewAdminCatalogHandler constructs an AdminCatalogHandler.
func NewAdminCatalogHandler(categories *repository.CategoryRepo, items *repository.MenuItemRepo) *AdminCatalogHandler {
	return &AdminCatalogHandler{Categories: categories, Items: items}
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// ListCategories handles GET /api/admin/categories.
func (h *AdminCatalogHandler) ListCategories(c echo.Context) error {
	cats, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats})
}

// CreateCategory handles POST /api/admin/categories.
func (h *AdminCatalogHandler) CreateCategory(c echo.Context) error {
	var body struct {
		Name         string `json:"name"`
		DisplayOrder int64  `json:"display_order"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cat := &model.Category{Name: name, DisplayOrder: body.DisplayOrder}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create category"})
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PUT /api/admin/categories/:id.
func (h *AdminCatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name         string `json:"name"`
		DisplayOrder int64  `json:"display_order"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := h.Categories.Update(c.Request().Context(), id, name, body.DisplayOrder); err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCategory handles DELETE /api/admin/categories/:id. Items in the
// category are removed with it by the cascade constraint.
func (h *AdminCatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// menuItemRequest is the shared create/update body for menu items.
type menuItemRequest struct {
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	IsAvailable *bool           `json:"is_available"`
}

func (r menuItemRequest) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.CategoryID <= 0 {
		return "category_id is required"
	}
	if r.Price.IsNegative() || r.Price.IsZero() {
		return "price must be positive"
	}
	return ""
}

// ListMenuItems handles GET /api/admin/menu-items, including items
// currently marked unavailable.
func (h *AdminCatalogHandler) ListMenuItems(c echo.Context) error {
	items, err := h.Items.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateMenuItem handles POST /api/admin/menu-items.
func (h *AdminCatalogHandler) CreateMenuItem(c echo.Context) error {
	var body menuItemRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if _, err := h.Categories.GetByID(ctx, body.CategoryID); err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	available := true
	if body.IsAvailable != nil {
		available = *body.IsAvailable
	}
	it := &model.MenuItem{
		CategoryID:  body.CategoryID,
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Price:       body.Price,
		ImageURL:    body.ImageURL,
		IsAvailable: available,
	}
	if err := h.Items.Create(ctx, it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create menu item"})
	}
	return c.JSON(http.StatusCreated, it)
}

// UpdateMenuItem handles PUT /api/admin/menu-items/:id. The stored row
// is loaded first so omitted optional fields keep their values.
func (h *AdminCatalogHandler) UpdateMenuItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMenuItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body menuItemRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if body.CategoryID != it.CategoryID {
		if _, err := h.Categories.GetByID(ctx, body.CategoryID); err != nil {
			if err == repository.ErrCategoryNotFound {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "category does not exist"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}
	it.CategoryID = body.CategoryID
	it.Name = strings.TrimSpace(body.Name)
	it.Description = body.Description
	it.Price = body.Price
	it.ImageURL = body.ImageURL
	if body.IsAvailable != nil {
		it.IsAvailable = *body.IsAvailable
	}
	if err := h.Items.Update(ctx, it); err != nil {
		if err == repository.ErrMenuItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, it)
}

// DeleteMenuItem handles DELETE /api/admin/menu-items/:id. Orders that
// snapshotted this item are unaffected.
func (h *AdminCatalogHandler) DeleteMenuItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Items.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrMenuItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
