package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a sellable item belonging to a category. Price is the
// authoritative price at the moment an order is built; orders snapshot
// it, so later price changes never affect existing orders.
//
// Fields:
//  ID          – primary key identifier.
//  CategoryID  – owning category.
//  Name        – display name.
//  Description – optional free-text description.
//  Price       – fixed-point price, must be > 0.
//  ImageURL    – optional image link.
//  IsAvailable – whether the item can currently be ordered.
//  CreatedAt   – creation timestamp.
type MenuItem struct {
	ID          int64           `json:"id"`          // menu_items.id
	CategoryID  int64           `json:"category_id"` // menu_items.category_id
	Name        string          `json:"name"`        // menu_items.name
	Description *string         `json:"description"` // menu_items.description (nullable)
	Price       decimal.Decimal `json:"price"`       // menu_items.price DECIMAL(10,2)
	ImageURL    *string         `json:"image_url"`   // menu_items.image_url (nullable)
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
}
