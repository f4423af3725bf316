package model

import "time"

// Category groups menu items for display. DisplayOrder controls the
// position of the category in the customer-facing menu.
type Category struct {
	ID           int64     `json:"id"`            // categories.id
	Name         string    `json:"name"`          // categories.name
	DisplayOrder int64     `json:"display_order"` // categories.display_order
	CreatedAt    time.Time `json:"created_at"`    // categories.created_at
}
