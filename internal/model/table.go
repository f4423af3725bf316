package model

import "time"

// Table is a physical restaurant table identified by a unique table
// number. Tables referenced by orders are never deleted, only
// deactivated, so order rows can always resolve their table.
type Table struct {
	ID          int64     `json:"id"`           // tables.id
	TableNumber int64     `json:"table_number"` // tables.table_number (unique, > 0)
	QRCodeURL   *string   `json:"qr_code_url"`  // tables.qr_code_url (nullable)
	IsActive    bool      `json:"is_active"`    // tables.is_active
	CreatedAt   time.Time `json:"created_at"`   // tables.created_at
}
