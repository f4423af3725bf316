// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. ErrConflict signals that an
// operation cannot proceed due to existing dependent records (e.g.
// deleting a table that still has orders).
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrCategoryNotFound is returned when a category lookup matches no row.
var ErrCategoryNotFound = errors.New("category not found")

// ErrMenuItemNotFound is returned when a menu item lookup matches no row.
var ErrMenuItemNotFound = errors.New("menu item not found")

// ErrTableNotFound is returned when a table lookup matches no row or the
// table is inactive where an active one is required.
var ErrTableNotFound = errors.New("table not found")

// ErrOrderNotFound is returned when an order lookup matches no row.
var ErrOrderNotFound = errors.New("order not found")

// ErrDuplicateTableNumber is returned when creating a table whose number
// is already taken.
var ErrDuplicateTableNumber = errors.New("table number already exists")
