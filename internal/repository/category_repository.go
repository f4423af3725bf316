package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/qr-table-ordering/internal/model"
)

// CategoryRepo provides CRUD operations over the categories table.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a new CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category and populates the generated ID and
// timestamps on the provided model.
func (r *CategoryRepo) Create(ctx context.Context, cat *model.Category) error {
	const q = `INSERT INTO categories (name, display_order) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, cat.Name, cat.DisplayOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cat.ID = id
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT id, name, display_order, created_at FROM categories WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, cat.ID).
		Scan(&cat.ID, &cat.Name, &cat.DisplayOrder, &cat.CreatedAt)
}

// GetByID returns a single category or ErrCategoryNotFound.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	const q = `SELECT id, name, display_order, created_at FROM categories WHERE id = ?`
	var cat model.Category
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&cat.ID, &cat.Name, &cat.DisplayOrder, &cat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// List returns all categories ordered for menu display.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, display_order, created_at FROM categories ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.DisplayOrder, &cat.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// Update renames and/or reorders a category. Returns ErrCategoryNotFound
// when no row matches.
func (r *CategoryRepo) Update(ctx context.Context, id int64, name string, displayOrder int64) error {
	const q = `UPDATE categories SET name = ?, display_order = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, displayOrder, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero affected rows can also mean an identical update; verify existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a category. Menu items referencing it are removed by
// the ON DELETE CASCADE constraint.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM categories WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
