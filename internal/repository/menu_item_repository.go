package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/qr-table-ordering/internal/model"
)

// MenuItemRepo provides CRUD operations over the menu_items table.
// Menu items carry the authoritative price and availability used by
// the order builder; orders snapshot these values at creation time.
type MenuItemRepo struct {
	db *sql.DB
}

// NewMenuItemRepo returns a new MenuItemRepo bound to the given database.
func NewMenuItemRepo(db *sql.DB) *MenuItemRepo { return &MenuItemRepo{db: db} }

const menuItemColumns = `id, category_id, name, description, price, image_url, is_available, created_at`

func scanMenuItem(row interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var it model.MenuItem
	var desc, img sql.NullString
	err := row.Scan(&it.ID, &it.CategoryID, &it.Name, &desc, &it.Price, &img, &it.IsAvailable, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		it.Description = &d
	}
	if img.Valid {
		u := img.String
		it.ImageURL = &u
	}
	return &it, nil
}

// Create inserts a menu item and reads the stored row back into it.
func (r *MenuItemRepo) Create(ctx context.Context, it *model.MenuItem) error {
	const q = `INSERT INTO menu_items (category_id, name, description, price, image_url, is_available)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, it.CategoryID, it.Name, it.Description, it.Price, it.ImageURL, it.IsAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*it = *stored
	return nil
}

// GetByID returns a single menu item or ErrMenuItemNotFound.
func (r *MenuItemRepo) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	q := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ?`
	it, err := scanMenuItem(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrMenuItemNotFound
	}
	return it, err
}

// GetByIDs resolves a batch of item ids in one query and returns the
// result keyed by id. Missing ids are simply absent from the map; the
// caller decides whether that is an error.
func (r *MenuItemRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	out := make(map[int64]model.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id IN (` + placeholders + `)`
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.ID] = *it
	}
	return out, rows.Err()
}

// List returns all menu items ordered by category for the admin panel.
func (r *MenuItemRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	q := `SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY category_id, id`
	return r.queryItems(ctx, q)
}

// ListAvailable returns items currently orderable, for the public menu.
func (r *MenuItemRepo) ListAvailable(ctx context.Context) ([]model.MenuItem, error) {
	q := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE is_available = TRUE ORDER BY id`
	return r.queryItems(ctx, q)
}

func (r *MenuItemRepo) queryItems(ctx context.Context, q string, args ...any) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MenuItem, 0)
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Update overwrites the stored row with the provided model. The caller
// is expected to have loaded the item first and applied partial changes.
func (r *MenuItemRepo) Update(ctx context.Context, it *model.MenuItem) error {
	const q = `UPDATE menu_items
	           SET category_id = ?, name = ?, description = ?, price = ?, image_url = ?, is_available = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, it.CategoryID, it.Name, it.Description, it.Price, it.ImageURL, it.IsAvailable, it.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, it.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a menu item. Existing orders keep their snapshots, so
// this never touches the ledger.
func (r *MenuItemRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM menu_items WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}
