package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/qr-table-ordering/internal/model"
)

// TableRepo provides CRUD operations over the tables table. Deleting a
// table that is referenced by at least one order is refused with
// ErrConflict; such tables must be deactivated instead so that no
// order→table reference ever dangles.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, table_number, qr_code_url, is_active, created_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	var qr sql.NullString
	if err := row.Scan(&t.ID, &t.TableNumber, &qr, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	if qr.Valid {
		u := qr.String
		t.QRCodeURL = &u
	}
	return &t, nil
}

// Create inserts a table and reads the stored row back. A duplicate
// table number is reported as ErrDuplicateTableNumber.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO tables (table_number, qr_code_url, is_active) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.TableNumber, t.QRCodeURL, t.IsActive)
	if err != nil {
		// 1062 is the MySQL duplicate-key error
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicateTableNumber
		}
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
	*t = *stored
	return nil
}

// GetByID returns a table by primary key or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id int64) (*model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	return t, err
}

// GetActiveByNumber resolves a table by its customer-facing number,
// requiring it to be active. Inactive or absent tables both map to
// ErrTableNotFound so that customers cannot order against a retired
// table.
func (r *TableRepo) GetActiveByNumber(ctx context.Context, number int64) (*model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM tables WHERE table_number = ? AND is_active = TRUE`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, number))
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	return t, err
}

// List returns all tables ordered by table number.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	return r.queryTables(ctx, `SELECT `+tableColumns+` FROM tables ORDER BY table_number`)
}

// ListActive returns active tables only, used for QR code listings.
func (r *TableRepo) ListActive(ctx context.Context) ([]model.Table, error) {
	return r.queryTables(ctx, `SELECT `+tableColumns+` FROM tables WHERE is_active = TRUE ORDER BY table_number`)
}

func (r *TableRepo) queryTables(ctx context.Context, q string) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Update stores the mutable fields of a table (active flag and QR URL).
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	const q = `UPDATE tables SET qr_code_url = ?, is_active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.QRCodeURL, t.IsActive, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a table that has no orders. When at least one order
// references the table, ErrConflict is returned and the caller should
// deactivate the table instead.
func (r *TableRepo) Delete(ctx context.Context, id int64) error {
	var n int64
	const cnt = `SELECT COUNT(*) FROM orders WHERE table_id = ?`
	if err := r.db.QueryRowContext(ctx, cnt, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	const q = `DELETE FROM tables WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTableNotFound
	}
	return nil
}
