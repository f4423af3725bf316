package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/iliyamo/qr-table-ordering/internal/model"
)

// OrderRepo owns persistence for the order ledger. All status changes
// go through conditional updates so that concurrent writers (checkout
// creation, webhook delivery, admin transitions) are serialized at the
// row level: an update only applies when the row is still in the
// expected source state, and a zero-row result tells the caller the
// transition had already happened or is illegal. Orders are never
// deleted.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span the order insert and related work.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `o.id, o.table_id, t.table_number, o.items, o.total_amount,
	o.customer_name, o.special_instructions, o.payment_status, o.fulfillment_status,
	o.stripe_session_id, o.stripe_payment_intent_id, o.created_at, o.updated_at`

const orderFrom = ` FROM orders o JOIN tables t ON t.id = o.table_id `

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var id string
	var itemsJSON []byte
	var customer, instructions, sessionID, intentID sql.NullString
	err := row.Scan(&id, &o.TableID, &o.TableNumber, &itemsJSON, &o.TotalAmount,
		&customer, &instructions, &o.PaymentStatus, &o.FulfillmentStatus,
		&sessionID, &intentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	o.ID = parsed
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, err
	}
	if customer.Valid {
		v := customer.String
		o.CustomerName = &v
	}
	if instructions.Valid {
		v := instructions.String
		o.SpecialInstructions = &v
	}
	if sessionID.Valid {
		v := sessionID.String
		o.StripeSessionID = &v
	}
	if intentID.Valid {
		v := intentID.String
		o.StripePaymentIntentID = &v
	}
	return &o, nil
}

// CreateTx inserts a new order within the scope of an existing
// transaction and reads timestamps back into the model. The caller
// must commit or roll back; nothing is observable until commit, which
// is what lets checkout creation roll the insert back when the payment
// provider call fails.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	const q = `INSERT INTO orders
	           (id, table_id, items, total_amount, customer_name, special_instructions, payment_status, fulfillment_status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q, o.ID.String(), o.TableID, itemsJSON, o.TotalAmount,
		o.CustomerName, o.SpecialInstructions, o.PaymentStatus, o.FulfillmentStatus)
	if err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID.String()).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// SetStripeSessionTx records the checkout session id for a freshly
// created order inside the same transaction as the insert. The column
// is unique; once committed it is never rewritten.
func (r *OrderRepo) SetStripeSessionTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, sessionID string) error {
	const q = `UPDATE orders SET stripe_session_id = ? WHERE id = ? AND stripe_session_id IS NULL`
	res, err := tx.ExecContext(ctx, q, sessionID, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// GetByID returns an order by id or ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	q := `SELECT ` + orderColumns + orderFrom + `WHERE o.id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id.String()))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// GetBySessionID returns the order whose checkout session id matches
// exactly, or ErrOrderNotFound. This is the sole reconciliation key
// for completed-checkout webhook events.
func (r *OrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + orderFrom + `WHERE o.stripe_session_id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, sessionID))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// GetByPaymentIntentID returns the order linked to a payment intent,
// or ErrOrderNotFound when the intent has not been linked yet.
func (r *OrderRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + orderFrom + `WHERE o.stripe_payment_intent_id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, intentID))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// MarkPaid transitions payment_status pending→paid and stores the
// payment intent id. It returns false with a nil error when the row
// was not in pending state, which makes webhook redelivery a harmless
// no-op. An event with no intent id leaves the column NULL so a later
// lookup by empty intent id can never match this row.
func (r *OrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, intentID string) (bool, error) {
	const q = `UPDATE orders
	           SET payment_status = 'paid', stripe_payment_intent_id = ?
	           WHERE id = ? AND payment_status = 'pending'`
	intent := sql.NullString{String: intentID, Valid: intentID != ""}
	res, err := r.db.ExecContext(ctx, q, intent, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkFailed transitions payment_status pending→failed. Like MarkPaid
// it reports false when the row was already terminal.
func (r *OrderRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE orders SET payment_status = 'failed'
	           WHERE id = ? AND payment_status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TransitionFulfillment applies a fulfillment transition only when the
// row is still in the expected source state. A false result means the
// stored status differs from `from` and the caller should report a
// conflict naming the current status.
func (r *OrderRepo) TransitionFulfillment(ctx context.Context, id uuid.UUID, from, to model.FulfillmentStatus) (bool, error) {
	const q = `UPDATE orders SET fulfillment_status = ?
	           WHERE id = ? AND fulfillment_status = ?`
	res, err := r.db.ExecContext(ctx, q, to, id.String(), from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRecent returns the newest orders for the admin panel.
func (r *OrderRepo) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + orderColumns + orderFrom + `ORDER BY o.created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
