// Package service implements the order lifecycle core: building
// price-snapshotted orders from checkout requests and reconciling
// asynchronous payment events against the ledger.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/qr-table-ordering/internal/model"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
)

// CheckoutItem is one requested line in a checkout: a menu item id and
// a positive quantity. Prices are never accepted from the client.
type CheckoutItem struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

// ValidationError reports every offending id in a checkout request at
// once, so the client can fix the whole cart in a single round trip.
type ValidationError struct {
	Reason         string
	MissingIDs     []int64
	UnavailableIDs []int64
}

func (e *ValidationError) Error() string {
	if len(e.MissingIDs) > 0 {
		return fmt.Sprintf("menu items not found: %v", e.MissingIDs)
	}
	if len(e.UnavailableIDs) > 0 {
		return fmt.Sprintf("menu items unavailable: %v", e.UnavailableIDs)
	}
	return e.Reason
}

// BuildLineItems validates the requested items against a catalog
// snapshot and produces line-item snapshots plus the order total.
// Every subtotal is price*quantity in exact decimal arithmetic; the
// total is the exact sum of subtotals. All missing and unavailable ids
// are collected before failing so the error names the full set.
func BuildLineItems(catalog map[int64]model.MenuItem, reqs []CheckoutItem) ([]model.OrderLineItem, decimal.Decimal, error) {
	total := decimal.Zero
	if len(reqs) == 0 {
		return nil, total, &ValidationError{Reason: "items are required"}
	}
	var missing, unavailable []int64
	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, total, &ValidationError{Reason: fmt.Sprintf("quantity for item %d must be positive", req.ID)}
		}
		it, ok := catalog[req.ID]
		if !ok {
			missing = append(missing, req.ID)
			continue
		}
		if !it.IsAvailable {
			unavailable = append(unavailable, req.ID)
		}
	}
	if len(missing) > 0 || len(unavailable) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		sort.Slice(unavailable, func(i, j int) bool { return unavailable[i] < unavailable[j] })
		return nil, total, &ValidationError{MissingIDs: missing, UnavailableIDs: unavailable}
	}
	items := make([]model.OrderLineItem, 0, len(reqs))
	for _, req := range reqs {
		it := catalog[req.ID]
		subtotal := it.Price.Mul(decimal.NewFromInt(req.Quantity))
		total = total.Add(subtotal)
		items = append(items, model.OrderLineItem{
			ItemID:   it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: req.Quantity,
			Subtotal: subtotal,
		})
	}
	return items, total, nil
}

// CreateOrderRequest is the input to the order builder. TableNumber is
// the customer-facing number from the QR code, not the table row id.
type CreateOrderRequest struct {
	TableNumber         int64
	Items               []CheckoutItem
	CustomerName        *string
	SpecialInstructions *string
}

// OrderBuilder validates checkout requests against the catalog and
// persists price-snapshotted orders. It does not create payment
// sessions or broadcast events; callers compose those steps so a
// provider failure can still roll the insert back.
type OrderBuilder struct {
	Tables *repository.TableRepo
	Items  *repository.MenuItemRepo
	Orders *repository.OrderRepo
}

// NewOrderBuilder constructs an OrderBuilder over the given repositories.
func NewOrderBuilder(tables *repository.TableRepo, items *repository.MenuItemRepo, orders *repository.OrderRepo) *OrderBuilder {
	return &OrderBuilder{Tables: tables, Items: items, Orders: orders}
}

// BuildTx resolves the table and catalog, builds the snapshot and
// inserts the order inside the caller's transaction. Nothing is
// observable until the caller commits, so a later failure in the same
// unit of work (e.g. the payment-session call) leaves no partial
// order behind. The new order starts pending/pending.
func (b *OrderBuilder) BuildTx(ctx context.Context, tx *sql.Tx, req CreateOrderRequest) (*model.Order, error) {
	table, err := b.Tables.GetActiveByNumber(ctx, req.TableNumber)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ID)
	}
	catalog, err := b.Items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items, total, err := BuildLineItems(catalog, req.Items)
	if err != nil {
		return nil, err
	}
	order := &model.Order{
		ID:                  uuid.New(),
		TableID:             table.ID,
		TableNumber:         table.TableNumber,
		Items:               items,
		TotalAmount:         total,
		CustomerName:        req.CustomerName,
		SpecialInstructions: req.SpecialInstructions,
		PaymentStatus:       model.PaymentPending,
		FulfillmentStatus:   model.FulfillmentPending,
	}
	if err := b.Orders.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Build creates and commits an order in its own transaction. Used by
// the direct order endpoint where no payment session is attached.
func (b *OrderBuilder) Build(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	tx, err := b.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	order, err := b.BuildTx(ctx, tx, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return order, nil
}
