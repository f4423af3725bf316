package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/qr-table-ordering/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func testCatalog(t *testing.T) map[int64]model.MenuItem {
	t.Helper()
	return map[int64]model.MenuItem{
		1: {ID: 1, Name: "Margherita", Price: dec(t, "9.50"), IsAvailable: true},
		2: {ID: 2, Name: "Lemonade", Price: dec(t, "3.25"), IsAvailable: true},
		3: {ID: 3, Name: "Tiramisu", Price: dec(t, "6.00"), IsAvailable: false},
	}
}

func TestBuildLineItemsExactTotal(t *testing.T) {
	items, total, err := BuildLineItems(testCatalog(t), []CheckoutItem{
		{ID: 1, Quantity: 2},
		{ID: 2, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("BuildLineItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d line items, want 2", len(items))
	}
	if !items[0].Subtotal.Equal(dec(t, "19.00")) {
		t.Errorf("subtotal[0] = %s, want 19.00", items[0].Subtotal)
	}
	if !items[1].Subtotal.Equal(dec(t, "9.75")) {
		t.Errorf("subtotal[1] = %s, want 9.75", items[1].Subtotal)
	}
	if !total.Equal(dec(t, "28.75")) {
		t.Errorf("total = %s, want 28.75", total)
	}
	// Snapshot must carry the catalog name and price, not client input.
	if items[0].Name != "Margherita" || !items[0].Price.Equal(dec(t, "9.50")) {
		t.Errorf("line 0 snapshot = %q/%s, want Margherita/9.50", items[0].Name, items[0].Price)
	}
}

func TestBuildLineItemsSingleItemExample(t *testing.T) {
	items, total, err := BuildLineItems(testCatalog(t), []CheckoutItem{{ID: 1, Quantity: 2}})
	if err != nil {
		t.Fatalf("BuildLineItems: %v", err)
	}
	if !total.Equal(dec(t, "19.00")) {
		t.Errorf("total = %s, want 19.00", total)
	}
	if len(items) != 1 || !items[0].Subtotal.Equal(dec(t, "19.00")) {
		t.Errorf("items = %+v, want one line with subtotal 19.00", items)
	}
}

func TestBuildLineItemsReportsAllMissingIDs(t *testing.T) {
	_, _, err := BuildLineItems(testCatalog(t), []CheckoutItem{
		{ID: 1, Quantity: 1},
		{ID: 99, Quantity: 1},
		{ID: 42, Quantity: 1},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if len(verr.MissingIDs) != 2 || verr.MissingIDs[0] != 42 || verr.MissingIDs[1] != 99 {
		t.Errorf("missing ids = %v, want [42 99]", verr.MissingIDs)
	}
}

func TestBuildLineItemsRejectsUnavailable(t *testing.T) {
	_, _, err := BuildLineItems(testCatalog(t), []CheckoutItem{
		{ID: 1, Quantity: 1},
		{ID: 3, Quantity: 1},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if len(verr.UnavailableIDs) != 1 || verr.UnavailableIDs[0] != 3 {
		t.Errorf("unavailable ids = %v, want [3]", verr.UnavailableIDs)
	}
}

func TestBuildLineItemsRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		_, _, err := BuildLineItems(testCatalog(t), []CheckoutItem{{ID: 1, Quantity: qty}})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("qty=%d: got %v, want *ValidationError", qty, err)
		}
	}
}

func TestBuildLineItemsRejectsEmptyCart(t *testing.T) {
	_, _, err := BuildLineItems(testCatalog(t), nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
}

func TestBuildLineItemsNoFloatDrift(t *testing.T) {
	catalog := map[int64]model.MenuItem{
		7: {ID: 7, Name: "Espresso", Price: dec(t, "1.10"), IsAvailable: true},
	}
	// 0.1-style values accumulate drift under float arithmetic; the
	// decimal path must stay exact across many additions.
	_, total, err := BuildLineItems(catalog, []CheckoutItem{{ID: 7, Quantity: 1000}})
	if err != nil {
		t.Fatalf("BuildLineItems: %v", err)
	}
	if !total.Equal(dec(t, "1100.00")) {
		t.Errorf("total = %s, want 1100.00", total)
	}
}
