package cart

import (
	"errors"
	"math/rand"
	"testing"

	"puntoventa/internal/model"
)

func variant(id string, price float64, stock int) model.CatalogVariant {
	return model.CatalogVariant{
		VariantID: id,
		ProductID: "p-" + id,
		Name:      "Remera",
		SKU:       "SKU-" + id,
		Price:     price,
		Stock:     stock,
	}
}

func TestAdd_OutOfStock(t *testing.T) {
	c := New()

	err := c.Add(variant("v1", 100, 0))
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}
	if !c.Empty() {
		t.Fatalf("cart must stay empty after failed add")
	}
}

func TestAdd_MergesIntoExistingLine(t *testing.T) {
	c := New()
	v := variant("v1", 50, 3)

	for i := 0; i < 3; i++ {
		if err := c.Add(v); err != nil {
			t.Fatalf("add %d: %v", i+1, err)
		}
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", lines[0].Quantity)
	}
}

func TestAdd_StockCeiling(t *testing.T) {
	c := New()
	v := variant("v1", 50, 3)

	for i := 0; i < 3; i++ {
		if err := c.Add(v); err != nil {
			t.Fatalf("add %d: %v", i+1, err)
		}
	}

	if err := c.Add(v); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("fourth add err = %v, want ErrStockExceeded", err)
	}
	if err := c.Adjust("v1", 1); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("adjust err = %v, want ErrStockExceeded", err)
	}

	lines := c.Lines()
	if lines[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3 after rejected increments", lines[0].Quantity)
	}
	if got := c.Totals().Amount; got != 150 {
		t.Fatalf("total = %v, want 150", got)
	}
}

func TestAdd_CeilingCapturedAtFirstAdd(t *testing.T) {
	c := New()

	if err := c.Add(variant("v1", 50, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	// The catalog now reports more stock, but the ceiling was captured
	// when the line entered the cart.
	if err := c.Add(variant("v1", 50, 10)); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if err := c.Add(variant("v1", 50, 10)); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("err = %v, want ErrStockExceeded at captured ceiling 2", err)
	}
}

func TestAdjust_RemovesLineAtZeroOrBelow(t *testing.T) {
	tests := []struct {
		name  string
		delta int
	}{
		{name: "to zero", delta: -2},
		{name: "below zero", delta: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			v := variant("v1", 50, 5)
			if err := c.Add(v); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := c.Add(v); err != nil {
				t.Fatalf("add: %v", err)
			}

			if err := c.Adjust("v1", tt.delta); err != nil {
				t.Fatalf("adjust: %v", err)
			}

			for _, l := range c.Lines() {
				if l.VariantID == "v1" {
					t.Fatalf("line v1 must be removed, got quantity %d", l.Quantity)
				}
			}
		})
	}
}

func TestAdjust_UnknownVariantIsNoop(t *testing.T) {
	c := New()
	if err := c.Add(variant("v1", 50, 5)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := c.Adjust("missing", 1); err != nil {
		t.Fatalf("adjust unknown id must be a no-op, got %v", err)
	}
	if got := c.Totals().Items; got != 1 {
		t.Fatalf("items = %d, want 1", got)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	c := New()
	if err := c.Add(variant("v1", 50, 5)); err != nil {
		t.Fatalf("add: %v", err)
	}

	c.Remove("v1")
	c.Remove("v1")
	c.Remove("missing")

	if !c.Empty() {
		t.Fatalf("cart must be empty after remove")
	}
}

func TestTotals_OrderIndependent(t *testing.T) {
	build := func(order []int) *Cart {
		variants := []model.CatalogVariant{
			variant("a", 10.5, 9),
			variant("b", 3, 9),
			variant("c", 99.99, 9),
		}
		c := New()
		for _, idx := range order {
			v := variants[idx]
			for i := 0; i < idx+1; i++ {
				if err := c.Add(v); err != nil {
					t.Fatalf("add %s: %v", v.VariantID, err)
				}
			}
		}
		return c
	}

	base := build([]int{0, 1, 2}).Totals()

	perm := []int{0, 1, 2}
	rand.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	got := build(perm).Totals()
	if got != base {
		t.Fatalf("totals depend on line order: %+v vs %+v", got, base)
	}
	if base.Items != 6 {
		t.Fatalf("items = %d, want 6", base.Items)
	}
}

func TestBuildSaleRequest_EmptyCart(t *testing.T) {
	_, err := BuildSaleRequest(New(), "", model.PaymentCash)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestBuildSaleRequest_PreservesLines(t *testing.T) {
	c := New()
	if err := c.Add(variant("v1", 50, 3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(variant("v1", 50, 3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(variant("v2", 10, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	req, err := BuildSaleRequest(c, "cli-1", model.PaymentCard)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(req.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(req.Items))
	}
	if req.Items[0].VariantID != "v1" || req.Items[0].Quantity != 2 || req.Items[0].UnitPrice != 50 {
		t.Fatalf("unexpected first item: %+v", req.Items[0])
	}
	if req.Items[1].VariantID != "v2" || req.Items[1].Quantity != 1 {
		t.Fatalf("unexpected second item: %+v", req.Items[1])
	}
	if req.Total != 110 {
		t.Fatalf("total = %v, want 110", req.Total)
	}
	if req.ClientID == nil || *req.ClientID != "cli-1" {
		t.Fatalf("clientID = %v, want cli-1", req.ClientID)
	}
	if req.PaymentMethod != string(model.PaymentCard) {
		t.Fatalf("payment method = %q", req.PaymentMethod)
	}
}

func TestBuildSaleRequest_WalkInClient(t *testing.T) {
	c := New()
	if err := c.Add(variant("v1", 50, 3)); err != nil {
		t.Fatalf("add: %v", err)
	}

	req, err := BuildSaleRequest(c, "", model.PaymentCash)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.ClientID != nil {
		t.Fatalf("clientID = %v, want nil for consumidor final", *req.ClientID)
	}
}
