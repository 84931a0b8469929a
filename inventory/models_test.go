package inventory

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/rally/id"
	"github.com/xraph/rally/types"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name        string
		stock       int64
		avg         int64
		qty         int64
		landedTotal int64
		want        string
	}{
		{"empty stock takes incoming cost", 0, 0, 10, 250000, "25000"},
		{"equal quantities average evenly", 10, 20000, 10, 300000, "25000"},
		{"incoming dominates large restock", 2, 10000, 98, 2940000, "29600"},
		{"cheaper restock pulls average down", 10, 30000, 10, 200000, "25000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage(tt.stock, decimal.NewFromInt(tt.avg), tt.qty, tt.landedTotal)
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("WeightedAverage = %s, want %s", got, want)
			}
		})
	}
}

// TestWeightedAverageBounded checks the moving-average invariant: the new
// average always lies between the old average and the incoming landed cost
// per unit, for any stock >= 0 and qty > 0.
func TestWeightedAverageBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		stock := int64(rng.Intn(500))
		avg := decimal.NewFromInt(int64(1 + rng.Intn(100_000)))
		qty := int64(1 + rng.Intn(200))
		landedPerUnit := decimal.NewFromInt(int64(1 + rng.Intn(100_000)))
		landedTotal := landedPerUnit.Mul(decimal.NewFromInt(qty)).IntPart()

		got := WeightedAverage(stock, avg, qty, landedTotal)

		lo, hi := avg, landedPerUnit
		if lo.GreaterThan(hi) {
			lo, hi = hi, lo
		}
		if stock == 0 {
			// No history to blend: average is exactly the landed cost.
			if !got.Equal(landedPerUnit) {
				t.Fatalf("iteration %d: empty stock, got %s, want %s", i, got, landedPerUnit)
			}
			continue
		}
		if got.LessThan(lo) || got.GreaterThan(hi) {
			t.Fatalf("iteration %d: average %s outside [%s, %s] (stock=%d qty=%d)",
				i, got, lo, hi, stock, qty)
		}
	}
}

func TestItemRestock(t *testing.T) {
	item := &Item{
		ID:      id.NewItemID(),
		Name:    "Shuttlecock",
		Stock:   10,
		AvgCost: decimal.NewFromInt(20000),
	}

	at := time.Now().UTC()
	rec := item.Restock(10, types.IDR(28000), types.IDR(20000), "Grosir Jaya", at)

	if item.Stock != 20 {
		t.Errorf("stock: got %d, want 20", item.Stock)
	}
	// landed total = 10*28000 + 20000 = 300000; avg = (200000+300000)/20 = 25000
	if !item.AvgCost.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("avg cost: got %s, want 25000", item.AvgCost)
	}
	if !rec.TotalCost.Equal(types.IDR(300000)) {
		t.Errorf("total cost: got %v, want %v", rec.TotalCost, types.IDR(300000))
	}
	if !rec.LandedCostPerUnit.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("landed cost/unit: got %s, want 30000", rec.LandedCostPerUnit)
	}
	if item.LastRestockAt == nil || !item.LastRestockAt.Equal(at) {
		t.Error("last restock date not recorded")
	}
	if len(item.History) != 1 {
		t.Fatalf("history length: got %d, want 1", len(item.History))
	}
	if item.History[0].Source != "Grosir Jaya" {
		t.Errorf("history source: got %q", item.History[0].Source)
	}
	if rec.ID.IsNil() {
		t.Error("restock record must carry an ID")
	}
}

func TestConsumeLeavesAvgCost(t *testing.T) {
	item := &Item{
		ID:      id.NewItemID(),
		Stock:   12,
		AvgCost: decimal.NewFromInt(25000),
	}

	item.Consume(5)

	if item.Stock != 7 {
		t.Errorf("stock: got %d, want 7", item.Stock)
	}
	if !item.AvgCost.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("avg cost must not move on consumption, got %s", item.AvgCost)
	}
}

// Restock then consume of the same quantity returns stock to its prior
// value; only the restock moves the average.
func TestRestockConsumeConservation(t *testing.T) {
	item := &Item{
		ID:      id.NewItemID(),
		Stock:   8,
		AvgCost: decimal.NewFromInt(22000),
	}

	item.Restock(4, types.IDR(30000), types.IDR(0), "", time.Now())
	avgAfterRestock := item.AvgCost
	item.Consume(4)

	if item.Stock != 8 {
		t.Errorf("stock: got %d, want 8", item.Stock)
	}
	if !item.AvgCost.Equal(avgAfterRestock) {
		t.Errorf("avg cost changed on consume: %s != %s", item.AvgCost, avgAfterRestock)
	}
}

func TestCostOf(t *testing.T) {
	item := &Item{AvgCost: decimal.NewFromInt(2000)}
	if got := item.CostOf(10); got != 20000 {
		t.Errorf("CostOf(10) = %d, want 20000", got)
	}

	// Fractional average rounds half-up to the nearest minor unit.
	frac, _ := decimal.NewFromString("333.4")
	item = &Item{AvgCost: frac}
	if got := item.CostOf(3); got != 1000 {
		t.Errorf("CostOf(3) = %d, want 1000", got)
	}
}

func TestMakeSKU(t *testing.T) {
	itemID := id.NewItemID()

	sku := MakeSKU("Shuttlecock AS-50", itemID)
	if !strings.HasPrefix(sku, "SHUT-") {
		t.Errorf("unexpected SKU prefix: %q", sku)
	}

	other := MakeSKU("Shuttlecock AS-50", id.NewItemID())
	if sku == other {
		t.Error("SKUs for distinct items must differ")
	}

	if got := MakeSKU("123", itemID); !strings.HasPrefix(got, "ITEM-") {
		t.Errorf("non-alphabetic name should fall back to ITEM prefix, got %q", got)
	}
}
