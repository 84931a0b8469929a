// Package inventory defines stock items costed by the weighted-average
// (moving average) method.
//
// Each item carries its current stock and a weighted-average unit cost.
// Restocking blends the incoming landed cost into the average proportionally
// to quantity; consumption decrements stock at the current average without
// changing it. This is weighted-average costing, as opposed to FIFO/LIFO.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/rally/id"
	"github.com/xraph/rally/types"
)

// Category classifies inventory items.
type Category string

// Item categories.
const (
	CategoryConsumable Category = "consumable" // shuttlecocks, grips, water
	CategoryAsset      Category = "asset"      // nets, rackets, machines
)

// RestockRecord is one purchase appended to an item's history.
type RestockRecord struct {
	ID                id.RestockID    `json:"id"`
	At                time.Time       `json:"at"`
	Qty               int64           `json:"qty"`
	UnitPrice         types.Money     `json:"unit_price"`
	Shipping          types.Money     `json:"shipping"`
	TotalCost         types.Money     `json:"total_cost"`            // qty*unitPrice + shipping
	LandedCostPerUnit decimal.Decimal `json:"landed_cost_per_unit"` // TotalCost / qty
	Source            string          `json:"source,omitempty"`     // supplier or channel label
}

// Item is a stocked inventory item. Stock and AvgCost are mutated only
// through Restock and Consume; Version guards against lost updates.
type Item struct {
	types.Entity
	ID            id.ItemID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Category      Category        `json:"category"`
	Stock         int64           `json:"stock"`
	Unit          string          `json:"unit"` // display unit: "piece", "tube", "can"
	AvgCost       decimal.Decimal `json:"avg_cost"` // per unit, in minor currency units
	LastRestockAt *time.Time      `json:"last_restock_at,omitempty"`
	History       []RestockRecord `json:"history,omitempty"`

	// Version increments on every write; conditional updates compare it
	// to detect concurrent read-modify-write races.
	Version int64 `json:"version"`
}

// WeightedAverage blends an existing average cost with an incoming landed
// total: (stock*avg + landedTotal) / (stock + qty). The result always lies
// between the old average and the incoming landed cost per unit.
func WeightedAverage(stock int64, avg decimal.Decimal, qty int64, landedTotal int64) decimal.Decimal {
	existing := avg.Mul(decimal.NewFromInt(stock))
	incoming := decimal.NewFromInt(landedTotal)
	return existing.Add(incoming).Div(decimal.NewFromInt(stock + qty))
}

// Restock applies a purchase of qty units at unitPrice plus shipping,
// recomputing the weighted-average cost and appending a history record.
// The caller must have validated qty > 0.
func (i *Item) Restock(qty int64, unitPrice, shipping types.Money, source string, at time.Time) RestockRecord {
	total := unitPrice.Multiply(qty).Add(shipping)
	landedPerUnit := decimal.NewFromInt(total.Amount).Div(decimal.NewFromInt(qty))

	i.AvgCost = WeightedAverage(i.Stock, i.AvgCost, qty, total.Amount)
	i.Stock += qty
	i.LastRestockAt = &at
	i.Touch()

	rec := RestockRecord{
		ID:                id.NewRestockID(),
		At:                at,
		Qty:               qty,
		UnitPrice:         unitPrice,
		Shipping:          shipping,
		TotalCost:         total,
		LandedCostPerUnit: landedPerUnit,
		Source:            source,
	}
	i.History = append(i.History, rec)
	return rec
}

// Consume decrements stock by qty. The average cost is untouched: only
// restocking moves it. The caller must have verified qty <= Stock.
func (i *Item) Consume(qty int64) {
	i.Stock -= qty
	i.Touch()
}

// CostOf returns qty × the current average cost, in minor units, rounded
// half-up to the nearest whole minor unit.
func (i *Item) CostOf(qty int64) int64 {
	return i.AvgCost.Mul(decimal.NewFromInt(qty)).Round(0).IntPart()
}

// MakeSKU derives a stable, human-scannable SKU from the item name and its
// collision-resistant ID: an uppercase name prefix plus the ID suffix tail.
func MakeSKU(name string, itemID id.ItemID) string {
	prefix := strings.Builder{}
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			prefix.WriteRune(r)
			if prefix.Len() == 4 {
				break
			}
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("ITEM")
	}

	suffix := itemID.Suffix()
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return prefix.String() + "-" + strings.ToUpper(suffix)
}
