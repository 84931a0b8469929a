package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/rally/coa"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/types"
)

// ==================== Journal models ====================

type journalModel struct {
	grove.BaseModel `grove:"table:rally_journals"`

	ID          string          `grove:"id,pk"        bson:"_id"`
	Date        time.Time       `grove:"date"         bson:"date"`
	RefID       string          `grove:"ref_id"       bson:"ref_id,omitempty"`
	Description string          `grove:"description"  bson:"description"`
	Category    string          `grove:"category"     bson:"category"`
	Entries     []entryModel    `grove:"entries"      bson:"entries"`
	Metadata    *metadataModel  `grove:"metadata"     bson:"metadata,omitempty"`
	Status      string          `grove:"status"       bson:"status"`
	CreatedBy   string          `grove:"created_by"   bson:"created_by,omitempty"`
	TotalAmount int64           `grove:"total_amount" bson:"total_amount"`
	Currency    string          `grove:"currency"     bson:"currency"`
	CreatedAt   time.Time       `grove:"created_at"   bson:"created_at"`
	UpdatedAt   time.Time       `grove:"updated_at"   bson:"updated_at"`
}

type entryModel struct {
	Account        string `bson:"account"`
	DebitAmount    int64  `bson:"debit_amount"`
	DebitCurrency  string `bson:"debit_currency,omitempty"`
	CreditAmount   int64  `bson:"credit_amount"`
	CreditCurrency string `bson:"credit_currency,omitempty"`
	Description    string `bson:"description,omitempty"`
}

type metadataModel struct {
	Breakdown []costLineModel `bson:"breakdown,omitempty"`
	Notes     string          `bson:"notes,omitempty"`
	ProofRef  string          `bson:"proof_ref,omitempty"`
}

type costLineModel struct {
	Kind         string `bson:"kind"`
	Qty          int64  `bson:"qty,omitempty"`
	CostAmount   int64  `bson:"cost_amount"`
	CostCurrency string `bson:"cost_currency,omitempty"`
	Recipient    string `bson:"recipient,omitempty"`
	Note         string `bson:"note,omitempty"`
}

func toJournalModel(txn *journal.Transaction) *journalModel {
	entries := make([]entryModel, len(txn.Entries))
	for i, e := range txn.Entries {
		entries[i] = entryModel{
			Account:        string(e.Account),
			DebitAmount:    e.Debit.Amount,
			DebitCurrency:  e.Debit.Currency,
			CreditAmount:   e.Credit.Amount,
			CreditCurrency: e.Credit.Currency,
			Description:    e.Description,
		}
	}

	var meta *metadataModel
	if txn.Metadata != nil {
		breakdown := make([]costLineModel, len(txn.Metadata.Breakdown))
		for i, l := range txn.Metadata.Breakdown {
			breakdown[i] = costLineModel{
				Kind:         string(l.Kind),
				Qty:          l.Qty,
				CostAmount:   l.Cost.Amount,
				CostCurrency: l.Cost.Currency,
				Recipient:    l.Recipient,
				Note:         l.Note,
			}
		}
		meta = &metadataModel{
			Breakdown: breakdown,
			Notes:     txn.Metadata.Notes,
			ProofRef:  txn.Metadata.ProofRef,
		}
	}

	return &journalModel{
		ID:          txn.ID.String(),
		Date:        txn.Date,
		RefID:       txn.RefID,
		Description: txn.Description,
		Category:    string(txn.Category),
		Entries:     entries,
		Metadata:    meta,
		Status:      string(txn.Status),
		CreatedBy:   txn.CreatedBy,
		TotalAmount: txn.TotalAmount.Amount,
		Currency:    txn.TotalAmount.Currency,
		CreatedAt:   txn.CreatedAt,
		UpdatedAt:   txn.UpdatedAt,
	}
}

func fromJournalModel(m *journalModel) (*journal.Transaction, error) {
	jrnlID, err := id.ParseJournalID(m.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]journal.Entry, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = journal.Entry{
			Account:     coa.Code(e.Account),
			Debit:       types.Money{Amount: e.DebitAmount, Currency: e.DebitCurrency},
			Credit:      types.Money{Amount: e.CreditAmount, Currency: e.CreditCurrency},
			Description: e.Description,
		}
	}

	var meta *journal.Metadata
	if m.Metadata != nil {
		breakdown := make([]journal.CostLine, len(m.Metadata.Breakdown))
		for i, l := range m.Metadata.Breakdown {
			breakdown[i] = journal.CostLine{
				Kind:      journal.CostKind(l.Kind),
				Qty:       l.Qty,
				Cost:      types.Money{Amount: l.CostAmount, Currency: l.CostCurrency},
				Recipient: l.Recipient,
				Note:      l.Note,
			}
		}
		meta = &journal.Metadata{
			Breakdown: breakdown,
			Notes:     m.Metadata.Notes,
			ProofRef:  m.Metadata.ProofRef,
		}
	}

	return &journal.Transaction{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          jrnlID,
		Date:        m.Date,
		RefID:       m.RefID,
		Description: m.Description,
		Category:    journal.Category(m.Category),
		Entries:     entries,
		Metadata:    meta,
		Status:      journal.Status(m.Status),
		CreatedBy:   m.CreatedBy,
		TotalAmount: types.Money{Amount: m.TotalAmount, Currency: m.Currency},
	}, nil
}

// ==================== Inventory models ====================

type itemModel struct {
	grove.BaseModel `grove:"table:rally_items"`

	ID            string         `grove:"id,pk"           bson:"_id"`
	Name          string         `grove:"name"            bson:"name"`
	SKU           string         `grove:"sku"             bson:"sku"`
	Category      string         `grove:"category"        bson:"category"`
	Stock         int64          `grove:"stock"           bson:"stock"`
	Unit          string         `grove:"unit"            bson:"unit"`
	AvgCost       string         `grove:"avg_cost"        bson:"avg_cost"`
	LastRestockAt *time.Time     `grove:"last_restock_at" bson:"last_restock_at,omitempty"`
	History       []restockModel `grove:"history"         bson:"history,omitempty"`
	Version       int64          `grove:"version"         bson:"version"`
	CreatedAt     time.Time      `grove:"created_at"      bson:"created_at"`
	UpdatedAt     time.Time      `grove:"updated_at"      bson:"updated_at"`
}

type restockModel struct {
	ID                string    `bson:"id"`
	At                time.Time `bson:"at"`
	Qty               int64     `bson:"qty"`
	UnitPriceAmount   int64     `bson:"unit_price_amount"`
	UnitPriceCurrency string    `bson:"unit_price_currency"`
	ShippingAmount    int64     `bson:"shipping_amount"`
	ShippingCurrency  string    `bson:"shipping_currency,omitempty"`
	TotalCostAmount   int64     `bson:"total_cost_amount"`
	TotalCostCurrency string    `bson:"total_cost_currency"`
	LandedCostPerUnit string    `bson:"landed_cost_per_unit"`
	Source            string    `bson:"source,omitempty"`
}

func toItemModel(item *inventory.Item) *itemModel {
	history := make([]restockModel, len(item.History))
	for i, r := range item.History {
		history[i] = restockModel{
			ID:                r.ID.String(),
			At:                r.At,
			Qty:               r.Qty,
			UnitPriceAmount:   r.UnitPrice.Amount,
			UnitPriceCurrency: r.UnitPrice.Currency,
			ShippingAmount:    r.Shipping.Amount,
			ShippingCurrency:  r.Shipping.Currency,
			TotalCostAmount:   r.TotalCost.Amount,
			TotalCostCurrency: r.TotalCost.Currency,
			LandedCostPerUnit: r.LandedCostPerUnit.String(),
			Source:            r.Source,
		}
	}

	return &itemModel{
		ID:            item.ID.String(),
		Name:          item.Name,
		SKU:           item.SKU,
		Category:      string(item.Category),
		Stock:         item.Stock,
		Unit:          item.Unit,
		AvgCost:       item.AvgCost.String(),
		LastRestockAt: item.LastRestockAt,
		History:       history,
		Version:       item.Version,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func fromItemModel(m *itemModel) (*inventory.Item, error) {
	itemID, err := id.ParseItemID(m.ID)
	if err != nil {
		return nil, err
	}

	avgCost, err := decimal.NewFromString(m.AvgCost)
	if err != nil {
		return nil, fmt.Errorf("parse avg_cost %q: %w", m.AvgCost, err)
	}

	history := make([]inventory.RestockRecord, len(m.History))
	for i, r := range m.History {
		recID, err := id.ParseRestockID(r.ID)
		if err != nil {
			return nil, err
		}
		landed, err := decimal.NewFromString(r.LandedCostPerUnit)
		if err != nil {
			return nil, fmt.Errorf("parse landed_cost_per_unit %q: %w", r.LandedCostPerUnit, err)
		}
		history[i] = inventory.RestockRecord{
			ID:                recID,
			At:                r.At,
			Qty:               r.Qty,
			UnitPrice:         types.Money{Amount: r.UnitPriceAmount, Currency: r.UnitPriceCurrency},
			Shipping:          types.Money{Amount: r.ShippingAmount, Currency: r.ShippingCurrency},
			TotalCost:         types.Money{Amount: r.TotalCostAmount, Currency: r.TotalCostCurrency},
			LandedCostPerUnit: landed,
			Source:            r.Source,
		}
	}

	return &inventory.Item{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            itemID,
		Name:          m.Name,
		SKU:           m.SKU,
		Category:      inventory.Category(m.Category),
		Stock:         m.Stock,
		Unit:          m.Unit,
		AvgCost:       avgCost,
		LastRestockAt: m.LastRestockAt,
		History:       history,
		Version:       m.Version,
	}, nil
}

// ==================== Event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:rally_events"`

	ID                string     `grove:"id,pk"               bson:"_id"`
	Name              string     `grove:"name"                bson:"name"`
	Type              string     `grove:"type"                bson:"type"`
	Status            string     `grove:"status"              bson:"status"`
	StartsAt          time.Time  `grove:"starts_at"           bson:"starts_at"`
	FinancialClosed   bool       `grove:"financial_closed"    bson:"financial_closed"`
	FinancialClosedAt *time.Time `grove:"financial_closed_at" bson:"financial_closed_at,omitempty"`
	CreatedAt         time.Time  `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"          bson:"updated_at"`
}

func toEventModel(sess *event.Session) *eventModel {
	return &eventModel{
		ID:                sess.ID.String(),
		Name:              sess.Name,
		Type:              string(sess.Type),
		Status:            string(sess.Status),
		StartsAt:          sess.StartsAt,
		FinancialClosed:   sess.FinancialClosed,
		FinancialClosedAt: sess.FinancialClosedAt,
		CreatedAt:         sess.CreatedAt,
		UpdatedAt:         sess.UpdatedAt,
	}
}

func fromEventModel(m *eventModel) (*event.Session, error) {
	eventID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}

	return &event.Session{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                eventID,
		Name:              m.Name,
		Type:              event.Type(m.Type),
		Status:            event.Status(m.Status),
		StartsAt:          m.StartsAt,
		FinancialClosed:   m.FinancialClosed,
		FinancialClosedAt: m.FinancialClosedAt,
	}, nil
}
