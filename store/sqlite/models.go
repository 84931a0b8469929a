package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/types"
)

// ==================== Journal models ====================

type journalModel struct {
	grove.BaseModel `grove:"table:rally_journals"`

	ID          string          `grove:"id,pk"`
	Date        time.Time       `grove:"date"`
	RefID       string          `grove:"ref_id"`
	Description string          `grove:"description"`
	Category    string          `grove:"category"`
	Entries     json.RawMessage `grove:"entries"`
	Metadata    json.RawMessage `grove:"metadata"`
	Status      string          `grove:"status"`
	CreatedBy   string          `grove:"created_by"`
	TotalAmount int64           `grove:"total_amount"`
	Currency    string          `grove:"currency"`
	CreatedAt   time.Time       `grove:"created_at"`
	UpdatedAt   time.Time       `grove:"updated_at"`
}

func toJournalModel(txn *journal.Transaction) (*journalModel, error) {
	entries, err := json.Marshal(txn.Entries)
	if err != nil {
		return nil, fmt.Errorf("marshal entries: %w", err)
	}

	var meta json.RawMessage
	if txn.Metadata != nil {
		meta, err = json.Marshal(txn.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
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
	}, nil
}

func fromJournalModel(m *journalModel) (*journal.Transaction, error) {
	jrnlID, err := id.ParseJournalID(m.ID)
	if err != nil {
		return nil, err
	}

	var entries []journal.Entry
	if len(m.Entries) > 0 {
		if err := json.Unmarshal(m.Entries, &entries); err != nil {
			return nil, fmt.Errorf("unmarshal entries: %w", err)
		}
	}

	var meta *journal.Metadata
	if len(m.Metadata) > 0 && string(m.Metadata) != "null" {
		meta = new(journal.Metadata)
		if err := json.Unmarshal(m.Metadata, meta); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
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

	ID            string          `grove:"id,pk"`
	Name          string          `grove:"name"`
	SKU           string          `grove:"sku"`
	Category      string          `grove:"category"`
	Stock         int64           `grove:"stock"`
	Unit          string          `grove:"unit"`
	AvgCost       string          `grove:"avg_cost"`
	LastRestockAt *time.Time      `grove:"last_restock_at"`
	History       json.RawMessage `grove:"history"`
	Version       int64           `grove:"version"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toItemModel(item *inventory.Item) (*itemModel, error) {
	history, err := json.Marshal(item.History)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
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
	}, nil
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

	var history []inventory.RestockRecord
	if len(m.History) > 0 && string(m.History) != "null" {
		if err := json.Unmarshal(m.History, &history); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
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

	ID                string     `grove:"id,pk"`
	Name              string     `grove:"name"`
	Type              string     `grove:"type"`
	Status            string     `grove:"status"`
	StartsAt          time.Time  `grove:"starts_at"`
	FinancialClosed   bool       `grove:"financial_closed"`
	FinancialClosedAt *time.Time `grove:"financial_closed_at"`
	CreatedAt         time.Time  `grove:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"`
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
