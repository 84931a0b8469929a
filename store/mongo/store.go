package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	rally "github.com/xraph/rally"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	rallystore "github.com/xraph/rally/store"
)

// Collection name constants.
const (
	colJournals = "rally_journals"
	colItems    = "rally_items"
	colEvents   = "rally_events"
)

// compile-time interface check
var _ rallystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all rally collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("rally/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Journal Store ====================

func (s *Store) CreateJournal(ctx context.Context, txn *journal.Transaction) error {
	m := toJournalModel(txn)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: create journal: %w", err)
	}
	return nil
}

func (s *Store) GetJournal(ctx context.Context, jrnlID id.JournalID) (*journal.Transaction, error) {
	var m journalModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": jrnlID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rally.ErrJournalNotFound
		}
		return nil, fmt.Errorf("rally/mongo: get journal: %w", err)
	}
	return fromJournalModel(&m)
}

func (s *Store) ListJournals(ctx context.Context, opts journal.ListOpts) ([]*journal.Transaction, error) {
	var models []journalModel

	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = string(opts.Category)
	}
	if opts.RefID != "" {
		filter["ref_id"] = opts.RefID
	}
	dateFilter := bson.M{}
	if !opts.Start.IsZero() {
		dateFilter["$gte"] = opts.Start
	}
	if !opts.End.IsZero() {
		dateFilter["$lt"] = opts.End
	}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "date", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rally/mongo: list journals: %w", err)
	}

	result := make([]*journal.Transaction, len(models))
	for i := range models {
		txn, err := fromJournalModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = txn
	}
	return result, nil
}

// ==================== Inventory Store ====================

func (s *Store) CreateItem(ctx context.Context, item *inventory.Item) error {
	m := toItemModel(item)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: create item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, itemID id.ItemID) (*inventory.Item, error) {
	var m itemModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": itemID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rally.ErrItemNotFound
		}
		return nil, fmt.Errorf("rally/mongo: get item: %w", err)
	}
	return fromItemModel(&m)
}

func (s *Store) ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	var models []itemModel

	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = string(opts.Category)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "name", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rally/mongo: list items: %w", err)
	}

	result := make([]*inventory.Item, len(models))
	for i := range models {
		item, err := fromItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = item
	}
	return result, nil
}

// UpdateItemCAS replaces the item document only when the stored version
// still matches expectedVersion. A matched count of zero means either the
// item is gone or another writer got there first.
func (s *Store) UpdateItemCAS(ctx context.Context, item *inventory.Item, expectedVersion int64) error {
	m := toItemModel(item)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "version": expectedVersion}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: update item: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, getErr := s.GetItem(ctx, item.ID); getErr != nil {
			return rally.ErrItemNotFound
		}
		return rally.ErrVersionConflict
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	_, err := s.mdb.NewDelete((*itemModel)(nil)).
		Filter(bson.M{"_id": itemID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: delete item: %w", err)
	}
	return nil
}

// ==================== Event Store ====================

func (s *Store) CreateEvent(ctx context.Context, sess *event.Session) error {
	m := toEventModel(sess)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: create event: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, eventID id.EventID) (*event.Session, error) {
	var m eventModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": eventID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, rally.ErrEventNotFound
		}
		return nil, fmt.Errorf("rally/mongo: get event: %w", err)
	}
	return fromEventModel(&m)
}

// CloseEventFinance flips the financial close flag on a single document,
// matching only a not-yet-closed event so a second close cannot flip twice.
func (s *Store) CloseEventFinance(ctx context.Context, eventID id.EventID, closedAt time.Time) error {
	res, err := s.mdb.NewUpdate((*eventModel)(nil)).
		Filter(bson.M{"_id": eventID.String(), "financial_closed": false}).
		Set("financial_closed", true).
		Set("financial_closed_at", closedAt).
		Set("status", string(event.StatusCompleted)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: close event finance: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, getErr := s.GetEvent(ctx, eventID); getErr != nil {
			return rally.ErrEventNotFound
		}
		return rally.ErrSessionClosed
	}
	return nil
}

func (s *Store) ReopenEventFinance(ctx context.Context, eventID id.EventID) error {
	res, err := s.mdb.NewUpdate((*eventModel)(nil)).
		Filter(bson.M{"_id": eventID.String()}).
		Set("financial_closed", false).
		Set("financial_closed_at", nil).
		Set("status", string(event.StatusOpen)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rally/mongo: reopen event finance: %w", err)
	}
	if res.MatchedCount() == 0 {
		return rally.ErrEventNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all rally collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colJournals: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "date", Value: -1}}},
			{
				Keys:    bson.D{{Key: "ref_id", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
		},
		colItems: {
			{
				Keys:    bson.D{{Key: "sku", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}},
		},
		colEvents: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "starts_at", Value: -1}}},
			{Keys: bson.D{{Key: "financial_closed", Value: 1}}},
		},
	}
}
