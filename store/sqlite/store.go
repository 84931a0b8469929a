package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	rally "github.com/xraph/rally"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	rallystore "github.com/xraph/rally/store"
)

// compile-time interface check
var _ rallystore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("rally/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("rally/sqlite: migration failed: %w", err)
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
	m, err := toJournalModel(txn)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetJournal(ctx context.Context, jrnlID id.JournalID) (*journal.Transaction, error) {
	m := new(journalModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", jrnlID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rally.ErrJournalNotFound
		}
		return nil, err
	}
	return fromJournalModel(m)
}

func (s *Store) ListJournals(ctx context.Context, opts journal.ListOpts) ([]*journal.Transaction, error) {
	var models []journalModel
	q := s.sdb.NewSelect(&models)

	if opts.Category != "" {
		q = q.Where("category = ?", string(opts.Category))
	}
	if opts.RefID != "" {
		q = q.Where("ref_id = ?", opts.RefID)
	}
	if !opts.Start.IsZero() {
		q = q.Where("date >= ?", opts.Start)
	}
	if !opts.End.IsZero() {
		q = q.Where("date < ?", opts.End)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("date DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	m, err := toItemModel(item)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetItem(ctx context.Context, itemID id.ItemID) (*inventory.Item, error) {
	m := new(itemModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", itemID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rally.ErrItemNotFound
		}
		return nil, err
	}
	return fromItemModel(m)
}

func (s *Store) ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	var models []itemModel
	q := s.sdb.NewSelect(&models)

	if opts.Category != "" {
		q = q.Where("category = ?", string(opts.Category))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("name ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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

// UpdateItemCAS updates an item row only when its stored version still
// matches expectedVersion. Zero rows affected means the item is gone or
// another writer won the race.
func (s *Store) UpdateItemCAS(ctx context.Context, item *inventory.Item, expectedVersion int64) error {
	m, err := toItemModel(item)
	if err != nil {
		return err
	}
	m.UpdatedAt = now()

	res, err := s.sdb.NewUpdate(m).
		Where("id = ?", m.ID).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetItem(ctx, item.ID); getErr != nil {
			return rally.ErrItemNotFound
		}
		return rally.ErrVersionConflict
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	_, err := s.sdb.NewDelete((*itemModel)(nil)).
		Where("id = ?", itemID.String()).
		Exec(ctx)
	return err
}

// ==================== Event Store ====================

func (s *Store) CreateEvent(ctx context.Context, sess *event.Session) error {
	m := toEventModel(sess)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetEvent(ctx context.Context, eventID id.EventID) (*event.Session, error) {
	m := new(eventModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", eventID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, rally.ErrEventNotFound
		}
		return nil, err
	}
	return fromEventModel(m)
}

// CloseEventFinance flips the financial close flag on a single row, matching
// only a not-yet-closed event so a second close cannot flip twice.
func (s *Store) CloseEventFinance(ctx context.Context, eventID id.EventID, closedAt time.Time) error {
	res, err := s.sdb.NewUpdate((*eventModel)(nil)).
		Set("financial_closed = ?", true).
		Set("financial_closed_at = ?", closedAt).
		Set("status = ?", string(event.StatusCompleted)).
		Set("updated_at = ?", now()).
		Where("id = ?", eventID.String()).
		Where("financial_closed = ?", false).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := s.GetEvent(ctx, eventID); getErr != nil {
			return rally.ErrEventNotFound
		}
		return rally.ErrSessionClosed
	}
	return nil
}

func (s *Store) ReopenEventFinance(ctx context.Context, eventID id.EventID) error {
	res, err := s.sdb.NewUpdate((*eventModel)(nil)).
		Set("financial_closed = ?", false).
		Set("financial_closed_at = ?", nil).
		Set("status = ?", string(event.StatusOpen)).
		Set("updated_at = ?", now()).
		Where("id = ?", eventID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return rally.ErrEventNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks if an error wraps sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
