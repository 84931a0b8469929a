package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/rally"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
)

// Store is an in-memory store, used for tests and single-process embedding.
// Reads hand out copies so callers can mutate results without affecting the
// stored state.
type Store struct {
	mu sync.RWMutex

	// Journal storage. Append-only.
	journals map[string]*journal.Transaction

	// Inventory storage
	items map[string]*inventory.Item

	// Event storage
	events map[string]*event.Session
}

func New() *Store {
	return &Store{
		journals: make(map[string]*journal.Transaction),
		items:    make(map[string]*inventory.Item),
		events:   make(map[string]*event.Session),
	}
}

// Journal Store implementation
func (s *Store) CreateJournal(_ context.Context, txn *journal.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.journals[txn.ID.String()]; exists {
		return rally.ErrInvalidInput
	}
	s.journals[txn.ID.String()] = cloneJournal(txn)
	return nil
}

func (s *Store) GetJournal(_ context.Context, jrnlID id.JournalID) (*journal.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if txn, ok := s.journals[jrnlID.String()]; ok {
		return cloneJournal(txn), nil
	}
	return nil, rally.ErrJournalNotFound
}

func (s *Store) ListJournals(_ context.Context, opts journal.ListOpts) ([]*journal.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*journal.Transaction, 0)
	for _, txn := range s.journals {
		if opts.Category != "" && txn.Category != opts.Category {
			continue
		}
		if opts.RefID != "" && txn.RefID != opts.RefID {
			continue
		}
		if !opts.Start.IsZero() && txn.Date.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && !txn.Date.Before(opts.End) {
			continue
		}
		result = append(result, cloneJournal(txn))
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Inventory Store implementation
func (s *Store) CreateItem(_ context.Context, item *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID.String()]; exists {
		return rally.ErrItemExists
	}
	s.items[item.ID.String()] = cloneItem(item)
	return nil
}

func (s *Store) GetItem(_ context.Context, itemID id.ItemID) (*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, ok := s.items[itemID.String()]; ok {
		return cloneItem(item), nil
	}
	return nil, rally.ErrItemNotFound
}

func (s *Store) ListItems(_ context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*inventory.Item, 0)
	for _, item := range s.items {
		if opts.Category == "" || item.Category == opts.Category {
			result = append(result, cloneItem(item))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) UpdateItemCAS(_ context.Context, item *inventory.Item, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.items[item.ID.String()]
	if !exists {
		return rally.ErrItemNotFound
	}
	if stored.Version != expectedVersion {
		return rally.ErrVersionConflict
	}
	s.items[item.ID.String()] = cloneItem(item)
	return nil
}

func (s *Store) DeleteItem(_ context.Context, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, itemID.String())
	return nil
}

// Event Store implementation
func (s *Store) CreateEvent(_ context.Context, sess *event.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[sess.ID.String()]; exists {
		return rally.ErrInvalidInput
	}
	s.events[sess.ID.String()] = cloneSession(sess)
	return nil
}

func (s *Store) GetEvent(_ context.Context, eventID id.EventID) (*event.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.events[eventID.String()]; ok {
		return cloneSession(sess), nil
	}
	return nil, rally.ErrEventNotFound
}

func (s *Store) CloseEventFinance(_ context.Context, eventID id.EventID, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.events[eventID.String()]
	if !exists {
		return rally.ErrEventNotFound
	}
	if sess.FinancialClosed {
		return rally.ErrSessionClosed
	}

	sess.FinancialClosed = true
	sess.FinancialClosedAt = &closedAt
	sess.Status = event.StatusCompleted
	sess.Touch()
	return nil
}

func (s *Store) ReopenEventFinance(_ context.Context, eventID id.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.events[eventID.String()]
	if !exists {
		return rally.ErrEventNotFound
	}

	sess.FinancialClosed = false
	sess.FinancialClosedAt = nil
	sess.Status = event.StatusOpen
	sess.Touch()
	return nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions
func cloneJournal(txn *journal.Transaction) *journal.Transaction {
	c := *txn
	c.Entries = append([]journal.Entry(nil), txn.Entries...)
	if txn.Metadata != nil {
		m := *txn.Metadata
		m.Breakdown = append([]journal.CostLine(nil), txn.Metadata.Breakdown...)
		c.Metadata = &m
	}
	return &c
}

func cloneItem(item *inventory.Item) *inventory.Item {
	c := *item
	c.History = append([]inventory.RestockRecord(nil), item.History...)
	if item.LastRestockAt != nil {
		t := *item.LastRestockAt
		c.LastRestockAt = &t
	}
	return &c
}

func cloneSession(sess *event.Session) *event.Session {
	c := *sess
	if sess.FinancialClosedAt != nil {
		t := *sess.FinancialClosedAt
		c.FinancialClosedAt = &t
	}
	return &c
}
