package rally

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/plugin"
	"github.com/xraph/rally/store"
	"github.com/xraph/rally/types"
)

// Default engine settings.
const (
	// DefaultBalanceTolerance is the accepted debit/credit mismatch in
	// minor currency units. One unit absorbs rounding from upstream
	// per-unit cost division.
	DefaultBalanceTolerance = int64(1)

	// DefaultCASRetries bounds the optimistic-concurrency retry loop on
	// inventory read-modify-write operations.
	DefaultCASRetries = 5
)

// Engine is the accounting and inventory-costing engine. It validates and
// records balanced journal transactions and keeps per-item stock at
// weighted-average cost. All operations are request-driven and synchronous;
// there are no background workers.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	currency    string
	tolerance   int64
	callTimeout time.Duration
	casRetries  int
}

// New creates a new Engine instance backed by the given store.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		plugins:    plugin.NewRegistry(),
		logger:     slog.Default(),
		currency:   "idr",
		tolerance:  DefaultBalanceTolerance,
		casRetries: DefaultCASRetries,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCurrency sets the engine currency (ISO 4217, lowercase).
// All amounts passed to the engine must be in this currency.
func WithCurrency(currency string) Option {
	return func(e *Engine) {
		e.currency = currency
	}
}

// WithBalanceTolerance sets the accepted debit/credit mismatch in minor units.
func WithBalanceTolerance(tolerance int64) Option {
	return func(e *Engine) {
		e.tolerance = tolerance
	}
}

// WithCallTimeout applies a per-call timeout to every store operation.
// Deadline hits surface as ErrStorageTimeout, distinct from business-rule
// failures.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.callTimeout = d
	}
}

// WithCASRetries bounds the optimistic-concurrency retry loop.
func WithCASRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.casRetries = n
		}
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("rally started",
		"currency", e.currency,
		"balance_tolerance", e.tolerance,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Currency returns the engine currency.
func (e *Engine) Currency() string { return e.currency }

// ──────────────────────────────────────────────────
// Journal recording
// ──────────────────────────────────────────────────

// RecordJournalEntry validates and persists a journal transaction as an
// immutable record. The transaction must balance: |sum(debit) - sum(credit)|
// within the configured tolerance. On success the transaction carries a new
// ID, a server-authoritative creation time and the denormalized total, and
// is durably stored.
func (e *Engine) RecordJournalEntry(ctx context.Context, txn *journal.Transaction) (id.JournalID, error) {
	if txn == nil || len(txn.Entries) == 0 {
		return id.Nil, ErrNoEntries
	}

	debit, credit := txn.Totals()
	if !txn.Balanced(e.tolerance) {
		err := UnbalancedError{Debit: debit, Credit: credit}
		e.plugins.EmitJournalRejected(ctx, txn, err.Error())
		return id.Nil, err
	}

	if txn.ID.IsNil() {
		txn.ID = id.NewJournalID()
	}
	txn.Entity = types.NewEntity()
	if txn.Date.IsZero() {
		txn.Date = txn.CreatedAt
	}
	if txn.Status == "" {
		txn.Status = journal.StatusPosted
	}
	txn.TotalAmount = debit

	if err := e.storeCall(ctx, func(ctx context.Context) error {
		return e.store.CreateJournal(ctx, txn)
	}); err != nil {
		return id.Nil, err
	}

	e.plugins.EmitJournalPosted(ctx, txn)

	e.logger.Debug("journal posted",
		"journal_id", txn.ID.String(),
		"ref_id", txn.RefID,
		"category", string(txn.Category),
		"total", txn.TotalAmount.String(),
	)

	return txn.ID, nil
}

// GetJournal retrieves a posted transaction by ID.
func (e *Engine) GetJournal(ctx context.Context, jrnlID id.JournalID) (*journal.Transaction, error) {
	var txn *journal.Transaction
	err := e.storeCall(ctx, func(ctx context.Context) error {
		var err error
		txn, err = e.store.GetJournal(ctx, jrnlID)
		return err
	})
	return txn, err
}

// ListJournals lists posted transactions, newest first.
func (e *Engine) ListJournals(ctx context.Context, opts journal.ListOpts) ([]*journal.Transaction, error) {
	var txns []*journal.Transaction
	err := e.storeCall(ctx, func(ctx context.Context) error {
		var err error
		txns, err = e.store.ListJournals(ctx, opts)
		return err
	})
	return txns, err
}

// ──────────────────────────────────────────────────
// Event lifecycle
// ──────────────────────────────────────────────────

// CreateEvent registers a club session so its finances can be closed later.
func (e *Engine) CreateEvent(ctx context.Context, s *event.Session) error {
	if s.Name == "" {
		return ValidationError{Field: "name", Message: "must not be empty"}
	}

	if s.ID.IsNil() {
		s.ID = id.NewEventID()
	}
	s.Entity = types.NewEntity()
	if s.Status == "" {
		s.Status = event.StatusOpen
	}

	return e.storeCall(ctx, func(ctx context.Context) error {
		return e.store.CreateEvent(ctx, s)
	})
}

// GetEvent retrieves a club session by ID.
func (e *Engine) GetEvent(ctx context.Context, eventID id.EventID) (*event.Session, error) {
	var s *event.Session
	err := e.storeCall(ctx, func(ctx context.Context) error {
		var err error
		s, err = e.store.GetEvent(ctx, eventID)
		return err
	})
	return s, err
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// storeCall runs one store operation under the configured per-call timeout
// and maps deadline hits to ErrStorageTimeout.
func (e *Engine) storeCall(ctx context.Context, fn func(context.Context) error) error {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrStorageTimeout, err)
	}
	return err
}

// money normalizes an amount to the engine currency. A zero value with no
// currency is treated as zero engine currency; any other currency is
// rejected.
func (e *Engine) money(m types.Money, field string) (types.Money, error) {
	if m.Currency == "" {
		m.Currency = e.currency
	}
	if m.Currency != e.currency {
		return m, ValidationError{Field: field, Message: "currency must be " + e.currency}
	}
	if m.IsNegative() {
		return m, ValidationError{Field: field, Message: "must not be negative"}
	}
	return m, nil
}
