package rally

import (
	"errors"
	"fmt"

	"github.com/xraph/rally/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("rally: not found")
	ErrInvalidInput = errors.New("rally: invalid input")

	// Journal errors
	ErrJournalNotFound = errors.New("rally: journal transaction not found")
	ErrNoEntries       = errors.New("rally: journal transaction has no entries")

	// Inventory errors
	ErrItemNotFound     = errors.New("rally: inventory item not found")
	ErrItemExists       = errors.New("rally: inventory item already exists")
	ErrVersionConflict  = errors.New("rally: item version conflict")
	ErrConcurrentUpdate = errors.New("rally: concurrent item update, retries exhausted")

	// Event errors
	ErrEventNotFound = errors.New("rally: event not found")
	ErrSessionClosed = errors.New("rally: session finances already closed")

	// Store errors
	ErrStoreNotReady  = errors.New("rally: store not ready")
	ErrStoreClosed    = errors.New("rally: store is closed")
	ErrStorageTimeout = errors.New("rally: storage operation timed out")
)

// UnbalancedError reports a journal transaction whose debits and credits
// disagree beyond the configured tolerance. The transaction is rejected
// before any write.
type UnbalancedError struct {
	Debit  types.Money
	Credit types.Money
}

func (e UnbalancedError) Error() string {
	return fmt.Sprintf("rally: unbalanced journal: debit %s != credit %s", e.Debit, e.Credit)
}

// InsufficientStockError reports a consumption request exceeding available
// stock. This is a hard stop, not a transient fault: overselling physical
// stock is a correctness violation.
type InsufficientStockError struct {
	ItemName  string
	Requested int64
	Available int64
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("rally: insufficient stock of %s: requested %d, available %d",
		e.ItemName, e.Requested, e.Available)
}

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rally: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred, e.g. a saga step
// failure followed by a compensation failure.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "rally: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("rally: %d errors occurred, first: %v", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the contained errors to errors.Is/errors.As.
func (e MultiError) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrJournalNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrEventNotFound)
}

// IsRetryable returns true if the error is temporary and the whole operation
// can be retried. Business-rule failures (unbalanced journals, insufficient
// stock, double close) are deliberately not retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrStorageTimeout) ||
		errors.Is(err, ErrConcurrentUpdate)
}
