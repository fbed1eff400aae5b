package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrDiscountNotFound       = errors.New("discount code not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrSlotOccupied           = errors.New("table slot already occupied")
	ErrSlotRangeInvalid       = errors.New("table slot out of range")
	ErrCapacityReached        = errors.New("all tables are in use")
	ErrEmptyOrder             = errors.New("order has no items")
	ErrInvalidInput           = errors.New("invalid input")
	ErrLineIndex              = errors.New("line item index out of range")
	ErrSessionNotActive       = errors.New("session is not active")
	ErrDiscountAlreadyApplied = errors.New("a discount is already applied")
)

// Kind groups errors by how a caller is expected to react.
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindStock       Kind = "STOCK"
	KindPersistence Kind = "PERSISTENCE"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindInternal    Kind = "INTERNAL"
)

type StockShortage struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// InsufficientStockError lists every item that cannot be served.
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (available: %d, requested: %d)", it.Name, it.Available, it.Requested))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

type InsufficientPaymentError struct {
	Shortfall decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return "insufficient payment: short by " + e.Shortfall.String()
}

// PersistenceError wraps a durable store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// WrapPersistence tags err as a store failure of op; nil stays nil.
func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	var (
		stockErr *InsufficientStockError
		payErr   *InsufficientPaymentError
		pErr     *PersistenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &stockErr):
		return KindStock
	case errors.As(err, &payErr),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrLineIndex),
		errors.Is(err, ErrSlotRangeInvalid):
		return KindValidation
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrDiscountNotFound),
		errors.Is(err, ErrProductNotFound):
		return KindNotFound
	case errors.Is(err, ErrSlotOccupied),
		errors.Is(err, ErrCapacityReached),
		errors.Is(err, ErrSessionNotActive),
		errors.Is(err, ErrDiscountAlreadyApplied):
		return KindConflict
	case errors.As(err, &pErr):
		return KindPersistence
	default:
		return KindInternal
	}
}

// IsStockError reports whether err carries an InsufficientStockError.
func IsStockError(err error) bool {
	var se *InsufficientStockError
	return errors.As(err, &se)
}
