package orders

import (
	"context"
	"time"
)

// Store is the narrow contract the engine needs from durable storage.
type Store interface {
	ReadProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	WriteProductStock(ctx context.Context, id string, stock int) error

	ReadSession(ctx context.Context, id string) (Session, error)
	CreateSession(ctx context.Context, s Session) error
	WriteSessionDraft(ctx context.Context, id string, d Draft) error
	WriteSessionCompletion(ctx context.Context, id string, c Completion) error
	WriteSessionDeletion(ctx context.Context, id string, at time.Time) error
	ListActiveSessions(ctx context.Context) ([]Session, error)
	ListCompletedSessions(ctx context.Context, from, to time.Time) ([]Session, error)

	ReadDiscountByCode(ctx context.Context, code string) (Discount, error)
}

// StockDecrementer is implemented by stores that can decrement stock in one
// conditional write. It returns the stock before and after the write.
type StockDecrementer interface {
	DecrementStock(ctx context.Context, id string, qty int) (before, after int, err error)
}

// EventSink receives domain events. Implementations must not block the caller.
type EventSink interface {
	Emit(ctx context.Context, env Envelope)
}

type NopSink struct{}

func (NopSink) Emit(context.Context, Envelope) {}
