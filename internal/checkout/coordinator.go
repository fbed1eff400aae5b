// Package checkout turns an open table into a completed sale.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/inventory"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/tables"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Payment struct {
	Method   orders.PaymentMethod `json:"method"`
	Tendered decimal.Decimal      `json:"tendered"`
}

type Result struct {
	Receipt      Receipt              `json:"receipt"`
	StockUpdates []orders.StockUpdate `json:"stock_updates"`
}

type Coordinator struct {
	registry  *tables.Registry
	store     orders.Store
	inventory *inventory.Service
	sink      orders.EventSink
	producer  string
	now       func() time.Time
	log       zerolog.Logger

	settleTimeout time.Duration
}

type Option func(*Coordinator)

func WithEventSink(s orders.EventSink, producer string) Option {
	return func(c *Coordinator) { c.sink, c.producer = s, producer }
}

func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

// WithSettleTimeout bounds the work after the completion write (stock
// decrement, slot release, events). It is not tied to the caller's context.
func WithSettleTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.settleTimeout = d }
}

func New(reg *tables.Registry, store orders.Store, inv *inventory.Service, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  reg,
		store:     store,
		inventory: inv,
		sink:      orders.NopSink{},
		producer:  "pos-counter",
		now:       time.Now,
		log:       logx.Component("checkout"),

		settleTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Finalize runs the commit protocol for one session:
//
//  1. the order must have items
//  2. cash must cover the total
//  3. every catalog item is re-checked against stored stock (all or nothing)
//  4. the completion is written once; from here the sale stands
//  5. stock is decremented per product, best effort
//  6. the receipt is emitted and the slot freed
//
// A failure before step 4 returns the session to Active untouched.
func (c *Coordinator) Finalize(ctx context.Context, sessionID string, pay Payment) (Result, error) {
	s, err := c.registry.BeginCheckout(sessionID)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			c.registry.AbortCheckout(sessionID)
		}
	}()

	// 1) precondition
	if len(s.Items) == 0 {
		return Result{}, fmt.Errorf("%w: %s", orders.ErrEmptyOrder, s.Label)
	}

	// 2) payment
	effect := s.Effect()
	detail, err := settle(pay, effect.Total)
	if err != nil {
		return Result{}, err
	}

	// 3) stock gate
	demand := inventory.DemandOf(s.Items)
	if err := c.inventory.Validate(ctx, demand); err != nil {
		c.log.Info().Err(err).Str("session_id", sessionID).Msg("checkout rejected")
		return Result{}, err
	}

	// 4) completion write
	if err := c.registry.MarkCommitting(sessionID); err != nil {
		return Result{}, err
	}
	completion := orders.Completion{
		CompletedAt:    c.now().UTC(),
		Items:          s.Items,
		Subtotal:       effect.Subtotal,
		DiscountAmount: effect.DiscountAmount,
		Total:          effect.Total,
		PaymentMethod:  pay.Method,
		PaymentDetail:  detail,
	}
	if err := c.store.WriteSessionCompletion(ctx, sessionID, completion); err != nil {
		return Result{}, orders.WrapPersistence("write completion", err)
	}
	committed = true

	// The sale stands; the caller going away must not stop the follow-up.
	post, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.settleTimeout)
	defer cancel()

	// 5) best-effort decrement
	updates := c.inventory.Decrement(post, demand)

	// 6) receipt + free the slot
	receipt := buildReceipt(s, effect, completion)
	if err := c.registry.CompleteCheckout(post, sessionID); err != nil {
		c.log.Error().Err(err).Str("session_id", sessionID).Msg("release slot")
	}
	c.emit(post, orders.EventSaleCompleted, sessionID, receipt)
	if len(updates) > 0 {
		c.emit(post, orders.EventStockDecremented, sessionID, orders.StockDecrementedPayload{
			SessionID: sessionID, Updates: updates,
		})
	}

	c.log.Info().
		Str("session_id", sessionID).
		Str("label", s.Label).
		Str("total", effect.Total.String()).
		Str("method", string(pay.Method)).
		Msg("sale completed")
	return Result{Receipt: receipt, StockUpdates: updates}, nil
}

// settle checks the tendered amount. Only cash carries a payment detail.
func settle(pay Payment, total decimal.Decimal) (*orders.PaymentDetail, error) {
	switch pay.Method {
	case orders.PaymentTransfer:
		return nil, nil
	case orders.PaymentCash:
		if pay.Tendered.LessThan(total) {
			return nil, &orders.InsufficientPaymentError{Shortfall: total.Sub(pay.Tendered)}
		}
		return &orders.PaymentDetail{Tendered: pay.Tendered, Change: pay.Tendered.Sub(total)}, nil
	default:
		return nil, fmt.Errorf("%w: payment method %q", orders.ErrInvalidInput, pay.Method)
	}
}

func (c *Coordinator) emit(ctx context.Context, eventType, sessionID string, payload any) {
	env, err := orders.NewEnvelope(eventType, c.producer, sessionID, payload, c.now())
	if err != nil {
		c.log.Error().Err(err).Str("event", eventType).Msg("build event")
		return
	}
	c.sink.Emit(ctx, env)
}
