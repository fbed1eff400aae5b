// Package tables owns the bounded set of open order sessions, one per
// physical table, and keeps their drafts in sync with storage.
package tables

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/catalog"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultCapacity = 6

// DiscountLookup resolves a code to a discount.
type DiscountLookup interface {
	Lookup(ctx context.Context, code string) (orders.Discount, error)
}

type Registry struct {
	store     orders.Store
	catalog   *catalog.Snapshot
	discounts DiscountLookup
	sink      orders.EventSink
	status    *redis.Client
	drafts    *DraftSync

	capacity int
	producer string
	newID    func() string
	now      func() time.Time
	log      zerolog.Logger

	mu       sync.Mutex
	slots    map[int]string // slot -> session id, includes slots being opened
	sessions map[string]*orders.Session

	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int
}

type Option func(*Registry)

func WithCapacity(n int) Option { return func(r *Registry) { r.capacity = n } }

func WithDraftDelay(d time.Duration) Option {
	return func(r *Registry) { r.drafts.delay = d }
}

func WithEventSink(s orders.EventSink, producer string) Option {
	return func(r *Registry) { r.sink, r.producer = s, producer }
}

// WithStatusCache mirrors open tables into redis for display clients.
func WithStatusCache(rdb *redis.Client) Option { return func(r *Registry) { r.status = rdb } }

func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

func WithIDFunc(f func() string) Option { return func(r *Registry) { r.newID = f } }

func New(store orders.Store, cat *catalog.Snapshot, discounts DiscountLookup, opts ...Option) *Registry {
	r := &Registry{
		store:     store,
		catalog:   cat,
		discounts: discounts,
		sink:      orders.NopSink{},
		capacity:  DefaultCapacity,
		producer:  "pos-counter",
		newID:     uuid.NewString,
		now:       time.Now,
		log:       logx.Component("tables"),
		slots:     map[int]string{},
		sessions:  map[string]*orders.Session{},
		subs:      map[int]chan Change{},
	}
	r.drafts = NewDraftSync(time.Second, r.currentDraft, r.writeDraft, r.log)
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Capacity() int { return r.capacity }

// Open creates a session on slot. Slot 0 picks the lowest free slot.
func (r *Registry) Open(ctx context.Context, slot int) (orders.Session, error) {
	r.mu.Lock()
	if len(r.slots) >= r.capacity {
		r.mu.Unlock()
		return orders.Session{}, orders.ErrCapacityReached
	}
	if slot == 0 {
		slot = r.lowestFreeSlot()
	}
	if slot < 1 || slot > r.capacity {
		r.mu.Unlock()
		return orders.Session{}, fmt.Errorf("%w: %d not in 1..%d", orders.ErrSlotRangeInvalid, slot, r.capacity)
	}
	if _, taken := r.slots[slot]; taken {
		r.mu.Unlock()
		return orders.Session{}, fmt.Errorf("%w: %s", orders.ErrSlotOccupied, orders.TableLabel(slot))
	}
	s := &orders.Session{
		ID:        r.newID(),
		Slot:      slot,
		Label:     orders.TableLabel(slot),
		Items:     []orders.LineItem{},
		Status:    orders.StatusActive,
		CreatedAt: r.now().UTC(),
	}
	// hold the slot while the row is written
	r.slots[slot] = s.ID
	r.mu.Unlock()

	if err := r.store.CreateSession(ctx, s.Clone()); err != nil {
		r.mu.Lock()
		delete(r.slots, slot)
		r.mu.Unlock()
		return orders.Session{}, orders.WrapPersistence("create session", err)
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	out := s.Clone()
	r.mu.Unlock()

	r.log.Info().Str("session_id", out.ID).Str("label", out.Label).Msg("table opened")
	r.emit(ctx, orders.EventSessionOpened, out.ID, orders.SessionOpenedPayload{
		SessionID: out.ID, Slot: out.Slot, Label: out.Label,
	})
	r.cacheStatus(ctx, out)
	r.publish(Change{Kind: ChangeOpened, SessionID: out.ID, Slot: out.Slot})
	return out, nil
}

func (r *Registry) lowestFreeSlot() int {
	for i := 1; i <= r.capacity; i++ {
		if _, taken := r.slots[i]; !taken {
			return i
		}
	}
	return 0
}

func (r *Registry) Select(id string) (orders.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return orders.Session{}, fmt.Errorf("%w: %s", orders.ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

// ListActive returns tracked sessions ordered by slot. Sessions in the middle
// of a checkout are included.
func (r *Registry) ListActive() []orders.Session {
	r.mu.Lock()
	out := make([]orders.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Delete soft-deletes an Active session and frees its slot. The session
// leaves Active before the write so a checkout cannot start meanwhile; a
// failed write puts it back.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", orders.ErrSessionNotFound, id)
	}
	if !orders.CanTransition(s.Status, orders.StatusDeleted) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", orders.ErrSessionNotActive, id, s.Status)
	}
	s.Status = orders.StatusDeleted
	subtotal := s.Effect().Subtotal
	slot, label := s.Slot, s.Label
	r.mu.Unlock()

	at := r.now().UTC()
	if err := r.store.WriteSessionDeletion(ctx, id, at); err != nil {
		r.mu.Lock()
		s.Status = orders.StatusActive
		r.mu.Unlock()
		return orders.WrapPersistence("delete session", err)
	}

	r.drafts.Cancel(id)
	r.mu.Lock()
	delete(r.sessions, id)
	delete(r.slots, slot)
	r.mu.Unlock()

	r.log.Info().Str("session_id", id).Str("label", label).Msg("table deleted")
	r.emit(ctx, orders.EventSessionDeleted, id, orders.SessionDeletedPayload{
		SessionID: id, Label: label, DeletedAt: at, Subtotal: subtotal,
	})
	r.dropStatus(ctx, id)
	r.publish(Change{Kind: ChangeDeleted, SessionID: id, Slot: slot})
	return nil
}

// Effect computes the totals of a tracked session.
func (r *Registry) Effect(id string) (orders.Effect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return orders.Effect{}, fmt.Errorf("%w: %s", orders.ErrSessionNotFound, id)
	}
	return s.Effect(), nil
}

// Close flushes pending drafts and ends every subscription.
func (r *Registry) Close(ctx context.Context) {
	r.drafts.Close(ctx)
	r.subMu.Lock()
	for k, ch := range r.subs {
		close(ch)
		delete(r.subs, k)
	}
	r.subMu.Unlock()
}

func (r *Registry) currentDraft(id string) (orders.Draft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != orders.StatusActive {
		return orders.Draft{}, false
	}
	return s.Draft(), true
}

func (r *Registry) writeDraft(ctx context.Context, id string, d orders.Draft) error {
	if err := r.store.WriteSessionDraft(ctx, id, d); err != nil {
		return err
	}
	if s, err := r.Select(id); err == nil {
		r.cacheStatus(ctx, s)
	}
	return nil
}

func (r *Registry) emit(ctx context.Context, eventType, sessionID string, payload any) {
	env, err := orders.NewEnvelope(eventType, r.producer, sessionID, payload, r.now())
	if err != nil {
		r.log.Error().Err(err).Str("event", eventType).Msg("build event")
		return
	}
	r.sink.Emit(ctx, env)
}
