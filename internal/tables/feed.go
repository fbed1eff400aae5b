package tables

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/redisx"
)

type ChangeKind string

const (
	ChangeOpened    ChangeKind = "opened"
	ChangeUpdated   ChangeKind = "updated"
	ChangeCheckout  ChangeKind = "checkout"
	ChangeCompleted ChangeKind = "completed"
	ChangeDeleted   ChangeKind = "deleted"
)

type Change struct {
	Kind      ChangeKind `json:"kind"`
	SessionID string     `json:"session_id"`
	Slot      int        `json:"slot"`
}

const subscriberBuffer = 32

// Subscribe returns a feed of registry changes and a cancel func. Slow
// subscribers miss changes rather than block the registry.
func (r *Registry) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)
	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.subMu.Unlock()

	return ch, func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if c, ok := r.subs[id]; ok {
			close(c)
			delete(r.subs, id)
		}
	}
}

func (r *Registry) publish(c Change) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- c:
		default:
			r.log.Debug().Str("session_id", c.SessionID).Msg("subscriber full, change dropped")
		}
	}
}

type tableStatus struct {
	Label    string        `json:"label"`
	Status   orders.Status `json:"status"`
	Items    int           `json:"items"`
	Subtotal string        `json:"subtotal"`
}

func (r *Registry) cacheStatus(ctx context.Context, s orders.Session) {
	if r.status == nil {
		return
	}
	st := tableStatus{Label: s.Label, Status: s.Status, Items: len(s.Items), Subtotal: s.Effect().Subtotal.String()}
	key := fmt.Sprintf(redisx.KeyTableStatus, s.ID)
	if err := redisx.SetJSON(ctx, r.status, key, st, redisx.TTLTableStatus); err != nil {
		r.log.Warn().Err(err).Str("session_id", s.ID).Msg("table status cache write failed")
	}
}

func (r *Registry) dropStatus(ctx context.Context, id string) {
	if r.status == nil {
		return
	}
	if err := r.status.Del(ctx, fmt.Sprintf(redisx.KeyTableStatus, id)).Err(); err != nil {
		r.log.Warn().Err(err).Str("session_id", id).Msg("table status cache delete failed")
	}
}
