package tables

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
)

// The hooks below are driven by the commit coordinator. While a session is
// Validating or Committing every mutation is refused.

func (r *Registry) transition(id string, to orders.Status) (orders.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return orders.Session{}, fmt.Errorf("%w: %s", orders.ErrSessionNotFound, id)
	}
	if !orders.CanTransition(s.Status, to) {
		return orders.Session{}, fmt.Errorf("%w: %s cannot move from %s to %s", orders.ErrSessionNotActive, id, s.Status, to)
	}
	s.Status = to
	return s.Clone(), nil
}

// BeginCheckout moves an Active session to Validating and returns the frozen
// snapshot the checkout works on. Pending drafts are dropped; the completion
// write carries the same items.
func (r *Registry) BeginCheckout(id string) (orders.Session, error) {
	s, err := r.transition(id, orders.StatusValidating)
	if err != nil {
		return orders.Session{}, err
	}
	r.drafts.Cancel(id)
	r.publish(Change{Kind: ChangeCheckout, SessionID: id, Slot: s.Slot})
	return s, nil
}

func (r *Registry) MarkCommitting(id string) error {
	_, err := r.transition(id, orders.StatusCommitting)
	return err
}

// AbortCheckout returns the session to Active and reschedules its draft.
func (r *Registry) AbortCheckout(id string) {
	s, err := r.transition(id, orders.StatusActive)
	if err != nil {
		r.log.Warn().Err(err).Str("session_id", id).Msg("abort checkout")
		return
	}
	r.drafts.Schedule(id)
	r.publish(Change{Kind: ChangeUpdated, SessionID: id, Slot: s.Slot})
}

// CompleteCheckout marks the session Completed and frees its slot.
func (r *Registry) CompleteCheckout(ctx context.Context, id string) error {
	s, err := r.transition(id, orders.StatusCompleted)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.sessions, id)
	delete(r.slots, s.Slot)
	r.mu.Unlock()

	r.dropStatus(ctx, id)
	r.publish(Change{Kind: ChangeCompleted, SessionID: id, Slot: s.Slot})
	return nil
}
