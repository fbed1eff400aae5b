package tables

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/shopspring/decimal"
)

// mutate runs fn against the tracked session under the registry lock. On
// success the draft is scheduled and subscribers are told.
func (r *Registry) mutate(id string, fn func(s *orders.Session) error) (orders.Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return orders.Session{}, fmt.Errorf("%w: %s", orders.ErrSessionNotFound, id)
	}
	if err := fn(s); err != nil {
		r.mu.Unlock()
		return orders.Session{}, err
	}
	out := s.Clone()
	r.drafts.Schedule(id)
	r.mu.Unlock()

	r.publish(Change{Kind: ChangeUpdated, SessionID: id, Slot: out.Slot})
	return out, nil
}

// AddCatalogItem adds one unit of productID, checked against the snapshot's
// stock level.
func (r *Registry) AddCatalogItem(id, productID string) (orders.Session, error) {
	p, err := r.catalog.Get(productID)
	if err != nil {
		return orders.Session{}, err
	}
	return r.mutate(id, func(s *orders.Session) error { return s.AddCatalogItem(p) })
}

func (r *Registry) AddCustomItem(id, name string, price decimal.Decimal) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.AddCustomItem(name, price) })
}

func (r *Registry) SetQuantity(id string, idx, qty int) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error {
		live, err := r.liveStock(s, idx)
		if err != nil {
			return err
		}
		return s.SetQuantity(idx, qty, live)
	})
}

// liveStock is the snapshot stock of a catalog line, 0 for anything else.
func (r *Registry) liveStock(s *orders.Session, idx int) (int, error) {
	if idx < 0 || idx >= len(s.Items) || !s.Items[idx].IsCatalog() {
		return 0, nil
	}
	p, err := r.catalog.Get(s.Items[idx].ProductID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func (r *Registry) SetPrice(id string, idx int, price decimal.Decimal) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.SetPrice(idx, price) })
}

// EditLine sets quantity and price of one line in a single step. Either
// field may be nil; nothing changes unless both apply.
func (r *Registry) EditLine(id string, idx int, qty *int, price *decimal.Decimal) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error {
		next := s.Clone()
		if qty != nil {
			live, err := r.liveStock(&next, idx)
			if err != nil {
				return err
			}
			if err := next.SetQuantity(idx, *qty, live); err != nil {
				return err
			}
		}
		if price != nil {
			if err := next.SetPrice(idx, *price); err != nil {
				return err
			}
		}
		*s = next
		return nil
	})
}

func (r *Registry) AddAddition(id string, idx int, name string, delta decimal.Decimal) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.AddAddition(idx, name, delta) })
}

func (r *Registry) RemoveAddition(id string, idx, additionIdx int) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.RemoveAddition(idx, additionIdx) })
}

func (r *Registry) RemoveLineItem(id string, idx int) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.RemoveLineItem(idx) })
}

func (r *Registry) SetComment(id, comment string) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.SetComment(comment) })
}

// ApplyDiscount resolves code and attaches it. The session is untouched when
// the code is unknown.
func (r *Registry) ApplyDiscount(ctx context.Context, id, code string) (orders.Session, error) {
	s, err := r.Select(id)
	if err != nil {
		return orders.Session{}, err
	}
	if s.Discount != nil {
		return orders.Session{}, fmt.Errorf("%w: %s", orders.ErrDiscountAlreadyApplied, s.Discount.Code)
	}
	d, err := r.discounts.Lookup(ctx, code)
	if err != nil {
		return orders.Session{}, err
	}
	return r.mutate(id, func(s *orders.Session) error { return s.AttachDiscount(d) })
}

func (r *Registry) RemoveDiscount(id string) (orders.Session, error) {
	return r.mutate(id, func(s *orders.Session) error { return s.RemoveDiscount() })
}
