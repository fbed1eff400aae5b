package tables

import (
	"context"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
)

// Restore loads the Active sessions kept in storage into free slots. The
// catalog snapshot must be loaded first: catalog items follow the current
// catalog price unless their price was overridden, and items whose product
// no longer exists are dropped.
func (r *Registry) Restore(ctx context.Context) (int, error) {
	stored, err := r.store.ListActiveSessions(ctx)
	if err != nil {
		return 0, orders.WrapPersistence("list active sessions", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	restored := 0
	for _, s := range stored {
		s := s
		if _, ok := r.sessions[s.ID]; ok {
			continue
		}
		if s.Slot < 1 || s.Slot > r.capacity {
			r.log.Warn().Str("session_id", s.ID).Int("slot", s.Slot).Msg("stored session outside slot range, skipped")
			continue
		}
		if other, taken := r.slots[s.Slot]; taken {
			r.log.Warn().Str("session_id", s.ID).Str("holder", other).Int("slot", s.Slot).Msg("slot already restored, skipped")
			continue
		}
		s.Items = r.rehydrate(s.ID, s.Items)
		s.Status = orders.StatusActive
		if s.Label == "" {
			s.Label = orders.TableLabel(s.Slot)
		}
		r.sessions[s.ID] = &s
		r.slots[s.Slot] = s.ID
		restored++
	}
	if restored > 0 {
		r.log.Info().Int("sessions", restored).Msg("tables restored")
	}
	return restored, nil
}

func (r *Registry) rehydrate(sessionID string, items []orders.LineItem) []orders.LineItem {
	out := make([]orders.LineItem, 0, len(items))
	for _, it := range items {
		if !it.IsCatalog() {
			out = append(out, it)
			continue
		}
		p, err := r.catalog.Get(it.ProductID)
		if err != nil {
			r.log.Warn().Str("session_id", sessionID).Str("product_id", it.ProductID).Msg("product gone, line dropped")
			continue
		}
		it.Name = p.Name
		it.StockAtSelection = p.Stock
		if !it.PriceOverridden {
			price := p.Price
			for _, a := range it.Additions {
				price = price.Add(a.PriceDelta)
			}
			it.Price = price
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		out = append(out, it)
	}
	return out
}
