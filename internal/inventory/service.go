// Package inventory checks and moves product stock around a sale.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-pos-tables/internal/catalog"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Demand is the quantity of one product a sale needs.
type Demand struct {
	ProductID string
	Name      string
	Qty       int
}

// DemandOf sums catalog line items per product. Custom items carry no stock.
func DemandOf(items []orders.LineItem) []Demand {
	idx := map[string]int{}
	var out []Demand
	for _, it := range items {
		if !it.IsCatalog() {
			continue
		}
		if i, ok := idx[it.ProductID]; ok {
			out[i].Qty += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, Demand{ProductID: it.ProductID, Name: it.Name, Qty: it.Quantity})
	}
	return out
}

type Service struct {
	Store   orders.Store
	Catalog *catalog.Snapshot
	// Atomic routes decrements through the store's conditional write when
	// it has one.
	Atomic bool

	log zerolog.Logger
}

func NewService(store orders.Store, cat *catalog.Snapshot, atomic bool) *Service {
	return &Service{Store: store, Catalog: cat, Atomic: atomic, log: logx.Component("inventory")}
}

// Validate re-reads every product in parallel and fails with one
// InsufficientStockError naming every short item. Nothing is written.
// A product missing from storage is not checked.
func (s *Service) Validate(ctx context.Context, demand []Demand) error {
	var (
		mu     sync.Mutex
		shorts []orders.StockShortage
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range demand {
		d := d
		g.Go(func() error {
			p, err := s.Store.ReadProduct(gctx, d.ProductID)
			if errors.Is(err, orders.ErrProductNotFound) {
				s.log.Warn().Str("product_id", d.ProductID).Msg("product missing at validation, skipped")
				return nil
			}
			if err != nil {
				return orders.WrapPersistence("read product "+d.ProductID, err)
			}
			if s.Catalog != nil {
				s.Catalog.SetStock(p.ID, p.Stock)
			}
			if d.Qty > p.Stock {
				mu.Lock()
				shorts = append(shorts, orders.StockShortage{
					ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: d.Qty,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if len(shorts) > 0 {
		sort.Slice(shorts, func(i, j int) bool { return shorts[i].Name < shorts[j].Name })
		return &orders.InsufficientStockError{Items: shorts}
	}
	return nil
}

// Decrement lowers stock for every demand independently and in parallel,
// floored at zero. Failures are logged and reported per item; they never
// abort the other decrements. Without Atomic this is a read followed by a
// write, so two sales racing for the same unit can both pass.
func (s *Service) Decrement(ctx context.Context, demand []Demand) []orders.StockUpdate {
	updates := make([]orders.StockUpdate, len(demand))
	dec, atomic := s.Store.(orders.StockDecrementer)
	atomic = atomic && s.Atomic

	var wg sync.WaitGroup
	for i, d := range demand {
		i, d := i, d
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := orders.StockUpdate{ProductID: d.ProductID, Name: d.Name, Sold: d.Qty}
			var err error
			if atomic {
				u.Before, u.After, err = dec.DecrementStock(ctx, d.ProductID, d.Qty)
			} else {
				u.Before, u.After, err = s.readThenWrite(ctx, d)
			}
			if err != nil {
				u.Error = err.Error()
				s.log.Error().Err(err).Str("product_id", d.ProductID).Int("qty", d.Qty).Msg("stock decrement failed")
			} else if s.Catalog != nil {
				s.Catalog.SetStock(d.ProductID, u.After)
			}
			updates[i] = u
		}()
	}
	wg.Wait()
	return updates
}

func (s *Service) readThenWrite(ctx context.Context, d Demand) (before, after int, err error) {
	p, err := s.Store.ReadProduct(ctx, d.ProductID)
	if err != nil {
		return 0, 0, fmt.Errorf("read product: %w", err)
	}
	after = max(0, p.Stock-d.Qty)
	if err := s.Store.WriteProductStock(ctx, d.ProductID, after); err != nil {
		return p.Stock, p.Stock, fmt.Errorf("write stock: %w", err)
	}
	return p.Stock, after, nil
}

// Restock adds qty units to a product and returns the new level.
func (s *Service) Restock(ctx context.Context, productID string, qty int) (orders.Product, error) {
	if qty < 1 {
		return orders.Product{}, fmt.Errorf("%w: restock quantity must be positive", orders.ErrInvalidInput)
	}
	p, err := s.Store.ReadProduct(ctx, productID)
	if errors.Is(err, orders.ErrProductNotFound) {
		return orders.Product{}, fmt.Errorf("%w: %s", orders.ErrProductNotFound, productID)
	}
	if err != nil {
		return orders.Product{}, orders.WrapPersistence("read product", err)
	}
	p.Stock += qty
	if err := s.Store.WriteProductStock(ctx, productID, p.Stock); err != nil {
		return orders.Product{}, orders.WrapPersistence("write stock", err)
	}
	if s.Catalog != nil {
		s.Catalog.SetStock(productID, p.Stock)
	}
	s.log.Info().Str("product_id", productID).Int("qty", qty).Int("stock", p.Stock).Msg("restocked")
	return p, nil
}

// LowStock lists products at or below their minimum, from the snapshot.
func (s *Service) LowStock() []orders.Product {
	var out []orders.Product
	for _, p := range s.Catalog.All() {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}
