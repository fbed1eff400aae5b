// Package catalog holds the read-mostly product cache shared by every table.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
)

// Lister is the part of the store the snapshot loads from.
type Lister interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
}

// Snapshot is loaded once per engine activation and refreshed only through
// Reload or the stock setters used by checkout and restock.
type Snapshot struct {
	src Lister

	mu       sync.RWMutex
	products map[string]orders.Product
}

func New(src Lister) *Snapshot {
	return &Snapshot{src: src, products: map[string]orders.Product{}}
}

func (s *Snapshot) Reload(ctx context.Context) error {
	ps, err := s.src.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	next := make(map[string]orders.Product, len(ps))
	for _, p := range ps {
		next[p.ID] = p
	}
	s.mu.Lock()
	s.products = next
	s.mu.Unlock()
	return nil
}

func (s *Snapshot) Get(id string) (orders.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return orders.Product{}, fmt.Errorf("%w: %s", orders.ErrProductNotFound, id)
	}
	return p, nil
}

// SetStock records a stock level observed or written by the caller.
func (s *Snapshot) SetStock(id string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Stock = stock
		s.products[id] = p
	}
}

// All returns products sorted by name.
func (s *Snapshot) All() []orders.Product {
	s.mu.RLock()
	out := make([]orders.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search matches name substrings case-insensitively and, when category is
// set, filters by exact category.
func (s *Snapshot) Search(query, category string) []orders.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	var out []orders.Product
	for _, p := range s.All() {
		if category != "" && strings.TrimSpace(p.Category) != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists distinct non-empty categories in name order.
func (s *Snapshot) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range s.All() {
		c := strings.TrimSpace(p.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
