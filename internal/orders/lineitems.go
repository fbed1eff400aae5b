package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The mutations below operate on an in-memory session and leave it untouched
// when they return an error.

func (s *Session) ensureActive() error {
	if s.Status != StatusActive {
		return fmt.Errorf("%w: %s is %s", ErrSessionNotActive, s.ID, s.Status)
	}
	return nil
}

func (s *Session) line(idx int) (*LineItem, error) {
	if idx < 0 || idx >= len(s.Items) {
		return nil, fmt.Errorf("%w: %d", ErrLineIndex, idx)
	}
	return &s.Items[idx], nil
}

func (s *Session) findCatalogLine(productID string) int {
	for i, it := range s.Items {
		if it.IsCatalog() && it.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddCatalogItem increments the existing line for p or appends a new one at
// p's current price. The resulting quantity may not exceed p.Stock.
func (s *Session) AddCatalogItem(p Product) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if idx := s.findCatalogLine(p.ID); idx >= 0 {
		next := s.Items[idx].Quantity + 1
		if next > p.Stock {
			return shortage(p, next)
		}
		s.Items[idx].Quantity = next
		s.Items[idx].StockAtSelection = p.Stock
		return nil
	}
	if p.Stock < 1 {
		return shortage(p, 1)
	}
	s.Items = append(s.Items, LineItem{
		Kind:             KindCatalog,
		ProductID:        p.ID,
		Name:             p.Name,
		Quantity:         1,
		Price:            p.Price,
		StockAtSelection: p.Stock,
	})
	return nil
}

func (s *Session) AddCustomItem(name string, price decimal.Decimal) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" || !price.IsPositive() {
		return fmt.Errorf("%w: custom item needs a name and a price above zero", ErrInvalidInput)
	}
	s.Items = append(s.Items, LineItem{
		Kind:     KindCustom,
		Name:     name,
		Quantity: 1,
		Price:    price,
	})
	return nil
}

// SetQuantity clamps to 1. liveStock is only consulted for catalog items.
func (s *Session) SetQuantity(idx, qty, liveStock int) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	li, err := s.line(idx)
	if err != nil {
		return err
	}
	if qty < 1 {
		qty = 1
	}
	if li.IsCatalog() && qty > liveStock {
		return &InsufficientStockError{Items: []StockShortage{{
			ProductID: li.ProductID, Name: li.Name, Available: liveStock, Requested: qty,
		}}}
	}
	li.Quantity = qty
	if li.IsCatalog() {
		li.StockAtSelection = liveStock
	}
	return nil
}

// SetPrice floors the price at zero and marks catalog items as overridden.
func (s *Session) SetPrice(idx int, price decimal.Decimal) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	li, err := s.line(idx)
	if err != nil {
		return err
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	li.Price = price
	if li.IsCatalog() {
		li.PriceOverridden = true
	}
	return nil
}

func (s *Session) AddAddition(idx int, name string, delta decimal.Decimal) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	li, err := s.line(idx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" || !delta.IsPositive() {
		return fmt.Errorf("%w: addition needs a name and a price above zero", ErrInvalidInput)
	}
	li.Additions = append(li.Additions, Addition{Name: name, PriceDelta: delta})
	li.Price = li.Price.Add(delta)
	return nil
}

func (s *Session) RemoveAddition(idx, additionIdx int) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	li, err := s.line(idx)
	if err != nil {
		return err
	}
	if additionIdx < 0 || additionIdx >= len(li.Additions) {
		return fmt.Errorf("%w: addition %d", ErrLineIndex, additionIdx)
	}
	delta := li.Additions[additionIdx].PriceDelta
	li.Additions = append(li.Additions[:additionIdx:additionIdx], li.Additions[additionIdx+1:]...)
	li.Price = decimal.Max(decimal.Zero, li.Price.Sub(delta))
	return nil
}

// RemoveLineItem has no stock side effect; stock only moves at checkout.
func (s *Session) RemoveLineItem(idx int) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if _, err := s.line(idx); err != nil {
		return err
	}
	s.Items = append(s.Items[:idx:idx], s.Items[idx+1:]...)
	return nil
}

func (s *Session) SetComment(comment string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	s.Comment = comment
	return nil
}

// AttachDiscount requires the previous discount to be removed first.
func (s *Session) AttachDiscount(d Discount) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if s.Discount != nil {
		return fmt.Errorf("%w: %s", ErrDiscountAlreadyApplied, s.Discount.Code)
	}
	s.Discount = &d
	return nil
}

func (s *Session) RemoveDiscount() error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	s.Discount = nil
	return nil
}

// Draft snapshots the current editable state.
func (s *Session) Draft() Draft {
	c := s.Clone()
	return Draft{
		Items:    c.Items,
		Comment:  c.Comment,
		Discount: c.Discount,
		Subtotal: c.Effect().Subtotal,
	}
}

func shortage(p Product, requested int) error {
	return &InsufficientStockError{Items: []StockShortage{{
		ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: requested,
	}}}
}
