package orders

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type Effect struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Effect computes subtotal, discount and total. A product-set discount only
// reaches catalog items in the set; custom items are never discounted by it.
func (s *Session) Effect() Effect {
	subtotal := decimal.Zero
	for _, it := range s.Items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	discount := decimal.Zero
	if d := s.Discount; d != nil {
		pct := clampPercentage(d.Percentage)
		switch d.Scope() {
		case ScopeAllItems:
			discount = subtotal.Mul(pct).Div(hundred)
		case ScopeProductSet:
			for _, it := range s.Items {
				if it.IsCatalog() && d.covers(it.ProductID) {
					discount = discount.Add(it.LineTotal().Mul(pct).Div(hundred))
				}
			}
		}
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Effect{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
	}
}

func clampPercentage(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
