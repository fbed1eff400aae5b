package orders

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	StockMinimum *int            `json:"stock_minimum,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Category     string          `json:"category,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LowStock reports whether the stock level is at or below the minimum threshold.
func (p Product) LowStock() bool {
	threshold := 0
	if p.StockMinimum != nil {
		threshold = *p.StockMinimum
	}
	return p.Stock <= threshold
}

type ItemKind string

const (
	KindCatalog ItemKind = "catalog"
	KindCustom  ItemKind = "custom"
)

type Addition struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// LineItem is either a catalog-backed item (ProductID set) or a custom item.
// Price is the effective unit price, additions included.
type LineItem struct {
	Kind             ItemKind        `json:"kind"`
	ProductID        string          `json:"product_id,omitempty"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	PriceOverridden  bool            `json:"price_overridden,omitempty"`
	StockAtSelection int             `json:"stock_at_selection,omitempty"`
	Additions        []Addition      `json:"additions,omitempty"`
}

func (li LineItem) IsCatalog() bool { return li.Kind == KindCatalog }

// LineTotal is Price x Quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) clone() LineItem {
	if li.Additions != nil {
		li.Additions = append([]Addition(nil), li.Additions...)
	}
	return li
}

type DiscountScope string

const (
	ScopeAllItems   DiscountScope = "all_items"
	ScopeProductSet DiscountScope = "product_set"
)

type Discount struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	ProductIDs []string        `json:"product_ids,omitempty"`
}

// Scope is AllItems unless the discount names a product set.
func (d Discount) Scope() DiscountScope {
	if len(d.ProductIDs) > 0 {
		return ScopeProductSet
	}
	return ScopeAllItems
}

func (d Discount) covers(productID string) bool {
	for _, id := range d.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// PaymentDetail is only populated for cash payments.
type PaymentDetail struct {
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
}

type Session struct {
	ID            string          `json:"id"`
	Slot          int             `json:"slot"`
	Label         string          `json:"label"`
	Items         []LineItem      `json:"items"`
	Comment       string          `json:"comment"`
	Discount      *Discount       `json:"discount,omitempty"`
	Status        Status          `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	PaymentDetail *PaymentDetail  `json:"payment_detail,omitempty"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

// Clone returns a deep copy safe to hand out of the registry.
func (s *Session) Clone() Session {
	out := *s
	out.Items = make([]LineItem, len(s.Items))
	for i, it := range s.Items {
		out.Items[i] = it.clone()
	}
	if s.Discount != nil {
		d := *s.Discount
		d.ProductIDs = append([]string(nil), s.Discount.ProductIDs...)
		out.Discount = &d
	}
	if s.PaymentDetail != nil {
		pd := *s.PaymentDetail
		out.PaymentDetail = &pd
	}
	return out
}

// Draft is the snapshot of an Active session written by the draft synchronizer.
type Draft struct {
	Items    []LineItem      `json:"items"`
	Comment  string          `json:"comment"`
	Discount *Discount       `json:"discount,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Completion is written once when a session becomes Completed.
type Completion struct {
	CompletedAt    time.Time       `json:"completed_at"`
	Items          []LineItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	PaymentDetail  *PaymentDetail  `json:"payment_detail,omitempty"`
}

func TableLabel(slot int) string {
	return "Table " + strconv.Itoa(slot)
}
