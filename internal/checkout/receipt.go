package checkout

import (
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/shopspring/decimal"
)

// Receipt is the payload handed to the printing collaborator.
type Receipt struct {
	SessionID          string               `json:"session_id"`
	Label              string               `json:"label"`
	Items              []ReceiptLine        `json:"items"`
	Comment            string               `json:"comment,omitempty"`
	Subtotal           decimal.Decimal      `json:"subtotal"`
	DiscountCode       string               `json:"discount_code,omitempty"`
	DiscountPercentage decimal.Decimal      `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal      `json:"discount_amount"`
	Total              decimal.Decimal      `json:"total"`
	PaymentMethod      orders.PaymentMethod `json:"payment_method"`
	Tendered           *decimal.Decimal     `json:"tendered,omitempty"`
	Change             *decimal.Decimal     `json:"change,omitempty"`
	CompletedAt        time.Time            `json:"completed_at"`
}

type ReceiptLine struct {
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	Price     decimal.Decimal   `json:"price"`
	Additions []orders.Addition `json:"additions,omitempty"`
	LineTotal decimal.Decimal   `json:"line_total"`
}

func buildReceipt(s orders.Session, e orders.Effect, c orders.Completion) Receipt {
	r := Receipt{
		SessionID:      s.ID,
		Label:          s.Label,
		Items:          make([]ReceiptLine, 0, len(c.Items)),
		Comment:        s.Comment,
		Subtotal:       e.Subtotal,
		DiscountAmount: e.DiscountAmount,
		Total:          e.Total,
		PaymentMethod:  c.PaymentMethod,
		CompletedAt:    c.CompletedAt,
	}
	for _, it := range c.Items {
		r.Items = append(r.Items, ReceiptLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Additions: it.Additions,
			LineTotal: it.LineTotal(),
		})
	}
	if s.Discount != nil {
		r.DiscountCode = s.Discount.Code
		r.DiscountPercentage = s.Discount.Percentage
	}
	if pd := c.PaymentDetail; pd != nil {
		tendered, change := pd.Tendered, pd.Change
		r.Tendered, r.Change = &tendered, &change
	}
	return r
}
