// Package closeday totals the completed sales of one business day.
package closeday

import (
	"context"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/shopspring/decimal"
)

type Lister interface {
	ListCompletedSessions(ctx context.Context, from, to time.Time) ([]orders.Session, error)
}

type MethodTotal struct {
	Sales int             `json:"sales"`
	Total decimal.Decimal `json:"total"`
}

type Summary struct {
	Day      string                               `json:"day"`
	From     time.Time                            `json:"from"`
	To       time.Time                            `json:"to"`
	Sales    int                                  `json:"sales"`
	Total    decimal.Decimal                      `json:"total"`
	ByMethod map[orders.PaymentMethod]MethodTotal `json:"by_method"`
	Products map[string]int                       `json:"products_sold"`
}

// Summarize covers [midnight, next midnight) of day in day's location.
func Summarize(ctx context.Context, src Lister, day time.Time) (Summary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	sessions, err := src.ListCompletedSessions(ctx, from, to)
	if err != nil {
		return Summary{}, orders.WrapPersistence("list completed sessions", err)
	}

	sum := Summary{
		Day:   from.Format(time.DateOnly),
		From:  from,
		To:    to,
		Total: decimal.Zero,
		ByMethod: map[orders.PaymentMethod]MethodTotal{
			orders.PaymentCash:     {Total: decimal.Zero},
			orders.PaymentTransfer: {Total: decimal.Zero},
		},
		Products: map[string]int{},
	}
	for _, s := range sessions {
		sum.Sales++
		sum.Total = sum.Total.Add(s.Total)
		m := sum.ByMethod[s.PaymentMethod]
		m.Sales++
		m.Total = m.Total.Add(s.Total)
		sum.ByMethod[s.PaymentMethod] = m
		for _, it := range s.Items {
			sum.Products[it.Name] += it.Quantity
		}
	}
	return sum, nil
}
