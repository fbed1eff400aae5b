// Package printer is the receipt printing collaborator. It consumes
// SaleCompleted events and renders them as plain text.
package printer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ariefcatur/go-pos-tables/internal/checkout"
	kafkax "github.com/ariefcatur/go-pos-tables/internal/kafka"
	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type Printer struct {
	Out   io.Writer
	Redis *redis.Client // optional; dedups redelivered events

	mu  sync.Mutex
	log zerolog.Logger
}

func New(out io.Writer, rdb *redis.Client) *Printer {
	return &Printer{Out: out, Redis: rdb, log: logx.Component("printer")}
}

// Handle is a kafka handler for the sale-completed topic.
func (p *Printer) Handle(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		return err
	}
	if env.EventType != orders.EventSaleCompleted {
		return nil
	}

	// 2) dedup by event id
	if p.Redis != nil {
		key := fmt.Sprintf(redisx.KeyPrinted, env.EventID)
		fresh, err := p.Redis.SetNX(ctx, key, "1", redisx.TTLPrinted).Result()
		if err != nil {
			p.log.Warn().Err(err).Str("event_id", env.EventID).Msg("dedup check failed, printing anyway")
		} else if !fresh {
			return nil
		}
	}

	// 3) render
	r, err := kafkax.UnwrapPayload[checkout.Receipt](env.Payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = io.WriteString(p.Out, Render(r))
	return err
}

const width = 32

// Render lays a receipt out for a narrow thermal printer.
func Render(r checkout.Receipt) string {
	var b strings.Builder
	rule := strings.Repeat("-", width) + "\n"

	b.WriteString(center(r.Label))
	b.WriteString(center(r.CompletedAt.Format("2006-01-02 15:04")))
	b.WriteString(rule)
	for _, it := range r.Items {
		b.WriteString(it.Name + "\n")
		b.WriteString(row(fmt.Sprintf("  %d x %s", it.Quantity, it.Price.StringFixed(0)), it.LineTotal.StringFixed(0)))
		for _, a := range it.Additions {
			b.WriteString("  + " + a.Name + "\n")
		}
	}
	b.WriteString(rule)
	b.WriteString(row("Subtotal", r.Subtotal.StringFixed(0)))
	if r.DiscountCode != "" {
		b.WriteString(row(fmt.Sprintf("Disc %s (%s%%)", r.DiscountCode, r.DiscountPercentage.String()), "-"+r.DiscountAmount.StringFixed(0)))
	}
	b.WriteString(row("TOTAL", r.Total.StringFixed(0)))
	b.WriteString(row("Paid by", strings.ToUpper(string(r.PaymentMethod))))
	if r.Tendered != nil && r.Change != nil {
		b.WriteString(row("Cash", r.Tendered.StringFixed(0)))
		b.WriteString(row("Change", r.Change.StringFixed(0)))
	}
	if r.Comment != "" {
		b.WriteString(rule)
		b.WriteString(r.Comment + "\n")
	}
	b.WriteString(rule + "\n")
	return b.String()
}

func row(left, right string) string {
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right + "\n"
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s + "\n"
}
