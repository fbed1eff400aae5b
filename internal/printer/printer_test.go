package printer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/checkout"
	kafkax "github.com/ariefcatur/go-pos-tables/internal/kafka"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/sebdah/goldie/v2"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func receipt() checkout.Receipt {
	tendered, change := dec(10000), dec(2350)
	return checkout.Receipt{
		SessionID: "s1",
		Label:     "Table 1",
		Items: []checkout.ReceiptLine{
			// the cheese is already part of the 2500 unit price
			{Name: "Sandwich", Quantity: 3, Price: dec(2500), LineTotal: dec(7500),
				Additions: []orders.Addition{{Name: "Cheese", PriceDelta: dec(300)}}},
			{Name: "Cake", Quantity: 1, Price: dec(1000), LineTotal: dec(1000)},
		},
		Comment:            "no onions",
		Subtotal:           dec(8500),
		DiscountCode:       "10OFF",
		DiscountPercentage: dec(10),
		DiscountAmount:     dec(850),
		Total:              dec(7650),
		PaymentMethod:      orders.PaymentCash,
		Tendered:           &tendered,
		Change:             &change,
		CompletedAt:        time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "receipt_cash", []byte(Render(receipt())))
}

func message(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	env, err := orders.NewEnvelope(eventType, "test", "s1", payload, time.Now())
	require.NoError(t, err)
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandle(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, nil)

	require.NoError(t, p.Handle(context.Background(), message(t, orders.EventSaleCompleted, receipt())))
	assert.Contains(t, out.String(), "Table 1")
	assert.Contains(t, out.String(), "Change")

	out.Reset()
	require.NoError(t, p.Handle(context.Background(), message(t, orders.EventSessionOpened, map[string]string{})))
	assert.Empty(t, out.String())

	assert.Error(t, p.Handle(context.Background(), kafkago.Message{Value: []byte("{")}))
}
