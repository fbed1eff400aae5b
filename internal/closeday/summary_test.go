package closeday

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func complete(t *testing.T, st *orders.MemStore, id string, at time.Time, method orders.PaymentMethod, total int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.CreateSession(ctx, orders.Session{ID: id, Slot: 1, Status: orders.StatusActive}))
	require.NoError(t, st.WriteSessionCompletion(ctx, id, orders.Completion{
		CompletedAt:   at,
		Items:         []orders.LineItem{{Kind: orders.KindCustom, Name: "Cake", Quantity: 2, Price: decimal.NewFromInt(total / 2)}},
		Total:         decimal.NewFromInt(total),
		PaymentMethod: method,
	}))
}

func TestSummarize(t *testing.T) {
	st := orders.NewMemStore()
	day := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	complete(t, st, "a", time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), orders.PaymentCash, 7650)
	complete(t, st, "b", time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC), orders.PaymentTransfer, 1000)
	complete(t, st, "c", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), orders.PaymentCash, 2350)
	complete(t, st, "next-day", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), orders.PaymentCash, 999)
	require.NoError(t, st.CreateSession(context.Background(), orders.Session{ID: "open", Slot: 2, Status: orders.StatusActive}))

	sum, err := Summarize(context.Background(), st, day)
	require.NoError(t, err)

	assert.Equal(t, "2026-10-19", sum.Day)
	assert.Equal(t, 3, sum.Sales)
	assert.Equal(t, "11000", sum.Total.String())
	assert.Equal(t, 2, sum.ByMethod[orders.PaymentCash].Sales)
	assert.Equal(t, "10000", sum.ByMethod[orders.PaymentCash].Total.String())
	assert.Equal(t, "1000", sum.ByMethod[orders.PaymentTransfer].Total.String())
	assert.Equal(t, 6, sum.Products["Cake"])
}

type failing struct{}

func (failing) ListCompletedSessions(context.Context, time.Time, time.Time) ([]orders.Session, error) {
	return nil, errors.New("down")
}

func TestSummarize_StoreError(t *testing.T) {
	_, err := Summarize(context.Background(), failing{}, time.Now())
	assert.Equal(t, orders.KindPersistence, orders.KindOf(err))
}
