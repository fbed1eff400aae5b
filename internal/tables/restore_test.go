package tables

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_RehydratesAgainstCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.CreateSession(ctx, orders.Session{
		ID: "old", Slot: 4, Label: "Table 4", Status: orders.StatusActive, CreatedAt: time.Now(),
		Items: []orders.LineItem{
			{Kind: orders.KindCatalog, ProductID: "p-sandwich", Name: "Sandwich", Quantity: 2, Price: dec(2000),
				Additions: []orders.Addition{{Name: "Cheese", PriceDelta: dec(300)}}},
			{Kind: orders.KindCatalog, ProductID: "p-juice", Name: "Juice", Quantity: 1, Price: dec(900), PriceOverridden: true},
			{Kind: orders.KindCatalog, ProductID: "p-retired", Name: "Retired", Quantity: 1, Price: dec(100)},
			{Kind: orders.KindCustom, Name: "Cake", Quantity: 1, Price: dec(1000)},
		},
	}))
	require.NoError(t, f.store.CreateSession(ctx, orders.Session{
		ID: "clash", Slot: 4, Status: orders.StatusActive, CreatedAt: time.Now().Add(time.Minute),
	}))

	n, err := f.reg.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := f.reg.Select("old")
	require.NoError(t, err)
	require.Len(t, s.Items, 3)
	assert.Equal(t, "2800", s.Items[0].Price.String())
	assert.Equal(t, 5, s.Items[0].StockAtSelection)
	assert.Equal(t, "900", s.Items[1].Price.String())
	assert.Equal(t, orders.KindCustom, s.Items[2].Kind)

	_, err = f.reg.Open(ctx, 4)
	assert.ErrorIs(t, err, orders.ErrSlotOccupied)
}
