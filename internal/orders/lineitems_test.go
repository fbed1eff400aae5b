package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newActive() *Session {
	return &Session{ID: "s1", Slot: 1, Label: TableLabel(1), Status: StatusActive}
}

func coffee(stock int) Product {
	return Product{ID: "p-coffee", Name: "Coffee", Price: dec(2500), Stock: stock}
}

func TestAddCatalogItem_AppendsThenIncrements(t *testing.T) {
	s := newActive()

	require.NoError(t, s.AddCatalogItem(coffee(5)))
	require.NoError(t, s.AddCatalogItem(coffee(5)))

	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.True(t, s.Items[0].Price.Equal(dec(2500)))
	assert.Equal(t, KindCatalog, s.Items[0].Kind)
	assert.Equal(t, 5, s.Items[0].StockAtSelection)
}

func TestAddCatalogItem_RejectsOverStockWithoutMutation(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(2)))
	require.NoError(t, s.AddCatalogItem(coffee(2)))
	before := s.Clone()

	err := s.AddCatalogItem(coffee(2))

	var se *InsufficientStockError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Items, 1)
	assert.Equal(t, 2, se.Items[0].Available)
	assert.Equal(t, 3, se.Items[0].Requested)
	assert.Equal(t, before, s.Clone())

	// a second rejection is identical
	err = s.AddCatalogItem(coffee(2))
	assert.True(t, IsStockError(err))
	assert.Equal(t, before, s.Clone())
}

func TestAddCatalogItem_OutOfStockProduct(t *testing.T) {
	s := newActive()
	err := s.AddCatalogItem(coffee(0))
	assert.Equal(t, KindStock, KindOf(err))
	assert.Empty(t, s.Items)
}

func TestAddCustomItem_Validation(t *testing.T) {
	s := newActive()

	assert.ErrorIs(t, s.AddCustomItem("", dec(100)), ErrInvalidInput)
	assert.ErrorIs(t, s.AddCustomItem("  ", dec(100)), ErrInvalidInput)
	assert.ErrorIs(t, s.AddCustomItem("Cake", dec(0)), ErrInvalidInput)
	assert.ErrorIs(t, s.AddCustomItem("Cake", dec(-5)), ErrInvalidInput)
	assert.Empty(t, s.Items)

	require.NoError(t, s.AddCustomItem("Cake", dec(1000)))
	require.Len(t, s.Items, 1)
	assert.Equal(t, KindCustom, s.Items[0].Kind)
	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.Empty(t, s.Items[0].ProductID)
}

func TestSetQuantity(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(2)))
	require.NoError(t, s.AddCustomItem("Cake", dec(1000)))

	t.Run("over stock keeps previous quantity", func(t *testing.T) {
		err := s.SetQuantity(0, 3, 2)
		assert.True(t, IsStockError(err))
		assert.Equal(t, 1, s.Items[0].Quantity)
	})

	t.Run("clamps to one", func(t *testing.T) {
		require.NoError(t, s.SetQuantity(0, 0, 2))
		assert.Equal(t, 1, s.Items[0].Quantity)
		require.NoError(t, s.SetQuantity(1, -4, 0))
		assert.Equal(t, 1, s.Items[1].Quantity)
	})

	t.Run("custom items ignore stock", func(t *testing.T) {
		require.NoError(t, s.SetQuantity(1, 40, 0))
		assert.Equal(t, 40, s.Items[1].Quantity)
	})

	t.Run("bad index", func(t *testing.T) {
		assert.ErrorIs(t, s.SetQuantity(7, 1, 10), ErrLineIndex)
	})
}

func TestSetPrice(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(3)))
	require.NoError(t, s.AddCustomItem("Cake", dec(1000)))

	require.NoError(t, s.SetPrice(0, dec(2000)))
	assert.True(t, s.Items[0].Price.Equal(dec(2000)))
	assert.True(t, s.Items[0].PriceOverridden)

	require.NoError(t, s.SetPrice(0, dec(-10)))
	assert.True(t, s.Items[0].Price.IsZero())

	require.NoError(t, s.SetPrice(1, dec(1200)))
	assert.False(t, s.Items[1].PriceOverridden)
}

func TestAdditions(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(3)))

	assert.ErrorIs(t, s.AddAddition(0, "Milk", dec(0)), ErrInvalidInput)
	require.NoError(t, s.AddAddition(0, "Milk", dec(300)))
	require.NoError(t, s.AddAddition(0, "Syrup", dec(200)))
	assert.True(t, s.Items[0].Price.Equal(dec(3000)))
	require.Len(t, s.Items[0].Additions, 2)

	require.NoError(t, s.RemoveAddition(0, 0))
	assert.True(t, s.Items[0].Price.Equal(dec(2700)))
	require.Len(t, s.Items[0].Additions, 1)
	assert.Equal(t, "Syrup", s.Items[0].Additions[0].Name)

	assert.ErrorIs(t, s.RemoveAddition(0, 3), ErrLineIndex)
}

func TestRemoveAddition_NeverNegative(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(3)))
	require.NoError(t, s.AddAddition(0, "Milk", dec(300)))
	require.NoError(t, s.SetPrice(0, dec(100)))

	require.NoError(t, s.RemoveAddition(0, 0))
	assert.True(t, s.Items[0].Price.IsZero())
}

func TestRemoveLineItem(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(3)))
	require.NoError(t, s.AddCustomItem("Cake", dec(1000)))

	require.NoError(t, s.RemoveLineItem(0))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Cake", s.Items[0].Name)
	assert.ErrorIs(t, s.RemoveLineItem(4), ErrLineIndex)
}

func TestMutationsRequireActive(t *testing.T) {
	for _, st := range []Status{StatusValidating, StatusCommitting, StatusCompleted, StatusDeleted} {
		s := newActive()
		s.Status = st
		assert.ErrorIs(t, s.AddCatalogItem(coffee(3)), ErrSessionNotActive, st)
		assert.ErrorIs(t, s.AddCustomItem("Cake", dec(10)), ErrSessionNotActive, st)
		assert.ErrorIs(t, s.SetComment("x"), ErrSessionNotActive, st)
	}
}

func TestAttachDiscount_RequiresRemoval(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AttachDiscount(Discount{Code: "10OFF", Percentage: dec(10)}))

	err := s.AttachDiscount(Discount{Code: "20OFF", Percentage: dec(20)})
	assert.ErrorIs(t, err, ErrDiscountAlreadyApplied)
	assert.Equal(t, "10OFF", s.Discount.Code)

	require.NoError(t, s.RemoveDiscount())
	require.NoError(t, s.AttachDiscount(Discount{Code: "20OFF", Percentage: dec(20)}))
	assert.Equal(t, "20OFF", s.Discount.Code)
}

func TestDraft_IsDeepCopy(t *testing.T) {
	s := newActive()
	require.NoError(t, s.AddCatalogItem(coffee(3)))
	require.NoError(t, s.AddAddition(0, "Milk", dec(300)))
	require.NoError(t, s.SetComment("no sugar"))

	d := s.Draft()
	d.Items[0].Additions[0].Name = "changed"

	assert.Equal(t, "Milk", s.Items[0].Additions[0].Name)
	assert.Equal(t, "no sugar", d.Comment)
	assert.True(t, d.Subtotal.Equal(dec(2800)))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusActive, StatusValidating))
	assert.True(t, CanTransition(StatusValidating, StatusActive))
	assert.True(t, CanTransition(StatusCommitting, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusActive))
	assert.False(t, CanTransition(StatusDeleted, StatusActive))
	assert.False(t, CanTransition(StatusActive, StatusCompleted))
}
