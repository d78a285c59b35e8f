package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

func TestAddOrMergeStockMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.stock.AddOrMergeStock(ctx, f.owner.ID, StockInput{
		SupplierID: f.supplier.ID, Name: "Rice", Quantity: 5,
		Price: dec("100"), GSTPercent: dec("5"), SupplierPrice: dec("80"),
	})
	require.NoError(t, err)
	assert.True(t, created)

	merged, created, err := f.stock.AddOrMergeStock(ctx, f.owner.ID, StockInput{
		SupplierID: f.supplier.ID, Name: `"Rice"`, Quantity: 3,
		Price: dec("100.001"), GSTPercent: dec("5.00"), SupplierPrice: dec("82.5"),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 8, merged.Quantity)
	assert.True(t, merged.SupplierPrice.Equal(dec("82.50")))

	items, err := f.stock.ListStock(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].Quantity)
	assert.Equal(t, "Metro Wholesale", items[0].SupplierName)
}

func TestAddOrMergeStockDifferentKeyCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := f.addItem(t, "Rice", 5, "100", "5", "80")
	other := f.addItem(t, "Rice", 5, "100", "12", "80")
	cheaper := f.addItem(t, "Rice", 5, "90", "5", "80")

	assert.NotEqual(t, base.ID, other.ID)
	assert.NotEqual(t, base.ID, cheaper.ID)

	items, err := f.stock.ListStock(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestAddOrMergeStockPrefersLowestIDOnCollision(t *testing.T) {
	for range 20 {
		f := newFixture(t)
		ctx := context.Background()

		a := f.addItem(t, "Rice", 5, "10", "5", "8")
		b := f.addItem(t, "Rice", 7, "20", "5", "8")
		require.Less(t, a.ID, b.ID)

		_, changed, err := f.stock.EditStock(ctx, f.owner.ID, StockEdit{ItemID: b.ID, Price: ptr(dec("10"))})
		require.NoError(t, err)
		require.True(t, changed)

		merged := f.addItem(t, "Rice", 1, "10", "5", "9")
		assert.Equal(t, a.ID, merged.ID)
		assert.Equal(t, 6, merged.Quantity)

		other, err := f.stock.GetStock(ctx, f.owner.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, other.Quantity)
	}
}

func TestAddOrMergeStockRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := StockInput{SupplierID: f.supplier.ID, Name: "Tea", Quantity: 1, Price: dec("10"), GSTPercent: dec("5"), SupplierPrice: dec("8")}

	bad := valid
	bad.GSTPercent = dec("7")
	_, _, err := f.stock.AddOrMergeStock(ctx, f.owner.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = valid
	bad.Quantity = 0
	_, _, err = f.stock.AddOrMergeStock(ctx, f.owner.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = valid
	bad.Price = dec("-1")
	_, _, err = f.stock.AddOrMergeStock(ctx, f.owner.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = valid
	bad.Name = `""`
	_, _, err = f.stock.AddOrMergeStock(ctx, f.owner.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	other, err := f.accounts.Signup(ctx, Credentials{Username: "ravi", Password: "pw"})
	require.NoError(t, err)
	_, _, err = f.stock.AddOrMergeStock(ctx, other.ID, valid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, err := f.stock.ListStock(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEditStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.addItem(t, "Oil", 4, "150", "5", "120")

	edited, changed, err := f.stock.EditStock(ctx, f.owner.ID, StockEdit{ItemID: item.ID, Price: ptr(dec("155.555"))})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, edited.Price.Equal(dec("155.56")))
	assert.Equal(t, 4, edited.Quantity)

	_, changed, err = f.stock.EditStock(ctx, f.owner.ID, StockEdit{ItemID: item.ID, Quantity: ptr(4)})
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = f.stock.EditStock(ctx, f.owner.ID, StockEdit{ItemID: item.ID, GSTPercent: ptr(dec("7"))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = f.stock.EditStock(ctx, f.owner.ID, StockEdit{ItemID: item.ID, Quantity: ptr(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.stock.GetStock(ctx, f.owner.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, got.GSTPercent.Equal(dec("5")))
}

func TestPlanAndApplyEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oil := f.addItem(t, "Oil", 4, "150", "5", "120")
	tea := f.addItem(t, "Tea", 10, "40", "5", "30")
	salt := f.addItem(t, "Salt", 10, "20", "0", "15")

	plan, err := f.stock.PlanEdits(ctx, f.owner.ID, []StockEdit{
		{ItemID: oil.ID, Quantity: ptr(10)},
		{ItemID: tea.ID, GSTPercent: ptr(dec("7"))},
		{ItemID: salt.ID, Quantity: ptr(10)},
		{ItemID: 999, Quantity: ptr(1)},
		{ItemID: oil.ID, Quantity: ptr(11)},
		{ItemID: salt.ID + 1000, Price: ptr(dec("-1"))},
	})
	require.NoError(t, err)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, oil.ID, plan.Changes[0].After.ID)

	reasons := map[int64]string{}
	for _, s := range plan.Skipped {
		if _, ok := reasons[s.ID]; !ok {
			reasons[s.ID] = s.Reason
		}
	}
	assert.Contains(t, reasons[tea.ID], "not an allowed slab")
	assert.Equal(t, SkipUnchanged, reasons[salt.ID])
	assert.Equal(t, SkipNotFound, reasons[999])
	assert.Equal(t, SkipDuplicate, reasons[oil.ID])

	require.NoError(t, f.stock.ApplyEdits(ctx, plan))
	got, err := f.stock.GetStock(ctx, f.owner.ID, oil.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
}

func TestApplyEditsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oil := f.addItem(t, "Oil", 4, "150", "5", "120")
	tea := f.addItem(t, "Tea", 10, "40", "5", "30")

	plan, err := f.stock.PlanEdits(ctx, f.owner.ID, []StockEdit{
		{ItemID: oil.ID, Quantity: ptr(1)},
		{ItemID: tea.ID, Quantity: ptr(2)},
	})
	require.NoError(t, err)
	require.Len(t, plan.Changes, 2)

	require.NoError(t, f.stock.DeleteStock(ctx, f.owner.ID, tea.ID))

	err = f.stock.ApplyEdits(ctx, plan)
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.stock.GetStock(ctx, f.owner.ID, oil.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
}

func TestDeleteStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.addItem(t, "Oil", 4, "150", "5", "120")

	other, err := f.accounts.Signup(ctx, Credentials{Username: "ravi", Password: "pw"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.stock.DeleteStock(ctx, other.ID, item.ID), domain.ErrNotFound)

	require.NoError(t, f.stock.DeleteStock(ctx, f.owner.ID, item.ID))
	assert.ErrorIs(t, f.stock.DeleteStock(ctx, f.owner.ID, item.ID), domain.ErrNotFound)
}

func TestDecrementStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.addItem(t, "Oil", 4, "150", "5", "120")

	err := f.stock.DecrementStock(ctx, f.owner.ID, item.ID, 5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	got, err := f.stock.GetStock(ctx, f.owner.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)

	assert.ErrorIs(t, f.stock.DecrementStock(ctx, f.owner.ID, item.ID, 0), domain.ErrValidation)

	require.NoError(t, f.stock.DecrementStock(ctx, f.owner.ID, item.ID, 4))
	got, err = f.stock.GetStock(ctx, f.owner.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}
