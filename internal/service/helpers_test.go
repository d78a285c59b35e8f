package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store     *memory.Store
	accounts  *AccountService
	suppliers *SupplierService
	stock     *StockService
	owner     domain.Account
	supplier  domain.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &fixture{
		store:     store,
		accounts:  NewAccountService(store),
		suppliers: NewSupplierService(store),
		stock:     NewStockService(store),
	}
	f.accounts.cost = bcrypt.MinCost

	owner, err := f.accounts.Signup(ctx, Credentials{Username: "asha", Password: "secret"})
	require.NoError(t, err)
	f.owner = owner

	supplier, err := f.suppliers.AddSupplier(ctx, owner.ID, SupplierInput{Name: "Metro Wholesale", Phone: "98765 43210"})
	require.NoError(t, err)
	f.supplier = supplier
	return f
}

func (f *fixture) addItem(t *testing.T, name string, qty int, price, gst, supplierPrice string) domain.StockItem {
	t.Helper()
	item, _, err := f.stock.AddOrMergeStock(context.Background(), f.owner.ID, StockInput{
		SupplierID:    f.supplier.ID,
		Name:          name,
		Quantity:      qty,
		Price:         dec(price),
		GSTPercent:    dec(gst),
		SupplierPrice: dec(supplierPrice),
	})
	require.NoError(t, err)
	return item
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}
