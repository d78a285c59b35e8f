package repository

import (
	"context"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)
}

type SupplierRepository interface {
	CreateSupplier(ctx context.Context, supplier *domain.Supplier) error
	GetSupplier(ctx context.Context, ownerID, id int64) (domain.Supplier, error)
	GetSupplierByName(ctx context.Context, ownerID int64, name string) (domain.Supplier, error)
	ListSuppliers(ctx context.Context, ownerID int64) ([]domain.Supplier, error)
}

type StockRepository interface {
	GetStockItem(ctx context.Context, ownerID, id int64) (domain.StockItem, error)
	// FindStockItemByKey returns domain.ErrNotFound when no record carries key.
	FindStockItemByKey(ctx context.Context, key domain.StockKey) (domain.StockItem, error)
	ListStockItems(ctx context.Context, ownerID int64) ([]domain.StockItem, error)
	CreateStockItem(ctx context.Context, item *domain.StockItem) error
	UpdateStockItem(ctx context.Context, item *domain.StockItem) error
	DeleteStockItem(ctx context.Context, ownerID, id int64) error
	// DecrementStock lowers quantity only when at least qty units remain.
	// It returns domain.ErrInsufficientStock otherwise and leaves the row untouched.
	DecrementStock(ctx context.Context, ownerID, id int64, qty int) error
}

// Queries is the full set of reads and writes, usable inside or outside a transaction.
type Queries interface {
	AccountRepository
	SupplierRepository
	StockRepository
}

// Store hands out transactions. fn's writes land together or not at all.
type Store interface {
	Queries
	WithTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
	Close() error
}
