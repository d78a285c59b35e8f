// Package memory keeps every record in process memory. Transactions work on
// a copy of the state that replaces the live state only when fn succeeds.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
)

type state struct {
	nextAccountID  int64
	nextSupplierID int64
	nextStockID    int64
	accounts       map[int64]domain.Account
	suppliers      map[int64]domain.Supplier
	stock          map[int64]domain.StockItem
}

func newState() *state {
	return &state{
		accounts:  make(map[int64]domain.Account),
		suppliers: make(map[int64]domain.Supplier),
		stock:     make(map[int64]domain.StockItem),
	}
}

func (s *state) clone() *state {
	return &state{
		nextAccountID:  s.nextAccountID,
		nextSupplierID: s.nextSupplierID,
		nextStockID:    s.nextStockID,
		accounts:       maps.Clone(s.accounts),
		suppliers:      maps.Clone(s.suppliers),
		stock:          maps.Clone(s.stock),
	}
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

var _ repository.Store = (*Store)(nil)

// WithTx serializes transactions. fn must use q, not the Store, for its reads
// and writes.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, q repository.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return domain.StoreFailure("begin transaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &queries{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) run(fn func(q *queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&queries{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	return s.run(func(q *queries) error { return q.CreateAccount(ctx, account) })
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (a domain.Account, err error) {
	err = s.run(func(q *queries) error {
		a, err = q.GetAccountByUsername(ctx, username)
		return err
	})
	return a, err
}

func (s *Store) CreateSupplier(ctx context.Context, supplier *domain.Supplier) error {
	return s.run(func(q *queries) error { return q.CreateSupplier(ctx, supplier) })
}

func (s *Store) GetSupplier(ctx context.Context, ownerID, id int64) (sup domain.Supplier, err error) {
	err = s.run(func(q *queries) error {
		sup, err = q.GetSupplier(ctx, ownerID, id)
		return err
	})
	return sup, err
}

func (s *Store) GetSupplierByName(ctx context.Context, ownerID int64, name string) (sup domain.Supplier, err error) {
	err = s.run(func(q *queries) error {
		sup, err = q.GetSupplierByName(ctx, ownerID, name)
		return err
	})
	return sup, err
}

func (s *Store) ListSuppliers(ctx context.Context, ownerID int64) (list []domain.Supplier, err error) {
	err = s.run(func(q *queries) error {
		list, err = q.ListSuppliers(ctx, ownerID)
		return err
	})
	return list, err
}

func (s *Store) GetStockItem(ctx context.Context, ownerID, id int64) (item domain.StockItem, err error) {
	err = s.run(func(q *queries) error {
		item, err = q.GetStockItem(ctx, ownerID, id)
		return err
	})
	return item, err
}

func (s *Store) FindStockItemByKey(ctx context.Context, key domain.StockKey) (item domain.StockItem, err error) {
	err = s.run(func(q *queries) error {
		item, err = q.FindStockItemByKey(ctx, key)
		return err
	})
	return item, err
}

func (s *Store) ListStockItems(ctx context.Context, ownerID int64) (list []domain.StockItem, err error) {
	err = s.run(func(q *queries) error {
		list, err = q.ListStockItems(ctx, ownerID)
		return err
	})
	return list, err
}

func (s *Store) CreateStockItem(ctx context.Context, item *domain.StockItem) error {
	return s.run(func(q *queries) error { return q.CreateStockItem(ctx, item) })
}

func (s *Store) UpdateStockItem(ctx context.Context, item *domain.StockItem) error {
	return s.run(func(q *queries) error { return q.UpdateStockItem(ctx, item) })
}

func (s *Store) DeleteStockItem(ctx context.Context, ownerID, id int64) error {
	return s.run(func(q *queries) error { return q.DeleteStockItem(ctx, ownerID, id) })
}

func (s *Store) DecrementStock(ctx context.Context, ownerID, id int64, qty int) error {
	return s.run(func(q *queries) error { return q.DecrementStock(ctx, ownerID, id, qty) })
}

type queries struct {
	st  *state
	now func() time.Time
}

func (q *queries) CreateAccount(_ context.Context, account *domain.Account) error {
	for _, a := range q.st.accounts {
		if a.Username == account.Username {
			return fmt.Errorf("%w: username %q", domain.ErrDuplicate, account.Username)
		}
	}
	q.st.nextAccountID++
	account.ID = q.st.nextAccountID
	account.CreatedAt = q.now()
	q.st.accounts[account.ID] = *account
	return nil
}

func (q *queries) GetAccountByUsername(_ context.Context, username string) (domain.Account, error) {
	for _, a := range q.st.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return domain.Account{}, domain.NotFound("account", username)
}

func (q *queries) CreateSupplier(_ context.Context, supplier *domain.Supplier) error {
	if _, ok := q.st.accounts[supplier.OwnerID]; !ok {
		return domain.NotFound("account", supplier.OwnerID)
	}
	for _, s := range q.st.suppliers {
		if s.OwnerID == supplier.OwnerID && s.Name == supplier.Name {
			return fmt.Errorf("%w: supplier %q", domain.ErrDuplicate, supplier.Name)
		}
	}
	q.st.nextSupplierID++
	supplier.ID = q.st.nextSupplierID
	supplier.CreatedAt = q.now()
	q.st.suppliers[supplier.ID] = *supplier
	return nil
}

func (q *queries) GetSupplier(_ context.Context, ownerID, id int64) (domain.Supplier, error) {
	s, ok := q.st.suppliers[id]
	if !ok || s.OwnerID != ownerID {
		return domain.Supplier{}, domain.NotFound("supplier", id)
	}
	return s, nil
}

func (q *queries) GetSupplierByName(_ context.Context, ownerID int64, name string) (domain.Supplier, error) {
	for _, s := range q.st.suppliers {
		if s.OwnerID == ownerID && s.Name == name {
			return s, nil
		}
	}
	return domain.Supplier{}, domain.NotFound("supplier", name)
}

func (q *queries) ListSuppliers(_ context.Context, ownerID int64) ([]domain.Supplier, error) {
	var out []domain.Supplier
	for _, s := range q.st.suppliers {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Supplier) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (q *queries) GetStockItem(_ context.Context, ownerID, id int64) (domain.StockItem, error) {
	item, ok := q.st.stock[id]
	if !ok || item.OwnerID != ownerID {
		return domain.StockItem{}, domain.NotFound("stock item", id)
	}
	return q.withSupplierName(item), nil
}

// FindStockItemByKey returns the lowest-id record matching key, as the
// postgres store does.
func (q *queries) FindStockItemByKey(_ context.Context, key domain.StockKey) (domain.StockItem, error) {
	var found *domain.StockItem
	for _, item := range q.st.stock {
		if !item.Key().Matches(key) {
			continue
		}
		if found == nil || item.ID < found.ID {
			found = &item
		}
	}
	if found == nil {
		return domain.StockItem{}, domain.NotFound("stock item", key.Name)
	}
	return q.withSupplierName(*found), nil
}

func (q *queries) ListStockItems(_ context.Context, ownerID int64) ([]domain.StockItem, error) {
	var out []domain.StockItem
	for _, item := range q.st.stock {
		if item.OwnerID == ownerID {
			out = append(out, q.withSupplierName(item))
		}
	}
	slices.SortFunc(out, func(a, b domain.StockItem) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (q *queries) CreateStockItem(_ context.Context, item *domain.StockItem) error {
	if err := q.checkStock(item); err != nil {
		return err
	}
	q.st.nextStockID++
	now := q.now()
	item.ID = q.st.nextStockID
	item.CreatedAt = now
	item.UpdatedAt = now
	item.SupplierName = ""
	q.st.stock[item.ID] = *item
	return nil
}

func (q *queries) UpdateStockItem(_ context.Context, item *domain.StockItem) error {
	current, ok := q.st.stock[item.ID]
	if !ok || current.OwnerID != item.OwnerID {
		return domain.NotFound("stock item", item.ID)
	}
	if err := q.checkStock(item); err != nil {
		return err
	}
	item.UpdatedAt = q.now()
	stored := *item
	stored.SupplierName = ""
	q.st.stock[item.ID] = stored
	return nil
}

func (q *queries) DeleteStockItem(_ context.Context, ownerID, id int64) error {
	item, ok := q.st.stock[id]
	if !ok || item.OwnerID != ownerID {
		return domain.NotFound("stock item", id)
	}
	delete(q.st.stock, id)
	return nil
}

func (q *queries) DecrementStock(_ context.Context, ownerID, id int64, qty int) error {
	item, ok := q.st.stock[id]
	if !ok || item.OwnerID != ownerID {
		return domain.NotFound("stock item", id)
	}
	if qty > item.Quantity {
		return fmt.Errorf("%w: item %d has %d, requested %d", domain.ErrInsufficientStock, id, item.Quantity, qty)
	}
	item.Quantity -= qty
	item.UpdatedAt = q.now()
	q.st.stock[id] = item
	return nil
}

// checkStock mirrors the table constraints: non-negative quantity and a
// supplier owned by the same account.
func (q *queries) checkStock(item *domain.StockItem) error {
	if item.Quantity < 0 {
		return domain.Invalid("quantity must not be negative")
	}
	sup, ok := q.st.suppliers[item.SupplierID]
	if !ok || sup.OwnerID != item.OwnerID {
		return domain.NotFound("supplier", item.SupplierID)
	}
	return nil
}

func (q *queries) withSupplierName(item domain.StockItem) domain.StockItem {
	if sup, ok := q.st.suppliers[item.SupplierID]; ok {
		item.SupplierName = sup.Name
	}
	return item
}
