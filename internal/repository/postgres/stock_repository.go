package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

const stockSelect = `
	SELECT s.id, s.owner_id, s.supplier_id, COALESCE(sp.name, '') AS supplier_name,
	       s.name, s.quantity, s.price, s.supplier_price, s.gst_percent,
	       s.created_at, s.updated_at
	FROM stock_items s
	LEFT JOIN suppliers sp ON sp.id = s.supplier_id
`

func (q *queries) GetStockItem(ctx context.Context, ownerID, id int64) (domain.StockItem, error) {
	var item domain.StockItem
	query := stockSelect + ` WHERE s.owner_id = $1 AND s.id = $2`
	if err := sqlx.GetContext(ctx, q.ext, &item, query, ownerID, id); err != nil {
		return domain.StockItem{}, mapError("get stock item", fmt.Sprintf("stock item %d", id), err)
	}
	return item, nil
}

func (q *queries) FindStockItemByKey(ctx context.Context, key domain.StockKey) (domain.StockItem, error) {
	var item domain.StockItem
	query := stockSelect + `
		WHERE s.owner_id = $1 AND s.name = $2 AND s.price = $3
		  AND s.gst_percent = $4 AND s.supplier_id = $5
		ORDER BY s.id
		LIMIT 1
	`
	err := sqlx.GetContext(ctx, q.ext, &item, query,
		key.OwnerID, key.Name, key.Price, key.GSTPercent, key.SupplierID)
	if err != nil {
		return domain.StockItem{}, mapError("find stock item", fmt.Sprintf("stock item %q", key.Name), err)
	}
	return item, nil
}

func (q *queries) ListStockItems(ctx context.Context, ownerID int64) ([]domain.StockItem, error) {
	var items []domain.StockItem
	query := stockSelect + ` WHERE s.owner_id = $1 ORDER BY s.id`
	if err := sqlx.SelectContext(ctx, q.ext, &items, query, ownerID); err != nil {
		return nil, mapError("list stock items", "stock item", err)
	}
	return items, nil
}

func (q *queries) CreateStockItem(ctx context.Context, item *domain.StockItem) error {
	query := `
		INSERT INTO stock_items (owner_id, supplier_id, name, quantity, price, supplier_price, gst_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	row := q.ext.QueryRowxContext(ctx, query,
		item.OwnerID, item.SupplierID, item.Name, item.Quantity,
		item.Price, item.SupplierPrice, item.GSTPercent)
	if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return mapError("create stock item", fmt.Sprintf("stock item %q", item.Name), err)
	}
	return nil
}

func (q *queries) UpdateStockItem(ctx context.Context, item *domain.StockItem) error {
	query := `
		UPDATE stock_items
		SET quantity = $3, price = $4, supplier_price = $5, gst_percent = $6, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING updated_at
	`
	row := q.ext.QueryRowxContext(ctx, query,
		item.OwnerID, item.ID, item.Quantity, item.Price, item.SupplierPrice, item.GSTPercent)
	if err := row.Scan(&item.UpdatedAt); err != nil {
		return mapError("update stock item", fmt.Sprintf("stock item %d", item.ID), err)
	}
	return nil
}

func (q *queries) DeleteStockItem(ctx context.Context, ownerID, id int64) error {
	res, err := q.ext.ExecContext(ctx, `DELETE FROM stock_items WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return mapError("delete stock item", fmt.Sprintf("stock item %d", id), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StoreFailure("delete stock item", err)
	}
	if affected == 0 {
		return domain.NotFound("stock item", id)
	}
	return nil
}

func (q *queries) DecrementStock(ctx context.Context, ownerID, id int64, qty int) error {
	query := `
		UPDATE stock_items
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND quantity >= $3
	`
	res, err := q.ext.ExecContext(ctx, query, ownerID, id, qty)
	if err != nil {
		return mapError("decrement stock", fmt.Sprintf("stock item %d", id), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StoreFailure("decrement stock", err)
	}
	if affected == 1 {
		return nil
	}

	current, err := q.GetStockItem(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: item %d has %d, requested %d", domain.ErrInsufficientStock, id, current.Quantity, qty)
}
