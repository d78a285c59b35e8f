package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

const supplierColumns = `id, owner_id, name, phone, address, created_at`

func (q *queries) CreateSupplier(ctx context.Context, supplier *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (owner_id, name, phone, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := q.ext.QueryRowxContext(ctx, query, supplier.OwnerID, supplier.Name, supplier.Phone, supplier.Address)
	if err := row.Scan(&supplier.ID, &supplier.CreatedAt); err != nil {
		return mapError("create supplier", fmt.Sprintf("supplier %q", supplier.Name), err)
	}
	return nil
}

func (q *queries) GetSupplier(ctx context.Context, ownerID, id int64) (domain.Supplier, error) {
	var supplier domain.Supplier
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE owner_id = $1 AND id = $2`
	if err := sqlx.GetContext(ctx, q.ext, &supplier, query, ownerID, id); err != nil {
		return domain.Supplier{}, mapError("get supplier", fmt.Sprintf("supplier %d", id), err)
	}
	return supplier, nil
}

func (q *queries) GetSupplierByName(ctx context.Context, ownerID int64, name string) (domain.Supplier, error) {
	var supplier domain.Supplier
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE owner_id = $1 AND name = $2`
	if err := sqlx.GetContext(ctx, q.ext, &supplier, query, ownerID, name); err != nil {
		return domain.Supplier{}, mapError("get supplier", fmt.Sprintf("supplier %q", name), err)
	}
	return supplier, nil
}

func (q *queries) ListSuppliers(ctx context.Context, ownerID int64) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE owner_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, q.ext, &suppliers, query, ownerID); err != nil {
		return nil, mapError("list suppliers", "supplier", err)
	}
	return suppliers, nil
}
