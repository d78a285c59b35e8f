package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// schemaStatements are idempotent and applied in order.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id         BIGSERIAL PRIMARY KEY,
		owner_id   BIGINT       NOT NULL REFERENCES accounts(id),
		name       VARCHAR(255) NOT NULL,
		phone      VARCHAR(32)  NOT NULL,
		address    TEXT         NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		UNIQUE (owner_id, name),
		UNIQUE (id, owner_id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_items (
		id             BIGSERIAL PRIMARY KEY,
		owner_id       BIGINT        NOT NULL REFERENCES accounts(id),
		supplier_id    BIGINT        NOT NULL,
		name           VARCHAR(255)  NOT NULL,
		quantity       INTEGER       NOT NULL CHECK (quantity >= 0),
		price          NUMERIC(10,2) NOT NULL,
		supplier_price NUMERIC(10,2) NOT NULL,
		gst_percent    NUMERIC(5,2)  NOT NULL,
		created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		FOREIGN KEY (supplier_id, owner_id) REFERENCES suppliers(id, owner_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_items_merge_key
		ON stock_items (owner_id, name, price, gst_percent, supplier_id)`,
}

// Migrate creates the tables and indexes when missing.
func Migrate(ctx context.Context, db *DB) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
			}
		}
		log.Info().Int("statements", len(schemaStatements)).Msg("schema up to date")
		return nil
	})
}
