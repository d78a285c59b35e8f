package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
)

// Store runs queries against the pool, or against a transaction inside WithTx.
type Store struct {
	*queries
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{queries: &queries{ext: db.DB}, db: db}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, q repository.Queries) error) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(ctx, &queries{ext: tx})
	})
	if err != nil && !isDomainError(err) {
		return domain.StoreFailure("transaction", err)
	}
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

type queries struct {
	ext sqlx.ExtContext
}
