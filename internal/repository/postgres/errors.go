package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError translates driver errors into the domain taxonomy.
func mapError(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, "")
	}
	switch sqlState(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s: %w", domain.ErrDuplicate, entity, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s reference: %w", domain.ErrNotFound, entity, err)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s: %w", domain.ErrValidation, entity, err)
	}
	return domain.StoreFailure(op, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrDuplicate,
		domain.ErrNotFound,
		domain.ErrInsufficientStock,
		domain.ErrConcurrentStockChange,
		domain.ErrStore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
