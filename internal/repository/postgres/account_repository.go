package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

func (q *queries) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	row := q.ext.QueryRowxContext(ctx, query, account.Username, account.PasswordHash)
	if err := row.Scan(&account.ID, &account.CreatedAt); err != nil {
		return mapError("create account", fmt.Sprintf("account %q", account.Username), err)
	}
	return nil
}

func (q *queries) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	var account domain.Account
	query := `SELECT id, username, password_hash, created_at FROM accounts WHERE username = $1`
	if err := sqlx.GetContext(ctx, q.ext, &account, query, username); err != nil {
		return domain.Account{}, mapError("get account", fmt.Sprintf("account %q", username), err)
	}
	return account, nil
}
