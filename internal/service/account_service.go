package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrNotFound)

type Credentials struct {
	Username string `validate:"required,max=64,username"`
	Password string `validate:"required,max=72"`
}

type AccountService struct {
	store repository.Store
	cost  int
}

func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{store: store, cost: bcrypt.DefaultCost}
}

// Signup creates an account with a bcrypt password hash.
func (s *AccountService) Signup(ctx context.Context, creds Credentials) (domain.Account, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := validateInput(creds); err != nil {
		return domain.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := domain.Account{Username: creds.Username, PasswordHash: string(hash)}
	err = s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		return q.CreateAccount(ctx, &account)
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info().Int64("owner_id", account.ID).Str("username", account.Username).Msg("account created")
	return account, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown user or a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, creds Credentials) (domain.Account, error) {
	account, err := s.store.GetAccountByUsername(ctx, strings.TrimSpace(creds.Username))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}
	return account, nil
}
