package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
)

type SupplierInput struct {
	Name    string `validate:"required,max=255"`
	Phone   string `validate:"required"`
	Address string `validate:"max=1000"`
}

type SupplierService struct {
	store repository.Store
}

func NewSupplierService(store repository.Store) *SupplierService {
	return &SupplierService{store: store}
}

// AddSupplier registers a supplier with a digits-only phone number.
func (s *SupplierService) AddSupplier(ctx context.Context, ownerID int64, input SupplierInput) (domain.Supplier, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateInput(input); err != nil {
		return domain.Supplier{}, err
	}
	phone, err := domain.NormalizePhone(input.Phone)
	if err != nil {
		return domain.Supplier{}, err
	}

	supplier := domain.Supplier{
		OwnerID: ownerID,
		Name:    input.Name,
		Phone:   phone,
		Address: input.Address,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		return q.CreateSupplier(ctx, &supplier)
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	log.Info().Int64("owner_id", ownerID).Int64("supplier_id", supplier.ID).Msg("supplier added")
	return supplier, nil
}

func (s *SupplierService) ListSuppliers(ctx context.Context, ownerID int64) ([]domain.Supplier, error) {
	return s.store.ListSuppliers(ctx, ownerID)
}

// FindByName looks a supplier up by its exact registered name.
func (s *SupplierService) FindByName(ctx context.Context, ownerID int64, name string) (domain.Supplier, error) {
	return s.store.GetSupplierByName(ctx, ownerID, strings.TrimSpace(name))
}
