package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/calculator"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
)

type StockInput struct {
	SupplierID    int64  `validate:"gt=0"`
	Name          string `validate:"required,max=255"`
	Quantity      int    `validate:"gt=0"`
	Price         decimal.Decimal
	GSTPercent    decimal.Decimal
	SupplierPrice decimal.Decimal
}

// StockEdit overwrites only the fields that are set.
type StockEdit struct {
	ItemID        int64
	Quantity      *int
	Price         *decimal.Decimal
	GSTPercent    *decimal.Decimal
	SupplierPrice *decimal.Decimal
}

type EditChange struct {
	Before domain.StockItem
	After  domain.StockItem
}

// EditPlan is a validated batch of edits, applied all at once by ApplyEdits.
type EditPlan struct {
	OwnerID int64
	Changes []EditChange
	Skipped []domain.Skip
}

const (
	SkipNotFound  = "item not found"
	SkipDuplicate = "item listed more than once"
	SkipUnchanged = "no changes"
)

type StockService struct {
	store repository.Store
}

func NewStockService(store repository.Store) *StockService {
	return &StockService{store: store}
}

// AddOrMergeStock inserts a record or, when one with the same name, price,
// GST and supplier exists, adds to its quantity and takes the new supplier price.
func (s *StockService) AddOrMergeStock(ctx context.Context, ownerID int64, input StockInput) (domain.StockItem, bool, error) {
	input.Name = domain.CleanItemName(input.Name)
	if err := validateInput(input); err != nil {
		return domain.StockItem{}, false, err
	}
	if input.Price.IsNegative() {
		return domain.StockItem{}, false, domain.Invalid("price must not be negative")
	}
	if input.SupplierPrice.IsNegative() {
		return domain.StockItem{}, false, domain.Invalid("supplier price must not be negative")
	}
	if !domain.IsAllowedGST(input.GSTPercent) {
		return domain.StockItem{}, false, domain.Invalid("gst %s%% is not an allowed slab (%s)", input.GSTPercent.String(), domain.GSTSlabList())
	}

	item := domain.StockItem{
		OwnerID:       ownerID,
		SupplierID:    input.SupplierID,
		Name:          input.Name,
		Quantity:      input.Quantity,
		Price:         calculator.Round(input.Price),
		SupplierPrice: calculator.Round(input.SupplierPrice),
		GSTPercent:    input.GSTPercent,
	}

	var created bool
	err := s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		supplier, err := q.GetSupplier(ctx, ownerID, input.SupplierID)
		if err != nil {
			return err
		}

		existing, err := q.FindStockItemByKey(ctx, item.Key())
		switch {
		case err == nil:
			existing.Quantity += item.Quantity
			existing.SupplierPrice = item.SupplierPrice
			if err := q.UpdateStockItem(ctx, &existing); err != nil {
				return err
			}
			item = existing
		case errors.Is(err, domain.ErrNotFound):
			if err := q.CreateStockItem(ctx, &item); err != nil {
				return err
			}
			created = true
		default:
			return err
		}
		item.SupplierName = supplier.Name
		return nil
	})
	if err != nil {
		return domain.StockItem{}, false, err
	}

	log.Info().
		Int64("owner_id", ownerID).
		Int64("item_id", item.ID).
		Bool("created", created).
		Int("quantity", item.Quantity).
		Msg("stock added")
	return item, created, nil
}

func (s *StockService) GetStock(ctx context.Context, ownerID, itemID int64) (domain.StockItem, error) {
	return s.store.GetStockItem(ctx, ownerID, itemID)
}

// ListStock returns the owner's items ordered by id.
func (s *StockService) ListStock(ctx context.Context, ownerID int64) ([]domain.StockItem, error) {
	return s.store.ListStockItems(ctx, ownerID)
}

// EditStock applies a single edit. changed is false when the record already
// held the requested values.
func (s *StockService) EditStock(ctx context.Context, ownerID int64, edit StockEdit) (item domain.StockItem, changed bool, err error) {
	err = s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		current, err := q.GetStockItem(ctx, ownerID, edit.ItemID)
		if err != nil {
			return err
		}
		next, err := applyEdit(current, edit)
		if err != nil {
			return err
		}
		if next.SameValues(current) {
			item = current
			return nil
		}
		if err := q.UpdateStockItem(ctx, &next); err != nil {
			return err
		}
		item, changed = next, true
		return nil
	})
	if err != nil {
		return domain.StockItem{}, false, err
	}
	if changed {
		log.Info().Int64("owner_id", ownerID).Int64("item_id", item.ID).Msg("stock edited")
	}
	return item, changed, nil
}

// PlanEdits validates a batch. Invalid, unknown and no-op edits are skipped
// with a reason; nothing is written.
func (s *StockService) PlanEdits(ctx context.Context, ownerID int64, edits []StockEdit) (EditPlan, error) {
	plan := EditPlan{OwnerID: ownerID}
	seen := make(map[int64]bool, len(edits))
	for _, edit := range edits {
		if seen[edit.ItemID] {
			plan.Skipped = append(plan.Skipped, domain.Skip{ID: edit.ItemID, Reason: SkipDuplicate})
			continue
		}
		seen[edit.ItemID] = true

		current, err := s.store.GetStockItem(ctx, ownerID, edit.ItemID)
		if errors.Is(err, domain.ErrNotFound) {
			plan.Skipped = append(plan.Skipped, domain.Skip{ID: edit.ItemID, Reason: SkipNotFound})
			continue
		}
		if err != nil {
			return EditPlan{}, err
		}

		next, err := applyEdit(current, edit)
		if err != nil {
			plan.Skipped = append(plan.Skipped, domain.Skip{ID: edit.ItemID, Reason: err.Error()})
			continue
		}
		if next.SameValues(current) {
			plan.Skipped = append(plan.Skipped, domain.Skip{ID: edit.ItemID, Reason: SkipUnchanged})
			continue
		}
		plan.Changes = append(plan.Changes, EditChange{Before: current, After: next})
	}
	return plan, nil
}

// ApplyEdits writes every change of plan in one transaction. If any record
// moved since planning, nothing is written.
func (s *StockService) ApplyEdits(ctx context.Context, plan EditPlan) error {
	if len(plan.Changes) == 0 {
		return nil
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		for _, change := range plan.Changes {
			current, err := q.GetStockItem(ctx, plan.OwnerID, change.Before.ID)
			if err != nil {
				return err
			}
			if !current.SameValues(change.Before) {
				return fmt.Errorf("%w: item %d was modified after the edit was planned",
					domain.ErrConcurrentStockChange, current.ID)
			}
			after := change.After
			if err := q.UpdateStockItem(ctx, &after); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Int64("owner_id", plan.OwnerID).Int("changes", len(plan.Changes)).Msg("stock batch edited")
	return nil
}

// DeleteStock removes an item owned by ownerID.
func (s *StockService) DeleteStock(ctx context.Context, ownerID, itemID int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		return q.DeleteStockItem(ctx, ownerID, itemID)
	})
	if err != nil {
		return err
	}
	log.Info().Int64("owner_id", ownerID).Int64("item_id", itemID).Msg("stock deleted")
	return nil
}

// DecrementStock removes qty units, failing with domain.ErrInsufficientStock
// when fewer remain.
func (s *StockService) DecrementStock(ctx context.Context, ownerID, itemID int64, qty int) error {
	if qty <= 0 {
		return domain.Invalid("quantity must be greater than 0")
	}
	return s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		return q.DecrementStock(ctx, ownerID, itemID, qty)
	})
}

func applyEdit(item domain.StockItem, edit StockEdit) (domain.StockItem, error) {
	if edit.Quantity != nil {
		if *edit.Quantity < 0 {
			return item, domain.Invalid("quantity must not be negative")
		}
		item.Quantity = *edit.Quantity
	}
	if edit.Price != nil {
		if edit.Price.IsNegative() {
			return item, domain.Invalid("price must not be negative")
		}
		item.Price = calculator.Round(*edit.Price)
	}
	if edit.SupplierPrice != nil {
		if edit.SupplierPrice.IsNegative() {
			return item, domain.Invalid("supplier price must not be negative")
		}
		item.SupplierPrice = calculator.Round(*edit.SupplierPrice)
	}
	if edit.GSTPercent != nil {
		if !domain.IsAllowedGST(*edit.GSTPercent) {
			return item, domain.Invalid("gst %s%% is not an allowed slab (%s)", edit.GSTPercent.String(), domain.GSTSlabList())
		}
		item.GSTPercent = *edit.GSTPercent
	}
	return item, nil
}
