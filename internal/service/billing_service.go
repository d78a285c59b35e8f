package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/billid"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/calculator"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/storage"
)

var (
	ErrNothingSelected = fmt.Errorf("%w: none of the selected items are available", domain.ErrValidation)
	ErrNothingToBill   = fmt.Errorf("%w: no item has a valid quantity", domain.ErrValidation)
	ErrDraftState      = errors.New("bill draft is not in the expected state")
)

const (
	SkipOutOfStock      = "out of stock"
	SkipMissingQuantity = "no quantity given"
)

// HistoryWriter appends committed bills to the owner's history ledger.
type HistoryWriter interface {
	Append(ctx context.Context, username string, bill *domain.BillRecord) (func() error, error)
	Path(username string) string
}

// ReceiptWriter stores the human-readable receipts of a bill.
type ReceiptWriter interface {
	Save(ctx context.Context, username string, bill *domain.BillRecord) ([]string, func() error, error)
}

type draftLine struct {
	item domain.StockItem
	qty  int
}

// Draft is one bill in progress. It moves strictly forward through the
// domain.BillState values.
type Draft struct {
	owner      domain.Account
	state      domain.BillState
	candidates []domain.StockItem
	lines      []draftLine
	discount   decimal.Decimal
	priced     []domain.BillLine
	totals     domain.BillTotals
	skipped    []domain.Skip
}

func (d *Draft) State() domain.BillState { return d.state }
func (d *Draft) Candidates() []domain.StockItem { return d.candidates }
func (d *Draft) Lines() []domain.BillLine { return d.priced }
func (d *Draft) Totals() domain.BillTotals { return d.totals }
func (d *Draft) DiscountPercent() decimal.Decimal { return d.discount }

// Skipped lists every input dropped so far, with the reason.
func (d *Draft) Skipped() []domain.Skip { return d.skipped }

// Subtotal is the undiscounted total of the accepted quantities.
func (d *Draft) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.lines {
		total = total.Add(calculator.LineBase(l.qty, l.item.Price))
	}
	return calculator.Round(total)
}

func (d *Draft) expect(state domain.BillState) error {
	if d.state != state {
		return fmt.Errorf("%w: at %s, want %s", ErrDraftState, d.state, state)
	}
	return nil
}

type CommitResult struct {
	Bill         *domain.BillRecord
	ReceiptPaths []string
}

type BillingService struct {
	store    repository.Store
	history  HistoryWriter
	receipts ReceiptWriter
	archive  storage.ObjectStorage
	ids      *billid.Generator
}

func NewBillingService(store repository.Store, history HistoryWriter, receipts ReceiptWriter,
	archive storage.ObjectStorage, ids *billid.Generator) *BillingService {
	if archive == nil {
		archive = storage.Noop{}
	}
	if ids == nil {
		ids = billid.NewGenerator(nil)
	}
	return &BillingService{
		store:    store,
		history:  history,
		receipts: receipts,
		archive:  archive,
		ids:      ids,
	}
}

func (s *BillingService) NewDraft(owner domain.Account) *Draft {
	return &Draft{owner: owner, state: domain.BillSelectingItems}
}

// SelectItems resolves ids against the owner's stock. Unknown, repeated and
// empty items are skipped; the draft fails only when nothing is left.
func (s *BillingService) SelectItems(ctx context.Context, d *Draft, itemIDs []int64) error {
	if err := d.expect(domain.BillSelectingItems); err != nil {
		return err
	}

	var candidates []domain.StockItem
	var skipped []domain.Skip
	seen := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			skipped = append(skipped, domain.Skip{ID: id, Reason: SkipDuplicate})
			continue
		}
		seen[id] = true

		item, err := s.store.GetStockItem(ctx, d.owner.ID, id)
		if errors.Is(err, domain.ErrNotFound) {
			skipped = append(skipped, domain.Skip{ID: id, Reason: SkipNotFound})
			continue
		}
		if err != nil {
			return err
		}
		if item.Quantity == 0 {
			skipped = append(skipped, domain.Skip{ID: id, Reason: SkipOutOfStock})
			continue
		}
		candidates = append(candidates, item)
	}

	d.skipped = append(d.skipped, skipped...)
	if len(candidates) == 0 {
		return ErrNothingSelected
	}
	d.candidates = candidates
	d.state = domain.BillQuantityInput
	return nil
}

// SetQuantities accepts 0 < qty <= available for each candidate and drops the rest.
func (s *BillingService) SetQuantities(d *Draft, qtyByItem map[int64]int) error {
	if err := d.expect(domain.BillQuantityInput); err != nil {
		return err
	}

	var lines []draftLine
	for _, item := range d.candidates {
		qty, ok := qtyByItem[item.ID]
		switch {
		case !ok:
			d.skipped = append(d.skipped, domain.Skip{ID: item.ID, Reason: SkipMissingQuantity})
		case qty <= 0:
			d.skipped = append(d.skipped, domain.Skip{ID: item.ID, Reason: "quantity must be greater than 0"})
		case qty > item.Quantity:
			d.skipped = append(d.skipped, domain.Skip{ID: item.ID, Reason: fmt.Sprintf("only %d in stock", item.Quantity)})
		default:
			lines = append(lines, draftLine{item: item, qty: qty})
		}
	}

	if len(lines) == 0 {
		return ErrNothingToBill
	}
	d.lines = lines
	d.state = domain.BillDiscountInput
	return nil
}

// ApplyDiscount prices every line with one bill-level discount. An invalid
// percentage leaves the draft waiting for another discount.
func (s *BillingService) ApplyDiscount(d *Draft, pct decimal.Decimal) error {
	if err := d.expect(domain.BillDiscountInput); err != nil {
		return err
	}
	factor, err := calculator.DiscountFactor(pct)
	if err != nil {
		return err
	}

	priced := make([]domain.BillLine, 0, len(d.lines))
	amounts := make([]calculator.LineAmounts, 0, len(d.lines))
	for _, l := range d.lines {
		a := calculator.PriceLine(l.qty, l.item.Price, l.item.GSTPercent, factor).Rounded()
		amounts = append(amounts, a)
		priced = append(priced, domain.BillLine{
			ItemID:          l.item.ID,
			Name:            l.item.Name,
			Quantity:        l.qty,
			SupplierPrice:   l.item.SupplierPrice,
			Price:           l.item.Price,
			Base:            a.Base,
			DiscountPercent: pct,
			DiscountedBase:  a.DiscountedBase,
			GSTPercent:      l.item.GSTPercent,
			GSTAmount:       a.GSTAmount,
			Final:           a.Final,
		})
	}

	d.discount = pct
	d.priced = priced
	d.totals = calculator.BillTotals(amounts)
	d.state = domain.BillComputing
	return nil
}

// Commit decrements stock and writes the bill history and receipts as one
// unit. If any line no longer has enough stock, nothing is changed.
func (s *BillingService) Commit(ctx context.Context, d *Draft, customer domain.Customer) (*CommitResult, error) {
	if err := d.expect(domain.BillComputing); err != nil {
		return nil, err
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	customer.Address = strings.TrimSpace(customer.Address)
	if customer.Name == "" {
		return nil, domain.Invalid("customer name is required")
	}

	id, at := s.ids.Next()
	bill := &domain.BillRecord{
		ID:              id,
		Date:            at,
		Customer:        customer,
		DiscountPercent: d.discount,
		Lines:           append([]domain.BillLine(nil), d.priced...),
		Totals:          d.totals,
	}

	var undos []func() error
	var receiptPaths []string
	err := s.store.WithTx(ctx, func(ctx context.Context, q repository.Queries) error {
		for _, line := range bill.Lines {
			err := q.DecrementStock(ctx, d.owner.ID, line.ItemID, line.Quantity)
			if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: %s: %w", domain.ErrConcurrentStockChange, line.Name, err)
			}
			if err != nil {
				return err
			}
		}

		undoHistory, err := s.history.Append(ctx, d.owner.Username, bill)
		if err != nil {
			return fmt.Errorf("failed to append bill history: %w", err)
		}
		undos = append(undos, undoHistory)

		paths, undoReceipts, err := s.receipts.Save(ctx, d.owner.Username, bill)
		if err != nil {
			return fmt.Errorf("failed to write receipt: %w", err)
		}
		undos = append(undos, undoReceipts)
		receiptPaths = paths
		return nil
	})
	if err != nil {
		for i := len(undos) - 1; i >= 0; i-- {
			if uerr := undos[i](); uerr != nil {
				log.Error().Err(uerr).Str("bill_id", bill.ID).Msg("could not undo bill artifacts")
			}
		}
		return nil, err
	}

	d.state = domain.BillCommitted
	log.Info().
		Int64("owner_id", d.owner.ID).
		Str("bill_id", bill.ID).
		Int("lines", len(bill.Lines)).
		Str("final_total", bill.Totals.FinalTotal.StringFixed(2)).
		Msg("bill committed")

	artifacts := append([]string{s.history.Path(d.owner.Username)}, receiptPaths...)
	s.archiveBill(ctx, d.owner.Username, artifacts)
	return &CommitResult{Bill: bill, ReceiptPaths: receiptPaths}, nil
}

// archiveBill copies bill artifacts to object storage. Failures are logged only.
func (s *BillingService) archiveBill(ctx context.Context, username string, paths []string) {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("archive skipped")
			continue
		}
		key := path.Join(username, "receipts", filepath.Base(p))
		if filepath.Base(p) == filepath.Base(s.history.Path(username)) {
			key = path.Join(username, filepath.Base(p))
		}
		if err := s.archive.UploadObject(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("archive upload failed")
		}
	}
}
