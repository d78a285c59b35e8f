package service

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

// HistorySource reads the flattened bill lines of an owner.
type HistorySource interface {
	ReadAll(ctx context.Context, username string) ([]domain.LedgerRow, error)
}

type HistoryService struct {
	source HistorySource
}

func NewHistoryService(source HistorySource) *HistoryService {
	return &HistoryService{source: source}
}

// Rows returns the raw ledger rows.
func (s *HistoryService) Rows(ctx context.Context, owner domain.Account) ([]domain.LedgerRow, error) {
	return s.source.ReadAll(ctx, owner.Username)
}

// Bills yields one summary per bill in the order bills first appear in the
// ledger. Each iteration re-reads the ledger.
func (s *HistoryService) Bills(ctx context.Context, owner domain.Account) iter.Seq2[domain.BillSummary, error] {
	return func(yield func(domain.BillSummary, error) bool) {
		rows, err := s.source.ReadAll(ctx, owner.Username)
		if err != nil {
			yield(domain.BillSummary{}, err)
			return
		}

		var order []string
		groups := make(map[string][]domain.LedgerRow)
		for _, row := range rows {
			if _, ok := groups[row.BillID]; !ok {
				order = append(order, row.BillID)
			}
			groups[row.BillID] = append(groups[row.BillID], row)
		}

		for _, id := range order {
			if !yield(summarize(groups[id]), nil) {
				return
			}
		}
	}
}

// Report aggregates every bill. GST is excluded from the net figure.
func (s *HistoryService) Report(ctx context.Context, owner domain.Account) (*domain.SalesReport, error) {
	report := &domain.SalesReport{
		Bills:      []domain.BillSummary{},
		TotalSales: decimal.Zero,
		TotalCost:  decimal.Zero,
		TotalGST:   decimal.Zero,
	}
	for bill, err := range s.Bills(ctx, owner) {
		if err != nil {
			return nil, err
		}
		report.Bills = append(report.Bills, bill)
		report.TotalSales = report.TotalSales.Add(bill.FinalPrice)
		report.TotalCost = report.TotalCost.Add(bill.SupplierCost)
		report.TotalGST = report.TotalGST.Add(bill.GST)
	}
	report.BillCount = len(report.Bills)
	report.NetTotal = report.TotalSales.Sub(report.TotalCost).Sub(report.TotalGST)
	report.NetOutcome = domain.OutcomeOf(report.NetTotal)
	return report, nil
}

func summarize(rows []domain.LedgerRow) domain.BillSummary {
	first := rows[0]
	summary := domain.BillSummary{
		BillID:          first.BillID,
		BillDate:        first.BillDate,
		CustomerName:    first.CustomerName,
		DiscountPercent: first.DiscountPercent,
		Lines:           len(rows),
		SupplierCost:    decimal.Zero,
		Discounted:      decimal.Zero,
		GST:             decimal.Zero,
		FinalPrice:      decimal.Zero,
	}
	for _, r := range rows {
		summary.SupplierCost = summary.SupplierCost.Add(r.SupplierPrice.Mul(decimal.NewFromInt(int64(r.Quantity))))
		summary.Discounted = summary.Discounted.Add(r.DiscountedPrice)
		summary.GST = summary.GST.Add(r.GSTAmount)
		summary.FinalPrice = summary.FinalPrice.Add(r.FinalPrice)
	}
	summary.Profit = summary.Discounted.Sub(summary.SupplierCost)
	return summary
}
