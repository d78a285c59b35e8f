package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

type staticSource struct {
	rows  []domain.LedgerRow
	err   error
	reads int
}

func (s *staticSource) ReadAll(context.Context, string) ([]domain.LedgerRow, error) {
	s.reads++
	return s.rows, s.err
}

func row(bill string, qty int, supplierPrice, discounted, gst, final string) domain.LedgerRow {
	return domain.LedgerRow{
		BillID:          bill,
		CustomerName:    "cust-" + bill,
		Quantity:        qty,
		SupplierPrice:   dec(supplierPrice),
		DiscountedPrice: dec(discounted),
		GSTAmount:       dec(gst),
		FinalPrice:      dec(final),
	}
}

func TestReportScenario(t *testing.T) {
	src := &staticSource{rows: []domain.LedgerRow{
		row("B2", 1, "70", "135", "15", "150"),
		row("A1", 1, "50", "110", "10", "120"),
	}}
	svc := NewHistoryService(src)

	report, err := svc.Report(context.Background(), domain.Account{Username: "asha"})
	require.NoError(t, err)

	require.Len(t, report.Bills, 2)
	assert.Equal(t, "B2", report.Bills[0].BillID)
	assert.True(t, report.Bills[0].Profit.Equal(dec("65")))
	assert.True(t, report.Bills[1].Profit.Equal(dec("60")))
	assert.True(t, report.TotalSales.Equal(dec("270")))
	assert.True(t, report.TotalCost.Equal(dec("120")))
	assert.True(t, report.TotalGST.Equal(dec("25")))
	assert.True(t, report.NetTotal.Equal(dec("125")))
	assert.Equal(t, domain.OutcomeProfit, report.NetOutcome)
}

func TestBillsGroupsInFirstSeenOrder(t *testing.T) {
	src := &staticSource{rows: []domain.LedgerRow{
		row("X", 2, "10", "30", "1.5", "31.5"),
		row("Y", 1, "5", "4", "0", "4"),
		row("X", 1, "20", "25", "1.25", "26.25"),
	}}
	svc := NewHistoryService(src)

	var got []domain.BillSummary
	for bill, err := range svc.Bills(context.Background(), domain.Account{}) {
		require.NoError(t, err)
		got = append(got, bill)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "X", got[0].BillID)
	assert.Equal(t, 2, got[0].Lines)
	assert.True(t, got[0].SupplierCost.Equal(dec("40")))
	assert.True(t, got[0].FinalPrice.Equal(dec("57.75")))
	assert.True(t, got[0].Profit.Equal(dec("15")))
	assert.True(t, got[1].Profit.Equal(dec("-1")))
}

func TestBillsRestartable(t *testing.T) {
	src := &staticSource{rows: []domain.LedgerRow{row("A", 1, "1", "2", "0", "2")}}
	svc := NewHistoryService(src)
	seq := svc.Bills(context.Background(), domain.Account{})

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 1, count())

	src.rows = append(src.rows, row("B", 1, "1", "2", "0", "2"))
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, src.reads)

	for range seq {
		break
	}
	assert.Equal(t, 3, src.reads)
}

func TestReportEmptyAndErrors(t *testing.T) {
	report, err := NewHistoryService(&staticSource{}).Report(context.Background(), domain.Account{})
	require.NoError(t, err)
	assert.Empty(t, report.Bills)
	assert.True(t, report.NetTotal.IsZero())
	assert.Equal(t, domain.OutcomeEven, report.NetOutcome)

	boom := errors.New("unreadable")
	_, err = NewHistoryService(&staticSource{err: boom}).Report(context.Background(), domain.Account{})
	assert.ErrorIs(t, err, boom)
}

func TestReportLoss(t *testing.T) {
	src := &staticSource{rows: []domain.LedgerRow{row("A", 2, "100", "150", "27", "177")}}
	report, err := NewHistoryService(src).Report(context.Background(), domain.Account{})
	require.NoError(t, err)
	assert.True(t, report.NetTotal.Equal(dec("-50")))
	assert.Equal(t, domain.OutcomeLoss, report.NetOutcome)
}
