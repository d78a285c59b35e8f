package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

const (
	historySheet = "History"
	summarySheet = "Summary"
)

var summaryHeader = []any{
	"BillID", "BillDate", "CustomerName", "Lines", "Discount%", "SupplierCost",
	"DiscountedTotal", "GST", "FinalPrice", "Profit",
}

// ExportXLSX writes the raw ledger rows and the per-bill summaries as a workbook.
func ExportXLSX(w io.Writer, rows []domain.LedgerRow, report *domain.SalesReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("failed to name history sheet: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := setRow(f, historySheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		values := []any{
			r.BillID, r.BillDate, r.CustomerName, r.Phone, r.Address, r.ItemName, r.Quantity,
			r.SupplierPrice.InexactFloat64(), r.SellingPrice.InexactFloat64(),
			r.TotalPrice.InexactFloat64(), r.DiscountPercent.InexactFloat64(),
			r.DiscountedPrice.InexactFloat64(), r.GSTPercent.InexactFloat64(),
			r.GSTAmount.InexactFloat64(), r.FinalPrice.InexactFloat64(),
		}
		if err := setRow(f, historySheet, i+2, values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := setRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	next := 2
	if report != nil {
		for _, b := range report.Bills {
			values := []any{
				b.BillID, b.BillDate, b.CustomerName, b.Lines, b.DiscountPercent.InexactFloat64(),
				b.SupplierCost.InexactFloat64(), b.Discounted.InexactFloat64(),
				b.GST.InexactFloat64(), b.FinalPrice.InexactFloat64(), b.Profit.InexactFloat64(),
			}
			if err := setRow(f, summarySheet, next, values); err != nil {
				return err
			}
			next++
		}
		totals := []any{
			"TOTAL", "", "", report.BillCount, "",
			report.TotalCost.InexactFloat64(), "", report.TotalGST.InexactFloat64(),
			report.TotalSales.InexactFloat64(), report.NetTotal.InexactFloat64(),
		}
		if err := setRow(f, summarySheet, next, totals); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
