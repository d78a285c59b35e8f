package receipt

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

// RenderPDF writes an A5 receipt to path.
func RenderPDF(path string, bill *domain.BillRecord) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 16

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "INVENTORY BILL", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	for _, kv := range [][2]string{
		{"Bill ID", bill.ID},
		{"Bill Date", bill.Date.Format("2006-01-02 15:04:05")},
		{"Customer", bill.Customer.Name},
		{"Phone", bill.Customer.Phone},
		{"Address", bill.Customer.Address},
	} {
		pdf.CellFormat(28, 5, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-28, 5, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	cols := []float64{contentW * 0.34, contentW * 0.10, contentW * 0.16, contentW * 0.14, contentW * 0.10, contentW * 0.16}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range []string{"Item", "Qty", "Price", "Discounted", "GST%", "Final"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 6, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range bill.Lines {
		name := l.Name
		if len(name) > 28 {
			name = name[:27] + "~"
		}
		pdf.CellFormat(cols[0], 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, fmt.Sprintf("%d", l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 5, l.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 5, l.DiscountedBase.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 5, l.GSTPercent.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[5], 5, l.Final.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	labelW := contentW * 0.7
	for _, kv := range [][2]string{
		{"Total Price", "Rs. " + bill.Totals.TotalBase.StringFixed(2)},
		{"Discount", bill.DiscountPercent.String() + "%"},
		{"Discounted Price", "Rs. " + bill.Totals.TotalDiscounted.StringFixed(2)},
		{"GST Amount", "Rs. " + bill.Totals.TotalGST.StringFixed(2)},
	} {
		pdf.CellFormat(labelW, 5, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-labelW, 5, kv[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 7, "Final Price (with GST)", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW-labelW, 7, "Rs. "+bill.Totals.FinalTotal.StringFixed(2), "T", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
