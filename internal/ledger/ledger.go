// Package ledger keeps the per-owner bill history as an append-only CSV file.
package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

const (
	FileName   = "bill_history.csv"
	DateLayout = "2006-01-02 15:04:05"
)

var Header = []string{
	"BillID", "BillDate", "CustomerName", "Phone", "Address", "ItemName", "Quantity",
	"SupplierPrice", "SellingPrice", "TotalPrice", "Discount%", "DiscountedPrice",
	"GST%", "GSTAmount", "FinalPrice",
}

// Book stores one history file per owner under dataDir/<username>/.
type Book struct {
	dataDir string
}

func NewBook(dataDir string) *Book {
	return &Book{dataDir: dataDir}
}

func (b *Book) Path(username string) string {
	return filepath.Join(b.dataDir, username, FileName)
}

// Append writes the rows of bill. The returned undo truncates the file back to
// its previous size.
func (b *Book) Append(ctx context.Context, username string, bill *domain.BillRecord) (func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := b.Path(username)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat ledger: %w", err)
	}
	size := info.Size()
	undo := func() error {
		if err := os.Truncate(path, size); err != nil {
			return fmt.Errorf("failed to truncate ledger: %w", err)
		}
		return nil
	}

	w := csv.NewWriter(f)
	if size == 0 {
		if err := w.Write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	for _, row := range Rows(bill) {
		if err := w.Write(record(row)); err != nil {
			f.Close()
			return nil, errors.Join(fmt.Errorf("failed to write ledger row: %w", err), undo())
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, errors.Join(fmt.Errorf("failed to flush ledger: %w", err), undo())
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, errors.Join(fmt.Errorf("failed to sync ledger: %w", err), undo())
	}
	if err := f.Close(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to close ledger: %w", err), undo())
	}

	log.Debug().Str("bill_id", bill.ID).Int("rows", len(bill.Lines)).Msg("ledger rows appended")
	return undo, nil
}

// ReadAll returns every row in file order. A missing file yields no rows.
func (b *Book) ReadAll(ctx context.Context, username string) ([]domain.LedgerRow, error) {
	f, err := os.Open(b.Path(username))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()
	return Decode(ctx, f)
}

// Decode parses a ledger stream. Columns are matched by name, so files using
// the older spaced headers ("Bill_ID", "Final Price (after GST)") also load.
func Decode(ctx context.Context, r io.Reader) ([]domain.LedgerRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []domain.LedgerRow
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseRecord(index, rec)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Rows flattens a bill into ledger rows, one per line.
func Rows(bill *domain.BillRecord) []domain.LedgerRow {
	rows := make([]domain.LedgerRow, 0, len(bill.Lines))
	for _, l := range bill.Lines {
		rows = append(rows, domain.LedgerRow{
			BillID:          bill.ID,
			BillDate:        bill.Date.Format(DateLayout),
			CustomerName:    bill.Customer.Name,
			Phone:           bill.Customer.Phone,
			Address:         bill.Customer.Address,
			ItemName:        l.Name,
			Quantity:        l.Quantity,
			SupplierPrice:   l.SupplierPrice,
			SellingPrice:    l.Price,
			TotalPrice:      l.Base,
			DiscountPercent: l.DiscountPercent,
			DiscountedPrice: l.DiscountedBase,
			GSTPercent:      l.GSTPercent,
			GSTAmount:       l.GSTAmount,
			FinalPrice:      l.Final,
		})
	}
	return rows
}

func record(r domain.LedgerRow) []string {
	return []string{
		r.BillID,
		r.BillDate,
		r.CustomerName,
		r.Phone,
		r.Address,
		r.ItemName,
		strconv.Itoa(r.Quantity),
		r.SupplierPrice.StringFixed(2),
		r.SellingPrice.StringFixed(2),
		r.TotalPrice.StringFixed(2),
		r.DiscountPercent.StringFixed(2),
		r.DiscountedPrice.StringFixed(2),
		r.GSTPercent.StringFixed(2),
		r.GSTAmount.StringFixed(2),
		r.FinalPrice.StringFixed(2),
	}
}

// columnAliases maps normalized header names to positions in Header.
var columnAliases = map[string]int{
	"billid":             0,
	"billdate":           1,
	"customername":       2,
	"phone":              3,
	"address":            4,
	"itemname":           5,
	"quantity":           6,
	"supplierprice":      7,
	"sellingprice":       8,
	"totalprice":         9,
	"discount":           10,
	"discountedprice":    11,
	"gst":                12,
	"gstamount":          13,
	"finalprice":         14,
	"finalpriceaftergst": 14,
}

func normalizeColumn(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnIndex returns, for each Header position, the column holding it.
func columnIndex(header []string) ([]int, error) {
	index := make([]int, len(Header))
	for i := range index {
		index[i] = -1
	}
	for col, name := range header {
		if pos, ok := columnAliases[normalizeColumn(name)]; ok && index[pos] < 0 {
			index[pos] = col
		}
	}
	for pos, col := range index {
		if col < 0 {
			return nil, fmt.Errorf("ledger is missing column %s", Header[pos])
		}
	}
	return index, nil
}

func parseRecord(index []int, rec []string) (domain.LedgerRow, error) {
	field := func(pos int) string {
		if col := index[pos]; col < len(rec) {
			return strings.TrimSpace(rec[col])
		}
		return ""
	}

	var parseErr error
	money := func(pos int) decimal.Decimal {
		if parseErr != nil {
			return decimal.Zero
		}
		raw := field(pos)
		if raw == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			parseErr = fmt.Errorf("column %s: %w", Header[pos], err)
		}
		return d
	}

	qty, err := strconv.Atoi(field(6))
	if err != nil {
		return domain.LedgerRow{}, fmt.Errorf("column %s: %w", Header[6], err)
	}

	row := domain.LedgerRow{
		BillID:          field(0),
		BillDate:        field(1),
		CustomerName:    field(2),
		Phone:           field(3),
		Address:         field(4),
		ItemName:        field(5),
		Quantity:        qty,
		SupplierPrice:   money(7),
		SellingPrice:    money(8),
		TotalPrice:      money(9),
		DiscountPercent: money(10),
		DiscountedPrice: money(11),
		GSTPercent:      money(12),
		GSTAmount:       money(13),
		FinalPrice:      money(14),
	}
	if parseErr != nil {
		return domain.LedgerRow{}, parseErr
	}
	if row.BillID == "" {
		return domain.LedgerRow{}, fmt.Errorf("column %s is empty", Header[0])
	}
	return row, nil
}
