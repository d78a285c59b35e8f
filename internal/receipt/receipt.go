// Package receipt renders committed bills as human-readable artifacts and
// stores them next to the owner's ledger.
package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

// ParseFormats validates configured formats. Text receipts are always written.
func ParseFormats(values []string) ([]Format, error) {
	formats := []Format{FormatText}
	for _, v := range values {
		switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
		case FormatText, "":
		case FormatPDF:
			if !slices.Contains(formats, f) {
				formats = append(formats, f)
			}
		default:
			return nil, fmt.Errorf("unsupported receipt format %q", v)
		}
	}
	return formats, nil
}

const rule = "=========================================================================================="

// Render writes the text receipt for bill.
func Render(w io.Writer, bill *domain.BillRecord) error {
	var b bytes.Buffer
	fmt.Fprintln(&b, "INVENTORY BILL")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Bill ID   : %s\n", bill.ID)
	fmt.Fprintf(&b, "Bill Date : %s\n", bill.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Customer Name : %s\n", bill.Customer.Name)
	fmt.Fprintf(&b, "Customer Phone no. : %s\n", bill.Customer.Phone)
	fmt.Fprintf(&b, "Customer Address : %s\n", bill.Customer.Address)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	for _, l := range bill.Lines {
		fmt.Fprintf(&b, "%s x %d @ Rs. %s = Rs. %s (After discount: %s, GST %s%%: %s)\n",
			l.Name, l.Quantity, l.Price.StringFixed(2), l.Base.StringFixed(2),
			l.DiscountedBase.StringFixed(2), l.GSTPercent.String(), l.GSTAmount.StringFixed(2))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total Price : Rs. %s\n", bill.Totals.TotalBase.StringFixed(2))
	fmt.Fprintf(&b, "Discount%% : %s%%\n", bill.DiscountPercent.String())
	fmt.Fprintf(&b, "Discounted Price : Rs. %s\n", bill.Totals.TotalDiscounted.StringFixed(2))
	fmt.Fprintf(&b, "GST Amount : Rs. %s\n", bill.Totals.TotalGST.StringFixed(2))
	fmt.Fprintf(&b, "Final Price (with GST) : Rs. %s\n", bill.Totals.FinalTotal.StringFixed(2))
	fmt.Fprintln(&b, rule)

	_, err := w.Write(b.Bytes())
	return err
}

// SafeFirstName keeps the letters and digits of the first word.
func SafeFirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "customer"
	}
	var b strings.Builder
	for _, r := range fields[0] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "customer"
	}
	return b.String()
}

// FileStem is the receipt file name without extension.
func FileStem(bill *domain.BillRecord) string {
	return SafeFirstName(bill.Customer.Name) + "_" + bill.ID
}

// Store writes receipts to dataDir/<username>/.
type Store struct {
	dataDir string
	formats []Format
}

func NewStore(dataDir string, formats []Format) *Store {
	if len(formats) == 0 {
		formats = []Format{FormatText}
	}
	return &Store{dataDir: dataDir, formats: formats}
}

func (s *Store) Dir(username string) string {
	return filepath.Join(s.dataDir, username)
}

// Save writes one file per configured format and returns their paths. The
// undo removes every written file.
func (s *Store) Save(ctx context.Context, username string, bill *domain.BillRecord) ([]string, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	dir := s.Dir(username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}

	var written []string
	undo := func() error {
		var errs []error
		for _, p := range written {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	stem := FileStem(bill)
	for _, format := range s.formats {
		path := filepath.Join(dir, stem+"."+string(format))
		var err error
		switch format {
		case FormatText:
			err = writeText(path, bill)
		case FormatPDF:
			err = RenderPDF(path, bill)
		}
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("failed to write %s receipt: %w", format, err), undo())
		}
		written = append(written, path)
	}

	log.Debug().Str("bill_id", bill.ID).Strs("paths", written).Msg("receipts written")
	return written, undo, nil
}

func writeText(path string, bill *domain.BillRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := Render(f, bill); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// List returns the owner's text receipts, newest bill first.
func (s *Store) List(username string) ([]string, error) {
	entries, err := os.ReadDir(s.Dir(username))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "."+string(FormatText)) {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(billIDOf(b), billIDOf(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return names, nil
}

// Read returns the content of one receipt. Directory components are ignored.
func (s *Store) Read(username, name string) (string, error) {
	name = filepath.Base(name)
	if !strings.HasSuffix(name, "."+string(FormatText)) {
		return "", domain.Invalid("receipt %q is not a text receipt", name)
	}
	raw, err := os.ReadFile(filepath.Join(s.Dir(username), name))
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.NotFound("receipt", name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	return string(raw), nil
}

func billIDOf(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		return stem[i+1:]
	}
	return stem
}
