// Package importer loads suppliers and stock from CSV files through the same
// services the interactive shell uses.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

var (
	supplierColumns = []string{"name", "phone"}
	stockColumns    = []string{"name", "quantity", "price", "gst_percent", "supplier", "supplier_price"}
)

type RowSkip struct {
	Line   int
	Reason string
}

type Result struct {
	Created int
	Merged  int
	Skipped []RowSkip
}

type Importer struct {
	suppliers *service.SupplierService
	stock     *service.StockService
}

func New(suppliers *service.SupplierService, stock *service.StockService) *Importer {
	return &Importer{suppliers: suppliers, stock: stock}
}

// ImportSuppliers reads name, phone and an optional address column.
func (im *Importer) ImportSuppliers(ctx context.Context, ownerID int64, r io.Reader) (Result, error) {
	var res Result
	err := eachRow(r, supplierColumns, func(line int, get func(string) string) error {
		_, err := im.suppliers.AddSupplier(ctx, ownerID, service.SupplierInput{
			Name:    get("name"),
			Phone:   get("phone"),
			Address: get("address"),
		})
		if err != nil {
			return err
		}
		res.Created++
		return nil
	}, &res)
	if err != nil {
		return res, err
	}
	log.Info().Int64("owner_id", ownerID).Int("created", res.Created).Int("skipped", len(res.Skipped)).Msg("suppliers imported")
	return res, nil
}

// ImportStock reads one stock entry per row. The supplier column holds the
// registered supplier name.
func (im *Importer) ImportStock(ctx context.Context, ownerID int64, r io.Reader) (Result, error) {
	var res Result
	err := eachRow(r, stockColumns, func(line int, get func(string) string) error {
		supplier, err := im.suppliers.FindByName(ctx, ownerID, get("supplier"))
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(get("quantity"))
		if err != nil {
			return domain.Invalid("quantity %q is not a whole number", get("quantity"))
		}
		price, err := parseDecimal("price", get("price"))
		if err != nil {
			return err
		}
		gst, err := domain.ParseGST(get("gst_percent"))
		if err != nil {
			return err
		}
		supplierPrice, err := parseDecimal("supplier_price", get("supplier_price"))
		if err != nil {
			return err
		}

		_, created, err := im.stock.AddOrMergeStock(ctx, ownerID, service.StockInput{
			SupplierID:    supplier.ID,
			Name:          get("name"),
			Quantity:      qty,
			Price:         price,
			GSTPercent:    gst,
			SupplierPrice: supplierPrice,
		})
		if err != nil {
			return err
		}
		if created {
			res.Created++
		} else {
			res.Merged++
		}
		return nil
	}, &res)
	if err != nil {
		return res, err
	}
	log.Info().Int64("owner_id", ownerID).Int("created", res.Created).Int("merged", res.Merged).
		Int("skipped", len(res.Skipped)).Msg("stock imported")
	return res, nil
}

// eachRow calls fn for every data row. Domain errors skip the row; any
// other error stops the import.
func eachRow(r io.Reader, required []string, fn func(line int, get func(string) string) error, res *Result) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		get := func(col string) string {
			if i, ok := index[col]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		if err := fn(line, get); err != nil {
			if !isRowError(err) {
				return fmt.Errorf("line %d: %w", line, err)
			}
			res.Skipped = append(res.Skipped, RowSkip{Line: line, Reason: err.Error()})
		}
	}
}

func isRowError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrNotFound)
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.Invalid("%s %q is not a number", field, raw)
	}
	return d, nil
}
