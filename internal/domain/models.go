package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is an authenticated owner of suppliers, stock and bills.
type Account struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Supplier is immutable once registered.
type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StockItem is one inventory record. Price fields carry two decimal places.
type StockItem struct {
	ID            int64           `json:"id" db:"id"`
	OwnerID       int64           `json:"owner_id" db:"owner_id"`
	SupplierID    int64           `json:"supplier_id" db:"supplier_id"`
	SupplierName  string          `json:"supplier_name,omitempty" db:"supplier_name"`
	Name          string          `json:"name" db:"name"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Price         decimal.Decimal `json:"price" db:"price"`
	SupplierPrice decimal.Decimal `json:"supplier_price" db:"supplier_price"`
	GSTPercent    decimal.Decimal `json:"gst_percent" db:"gst_percent"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Key returns the merge-on-add identity of the item.
func (s StockItem) Key() StockKey {
	return StockKey{
		OwnerID:    s.OwnerID,
		Name:       s.Name,
		Price:      s.Price,
		GSTPercent: s.GSTPercent,
		SupplierID: s.SupplierID,
	}
}

// SameValues reports whether the mutable fields of both items are equal.
func (s StockItem) SameValues(o StockItem) bool {
	return s.Quantity == o.Quantity &&
		s.Price.Equal(o.Price) &&
		s.SupplierPrice.Equal(o.SupplierPrice) &&
		s.GSTPercent.Equal(o.GSTPercent)
}

// StockKey identifies stock records that merge on add.
type StockKey struct {
	OwnerID    int64
	Name       string
	Price      decimal.Decimal
	GSTPercent decimal.Decimal
	SupplierID int64
}

// Matches compares keys by value, ignoring decimal exponent differences.
func (k StockKey) Matches(o StockKey) bool {
	return k.OwnerID == o.OwnerID &&
		k.SupplierID == o.SupplierID &&
		k.Name == o.Name &&
		k.Price.Equal(o.Price) &&
		k.GSTPercent.Equal(o.GSTPercent)
}

// Customer is captured per bill and never stored outside bill artifacts.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// BillLine is one priced line of a committed bill. Money values are rounded
// to two decimal places.
type BillLine struct {
	ItemID          int64           `json:"item_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	SupplierPrice   decimal.Decimal `json:"supplier_price"`
	Price           decimal.Decimal `json:"price"`
	Base            decimal.Decimal `json:"base"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountedBase  decimal.Decimal `json:"discounted_base"`
	GSTPercent      decimal.Decimal `json:"gst_percent"`
	GSTAmount       decimal.Decimal `json:"gst_amount"`
	Final           decimal.Decimal `json:"final"`
}

// BillTotals aggregates the lines of one bill.
type BillTotals struct {
	TotalBase       decimal.Decimal `json:"total_base"`
	TotalDiscounted decimal.Decimal `json:"total_discounted"`
	TotalGST        decimal.Decimal `json:"total_gst"`
	FinalTotal      decimal.Decimal `json:"final_total"`
}

// BillRecord is written once at commit and never modified.
type BillRecord struct {
	ID              string          `json:"bill_id"`
	Date            time.Time       `json:"bill_date"`
	Customer        Customer        `json:"customer"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Lines           []BillLine      `json:"lines"`
	Totals          BillTotals      `json:"totals"`
}

// LedgerRow is one flattened bill line as stored in the history ledger.
type LedgerRow struct {
	BillID          string
	BillDate        string
	CustomerName    string
	Phone           string
	Address         string
	ItemName        string
	Quantity        int
	SupplierPrice   decimal.Decimal
	SellingPrice    decimal.Decimal
	TotalPrice      decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountedPrice decimal.Decimal
	GSTPercent      decimal.Decimal
	GSTAmount       decimal.Decimal
	FinalPrice      decimal.Decimal
}

// Skip records an input that was dropped from a batch.
type Skip struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}
