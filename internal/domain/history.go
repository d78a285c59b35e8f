package domain

import "github.com/shopspring/decimal"

// BillSummary is the profit view of one historical bill.
type BillSummary struct {
	BillID          string          `json:"bill_id"`
	BillDate        string          `json:"bill_date"`
	CustomerName    string          `json:"customer_name"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Lines           int             `json:"lines"`
	SupplierCost    decimal.Decimal `json:"supplier_cost"`
	Discounted      decimal.Decimal `json:"discounted"`
	GST             decimal.Decimal `json:"gst"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Profit          decimal.Decimal `json:"profit"`
}

// SalesReport aggregates all bill summaries of an owner.
type SalesReport struct {
	Bills      []BillSummary   `json:"bills"`
	BillCount  int             `json:"bill_count"`
	TotalSales decimal.Decimal `json:"total_sales"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalGST   decimal.Decimal `json:"total_gst"`
	NetTotal   decimal.Decimal `json:"net_total"`
	NetOutcome Outcome         `json:"net_outcome"`
}

// Outcome classifies a signed amount.
type Outcome string

const (
	OutcomeProfit Outcome = "profit"
	OutcomeLoss   Outcome = "loss"
	OutcomeEven   Outcome = "even"
)

// OutcomeOf returns the outcome for amount.
func OutcomeOf(amount decimal.Decimal) Outcome {
	switch amount.Sign() {
	case 1:
		return OutcomeProfit
	case -1:
		return OutcomeLoss
	default:
		return OutcomeEven
	}
}
