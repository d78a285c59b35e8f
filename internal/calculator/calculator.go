// Package calculator holds the bill arithmetic. Every function is pure.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

// MoneyPlaces is the number of decimal places kept for persisted amounts.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Round rounds a money value half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineBase returns qty × price.
func LineBase(qty int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// DiscountFactor returns 1 - pct/100 for 0 <= pct <= 100.
func DiscountFactor(pct decimal.Decimal) (decimal.Decimal, error) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, domain.Invalid("discount %s%% must be between 0 and 100", pct.String())
	}
	return decimal.NewFromInt(1).Sub(pct.Shift(-2)), nil
}

// DiscountedBase returns max(base × factor, 0).
func DiscountedBase(base, factor decimal.Decimal) decimal.Decimal {
	return decimal.Max(base.Mul(factor), decimal.Zero)
}

// GSTAmount returns max(discounted × gst/100, 0).
func GSTAmount(discounted, gstPercent decimal.Decimal) decimal.Decimal {
	return decimal.Max(discounted.Mul(gstPercent.Shift(-2)), decimal.Zero)
}

// LineFinal returns discounted + gst.
func LineFinal(discounted, gst decimal.Decimal) decimal.Decimal {
	return discounted.Add(gst)
}

// LineAmounts are the computed values of one bill line.
type LineAmounts struct {
	Base           decimal.Decimal
	DiscountedBase decimal.Decimal
	GSTAmount      decimal.Decimal
	Final          decimal.Decimal
}

// PriceLine computes a line at full precision.
func PriceLine(qty int, price, gstPercent, factor decimal.Decimal) LineAmounts {
	base := LineBase(qty, price)
	discounted := DiscountedBase(base, factor)
	gst := GSTAmount(discounted, gstPercent)
	return LineAmounts{
		Base:           base,
		DiscountedBase: discounted,
		GSTAmount:      gst,
		Final:          LineFinal(discounted, gst),
	}
}

// Rounded rounds base, discounted and gst, then recomputes final from the
// rounded parts so a persisted line always adds up.
func (a LineAmounts) Rounded() LineAmounts {
	discounted := Round(a.DiscountedBase)
	gst := Round(a.GSTAmount)
	return LineAmounts{
		Base:           Round(a.Base),
		DiscountedBase: discounted,
		GSTAmount:      gst,
		Final:          LineFinal(discounted, gst),
	}
}

// BillTotals sums the given lines.
func BillTotals(lines []LineAmounts) domain.BillTotals {
	totals := domain.BillTotals{
		TotalBase:       decimal.Zero,
		TotalDiscounted: decimal.Zero,
		TotalGST:        decimal.Zero,
		FinalTotal:      decimal.Zero,
	}
	for _, l := range lines {
		totals.TotalBase = totals.TotalBase.Add(l.Base)
		totals.TotalDiscounted = totals.TotalDiscounted.Add(l.DiscountedBase)
		totals.TotalGST = totals.TotalGST.Add(l.GSTAmount)
		totals.FinalTotal = totals.FinalTotal.Add(l.Final)
	}
	return totals
}
