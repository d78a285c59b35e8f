package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPriceLineScenario(t *testing.T) {
	factor, err := DiscountFactor(dec("10"))
	require.NoError(t, err)

	line := PriceLine(2, dec("100.00"), dec("18"), factor).Rounded()
	assert.True(t, line.Base.Equal(dec("200.00")), line.Base.String())
	assert.True(t, line.DiscountedBase.Equal(dec("180.00")), line.DiscountedBase.String())
	assert.True(t, line.GSTAmount.Equal(dec("32.40")), line.GSTAmount.String())
	assert.True(t, line.Final.Equal(dec("212.40")), line.Final.String())
}

func TestDiscountFactorBounds(t *testing.T) {
	for _, raw := range []string{"0", "12.5", "100"} {
		_, err := DiscountFactor(dec(raw))
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"-0.01", "100.01", "250"} {
		_, err := DiscountFactor(dec(raw))
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}

	full, err := DiscountFactor(dec("100"))
	require.NoError(t, err)
	assert.True(t, full.IsZero())
}

func TestAmountsNeverNegative(t *testing.T) {
	discounts := []string{"0", "0.01", "33.33", "50", "99.99", "100"}
	for _, d := range discounts {
		factor, err := DiscountFactor(dec(d))
		require.NoError(t, err)
		for _, slab := range domain.GSTSlabs {
			line := PriceLine(3, dec("19.99"), slab, factor)
			assert.False(t, line.DiscountedBase.IsNegative(), "discount %s slab %s", d, slab)
			assert.False(t, line.GSTAmount.IsNegative(), "discount %s slab %s", d, slab)
		}
	}

	assert.True(t, DiscountedBase(dec("10"), dec("-0.5")).IsZero())
	assert.True(t, GSTAmount(dec("-10"), dec("18")).IsZero())
}

func TestRoundedLineAddsUp(t *testing.T) {
	factor, err := DiscountFactor(dec("12.5"))
	require.NoError(t, err)

	line := PriceLine(3, dec("33.33"), dec("0.25"), factor).Rounded()
	assert.True(t, line.Final.Equal(line.DiscountedBase.Add(line.GSTAmount)))
	assert.True(t, line.DiscountedBase.Equal(dec("87.49")), line.DiscountedBase.String())
	assert.True(t, line.GSTAmount.Equal(dec("0.22")), line.GSTAmount.String())
}

func TestBillTotals(t *testing.T) {
	factor, err := DiscountFactor(dec("5"))
	require.NoError(t, err)

	lines := []LineAmounts{
		PriceLine(2, dec("100"), dec("18"), factor).Rounded(),
		PriceLine(1, dec("49.99"), dec("5"), factor).Rounded(),
	}
	totals := BillTotals(lines)

	assert.True(t, totals.TotalBase.Equal(dec("249.99")))
	assert.True(t, totals.FinalTotal.Equal(lines[0].Final.Add(lines[1].Final)))
	assert.True(t, totals.FinalTotal.Equal(totals.TotalDiscounted.Add(totals.TotalGST)))

	empty := BillTotals(nil)
	assert.True(t, empty.FinalTotal.IsZero())
}
