package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GSTSlabs lists the allowed tax percentages in ascending order.
var GSTSlabs = []decimal.Decimal{
	decimal.Zero,
	decimal.RequireFromString("0.25"),
	decimal.NewFromInt(3),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
	decimal.NewFromInt(40),
}

// IsAllowedGST reports whether pct is one of the GST slabs.
func IsAllowedGST(pct decimal.Decimal) bool {
	for _, slab := range GSTSlabs {
		if slab.Equal(pct) {
			return true
		}
	}
	return false
}

// ParseGST parses and validates a GST percentage.
func ParseGST(raw string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, Invalid("gst %q is not a number", raw)
	}
	if !IsAllowedGST(pct) {
		return decimal.Zero, Invalid("gst %s%% is not an allowed slab (%s)", pct.String(), GSTSlabList())
	}
	return pct, nil
}

// GSTSlabList renders the slabs for prompts and messages.
func GSTSlabList() string {
	parts := make([]string, len(GSTSlabs))
	for i, slab := range GSTSlabs {
		parts[i] = slab.String()
	}
	return strings.Join(parts, ", ")
}

// NormalizePhone strips every non-digit and requires at least ten digits.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return "", Invalid("phone must contain at least 10 digits")
	}
	return digits, nil
}

// CleanItemName trims the name and drops quote characters.
func CleanItemName(raw string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(raw))
}
