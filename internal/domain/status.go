package domain

// BillState tracks a bill draft through its lifecycle.
type BillState int

const (
	BillSelectingItems BillState = iota
	BillQuantityInput
	BillDiscountInput
	BillComputing
	BillCommitted
)

var billStateLabels = map[BillState]string{
	BillSelectingItems: "SELECTING_ITEMS",
	BillQuantityInput:  "QUANTITY_INPUT",
	BillDiscountInput:  "DISCOUNT_INPUT",
	BillComputing:      "COMPUTING",
	BillCommitted:      "COMMITTED",
}

func (s BillState) String() string {
	if label, ok := billStateLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}
