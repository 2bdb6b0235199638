package transform

import "github.com/printshopos/orderbridge/internal/printavo"

// totals holds the computed monetary fields for one order. Every field is
// non-negative.
type totals struct {
	amountOutstanding float64
	amountPaid        float64
	discount          float64
	fees              float64
	salesTax          float64
	subtotal          float64
	total             float64
}

// calculateTotals computes the destination monetary fields. Absent values
// default to 0, negative source values are clamped to 0, and the outstanding
// balance is taken from the source when supplied or derived as
// max(total - amountPaid, 0) otherwise.
func calculateTotals(src printavo.Order) totals {
	t := totals{
		amountPaid: clamp(src.AmountPaid),
		discount:   clamp(src.Discount),
		fees:       sumFees(src.Fees),
		salesTax:   clamp(src.SalesTax),
		subtotal:   clamp(src.Subtotal),
		total:      clamp(src.Total),
	}

	if src.AmountOutstanding != nil {
		t.amountOutstanding = clamp(*src.AmountOutstanding)
	} else {
		t.amountOutstanding = clamp(t.total - t.amountPaid)
	}

	return t
}

// sumFees totals all flat fee amounts, ignoring negative entries.
func sumFees(fees []printavo.Fee) float64 {
	var sum float64
	for _, fee := range fees {
		sum += clamp(fee.Amount)
	}
	return sum
}

// clamp floors a monetary value at zero.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
