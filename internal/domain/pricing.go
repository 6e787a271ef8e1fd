package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest money value an order column can hold (NUMERIC(12,2)).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Totals is the priced breakdown of a checkout. It is computed once when the
// order is created and never recomputed.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingFee    decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals prices items with a percentage discount and a flat shipping fee.
// Total = Subtotal - DiscountAmount + ShippingFee.
func ComputeTotals(items []OrderItem, discountPercent int, shippingFee decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	discount := subtotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred).Round(2)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingFee:    shippingFee,
		Total:          subtotal.Sub(discount).Add(shippingFee),
	}
}

// ToMinorUnits converts a display amount (e.g. naira) to the gateway's
// integer minor unit (kobo), rounding half away from zero. Amounts outside
// ±MaxAmount are rejected.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.Abs().GreaterThan(MaxAmount) {
		return 0, fmt.Errorf("amount %s exceeds %s", amount.String(), MaxAmount.String())
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}

// HasMinorUnitPrecision reports whether amount has at most two decimal places
func HasMinorUnitPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// EstimatedDeliveryDate returns the third weekday after from, as a UTC date.
func EstimatedDeliveryDate(from time.Time) time.Time {
	from = from.UTC()
	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	added := 0
	for added < 3 {
		date = date.AddDate(0, 0, 1)
		if date.Weekday() != time.Saturday && date.Weekday() != time.Sunday {
			added++
		}
	}
	return date
}
