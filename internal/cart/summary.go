package cart

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is a flat placeholder until real tax calculation exists.
var DefaultTaxRate = decimal.RequireFromString("0.10")

var ErrAmountOverflow = errors.New("cart total is too large")

var maxCents = decimal.NewFromInt(math.MaxInt64)

type Summary struct {
	Subtotal    int64 `json:"subtotal"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
	ItemCount   int   `json:"itemCount"`
	CanCheckout bool  `json:"canCheckout"`
	// Overflow is set when the total does not fit in int64 cents. The
	// amounts are then zero and the cart cannot be checked out.
	Overflow bool `json:"overflow,omitempty"`
}

// Summarize derives totals in integer cents. Tax is rounded half away from
// zero to the nearest cent.
func Summarize(items []Item, taxRate decimal.Decimal) Summary {
	var sum Summary
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(decimal.NewFromInt(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		sum.ItemCount += it.Quantity
	}
	tax := subtotal.Mul(taxRate).Round(0)
	total := subtotal.Add(tax)

	if total.Abs().GreaterThan(maxCents) || subtotal.Abs().GreaterThan(maxCents) {
		sum.Overflow = true
		return sum
	}
	sum.Subtotal = subtotal.IntPart()
	sum.Tax = tax.IntPart()
	sum.Total = total.IntPart()
	sum.CanCheckout = len(items) > 0
	return sum
}

// ParseTaxRate parses a rate like "0.10". Rates outside [0, 1] are rejected.
func ParseTaxRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse tax rate %q: %w", raw, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("tax rate %s out of range [0, 1]", rate)
	}
	return rate, nil
}
