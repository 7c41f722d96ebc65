package models

import "github.com/shopspring/decimal"

// Epsilon is the tolerance used for all balance comparisons. Amounts closer
// together than this are considered equal.
var Epsilon = decimal.New(1, -2) // 0.01

// AmountsEqual reports whether two amounts are equal within Epsilon.
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// ExceedsBy returns the amount by which a exceeds b, or zero if it does not
// exceed it by more than Epsilon.
func ExceedsBy(a, b decimal.Decimal) decimal.Decimal {
	diff := a.Sub(b)
	if diff.LessThanOrEqual(Epsilon) {
		return decimal.Zero
	}

	return diff
}
