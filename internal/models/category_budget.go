package models

import "github.com/shopspring/decimal"

// CategoryBudget is a locally configured spending ceiling for a set of
// expense categories. It is not persisted and not authoritative financial
// state; it only feeds the classification in the category budget analyzer.
//
// Pattern is a glob expression matched against expense categories, so a
// single budget can cover e.g. "utilities/*".
type CategoryBudget struct {
	Pattern         string          `json:"pattern" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}
