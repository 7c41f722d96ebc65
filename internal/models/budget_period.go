package models

import (
	"strings"

	"github.com/familos/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetPeriod is a monthly accounting window. At most one period exists per
// family and calendar month; it transitions from open to closed exactly once.
type BudgetPeriod struct {
	DefaultModel
	Scope          types.Scope     `gorm:"uniqueIndex:period_scope_month"`
	Month          types.Month     `json:"month" gorm:"uniqueIndex:period_scope_month"`
	Creator        string          `json:"creator"`
	Closed         bool            `json:"closed"`
	RolloverAmount decimal.Decimal `json:"rolloverAmount" gorm:"type:DECIMAL(20,8)"`
}

// RecordScope returns the family the period belongs to.
func (p BudgetPeriod) RecordScope() types.Scope {
	return p.Scope
}

// BeforeSave trims whitespace from all strings.
func (p *BudgetPeriod) BeforeSave(_ *gorm.DB) error {
	p.Creator = strings.TrimSpace(p.Creator)
	return nil
}
