package models

import (
	"errors"
	"strings"
	"time"

	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contribution is a member's pledge of funds into a budget period's pool.
//
// TotalAmount never changes after creation. UsedAmount grows as the
// allocation engine consumes the contribution to settle expenses.
type Contribution struct {
	DefaultModel
	Scope       types.Scope     `gorm:"index"`
	PeriodID    uuid.UUID       `json:"periodId" gorm:"index"`
	Contributor string          `json:"contributor"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:DECIMAL(20,8)"`
	UsedAmount  decimal.Decimal `json:"usedAmount" gorm:"type:DECIMAL(20,8)"`
	Timestamp   time.Time       `json:"timestamp"`
	Comment     string          `json:"comment,omitempty"`
}

var (
	ErrContributionAmountNotPositive = errors.New("contribution amounts must be larger than zero")
	ErrContributionOverdrawn         = errors.New("the used amount of a contribution cannot exceed its total amount")
	ErrContributionUsedNegative      = errors.New("the used amount of a contribution cannot be negative")
)

// AvailableBalance is the part of the contribution not yet consumed. It is
// always derived, never stored.
func (c Contribution) AvailableBalance() decimal.Decimal {
	return c.TotalAmount.Sub(c.UsedAmount)
}

// RecordScope returns the family the contribution belongs to.
func (c Contribution) RecordScope() types.Scope {
	return c.Scope
}

// BeforeSave enforces the balance invariant at the store boundary and trims
// whitespace from all strings.
func (c *Contribution) BeforeSave(_ *gorm.DB) error {
	if !c.TotalAmount.IsPositive() {
		return ErrContributionAmountNotPositive
	}

	if c.UsedAmount.IsNegative() {
		return ErrContributionUsedNegative
	}

	if c.UsedAmount.GreaterThan(c.TotalAmount) {
		return ErrContributionOverdrawn
	}

	c.Contributor = strings.TrimSpace(c.Contributor)
	c.Comment = strings.TrimSpace(c.Comment)

	return nil
}
