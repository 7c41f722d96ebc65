package models

import (
	"strings"
	"time"

	"github.com/familos/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is an amount owed or paid, scoped to a category and a point in
// time. Expenses are associated to a budget period by the calendar month of
// RegisteredAt, not by a foreign key: they are recorded independently of the
// period that funds them.
type Expense struct {
	DefaultModel
	Scope        types.Scope     `gorm:"index"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Category     string          `json:"category"`
	RegisteredAt time.Time       `json:"registeredAt"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	Paid         bool            `json:"paid"`
	Responsible  string          `json:"responsible"`
}

// Month returns the calendar month the expense belongs to.
func (e Expense) Month() types.Month {
	return types.MonthOf(e.RegisteredAt)
}

// RecordScope returns the family the expense belongs to.
func (e Expense) RecordScope() types.Scope {
	return e.Scope
}

// BeforeSave normalizes timestamps to UTC and trims whitespace.
func (e *Expense) BeforeSave(_ *gorm.DB) error {
	if e.RegisteredAt.IsZero() {
		e.RegisteredAt = time.Now().In(time.UTC)
	} else {
		e.RegisteredAt = e.RegisteredAt.In(time.UTC)
	}

	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.Responsible = strings.TrimSpace(e.Responsible)

	return nil
}
