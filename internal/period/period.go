// Package period manages monthly budget periods: lazy creation per calendar
// month, closing, and rolling leftover balance into the next month.
package period

import (
	"context"
	"errors"
	"fmt"

	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/clock"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAlreadyClosed is returned when a closed period is closed again.
	// The second close changes no state.
	ErrAlreadyClosed = errors.New("the budget period is already closed")

	// ErrNotFound is returned when no period matches the given ID.
	ErrNotFound = errors.New("there is no budget period matching the given ID")
)

// RolloverError is returned when the period was marked closed but the
// rollover transfer into the next month could not be pushed. The rollover is
// not lost remotely, it was simply never written; the caller decides whether
// to transfer it manually or reconcile.
type RolloverError struct {
	Month  types.Month
	Amount decimal.Decimal
	Err    error
}

func (e RolloverError) Error() string {
	return fmt.Sprintf("the period was closed, but the rollover of %s into %s could not be written: %v", e.Amount, e.Month, e.Err)
}

func (e RolloverError) Unwrap() error {
	return e.Err
}

// Manager exclusively owns BudgetPeriod.Closed and RolloverAmount.
type Manager struct {
	scope   types.Scope
	creator string
	cache   *cache.Cache
	store   remote.Collection[models.BudgetPeriod]
	clock   clock.Clock
}

// NewManager returns a period manager for one family. Lazily created
// periods carry the given creator.
func NewManager(scope types.Scope, creator string, c *cache.Cache, store remote.Collection[models.BudgetPeriod], clk clock.Clock) (*Manager, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if clk == nil {
		clk = clock.System{}
	}

	return &Manager{
		scope:   scope,
		creator: creator,
		cache:   c,
		store:   store,
		clock:   clk,
	}, nil
}

// GetOrCreate returns the period for the given calendar month, creating an
// open one with zero rollover if none exists yet.
func (m *Manager) GetOrCreate(ctx context.Context, month types.Month) (models.BudgetPeriod, error) {
	if existing, ok := m.cache.PeriodForMonth(month); ok {
		return existing, nil
	}

	period := models.BudgetPeriod{
		DefaultModel:   models.DefaultModel{ID: uuid.New()},
		Scope:          m.scope,
		Month:          month,
		Creator:        m.creator,
		Closed:         false,
		RolloverAmount: decimal.Zero,
	}

	if err := m.store.Create(ctx, period); err != nil {
		return models.BudgetPeriod{}, err
	}

	m.cache.PutPeriod(period)
	return period, nil
}

// Close closes the period and transfers a positive leftover into the next
// calendar month's period, creating it if needed. Closing an already closed
// period fails with ErrAlreadyClosed and changes nothing, so rollover can
// never be applied twice.
//
// The period is marked closed before the rollover is written: if the
// rollover push fails, a retried Close returns ErrAlreadyClosed instead of
// transferring the leftover again, and the failure is reported as a
// RolloverError.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) (models.BudgetPeriod, error) {
	period, ok := m.cache.Period(id)
	if !ok {
		return models.BudgetPeriod{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if period.Closed {
		return period, ErrAlreadyClosed
	}

	leftover := m.TotalContributed(period.ID).
		Sub(m.TotalSpent(period.Month)).
		Add(period.RolloverAmount)

	closed := period
	closed.Closed = true

	if err := m.store.Update(ctx, closed); err != nil {
		return period, err
	}
	m.cache.PutPeriod(closed)

	// A negative or zero leftover is not transferred; there is no negative
	// rollover.
	if !leftover.IsPositive() {
		return closed, nil
	}

	next, err := m.GetOrCreate(ctx, period.Month.Next())
	if err != nil {
		return closed, RolloverError{Month: period.Month.Next(), Amount: leftover, Err: err}
	}

	next.RolloverAmount = next.RolloverAmount.Add(leftover)
	if err := m.store.Update(ctx, next); err != nil {
		return closed, RolloverError{Month: next.Month, Amount: leftover, Err: err}
	}
	m.cache.PutPeriod(next)

	return closed, nil
}

// TotalContributed returns the sum of all contribution totals recorded for
// the period, consumed or not.
func (m *Manager) TotalContributed(periodID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, contribution := range m.cache.ContributionsForPeriod(periodID) {
		total = total.Add(contribution.TotalAmount)
	}

	return total
}

// TotalSpent returns the sum of paid expenses registered in the month.
// Unpaid expenses are pending and do not consume the pool yet.
func (m *Manager) TotalSpent(month types.Month) decimal.Decimal {
	total := decimal.Zero
	for _, expense := range m.cache.ExpensesForMonth(month) {
		if expense.Paid {
			total = total.Add(expense.Amount)
		}
	}

	return total
}
