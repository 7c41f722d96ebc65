// Package cache holds the local copy of the remote collections.
//
// The cache is written from exactly two places: the serialized ledger
// operations (single-record puts after a successful remote write) and the
// synchronization layer (whole-collection replacement on snapshot receipt).
// All reads are snapshot reads at call time.
package cache

import (
	"sync"

	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
)

// Cache is the local copy of one family's collections. A mutex guards all
// access; the surrounding runtime is genuinely multithreaded.
type Cache struct {
	mu sync.RWMutex

	contributions []models.Contribution
	expenses      []models.Expense
	periods       []models.BudgetPeriod
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// ReplaceContributions replaces the whole contribution collection. Snapshot
// delivery never merges, so a local optimistic update can be overwritten by
// a remote snapshot; that is the documented consistency behavior.
func (c *Cache) ReplaceContributions(contributions []models.Contribution) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.contributions = append([]models.Contribution{}, contributions...)
}

// ReplaceExpenses replaces the whole expense collection.
func (c *Cache) ReplaceExpenses(expenses []models.Expense) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expenses = append([]models.Expense{}, expenses...)
}

// ReplacePeriods replaces the whole budget period collection.
func (c *Cache) ReplacePeriods(periods []models.BudgetPeriod) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.periods = append([]models.BudgetPeriod{}, periods...)
}

// PutContribution upserts a single contribution. Only the ledger calls this,
// right after a successful remote write.
func (c *Cache) PutContribution(contribution models.Contribution) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.contributions {
		if c.contributions[i].ID == contribution.ID {
			c.contributions[i] = contribution
			return
		}
	}

	c.contributions = append(c.contributions, contribution)
}

// PutPeriod upserts a single budget period.
func (c *Cache) PutPeriod(period models.BudgetPeriod) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.periods {
		if c.periods[i].ID == period.ID {
			c.periods[i] = period
			return
		}
	}

	c.periods = append(c.periods, period)
}

// RemoveContribution removes a single contribution, if present.
func (c *Cache) RemoveContribution(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.contributions {
		if c.contributions[i].ID == id {
			c.contributions = append(c.contributions[:i], c.contributions[i+1:]...)
			return
		}
	}
}

// Contributions returns a copy of the cached contributions.
func (c *Cache) Contributions() []models.Contribution {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]models.Contribution{}, c.contributions...)
}

// Contribution returns the cached contribution with the given ID.
func (c *Cache) Contribution(id uuid.UUID) (models.Contribution, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, contribution := range c.contributions {
		if contribution.ID == id {
			return contribution, true
		}
	}

	return models.Contribution{}, false
}

// ContributionsForPeriod returns a copy of the cached contributions that
// belong to the given period.
func (c *Cache) ContributionsForPeriod(periodID uuid.UUID) []models.Contribution {
	c.mu.RLock()
	defer c.mu.RUnlock()

	contributions := make([]models.Contribution, 0)
	for _, contribution := range c.contributions {
		if contribution.PeriodID == periodID {
			contributions = append(contributions, contribution)
		}
	}

	return contributions
}

// Expenses returns a copy of the cached expenses.
func (c *Cache) Expenses() []models.Expense {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]models.Expense{}, c.expenses...)
}

// ExpensesForMonth returns a copy of the cached expenses registered in the
// given calendar month.
func (c *Cache) ExpensesForMonth(month types.Month) []models.Expense {
	c.mu.RLock()
	defer c.mu.RUnlock()

	expenses := make([]models.Expense, 0)
	for _, expense := range c.expenses {
		if month.Contains(expense.RegisteredAt) {
			expenses = append(expenses, expense)
		}
	}

	return expenses
}

// Periods returns a copy of the cached budget periods.
func (c *Cache) Periods() []models.BudgetPeriod {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]models.BudgetPeriod{}, c.periods...)
}

// Period returns the cached period with the given ID.
func (c *Cache) Period(id uuid.UUID) (models.BudgetPeriod, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, period := range c.periods {
		if period.ID == id {
			return period, true
		}
	}

	return models.BudgetPeriod{}, false
}

// PeriodForMonth returns the cached period for the given calendar month.
func (c *Cache) PeriodForMonth(month types.Month) (models.BudgetPeriod, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, period := range c.periods {
		if period.Month.Equal(month) {
			return period, true
		}
	}

	return models.BudgetPeriod{}, false
}
