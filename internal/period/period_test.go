package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/clock"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/period"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/remote/memory"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScope types.Scope = "fam-castillo"

func testManager(t *testing.T) (*period.Manager, *cache.Cache, *memory.Store) {
	t.Helper()

	c := cache.New()
	store := memory.NewStore()

	m, err := period.NewManager(testScope, "Ana", c, store.Periods(), clock.System{})
	require.NoError(t, err)

	return m, c, store
}

func seedContribution(c *cache.Cache, periodID uuid.UUID, total float64) {
	c.PutContribution(models.Contribution{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		Scope:        testScope,
		PeriodID:     periodID,
		Contributor:  "Ana",
		TotalAmount:  decimal.NewFromFloat(total),
		Timestamp:    time.Now(),
	})
}

func seedExpense(c *cache.Cache, month types.Month, amount float64, paid bool) {
	c.ReplaceExpenses(append(c.Expenses(), models.Expense{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		Scope:        testScope,
		Description:  "luz",
		Amount:       decimal.NewFromFloat(amount),
		Category:     "servicios",
		RegisteredAt: time.Date(time.Time(month).Year(), time.Time(month).Month(), 12, 0, 0, 0, 0, time.UTC),
		Paid:         paid,
	}))
}

func TestGetOrCreate(t *testing.T) {
	m, c, store := testManager(t)
	month := types.NewMonth(2026, time.August)

	created, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, testScope, created.Scope)
	assert.Equal(t, "Ana", created.Creator)
	assert.False(t, created.Closed)
	assert.True(t, created.RolloverAmount.IsZero())

	cached, ok := c.PeriodForMonth(month)
	require.True(t, ok)
	assert.Equal(t, created.ID, cached.ID)

	// A second call for the same month returns the existing period.
	again, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, []memory.Op{memory.OpCreate}, store.PeriodCollection.Writes())
}

func TestGetOrCreateRemoteFailure(t *testing.T) {
	m, c, store := testManager(t)
	store.PeriodCollection.BeforeWrite = func(memory.Op, models.BudgetPeriod) error {
		return remote.ErrRemoteUnavailable
	}

	_, err := m.GetOrCreate(context.Background(), types.NewMonth(2026, time.August))
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
	assert.Empty(t, c.Periods())
}

func TestClose(t *testing.T) {
	m, c, _ := testManager(t)
	month := types.NewMonth(2026, time.August)

	current, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)

	// Contributed 1000, spent 400, no rollover coming in.
	seedContribution(c, current.ID, 1000)
	seedExpense(c, month, 400, true)

	closed, err := m.Close(context.Background(), current.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)

	next, ok := c.PeriodForMonth(month.Next())
	require.True(t, ok, "closing creates the next period to receive the leftover")
	assert.True(t, next.RolloverAmount.Equal(decimal.NewFromInt(600)))
	assert.False(t, next.Closed)
}

func TestCloseCountsRolloverAndIgnoresUnpaid(t *testing.T) {
	m, c, _ := testManager(t)
	month := types.NewMonth(2026, time.August)

	current, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)

	current.RolloverAmount = decimal.NewFromInt(150)
	c.PutPeriod(current)

	seedContribution(c, current.ID, 1000)
	seedExpense(c, month, 400, true)
	seedExpense(c, month, 9999, false) // pending, not spent yet

	_, err = m.Close(context.Background(), current.ID)
	require.NoError(t, err)

	next, _ := c.PeriodForMonth(month.Next())
	assert.True(t, next.RolloverAmount.Equal(decimal.NewFromInt(750)), "leftover = contributed - spent + incoming rollover")
}

func TestCloseWithoutLeftover(t *testing.T) {
	m, c, _ := testManager(t)
	month := types.NewMonth(2026, time.August)

	current, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)

	seedContribution(c, current.ID, 400)
	seedExpense(c, month, 500, true)

	closed, err := m.Close(context.Background(), current.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)

	_, ok := c.PeriodForMonth(month.Next())
	assert.False(t, ok, "an overspent month transfers nothing, there is no negative rollover")
}

func TestCloseIsNotRepeatable(t *testing.T) {
	m, c, _ := testManager(t)
	month := types.NewMonth(2026, time.August)

	current, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)
	seedContribution(c, current.ID, 1000)

	_, err = m.Close(context.Background(), current.ID)
	require.NoError(t, err)

	_, err = m.Close(context.Background(), current.ID)
	assert.ErrorIs(t, err, period.ErrAlreadyClosed)

	next, _ := c.PeriodForMonth(month.Next())
	assert.True(t, next.RolloverAmount.Equal(decimal.NewFromInt(1000)), "a repeated close never doubles the rollover")
}

func TestCloseUnknownPeriod(t *testing.T) {
	m, _, _ := testManager(t)

	_, err := m.Close(context.Background(), uuid.New())
	assert.ErrorIs(t, err, period.ErrNotFound)
}

func TestCloseRolloverWriteFailure(t *testing.T) {
	m, c, store := testManager(t)
	month := types.NewMonth(2026, time.August)

	current, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)
	seedContribution(c, current.ID, 1000)

	// The close itself succeeds, the rollover write does not.
	store.PeriodCollection.BeforeWrite = func(op memory.Op, p models.BudgetPeriod) error {
		if op == memory.OpUpdate && !p.RolloverAmount.IsZero() {
			return remote.ErrRemoteUnavailable
		}
		return nil
	}

	_, err = m.Close(context.Background(), current.ID)

	var rolloverErr period.RolloverError
	require.ErrorAs(t, err, &rolloverErr)
	assert.True(t, rolloverErr.Amount.Equal(decimal.NewFromInt(1000)))

	closed, _ := c.Period(current.ID)
	assert.True(t, closed.Closed, "the period stays closed so a retry cannot double-apply the rollover")

	_, err = m.Close(context.Background(), current.ID)
	assert.ErrorIs(t, err, period.ErrAlreadyClosed)
}

func TestTotals(t *testing.T) {
	m, c, _ := testManager(t)
	month := types.NewMonth(2026, time.August)

	current, err := m.GetOrCreate(context.Background(), month)
	require.NoError(t, err)

	seedContribution(c, current.ID, 600)
	seedContribution(c, current.ID, 400)
	seedExpense(c, month, 120.50, true)
	seedExpense(c, month, 80, false)

	assert.True(t, m.TotalContributed(current.ID).Equal(decimal.NewFromInt(1000)))
	assert.True(t, m.TotalSpent(month).Equal(decimal.NewFromFloat(120.50)))
}
