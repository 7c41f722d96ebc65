// Package ledger owns contribution records and their balance arithmetic,
// and computes and applies distributions of payment amounts across them.
package ledger

import (
	"context"
	"fmt"

	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/clock"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the only component that mutates contribution balances. All
// mutations go through the local cache first and are pushed to the remote
// store; the next snapshot confirms or overwrites them.
type Ledger struct {
	scope types.Scope
	cache *cache.Cache
	store remote.Collection[models.Contribution]
	clock clock.Clock
}

// New returns a Ledger for one family. The scope must be set.
func New(scope types.Scope, c *cache.Cache, store remote.Collection[models.Contribution], clk clock.Clock) (*Ledger, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if clk == nil {
		clk = clock.System{}
	}

	return &Ledger{
		scope: scope,
		cache: c,
		store: store,
		clock: clk,
	}, nil
}

// RecordContribution records a new pledge of funds into the given period.
// The amount must be larger than zero.
func (l *Ledger) RecordContribution(ctx context.Context, periodID uuid.UUID, contributor string, amount decimal.Decimal, comment string) (models.Contribution, error) {
	if !amount.IsPositive() {
		return models.Contribution{}, ErrInvalidAmount
	}

	contribution := models.Contribution{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		Scope:        l.scope,
		PeriodID:     periodID,
		Contributor:  contributor,
		TotalAmount:  amount,
		UsedAmount:   decimal.Zero,
		Timestamp:    l.clock.Now(),
		Comment:      comment,
	}

	if err := l.store.Create(ctx, contribution); err != nil {
		return models.Contribution{}, err
	}

	l.cache.PutContribution(contribution)
	return contribution, nil
}

// AvailableContributions returns the period's contributions that still have
// a positive available balance, in no particular order.
func (l *Ledger) AvailableContributions(periodID uuid.UUID) []models.Contribution {
	available := make([]models.Contribution, 0)
	for _, contribution := range l.cache.ContributionsForPeriod(periodID) {
		if contribution.AvailableBalance().IsPositive() {
			available = append(available, contribution)
		}
	}

	return available
}

// TotalAvailable returns the sum of available balances across the period's
// contributions.
func (l *Ledger) TotalAvailable(periodID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, contribution := range l.cache.ContributionsForPeriod(periodID) {
		total = total.Add(contribution.AvailableBalance())
	}

	return total
}

// TotalContributed returns the sum of total amounts across the period's
// contributions, consumed or not.
func (l *Ledger) TotalContributed(periodID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, contribution := range l.cache.ContributionsForPeriod(periodID) {
		total = total.Add(contribution.TotalAmount)
	}

	return total
}

// Consume increases a contribution's used amount. It is the only primitive
// that changes balances and is called by the allocation engine, never by
// presentation code.
//
// The mutation is local; the caller pushes the returned contribution to the
// remote store.
func (l *Ledger) Consume(id uuid.UUID, amount decimal.Decimal) (models.Contribution, error) {
	if !amount.IsPositive() {
		return models.Contribution{}, ErrInvalidAmount
	}

	contribution, ok := l.cache.Contribution(id)
	if !ok {
		return models.Contribution{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	available := contribution.AvailableBalance()
	if missing := models.ExceedsBy(amount, available); !missing.IsZero() {
		return models.Contribution{}, InsufficientBalanceError{
			ContributionID: id,
			Available:      available,
			Requested:      amount,
		}
	}

	contribution.UsedAmount = contribution.UsedAmount.Add(amount)

	// The comparison tolerance allows consuming up to 0.01 past the
	// available balance; clamp so usedAmount never exceeds totalAmount.
	if contribution.UsedAmount.GreaterThan(contribution.TotalAmount) {
		contribution.UsedAmount = contribution.TotalAmount
	}

	l.cache.PutContribution(contribution)
	return contribution, nil
}

// RemoveContribution removes a contribution that has not been consumed from
// yet. Once usedAmount is larger than zero, past allocations reference the
// contribution and removal is refused.
func (l *Ledger) RemoveContribution(ctx context.Context, id uuid.UUID) error {
	contribution, ok := l.cache.Contribution(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if contribution.UsedAmount.GreaterThan(models.Epsilon) {
		return ErrContributionInUse
	}

	if err := l.store.Delete(ctx, id); err != nil {
		return err
	}

	l.cache.RemoveContribution(id)
	return nil
}
