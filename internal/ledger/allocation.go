package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Entry assigns an amount to use from one contribution.
type Entry struct {
	ContributionID uuid.UUID       `json:"contributionId" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
}

// Distribution maps a required payment amount onto one or more
// contributions' available balances. It is ephemeral: computing one does not
// change any balance until it is applied.
type Distribution struct {
	PeriodID uuid.UUID `json:"periodId"`
	Entries  []Entry   `json:"entries"`
}

// Total returns the sum of all entry amounts.
func (d Distribution) Total() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range d.Entries {
		total = total.Add(entry.Amount)
	}

	return total
}

// Engine computes distributions and applies them against the ledger.
type Engine struct {
	ledger *Ledger
	store  remote.Collection[models.Contribution]
}

// NewEngine returns an allocation engine working on the given ledger.
func NewEngine(l *Ledger, store remote.Collection[models.Contribution]) *Engine {
	return &Engine{
		ledger: l,
		store:  store,
	}
}

// ComputeAutomaticDistribution distributes targetAmount over the period's
// contributions, largest available balance first. Taking from the largest
// balances touches the fewest contributions, which keeps the number of
// remote writes and the partial-failure surface small.
//
// Ties are broken by earlier timestamp, then by ID, so the same input set
// always produces the same ordered distribution.
func (e *Engine) ComputeAutomaticDistribution(periodID uuid.UUID, targetAmount decimal.Decimal) (Distribution, error) {
	if !targetAmount.IsPositive() {
		return Distribution{}, ErrInvalidAmount
	}

	eligible := e.ledger.AvailableContributions(periodID)

	available := decimal.Zero
	for _, contribution := range eligible {
		available = available.Add(contribution.AvailableBalance())
	}

	if missing := models.ExceedsBy(targetAmount, available); !missing.IsZero() {
		return Distribution{}, InsufficientFundsError{
			Available: available,
			Requested: targetAmount,
			Missing:   missing,
		}
	}

	slices.SortFunc(eligible, func(a, b models.Contribution) int {
		if cmp := b.AvailableBalance().Cmp(a.AvailableBalance()); cmp != 0 {
			return cmp
		}

		if !a.Timestamp.Equal(b.Timestamp) {
			if a.Timestamp.Before(b.Timestamp) {
				return -1
			}
			return 1
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	distribution := Distribution{PeriodID: periodID}
	remaining := targetAmount

	for _, contribution := range eligible {
		if !remaining.IsPositive() {
			break
		}

		use := decimal.Min(contribution.AvailableBalance(), remaining)
		distribution.Entries = append(distribution.Entries, Entry{
			ContributionID: contribution.ID,
			Amount:         use,
		})
		remaining = remaining.Sub(use)
	}

	return distribution, nil
}

// ValidateManualDistribution checks a caller-supplied selection against the
// required amount and the current balances. It returns nil only if the sum
// matches the required amount within the tolerance and no selection exceeds
// its contribution's available balance.
func (e *Engine) ValidateManualDistribution(periodID uuid.UUID, selections []Entry, requiredAmount decimal.Decimal) error {
	selected := decimal.Zero
	for _, selection := range selections {
		selected = selected.Add(selection.Amount)
	}

	if !models.AmountsEqual(selected, requiredAmount) {
		return SumMismatchError{
			Required: requiredAmount,
			Selected: selected,
		}
	}

	// A contribution may be selected more than once; the balance check runs
	// against the running sum of its selections.
	requestedByID := make(map[uuid.UUID]decimal.Decimal)
	for _, selection := range selections {
		if !selection.Amount.IsPositive() {
			return ErrInvalidAmount
		}

		contribution, ok := e.ledger.cache.Contribution(selection.ContributionID)
		if !ok || contribution.PeriodID != periodID {
			return fmt.Errorf("%w: %s", ErrNotFound, selection.ContributionID)
		}

		requested := requestedByID[selection.ContributionID].Add(selection.Amount)
		requestedByID[selection.ContributionID] = requested

		available := contribution.AvailableBalance()
		if missing := models.ExceedsBy(requested, available); !missing.IsZero() {
			return InsufficientBalanceError{
				ContributionID: selection.ContributionID,
				Available:      available,
				Requested:      requested,
			}
		}
	}

	return nil
}

// ApplyDistribution consumes each entry and pushes the updated contribution
// to the remote store, strictly in the distribution's order and one write at
// a time. A failure stops the sequence: entries already applied stay
// applied (the store has no multi-record transactions) and the caller gets
// a PartialAllocationError describing exactly where the sequence stopped.
func (e *Engine) ApplyDistribution(ctx context.Context, distribution Distribution) error {
	for i, entry := range distribution.Entries {
		updated, err := e.ledger.Consume(entry.ContributionID, entry.Amount)
		if err != nil {
			return PartialAllocationError{
				Applied:            i,
				FailedContribution: entry.ContributionID,
				Err:                err,
			}
		}

		if err := e.store.Update(ctx, updated); err != nil {
			return PartialAllocationError{
				Applied:            i,
				FailedContribution: entry.ContributionID,
				Err:                err,
			}
		}
	}

	return nil
}
