package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("amounts must be larger than zero")

	// ErrNotFound is returned when no contribution matches the given ID.
	ErrNotFound = errors.New("there is no contribution matching the given ID")

	// ErrContributionInUse is returned when a contribution that has already
	// been consumed from would be removed. Allocations reference it.
	ErrContributionInUse = errors.New("a contribution cannot be removed once part of it has been spent")
)

// InsufficientBalanceError is returned when a single contribution does not
// cover the requested amount.
type InsufficientBalanceError struct {
	ContributionID uuid.UUID
	Available      decimal.Decimal
	Requested      decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("contribution %s only has %s available, but %s was requested", e.ContributionID, e.Available, e.Requested)
}

// InsufficientFundsError is returned when the period's contributions as a
// whole do not cover the requested amount.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	Missing   decimal.Decimal
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("the period's contributions cover %s of the requested %s, %s is missing", e.Available, e.Requested, e.Missing)
}

// SumMismatchError is returned when the amounts of a manual distribution do
// not add up to the required total.
type SumMismatchError struct {
	Required decimal.Decimal
	Selected decimal.Decimal
}

// Difference returns how far the selection is off: negative for a deficit,
// positive for an excess.
func (e SumMismatchError) Difference() decimal.Decimal {
	return e.Selected.Sub(e.Required)
}

func (e SumMismatchError) Error() string {
	diff := e.Difference()
	if diff.IsNegative() {
		return fmt.Sprintf("the selected amounts fall short of the required %s by %s", e.Required, diff.Abs())
	}

	return fmt.Sprintf("the selected amounts exceed the required %s by %s", e.Required, diff)
}

// PartialAllocationError is returned when a distribution could not be fully
// applied. The remote store has no multi-record transactions, so entries
// already applied are not rolled back; the funds they consumed stay
// consumed until the next snapshot re-establishes ground truth.
type PartialAllocationError struct {
	// Applied is the number of entries fully applied and pushed before the
	// failure. Entries are applied in distribution order, so this is always
	// a prefix.
	Applied int

	// FailedContribution is the contribution whose write failed.
	FailedContribution uuid.UUID

	// Err is the underlying failure.
	Err error
}

func (e PartialAllocationError) Error() string {
	return fmt.Sprintf(
		"the allocation was interrupted after %d applied entries at contribution %s: %v. Some funds may already be consumed; re-check balances before retrying the remainder",
		e.Applied, e.FailedContribution, e.Err,
	)
}

func (e PartialAllocationError) Unwrap() error {
	return e.Err
}
