// Package remote defines the contract with the remote store that holds the
// authoritative copy of all records.
//
// The store only supports independent per-record writes; there is no
// multi-record transaction primitive. Consistency with the local cache is
// re-established by snapshot delivery: every subscription delivers the whole
// collection, never a patch.
package remote

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
)

var (
	// ErrRemoteUnavailable is returned for transient network or store
	// failures. Callers may retry single writes with backoff.
	ErrRemoteUnavailable = errors.New("the remote store is unavailable")

	// ErrNotFound is returned when no record matches the given ID.
	ErrNotFound = errors.New("there is no record matching the given ID")
)

// Record is implemented by every model the store persists.
type Record interface {
	models.Contribution | models.Expense | models.BudgetPeriod

	RecordID() uuid.UUID
	RecordScope() types.Scope
}

// Snapshot is the full state of one collection for one scope at a point in
// time. Consumers replace their local copy wholesale; they never merge.
type Snapshot[T Record] struct {
	Records []T
	At      time.Time
}

// Subscription delivers snapshots for one collection until it is closed.
type Subscription[T Record] struct {
	// C receives a snapshot of the whole collection after every committed
	// write, and once right after subscribing. It is closed when the
	// subscription ends.
	C <-chan Snapshot[T]

	once   sync.Once
	cancel func()
}

// NewSubscription builds a Subscription around a snapshot channel and a
// cancel function. The cancel function is invoked at most once.
func NewSubscription[T Record](c <-chan Snapshot[T], cancel func()) *Subscription[T] {
	return &Subscription[T]{C: c, cancel: cancel}
}

// Close releases the subscription. It is safe to call multiple times and
// from teardown paths that never started anything.
func (s *Subscription[T]) Close() {
	if s == nil {
		return
	}

	s.once.Do(s.cancel)
}

// Collection is the per-record-type surface of the remote store. All calls
// may fail with ErrRemoteUnavailable.
type Collection[T Record] interface {
	Create(ctx context.Context, record T) error
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the authoritative state of the collection for a scope.
	List(ctx context.Context, scope types.Scope) ([]T, error)

	// Subscribe starts snapshot delivery for a scope.
	Subscribe(scope types.Scope) (*Subscription[T], error)
}

// Store aggregates the collections the ledger works with.
type Store interface {
	Contributions() Collection[models.Contribution]
	Expenses() Collection[models.Expense]
	Periods() Collection[models.BudgetPeriod]

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
