package sync

import (
	"context"
	"time"

	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// probeTimeout bounds how long a connectivity probe may take.
const probeTimeout = 5 * time.Second

// Discrepancy reports one contribution field whose cached value differs from
// the remote store. Reconciliation only reports; the next snapshot is what
// heals the cache.
type Discrepancy struct {
	ContributionID uuid.UUID       `json:"contributionId"`
	Field          string          `json:"field"`
	CachedValue    decimal.Decimal `json:"cachedValue"`
	RemoteValue    decimal.Decimal `json:"remoteValue"`
}

// Reconciler compares cached contributions of one period against the remote
// store.
type Reconciler struct {
	scope types.Scope
	cache *cache.Cache
	store remote.Store
}

// NewReconciler returns a reconciler for the given family.
func NewReconciler(scope types.Scope, c *cache.Cache, store remote.Store) (*Reconciler, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	return &Reconciler{
		scope: scope,
		cache: c,
		store: store,
	}, nil
}

// Reconcile fetches the period's contributions from the remote store and
// compares their amounts against the cache, pair by pair. Amounts within
// models.Epsilon of each other count as equal. Contributions
// present on only one side are skipped; snapshot delivery converges those on
// its own. The cache is never modified.
func (r *Reconciler) Reconcile(ctx context.Context, periodID uuid.UUID) ([]Discrepancy, error) {
	records, err := r.store.Contributions().List(ctx, r.scope)
	if err != nil {
		return nil, err
	}

	remoteByID := make(map[uuid.UUID]models.Contribution, len(records))
	for _, record := range records {
		remoteByID[record.ID] = record
	}

	discrepancies := make([]Discrepancy, 0)
	for _, cached := range r.cache.ContributionsForPeriod(periodID) {
		stored, ok := remoteByID[cached.ID]
		if !ok {
			continue
		}

		if !models.AmountsEqual(cached.UsedAmount, stored.UsedAmount) {
			discrepancies = append(discrepancies, Discrepancy{
				ContributionID: cached.ID,
				Field:          "usedAmount",
				CachedValue:    cached.UsedAmount,
				RemoteValue:    stored.UsedAmount,
			})
		}

		if !models.AmountsEqual(cached.TotalAmount, stored.TotalAmount) {
			discrepancies = append(discrepancies, Discrepancy{
				ContributionID: cached.ID,
				Field:          "totalAmount",
				CachedValue:    cached.TotalAmount,
				RemoteValue:    stored.TotalAmount,
			})
		}
	}

	return discrepancies, nil
}

// Probe checks whether the remote store currently answers, within
// probeTimeout.
func (r *Reconciler) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	return r.store.Ping(ctx)
}
