// Package sync keeps the cache aligned with the remote store. It subscribes
// to snapshot pushes per collection and replaces the cached collection on
// every delivery.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Status is a watcher's position in its lifecycle. A watcher only ever moves
// forward through these, except when a lost subscription sends it back to
// subscribing.
type Status string

const (
	StatusUnsubscribed Status = "unsubscribed"
	StatusSubscribing  Status = "subscribing"
	StatusActive       Status = "active"
)

// resubscribeDelay is the pause before retrying a failed subscription.
const resubscribeDelay = 5 * time.Second

var snapshotsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "familos_sync_snapshots_received_total",
	Help: "Number of collection snapshots received from the remote store.",
}, []string{"collection"})

// Syncer runs one watcher per collection for a single family.
type Syncer struct {
	scope types.Scope
	store remote.Store
	log   zerolog.Logger

	contributions *watcher[models.Contribution]
	expenses      *watcher[models.Expense]
	periods       *watcher[models.BudgetPeriod]

	mu     stdsync.Mutex
	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

// NewSyncer returns a stopped syncer for the given family.
func NewSyncer(scope types.Scope, c *cache.Cache, store remote.Store, log zerolog.Logger) (*Syncer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	return &Syncer{
		scope: scope,
		store: store,
		log:   log,
		contributions: &watcher[models.Contribution]{
			name:       "contributions",
			collection: store.Contributions(),
			apply:      c.ReplaceContributions,
			status:     StatusUnsubscribed,
		},
		expenses: &watcher[models.Expense]{
			name:       "expenses",
			collection: store.Expenses(),
			apply:      c.ReplaceExpenses,
			status:     StatusUnsubscribed,
		},
		periods: &watcher[models.BudgetPeriod]{
			name:       "periods",
			collection: store.Periods(),
			apply:      c.ReplacePeriods,
			status:     StatusUnsubscribed,
		},
	}, nil
}

// Start subscribes all watchers. Calling Start on a running syncer does
// nothing.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.contributions.run(ctx, s.scope, s.log)
	}()
	go func() {
		defer s.wg.Done()
		s.expenses.run(ctx, s.scope, s.log)
	}()
	go func() {
		defer s.wg.Done()
		s.periods.run(ctx, s.scope, s.log)
	}()

	s.log.Info().Str("scope", string(s.scope)).Msg("synchronization started")
}

// Stop cancels all watchers and waits for them to unsubscribe. Stopping a
// stopped syncer does nothing, so shutdown paths can call it freely.
func (s *Syncer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	s.wg.Wait()
	s.log.Info().Str("scope", string(s.scope)).Msg("synchronization stopped")
}

// CollectionStatus describes one watcher.
type CollectionStatus struct {
	Status Status `json:"status"`

	// LastSnapshotAt is when the last snapshot was applied, zero before the
	// first one.
	LastSnapshotAt time.Time `json:"lastSnapshotAt"`
}

// State reports every watcher's status by collection name.
func (s *Syncer) State() map[string]CollectionStatus {
	return map[string]CollectionStatus{
		"contributions": s.contributions.state(),
		"expenses":      s.expenses.state(),
		"periods":       s.periods.state(),
	}
}

// watcher subscribes to one collection and mirrors its snapshots into the
// cache.
type watcher[T remote.Record] struct {
	name       string
	collection remote.Collection[T]
	apply      func([]T)

	mu             stdsync.Mutex
	status         Status
	lastSnapshotAt time.Time
}

func (w *watcher[T]) run(ctx context.Context, scope types.Scope, log zerolog.Logger) {
	defer w.setStatus(StatusUnsubscribed)

	for {
		w.setStatus(StatusSubscribing)

		sub, err := w.collection.Subscribe(scope)
		if err != nil {
			log.Warn().Err(err).Str("collection", w.name).Msg("subscription failed, retrying")

			select {
			case <-ctx.Done():
				return
			case <-time.After(resubscribeDelay):
				continue
			}
		}

		w.consume(ctx, sub, log)
		sub.Close()

		if ctx.Err() != nil {
			return
		}

		// The channel closed without the context being canceled, so the
		// store dropped the subscription. Resubscribe.
		log.Warn().Str("collection", w.name).Msg("subscription lost, resubscribing")
	}
}

func (w *watcher[T]) consume(ctx context.Context, sub *remote.Subscription[T], log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}

			// Whole-collection replacement. A snapshot can overwrite a
			// local optimistic update; the remote store is ground truth.
			w.apply(snapshot.Records)

			w.mu.Lock()
			w.status = StatusActive
			w.lastSnapshotAt = snapshot.At
			w.mu.Unlock()

			snapshotsReceived.WithLabelValues(w.name).Inc()
			log.Debug().Str("collection", w.name).Int("records", len(snapshot.Records)).Msg("snapshot applied")
		}
	}
}

func (w *watcher[T]) setStatus(status Status) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.status = status
}

func (w *watcher[T]) state() CollectionStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	return CollectionStatus{
		Status:         w.status,
		LastSnapshotAt: w.lastSnapshotAt,
	}
}
