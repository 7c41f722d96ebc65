package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/types"
	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// snapshotBuffer is the channel capacity per subscriber. A lagging
// subscriber drops intermediate snapshots; every snapshot is complete, so
// only the latest one matters.
const snapshotBuffer = 16

type subscriber[T remote.Record] struct {
	scope types.Scope
	c     chan remote.Snapshot[T]
}

// collection implements remote.Collection for one record type.
type collection[T remote.Record] struct {
	db *gorm.DB

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]subscriber[T]
}

func newCollection[T remote.Record](db *gorm.DB) *collection[T] {
	return &collection[T]{
		db:   db,
		subs: make(map[uint64]subscriber[T]),
	}
}

func (c *collection[T]) Create(ctx context.Context, record T) error {
	err := c.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return classify(err)
	}

	c.broadcast(ctx, record.RecordScope())
	return nil
}

func (c *collection[T]) Update(ctx context.Context, record T) error {
	var existing T
	err := c.db.WithContext(ctx).First(&existing, "id = ?", record.RecordID()).Error
	if err != nil {
		return classify(err)
	}

	err = c.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		return classify(err)
	}

	c.broadcast(ctx, record.RecordScope())
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var existing T
	err := c.db.WithContext(ctx).First(&existing, "id = ?", id).Error
	if err != nil {
		return classify(err)
	}

	err = c.db.WithContext(ctx).Delete(&existing).Error
	if err != nil {
		return classify(err)
	}

	c.broadcast(ctx, existing.RecordScope())
	return nil
}

func (c *collection[T]) List(ctx context.Context, scope types.Scope) ([]T, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var records []T
	err := c.db.WithContext(ctx).
		Order("created_at ASC").
		Where("scope = ?", scope).
		Find(&records).Error
	if err != nil {
		return nil, classify(err)
	}

	return records, nil
}

// Subscribe registers a subscriber for the scope and pushes an initial
// snapshot so the consumer does not have to wait for the next write.
func (c *collection[T]) Subscribe(scope types.Scope) (*remote.Subscription[T], error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	ch := make(chan remote.Snapshot[T], snapshotBuffer)

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs[id] = subscriber[T]{scope: scope, c: ch}
	c.mu.Unlock()

	sub := remote.NewSubscription(ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if s, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(s.c)
		}
	})

	go c.broadcast(context.Background(), scope)

	return sub, nil
}

// broadcast lists the scope's records and sends the snapshot to every
// matching subscriber. Sends never block: a full buffer means the subscriber
// still has an older snapshot pending, and the next write supersedes it.
func (c *collection[T]) broadcast(ctx context.Context, scope types.Scope) {
	records, err := c.List(ctx, scope)
	if err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Msg("snapshot could not be assembled")
		return
	}

	snapshot := remote.Snapshot[T]{
		Records: records,
		At:      time.Now().In(time.UTC),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.subs {
		if s.scope != scope {
			continue
		}

		select {
		case s.c <- snapshot:
		default:
		}
	}
}

// classify maps database errors to the remote store error kinds. Validation
// errors from model hooks pass through unchanged so callers see the specific
// message.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return remote.ErrNotFound
	}

	var sqliteErr *go_sqlite.Error
	if errors.As(err, &sqliteErr) || err.Error() == "sql: database is closed" {
		log.Error().Msgf("%T: %v", err, err.Error())
		return fmt.Errorf("%w: %v", remote.ErrRemoteUnavailable, err)
	}

	return err
}
