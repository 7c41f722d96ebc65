// Package memory implements the remote store in memory. It backs tests and
// lets failure modes of the real store be scripted per operation.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/familos/backend/internal/types"
	"github.com/google/uuid"
)

// Op names a write operation for failure scripting.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Store implements remote.Store in memory.
type Store struct {
	ContributionCollection *Collection[models.Contribution]
	ExpenseCollection      *Collection[models.Expense]
	PeriodCollection       *Collection[models.BudgetPeriod]

	// PingErr, when set, is returned by Ping.
	PingErr error
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		ContributionCollection: NewCollection[models.Contribution](),
		ExpenseCollection:      NewCollection[models.Expense](),
		PeriodCollection:       NewCollection[models.BudgetPeriod](),
	}
}

func (s *Store) Contributions() remote.Collection[models.Contribution] {
	return s.ContributionCollection
}

func (s *Store) Expenses() remote.Collection[models.Expense] {
	return s.ExpenseCollection
}

func (s *Store) Periods() remote.Collection[models.BudgetPeriod] {
	return s.PeriodCollection
}

func (s *Store) Ping(_ context.Context) error {
	return s.PingErr
}

// Collection implements remote.Collection in memory.
type Collection[T remote.Record] struct {
	// BeforeWrite, when set, is consulted before every write. Returning an
	// error fails the operation without changing any state, like a remote
	// write that never reached the store.
	BeforeWrite func(op Op, record T) error

	mu      sync.Mutex
	records map[uuid.UUID]T
	order   []uuid.UUID
	writes  []Op

	nextID uint64
	subs   map[uint64]subscriber[T]
}

type subscriber[T remote.Record] struct {
	scope types.Scope
	c     chan remote.Snapshot[T]
}

// NewCollection returns an empty in-memory collection.
func NewCollection[T remote.Record]() *Collection[T] {
	return &Collection[T]{
		records: make(map[uuid.UUID]T),
		subs:    make(map[uint64]subscriber[T]),
	}
}

// Seed stores records directly, bypassing failure hooks and snapshot
// delivery. It is meant for test fixtures.
func (c *Collection[T]) Seed(records ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range records {
		if _, ok := c.records[record.RecordID()]; !ok {
			c.order = append(c.order, record.RecordID())
		}
		c.records[record.RecordID()] = record
	}
}

// Writes returns the write operations performed so far, in order.
func (c *Collection[T]) Writes() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Op{}, c.writes...)
}

func (c *Collection[T]) Create(_ context.Context, record T) error {
	if err := c.beforeWrite(OpCreate, record); err != nil {
		return err
	}

	c.mu.Lock()
	if _, ok := c.records[record.RecordID()]; !ok {
		c.order = append(c.order, record.RecordID())
	}
	c.records[record.RecordID()] = record
	c.writes = append(c.writes, OpCreate)
	c.mu.Unlock()

	c.broadcast(record.RecordScope())
	return nil
}

func (c *Collection[T]) Update(_ context.Context, record T) error {
	if err := c.beforeWrite(OpUpdate, record); err != nil {
		return err
	}

	c.mu.Lock()
	if _, ok := c.records[record.RecordID()]; !ok {
		c.mu.Unlock()
		return remote.ErrNotFound
	}
	c.records[record.RecordID()] = record
	c.writes = append(c.writes, OpUpdate)
	c.mu.Unlock()

	c.broadcast(record.RecordScope())
	return nil
}

func (c *Collection[T]) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	record, ok := c.records[id]
	c.mu.Unlock()
	if !ok {
		return remote.ErrNotFound
	}

	if err := c.beforeWrite(OpDelete, record); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.records, id)
	for i, orderedID := range c.order {
		if orderedID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.writes = append(c.writes, OpDelete)
	c.mu.Unlock()

	c.broadcast(record.RecordScope())
	return nil
}

func (c *Collection[T]) List(_ context.Context, scope types.Scope) ([]T, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	return c.list(scope), nil
}

func (c *Collection[T]) Subscribe(scope types.Scope) (*remote.Subscription[T], error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	ch := make(chan remote.Snapshot[T], 16)

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

	c.broadcast(scope)

	return sub, nil
}

// Broadcast pushes a fresh snapshot for the scope to all subscribers. Tests
// use it to simulate a remote change arriving out of band.
func (c *Collection[T]) Broadcast(scope types.Scope) {
	c.broadcast(scope)
}

func (c *Collection[T]) beforeWrite(op Op, record T) error {
	if c.BeforeWrite == nil {
		return nil
	}

	return c.BeforeWrite(op, record)
}

func (c *Collection[T]) list(scope types.Scope) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]T, 0, len(c.order))
	for _, id := range c.order {
		record := c.records[id]
		if record.RecordScope() == scope {
			records = append(records, record)
		}
	}

	return records
}

func (c *Collection[T]) broadcast(scope types.Scope) {
	snapshot := remote.Snapshot[T]{
		Records: c.list(scope),
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
