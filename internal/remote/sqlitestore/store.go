// Package sqlitestore implements the remote store on a local SQLite
// database. It is the store the self-hosted deployment ships with: writes
// are committed per record and every committed write pushes a fresh
// whole-collection snapshot to all subscribers of the record's scope.
package sqlitestore

import (
	"context"
	"fmt"
	"time"

	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/remote"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Store implements remote.Store on SQLite.
type Store struct {
	db *gorm.DB

	contributions *collection[models.Contribution]
	expenses      *collection[models.Expense]
	periods       *collection[models.BudgetPeriod]
}

// Open connects to the SQLite database, migrates the schema and configures
// the connection pool.
func Open(dsn string) (*Store, error) {
	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{Logger: log.Logger},
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(models.Contribution{}, models.Expense{}, models.BudgetPeriod{})
	if err != nil {
		return nil, fmt.Errorf("error during DB migration: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	return &Store{
		db:            db,
		contributions: newCollection[models.Contribution](db),
		expenses:      newCollection[models.Expense](db),
		periods:       newCollection[models.BudgetPeriod](db),
	}, nil
}

// Contributions returns the contribution collection.
func (s *Store) Contributions() remote.Collection[models.Contribution] {
	return s.contributions
}

// Expenses returns the expense collection.
func (s *Store) Expenses() remote.Collection[models.Expense] {
	return s.expenses
}

// Periods returns the budget period collection.
func (s *Store) Periods() remote.Collection[models.BudgetPeriod] {
	return s.periods
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", remote.ErrRemoteUnavailable, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", remote.ErrRemoteUnavailable, err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
