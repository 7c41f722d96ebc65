// Package models defines the records the ledger operates on.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultModel is the base model for all records in the FamilOS backend.
type DefaultModel struct {
	ID uuid.UUID `json:"id" gorm:"primaryKey"` // UUID for the record
	Timestamps
}

// Timestamps contains the timestamps that gorm sets automatically.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
func (m *DefaultModel) AfterFind(_ *gorm.DB) error {
	m.CreatedAt = m.CreatedAt.In(time.UTC)
	m.UpdatedAt = m.UpdatedAt.In(time.UTC)

	return nil
}

// BeforeCreate generates a UUID for the record if it does not have one yet.
//
// Records created locally and pushed to the remote store keep the ID they
// were created with, so a snapshot returns them under the same identity.
func (m *DefaultModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}

// RecordID returns the record's UUID.
func (m DefaultModel) RecordID() uuid.UUID {
	return m.ID
}
