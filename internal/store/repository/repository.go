// Package repository is the PostgreSQL implementation of the persistence
// gateway. Every write is keyed so that re-running an adapter after a
// partial failure does not corrupt rows already written.
package repository

import (
	"github.com/soosb/aquafeed/internal/store"
)

// Repository implements store.Gateway against the canonical schema.
type Repository struct {
	db *store.Database
}

var _ store.Gateway = (*Repository)(nil)

// New creates a Repository over an open database.
func New(db *store.Database) *Repository {
	return &Repository{db: db}
}
