package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Ensure Store implements store.UnitOfWork
var _ store.UnitOfWork = (*Store)(nil)

// Store implements store.UnitOfWork using GORM. The same type serves as the
// store.Tx handed to Atomic callbacks, bound to the transaction's session.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Users returns the users store
func (s *Store) Users() store.UsersStore { return NewUsersStore(s.db) }

// Roles returns the role catalog
func (s *Store) Roles() store.RolesStore { return NewRolesStore(s.db) }

// Projects returns the projects store
func (s *Store) Projects() store.ProjectsStore { return NewProjectsStore(s.db) }

// Memberships returns the membership ledger
func (s *Store) Memberships() store.MembershipsStore { return NewMembershipsStore(s.db) }

// Tickets returns the tickets store
func (s *Store) Tickets() store.TicketsStore { return NewTicketsStore(s.db) }

// Atomic runs fn inside a database transaction. The transaction is rolled
// back if fn returns an error or panics.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return mapError(err)
}
