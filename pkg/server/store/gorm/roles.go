package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Ensure RolesStore implements store.RolesStore
var _ store.RolesStore = (*RolesStore)(nil)

// RolesStore implements store.RolesStore using GORM
type RolesStore struct {
	db *gorm.DB
}

// NewRolesStore creates a new RolesStore
func NewRolesStore(db *gorm.DB) *RolesStore {
	return &RolesStore{db: db}
}

// GetRoleID resolves a role name to its id
func (s *RolesStore) GetRoleID(ctx context.Context, name string) (int, error) {
	var roleID int
	err := s.db.WithContext(ctx).
		Raw(`SELECT role_id FROM roles WHERE name = ?`, name).
		Row().Scan(&roleID)
	if err != nil {
		return 0, mapError(err)
	}
	return roleID, nil
}

// ListRoles returns all roles ordered by id
func (s *RolesStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := s.db.WithContext(ctx).
		Raw(`SELECT role_id, name FROM roles ORDER BY role_id`).
		Scan(&roles).Error
	if err != nil {
		return nil, mapError(err)
	}
	return roles, nil
}

// ListStatuses returns all ticket statuses ordered by id
func (s *RolesStore) ListStatuses(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	err := s.db.WithContext(ctx).
		Raw(`SELECT status_id, name FROM statuses ORDER BY status_id`).
		Scan(&statuses).Error
	if err != nil {
		return nil, mapError(err)
	}
	return statuses, nil
}
