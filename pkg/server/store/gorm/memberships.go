package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Ensure MembershipsStore implements store.MembershipsStore
var _ store.MembershipsStore = (*MembershipsStore)(nil)

// MembershipsStore implements store.MembershipsStore using GORM
type MembershipsStore struct {
	db *gorm.DB
}

// NewMembershipsStore creates a new MembershipsStore
func NewMembershipsStore(db *gorm.DB) *MembershipsStore {
	return &MembershipsStore{db: db}
}

// GrantExists checks if the user holds any role in the project
func (s *MembershipsStore) GrantExists(ctx context.Context, userID string, projectID int) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = ? AND project_id = ?)`, userID, projectID)
}

// MembershipExists checks if the user is a member of the project
func (s *MembershipsStore) MembershipExists(ctx context.Context, projectID int, userID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM project_users WHERE project_id = ? AND user_id = ?)`, projectID, userID)
}

func (s *MembershipsStore) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := s.db.WithContext(ctx).Raw(query, args...).Row().Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

// CreateGrant inserts a role grant
func (s *MembershipsStore) CreateGrant(ctx context.Context, grant *model.UserRole) error {
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO user_roles (user_id, role_id, project_id) VALUES (?, ?, ?)`,
		grant.UserID, grant.RoleID, grant.ProjectID,
	).Error
	return mapError(err)
}

// CreateMembership inserts a project membership
func (s *MembershipsStore) CreateMembership(ctx context.Context, membership *model.ProjectUser) error {
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO project_users (project_id, user_id) VALUES (?, ?)`,
		membership.ProjectID, membership.UserID,
	).Error
	return mapError(err)
}

// UsersWithGrant returns the subset of userIDs holding a role in the project
func (s *MembershipsStore) UsersWithGrant(ctx context.Context, projectID int, userIDs []string) ([]string, error) {
	return s.subset(ctx, `SELECT DISTINCT user_id FROM user_roles WHERE project_id = ? AND user_id IN ?`, projectID, userIDs)
}

// UsersWithMembership returns the subset of userIDs that are members of the project
func (s *MembershipsStore) UsersWithMembership(ctx context.Context, projectID int, userIDs []string) ([]string, error) {
	return s.subset(ctx, `SELECT user_id FROM project_users WHERE project_id = ? AND user_id IN ?`, projectID, userIDs)
}

func (s *MembershipsStore) subset(ctx context.Context, query string, projectID int, userIDs []string) ([]string, error) {
	found := []string{}
	if len(userIDs) == 0 {
		return found, nil
	}
	if err := s.db.WithContext(ctx).Raw(query, projectID, userIDs).Scan(&found).Error; err != nil {
		return nil, mapError(err)
	}
	return found, nil
}

// CreateGrants inserts grants for userIDs, skipping conflicts
func (s *MembershipsStore) CreateGrants(ctx context.Context, projectID, roleID int, userIDs []string) ([]string, error) {
	inserted := []string{}
	if len(userIDs) == 0 {
		return inserted, nil
	}

	args := make([]interface{}, 0, len(userIDs)*3)
	for _, id := range userIDs {
		args = append(args, id, roleID, projectID)
	}

	err := s.db.WithContext(ctx).Raw(
		`INSERT INTO user_roles (user_id, role_id, project_id) VALUES `+valuesList(len(userIDs), 3)+
			` ON CONFLICT DO NOTHING RETURNING user_id`,
		args...,
	).Scan(&inserted).Error
	if err != nil {
		return nil, mapError(err)
	}
	return inserted, nil
}

// CreateMemberships inserts memberships for userIDs, skipping conflicts
func (s *MembershipsStore) CreateMemberships(ctx context.Context, projectID int, userIDs []string) ([]string, error) {
	inserted := []string{}
	if len(userIDs) == 0 {
		return inserted, nil
	}

	args := make([]interface{}, 0, len(userIDs)*2)
	for _, id := range userIDs {
		args = append(args, projectID, id)
	}

	err := s.db.WithContext(ctx).Raw(
		`INSERT INTO project_users (project_id, user_id) VALUES `+valuesList(len(userIDs), 2)+
			` ON CONFLICT DO NOTHING RETURNING user_id`,
		args...,
	).Scan(&inserted).Error
	if err != nil {
		return nil, mapError(err)
	}
	return inserted, nil
}

// GrantsForUser returns every grant held by the user
func (s *MembershipsStore) GrantsForUser(ctx context.Context, userID string) ([]model.UserRole, error) {
	grants := []model.UserRole{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("project_id").
		Find(&grants).Error
	if err != nil {
		return nil, mapError(err)
	}
	return grants, nil
}

// GrantsForProject returns every grant within the project ordered by user
func (s *MembershipsStore) GrantsForProject(ctx context.Context, projectID int) ([]model.UserRole, error) {
	grants := []model.UserRole{}
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("user_id").
		Find(&grants).Error
	if err != nil {
		return nil, mapError(err)
	}
	return grants, nil
}
