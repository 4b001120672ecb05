package store

import (
	"context"

	"github.com/intellecta-dev/intellecta/pkg/model"
)

// MembershipsStore abstracts the membership ledger: role grants
// (user_roles) and plain project memberships (project_users).
type MembershipsStore interface {
	// GrantExists checks if the user holds any role in the project
	GrantExists(ctx context.Context, userID string, projectID int) (bool, error)

	// MembershipExists checks if the user is a member of the project
	MembershipExists(ctx context.Context, projectID int, userID string) (bool, error)

	// CreateGrant inserts a role grant.
	// Returns ErrAlreadyExists if the user already holds a role in the project
	// and ErrNotFound if the project, role or user doesn't exist.
	CreateGrant(ctx context.Context, grant *model.UserRole) error

	// CreateMembership inserts a project membership.
	// Returns ErrAlreadyExists if the membership exists.
	CreateMembership(ctx context.Context, membership *model.ProjectUser) error

	// UsersWithGrant returns the subset of userIDs holding a role in the project
	UsersWithGrant(ctx context.Context, projectID int, userIDs []string) ([]string, error)

	// UsersWithMembership returns the subset of userIDs that are members of the project
	UsersWithMembership(ctx context.Context, projectID int, userIDs []string) ([]string, error)

	// CreateGrants inserts grants for userIDs, skipping conflicts, and
	// returns the ids actually inserted
	CreateGrants(ctx context.Context, projectID, roleID int, userIDs []string) ([]string, error)

	// CreateMemberships inserts memberships for userIDs, skipping conflicts,
	// and returns the ids actually inserted
	CreateMemberships(ctx context.Context, projectID int, userIDs []string) ([]string, error)

	// GrantsForUser returns every grant held by the user
	GrantsForUser(ctx context.Context, userID string) ([]model.UserRole, error)

	// GrantsForProject returns every grant within the project ordered by user
	GrantsForProject(ctx context.Context, projectID int) ([]model.UserRole, error)
}
