package store

import (
	"context"

	"github.com/intellecta-dev/intellecta/pkg/model"
)

// RolesStore abstracts the role catalog and other reference data
type RolesStore interface {
	// GetRoleID resolves a role name to its id.
	// Returns ErrNotFound if no such role exists.
	GetRoleID(ctx context.Context, name string) (int, error)

	// ListRoles returns all roles ordered by id
	ListRoles(ctx context.Context) ([]model.Role, error)

	// ListStatuses returns all ticket statuses ordered by id
	ListStatuses(ctx context.Context) ([]model.Status, error)
}
