package store

import "context"

// UsersStore manages local user rows. Profile data lives with the identity
// provider; the local row only anchors foreign keys.
type UsersStore interface {
	// EnsureUser inserts the user row if it doesn't exist yet
	EnsureUser(ctx context.Context, userID string) error

	// EnsureUsers inserts any missing user rows
	EnsureUsers(ctx context.Context, userIDs []string) error

	// UserExists checks if a local user row exists
	UserExists(ctx context.Context, userID string) (bool, error)
}
