package gorm

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// EnsureUser inserts the user row if it doesn't exist yet
func (s *UsersStore) EnsureUser(ctx context.Context, userID string) error {
	return s.EnsureUsers(ctx, []string{userID})
}

// EnsureUsers inserts any missing user rows
func (s *UsersStore) EnsureUsers(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(userIDs))
	for _, id := range userIDs {
		args = append(args, id)
	}

	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO users (user_id) VALUES `+valuesList(len(userIDs), 1)+` ON CONFLICT (user_id) DO NOTHING`,
		args...,
	).Error
	return mapError(err)
}

// UserExists checks if a local user row exists
func (s *UsersStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM users WHERE user_id = ?)`, userID).
		Row().Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

// valuesList renders rows tuples of width placeholders, e.g. "(?, ?), (?, ?)"
func valuesList(rows, width int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	tuples := make([]string, rows)
	for i := range tuples {
		tuples[i] = tuple
	}
	return strings.Join(tuples, ", ")
}
