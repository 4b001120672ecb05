package workflow

import (
	"context"
	"fmt"
	"strings"
)

// RegisterUser records a user known to the identity provider. Registering
// an existing user is a no-op.
func (s *Service) RegisterUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalidInput("user id is required")
	}
	if err := s.uow.Users().EnsureUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}
