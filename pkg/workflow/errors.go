package workflow

import (
	"errors"
	"fmt"

	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

var (
	// ErrInvalidInput is returned when required fields are missing or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrRoleNotFound is returned when a role name is missing from the role
	// catalog. It matches store.ErrNotFound as well.
	ErrRoleNotFound = fmt.Errorf("role %w", store.ErrNotFound)
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
