package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// DefaultUnitOfWorkTimeout bounds a unit of work when Options leaves it unset
const DefaultUnitOfWorkTimeout = 10 * time.Second

// Options configures a Service
type Options struct {
	// DefaultMemberRole is the role granted by the add-user paths
	DefaultMemberRole string

	// UnitOfWorkTimeout bounds every transaction
	UnitOfWorkTimeout time.Duration
}

// Service implements the project membership and ticket workflows
type Service struct {
	uow    store.UnitOfWork
	logger *zap.Logger
	opts   Options
}

// NewService creates a new Service. A nil logger disables logging.
func NewService(uow store.UnitOfWork, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultMemberRole == "" {
		opts.DefaultMemberRole = model.RoleNameMember.String()
	}
	if opts.UnitOfWorkTimeout <= 0 {
		opts.UnitOfWorkTimeout = DefaultUnitOfWorkTimeout
	}
	return &Service{
		uow:    uow,
		logger: logger.Named("workflow"),
		opts:   opts,
	}
}

// atomic runs fn in one unit of work bounded by the configured timeout.
// Running out of time is reported as store.ErrStoreUnavailable.
func (s *Service) atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UnitOfWorkTimeout)
	defer cancel()

	err := s.uow.Atomic(ctx, fn)
	if err != nil && ctx.Err() != nil && !errors.Is(err, store.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	return err
}

// resolveRole looks a role name up in the role catalog
func (s *Service) resolveRole(ctx context.Context, roles store.RolesStore, name string) (int, error) {
	roleID, err := roles.GetRoleID(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
		}
		return 0, fmt.Errorf("failed to resolve role %q: %w", name, err)
	}
	return roleID, nil
}

// ListRoles returns the role catalog
func (s *Service) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.uow.Roles().ListRoles(ctx)
}

// ListStatuses returns all ticket statuses
func (s *Service) ListStatuses(ctx context.Context) ([]model.Status, error) {
	return s.uow.Roles().ListStatuses(ctx)
}
