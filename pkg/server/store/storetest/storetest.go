// Package storetest provides testify/mock implementations of the store
// interfaces for use in tests of the packages built on top of them.
package storetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// UnitOfWork implements store.UnitOfWork over the mock stores. Atomic runs
// the callback directly against the same stores and counts outcomes.
type UnitOfWork struct {
	UsersStore       *MockUsersStore
	RolesStore       *MockRolesStore
	ProjectsStore    *MockProjectsStore
	MembershipsStore *MockMembershipsStore
	TicketsStore     *MockTicketsStore

	// AtomicErr, when set, is returned by Atomic without running the callback
	AtomicErr error

	Commits   int
	Rollbacks int
}

// NewUnitOfWork creates a UnitOfWork with fresh mock stores
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		UsersStore:       &MockUsersStore{},
		RolesStore:       &MockRolesStore{},
		ProjectsStore:    &MockProjectsStore{},
		MembershipsStore: &MockMembershipsStore{},
		TicketsStore:     &MockTicketsStore{},
	}
}

var _ store.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Users() store.UsersStore             { return u.UsersStore }
func (u *UnitOfWork) Roles() store.RolesStore             { return u.RolesStore }
func (u *UnitOfWork) Projects() store.ProjectsStore       { return u.ProjectsStore }
func (u *UnitOfWork) Memberships() store.MembershipsStore { return u.MembershipsStore }
func (u *UnitOfWork) Tickets() store.TicketsStore         { return u.TicketsStore }

func (u *UnitOfWork) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	if u.AtomicErr != nil {
		return u.AtomicErr
	}
	if err := fn(u); err != nil {
		u.Rollbacks++
		return err
	}
	u.Commits++
	return nil
}

// AssertExpectations asserts the expectations of every mock store
func (u *UnitOfWork) AssertExpectations(t mock.TestingT) {
	u.UsersStore.AssertExpectations(t)
	u.RolesStore.AssertExpectations(t)
	u.ProjectsStore.AssertExpectations(t)
	u.MembershipsStore.AssertExpectations(t)
	u.TicketsStore.AssertExpectations(t)
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) EnsureUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUsersStore) EnsureUsers(ctx context.Context, userIDs []string) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

func (m *MockUsersStore) UserExists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockRolesStore implements store.RolesStore for testing using testify/mock
type MockRolesStore struct {
	mock.Mock
}

func (m *MockRolesStore) GetRoleID(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *MockRolesStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRolesStore) ListStatuses(ctx context.Context) ([]model.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Status), args.Error(1)
}

// MockProjectsStore implements store.ProjectsStore for testing using testify/mock
type MockProjectsStore struct {
	mock.Mock
}

func (m *MockProjectsStore) CreateProject(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectsStore) GetProject(ctx context.Context, projectID int) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectsStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectsStore) ListProjectsByIDs(ctx context.Context, projectIDs []int) ([]model.Project, error) {
	args := m.Called(ctx, projectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectsStore) UpdateProject(ctx context.Context, projectID int, update store.ProjectUpdate) (*model.Project, error) {
	args := m.Called(ctx, projectID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

// MockMembershipsStore implements store.MembershipsStore for testing using testify/mock
type MockMembershipsStore struct {
	mock.Mock
}

func (m *MockMembershipsStore) GrantExists(ctx context.Context, userID string, projectID int) (bool, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipsStore) MembershipExists(ctx context.Context, projectID int, userID string) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipsStore) CreateGrant(ctx context.Context, grant *model.UserRole) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockMembershipsStore) CreateMembership(ctx context.Context, membership *model.ProjectUser) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipsStore) UsersWithGrant(ctx context.Context, projectID int, userIDs []string) ([]string, error) {
	args := m.Called(ctx, projectID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMembershipsStore) UsersWithMembership(ctx context.Context, projectID int, userIDs []string) ([]string, error) {
	args := m.Called(ctx, projectID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMembershipsStore) CreateGrants(ctx context.Context, projectID, roleID int, userIDs []string) ([]string, error) {
	args := m.Called(ctx, projectID, roleID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMembershipsStore) CreateMemberships(ctx context.Context, projectID int, userIDs []string) ([]string, error) {
	args := m.Called(ctx, projectID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMembershipsStore) GrantsForUser(ctx context.Context, userID string) ([]model.UserRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserRole), args.Error(1)
}

func (m *MockMembershipsStore) GrantsForProject(ctx context.Context, projectID int) ([]model.UserRole, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserRole), args.Error(1)
}

// MockTicketsStore implements store.TicketsStore for testing using testify/mock
type MockTicketsStore struct {
	mock.Mock
}

func (m *MockTicketsStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketsStore) AssignTicket(ctx context.Context, ticketID int, userID string) error {
	args := m.Called(ctx, ticketID, userID)
	return args.Error(0)
}

func (m *MockTicketsStore) ReassignTicket(ctx context.Context, ticketID int, userID string) (int64, error) {
	args := m.Called(ctx, ticketID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketsStore) GetTicket(ctx context.Context, ticketID int) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketsStore) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ticket), args.Error(1)
}

func (m *MockTicketsStore) ListTicketsByProject(ctx context.Context, projectID int) ([]store.TicketWithAssignee, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.TicketWithAssignee), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
