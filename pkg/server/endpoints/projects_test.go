package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/intellecta-dev/intellecta/pkg/auth0"
	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

func TestCreateProject(t *testing.T) {
	t.Run("owner defaults to the caller", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.RolesStore.On("GetRoleID", anyCtx, "admin").Return(1, nil).Once()
		env.uow.UsersStore.On("EnsureUser", anyCtx, testCaller).Return(nil).Once()
		env.uow.ProjectsStore.On("CreateProject", anyCtx, mock.MatchedBy(func(p *model.Project) bool {
			return p.ProjectKey == "APOLLO" && p.CreatedBy == testCaller
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Project).ProjectID = 7
		}).Return(nil).Once()
		env.uow.MembershipsStore.On("CreateGrant", anyCtx, &model.UserRole{UserID: testCaller, RoleID: 1, ProjectID: 7}).Return(nil).Once()
		env.uow.MembershipsStore.On("CreateMembership", anyCtx, &model.ProjectUser{ProjectID: 7, UserID: testCaller}).Return(nil).Once()

		rec := env.do(t, http.MethodPost, "/api/projects", workflow.CreateProjectInput{
			Name:       "Apollo",
			ProjectKey: "APOLLO",
		}, true)

		assert.Equal(t, http.StatusCreated, rec.Code)
		project := decodeBody[model.Project](t, rec)
		assert.Equal(t, 7, project.ProjectID)
		assert.Equal(t, testCaller, project.CreatedBy)
		assert.Equal(t, 1, env.uow.Commits)
		assert.Contains(t, env.auditLog.String(), "created project 7 (APOLLO)")
		assert.Contains(t, env.auditLog.String(), "203.0.113.7")
	})

	t.Run("duplicate key rolls back", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.RolesStore.On("GetRoleID", anyCtx, "admin").Return(1, nil).Once()
		env.uow.UsersStore.On("EnsureUser", anyCtx, testCaller).Return(nil).Once()
		env.uow.ProjectsStore.On("CreateProject", anyCtx, mock.Anything).Return(store.ErrAlreadyExists).Once()

		rec := env.do(t, http.MethodPost, "/api/projects", workflow.CreateProjectInput{
			Name:       "Apollo",
			ProjectKey: "APOLLO",
		}, true)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 1, env.uow.Rollbacks)
		assert.Contains(t, env.auditLog.String(), "tried to create project APOLLO")
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/projects", workflow.CreateProjectInput{Description: "no name"}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[errorEnvelope](t, rec)
		assert.Equal(t, "invalid_input", body.Error.Code)
		assert.Contains(t, body.Error.Message, "name, project_key")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/projects", workflow.CreateProjectInput{Name: "x", ProjectKey: "X"}, false)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListProjects(t *testing.T) {
	env := newTestEnv(t)
	projects := []model.Project{{ProjectID: 1}, {ProjectID: 2}, {ProjectID: 3}}
	env.uow.ProjectsStore.On("ListProjects", anyCtx).Return(projects, nil).Twice()

	rec := env.do(t, http.MethodGet, "/api/projects", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Project](t, rec), 2)

	rec = env.do(t, http.MethodGet, "/api/projects?offset=2", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]model.Project](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ProjectID)

	rec = env.do(t, http.MethodGet, "/api/projects?limit=-4", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndUpdateProject(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.ProjectsStore.On("GetProject", anyCtx, 7).Return(&model.Project{ProjectID: 7, Name: "Apollo"}, nil).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/7", nil, true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Apollo", decodeBody[model.Project](t, rec).Name)
	})

	t.Run("get missing", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.ProjectsStore.On("GetProject", anyCtx, 8).Return(nil, store.ErrNotFound).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/8", nil, true)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		env := newTestEnv(t)
		name := "Apollo 11"
		env.uow.ProjectsStore.On("UpdateProject", anyCtx, 7, store.ProjectUpdate{Name: &name}).
			Return(&model.Project{ProjectID: 7, Name: name}, nil).Once()

		rec := env.do(t, http.MethodPatch, "/api/projects/7", map[string]string{"name": name}, true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, name, decodeBody[model.Project](t, rec).Name)
	})

	t.Run("update missing", func(t *testing.T) {
		env := newTestEnv(t)
		name := "Ghost"
		env.uow.ProjectsStore.On("UpdateProject", anyCtx, 99, store.ProjectUpdate{Name: &name}).
			Return(nil, fmt.Errorf("project 99: %w", store.ErrNotFound)).Once()

		rec := env.do(t, http.MethodPatch, "/api/projects/99", map[string]string{"name": name}, true)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPatch, "/api/projects/7", map[string]string{}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAddUserToProject(t *testing.T) {
	t.Run("added", func(t *testing.T) {
		env := newTestEnv(t)
		m := env.uow.MembershipsStore
		m.On("GrantExists", anyCtx, "auth0|bob", 7).Return(false, nil).Once()
		m.On("MembershipExists", anyCtx, 7, "auth0|bob").Return(false, nil).Once()
		env.uow.RolesStore.On("GetRoleID", anyCtx, "member").Return(2, nil).Once()
		env.uow.UsersStore.On("EnsureUser", anyCtx, "auth0|bob").Return(nil).Once()
		m.On("CreateGrant", anyCtx, &model.UserRole{UserID: "auth0|bob", RoleID: 2, ProjectID: 7}).Return(nil).Once()
		m.On("CreateMembership", anyCtx, &model.ProjectUser{ProjectID: 7, UserID: "auth0|bob"}).Return(nil).Once()

		rec := env.do(t, http.MethodPost, "/api/projects/7/users", AddUserRequest{UserID: "auth0|bob"}, true)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, workflow.AddResult{Added: true, Reason: workflow.ReasonAdded}, decodeBody[workflow.AddResult](t, rec))
		assert.Contains(t, env.auditLog.String(), "added 1 user(s) to project 7 as member (0 skipped)")
	})

	t.Run("already has a role", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.MembershipsStore.On("GrantExists", anyCtx, "auth0|bob", 7).Return(true, nil).Once()

		rec := env.do(t, http.MethodPost, "/api/projects/7/users", AddUserRequest{UserID: "auth0|bob"}, true)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, workflow.AddResult{Added: false, Reason: workflow.ReasonAlreadyHasRole}, decodeBody[workflow.AddResult](t, rec))
		assert.Contains(t, env.auditLog.String(), "(1 skipped)")
	})

	t.Run("member role missing from catalog", func(t *testing.T) {
		env := newTestEnv(t)
		m := env.uow.MembershipsStore
		m.On("GrantExists", anyCtx, "auth0|bob", 7).Return(false, nil).Once()
		m.On("MembershipExists", anyCtx, 7, "auth0|bob").Return(false, nil).Once()
		env.uow.RolesStore.On("GetRoleID", anyCtx, "member").Return(0, store.ErrNotFound).Once()

		rec := env.do(t, http.MethodPost, "/api/projects/7/users", AddUserRequest{UserID: "auth0|bob"}, true)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 1, env.uow.Rollbacks)
	})

	t.Run("missing user_id", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/projects/7/users", AddUserRequest{}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBulkAddUsers(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		env := newTestEnv(t)
		m := env.uow.MembershipsStore
		requested := []string{"u1", "u2", "u3"}
		m.On("UsersWithGrant", anyCtx, 7, requested).Return([]string{"u2"}, nil).Once()
		m.On("UsersWithMembership", anyCtx, 7, requested).Return([]string{}, nil).Once()
		env.uow.RolesStore.On("GetRoleID", anyCtx, "member").Return(2, nil).Once()
		env.uow.UsersStore.On("EnsureUsers", anyCtx, []string{"u1", "u3"}).Return(nil).Once()
		m.On("CreateGrants", anyCtx, 7, 2, []string{"u1", "u3"}).Return([]string{"u1", "u3"}, nil).Once()
		m.On("CreateMemberships", anyCtx, 7, []string{"u1", "u3"}).Return([]string{"u1", "u3"}, nil).Once()

		rec := env.do(t, http.MethodPost, "/api/projects/7/users/bulk", BulkAddRequest{UserIDs: []string{"u1", "u2", "u3", "u1"}}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		result := decodeBody[workflow.BulkAddResult](t, rec)
		assert.Equal(t, 3, result.TotalRequested)
		assert.Equal(t, 2, result.AddedCount)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Equal(t, []workflow.UserAddDetail{
			{UserID: "u1", Added: true, Reason: workflow.ReasonAdded},
			{UserID: "u2", Added: false, Reason: workflow.ReasonAlreadyInProject},
			{UserID: "u3", Added: true, Reason: workflow.ReasonAdded},
		}, result.Details)
		assert.Contains(t, env.auditLog.String(), "added 2 user(s) to project 7 as member (1 skipped)")
	})

	t.Run("empty list", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/projects/7/users/bulk", BulkAddRequest{UserIDs: []string{}}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.MembershipsStore.On("UsersWithGrant", anyCtx, 7, []string{"u1"}).Return(nil, errors.New("connection reset")).Once()

		rec := env.do(t, http.MethodPost, "/api/projects/7/users/bulk", BulkAddRequest{UserIDs: []string{"u1"}}, true)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func TestProjectsForUser(t *testing.T) {
	t.Run("no grants", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.MembershipsStore.On("GrantsForUser", anyCtx, "auth0|nobody").Return([]model.UserRole{}, nil).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/user/auth0|nobody", nil, true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("with roles", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.MembershipsStore.On("GrantsForUser", anyCtx, testCaller).Return([]model.UserRole{
			{UserID: testCaller, ProjectID: 7, RoleID: 1},
			{UserID: testCaller, ProjectID: 9, RoleID: 2},
		}, nil).Once()
		env.uow.ProjectsStore.On("ListProjectsByIDs", anyCtx, []int{7, 9}).Return([]model.Project{
			{ProjectID: 7, Name: "Apollo"},
			{ProjectID: 9, Name: "Gemini"},
		}, nil).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/user/"+testCaller, nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]workflow.ProjectWithRole](t, rec)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].RoleID)
		assert.Equal(t, "Gemini", got[1].Name)
		assert.Equal(t, 2, got[1].RoleID)
	})
}

func TestProjectUsers(t *testing.T) {
	grants := []model.UserRole{
		{UserID: "auth0|alice", ProjectID: 7, RoleID: 1},
		{UserID: "auth0|bob", ProjectID: 7, RoleID: 2},
	}

	t.Run("enriched from the directory", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.ProjectsStore.On("GetProject", anyCtx, 7).Return(&model.Project{ProjectID: 7}, nil).Once()
		env.uow.MembershipsStore.On("GrantsForProject", anyCtx, 7).Return(grants, nil).Once()
		env.directory.On("UsersByIDs", anyCtx, []string{"auth0|alice", "auth0|bob"}).Return([]auth0.User{
			{UserID: "auth0|bob", Email: "bob@example.com", Name: "Bob"},
		}, nil).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/7/users", nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []ProjectUser{
			{UserID: "auth0|alice", RoleID: 1},
			{UserID: "auth0|bob", Email: "bob@example.com", Name: "Bob", RoleID: 2},
		}, decodeBody[[]ProjectUser](t, rec))
	})

	t.Run("directory failure degrades", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.ProjectsStore.On("GetProject", anyCtx, 7).Return(&model.Project{ProjectID: 7}, nil).Once()
		env.uow.MembershipsStore.On("GrantsForProject", anyCtx, 7).Return(grants, nil).Once()
		env.directory.On("UsersByIDs", anyCtx, mock.Anything).Return(nil, &auth0.UpstreamError{StatusCode: 429}).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/7/users", nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]ProjectUser](t, rec), 2)
	})

	t.Run("missing project", func(t *testing.T) {
		env := newTestEnv(t)
		env.uow.ProjectsStore.On("GetProject", anyCtx, 5).Return(nil, store.ErrNotFound).Once()

		rec := env.do(t, http.MethodGet, "/api/projects/5/users", nil, true)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAvailableUsers(t *testing.T) {
	env := newTestEnv(t)
	users := []auth0.User{
		{UserID: "auth0|a", Email: "a@example.com", Name: "A", CreatedAt: "2024-01-01T00:00:00.000Z"},
		{UserID: "auth0|b", Email: "b@example.com", UserMetadata: map[string]interface{}{"fullName": "Bee"}},
		{UserID: "auth0|c", Email: "c@example.com"},
	}
	env.directory.On("ListUsers", anyCtx).Return(users, nil).Twice()

	rec := env.do(t, http.MethodGet, "/api/projects/users/available", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]AvailableUser](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", got[0].DateAdded)
	assert.Equal(t, "Bee", got[1].Name)

	rec = env.do(t, http.MethodGet, "/api/projects/users/available?offset=2", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[[]AvailableUser](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "auth0|c", got[0].UserID)
}
