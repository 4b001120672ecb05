package endpoints

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

// AvailableUser is a user of the identity provider that can be added to a project
type AvailableUser struct {
	Email     string `json:"email"`
	Picture   string `json:"picture"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	LastLogin string `json:"last_login"`
	DateAdded string `json:"date_added"`
}

// ProjectUser is a project member with their directory profile and role
type ProjectUser struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	RoleID  int    `json:"role_id"`
}

// AddUserRequest is the body of POST /projects/{projectId}/users
type AddUserRequest struct {
	UserID string `json:"user_id"`
}

// BulkAddRequest is the body of POST /projects/{projectId}/users/bulk
type BulkAddRequest struct {
	UserIDs []string `json:"user_ids"`
}

// RegisterProjectsEndpoints registers the project and membership endpoints
func RegisterProjectsEndpoints(s *server.Server) {
	projectsRouter := s.API.PathPrefix("/projects").Subrouter()
	projectsRouter.Use(mux.MiddlewareFunc(s.Protect))

	projectsRouter.HandleFunc("", handleListProjects(s)).Methods("GET")
	projectsRouter.HandleFunc("", handleCreateProject(s)).Methods("POST")
	projectsRouter.HandleFunc("/users/available", handleAvailableUsers(s)).Methods("GET")
	projectsRouter.HandleFunc("/user/{userId}", handleProjectsForUser(s)).Methods("GET")
	projectsRouter.HandleFunc("/{projectId:[0-9]+}", handleGetProject(s)).Methods("GET")
	projectsRouter.HandleFunc("/{projectId:[0-9]+}", handleUpdateProject(s)).Methods("PATCH")
	projectsRouter.HandleFunc("/{projectId:[0-9]+}/users", handleProjectUsers(s)).Methods("GET")
	projectsRouter.HandleFunc("/{projectId:[0-9]+}/users", handleAddUser(s)).Methods("POST")
	projectsRouter.HandleFunc("/{projectId:[0-9]+}/users/bulk", handleBulkAddUsers(s)).Methods("POST")
}

func handleListProjects(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, s.Config.APIListLimitMax)
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		projects, err := s.Workflow.ListProjects(r.Context())
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, paginate(projects, p))
	}
}

func handleCreateProject(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in workflow.CreateProjectInput
		if err := decodeJSON(w, r, &in); err != nil {
			badRequest(w, err.Error())
			return
		}

		who := caller(r)
		if strings.TrimSpace(in.OwnerUserID) == "" {
			in.OwnerUserID = who.UserID
		}

		project, err := s.Workflow.CreateProject(r.Context(), in)
		event := audit.ProjectCreateEvent{
			UserID:       who.UserID,
			ClientIP:     who.ClientIP(),
			ProjectKey:   in.ProjectKey,
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		}
		if project != nil {
			event.ProjectID = project.ProjectID
		}
		s.Auditor.Log(r.Context(), event)

		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, project)
	}
}

func handleGetProject(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathInt(r, "projectId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		project, err := s.Workflow.GetProject(r.Context(), projectID)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, project)
	}
}

func handleUpdateProject(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathInt(r, "projectId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		var update store.ProjectUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			badRequest(w, err.Error())
			return
		}

		project, err := s.Workflow.UpdateProject(r.Context(), projectID, update)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, project)
	}
}

func handleAvailableUsers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, s.Config.APIListLimitMax)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		if s.Directory == nil {
			unavailable(w, "identity provider")
			return
		}

		users, err := s.Directory.ListUsers(r.Context())
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}

		out := make([]AvailableUser, 0, len(users))
		for _, u := range users {
			out = append(out, AvailableUser{
				Email:     u.Email,
				Picture:   u.Picture,
				UserID:    u.UserID,
				Name:      u.FullName(),
				LastLogin: u.LastLogin,
				DateAdded: u.CreatedAt,
			})
		}
		respondWithJSON(w, http.StatusOK, paginate(out, p))
	}
}

func handleProjectUsers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathInt(r, "projectId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		grants, err := s.Workflow.ListProjectUsers(r.Context(), projectID)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, projectUsers(s, r, grants))
	}
}

func handleAddUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathInt(r, "projectId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		var req AddUserRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			badRequest(w, "user_id is required")
			return
		}

		result, err := s.Workflow.AddUserToProject(r.Context(), projectID, req.UserID)
		who := caller(r)
		event := audit.MemberAddEvent{
			UserID:       who.UserID,
			ClientIP:     who.ClientIP(),
			ProjectID:    projectID,
			Role:         s.Config.DefaultMemberRole.String(),
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		}
		if result.Added {
			event.Added = []string{req.UserID}
		} else if err == nil {
			event.Skipped = []string{req.UserID}
		}
		s.Auditor.Log(r.Context(), event)

		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		if !result.Added {
			respondWithJSON(w, http.StatusConflict, result)
			return
		}
		respondWithJSON(w, http.StatusCreated, result)
	}
}

func handleBulkAddUsers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathInt(r, "projectId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		var req BulkAddRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}

		result, err := s.Workflow.AddUsersToProject(r.Context(), req.UserIDs, projectID)
		who := caller(r)
		event := audit.MemberAddEvent{
			UserID:       who.UserID,
			ClientIP:     who.ClientIP(),
			ProjectID:    projectID,
			Role:         s.Config.DefaultMemberRole.String(),
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		}
		if result != nil {
			for _, d := range result.Details {
				if d.Added {
					event.Added = append(event.Added, d.UserID)
				} else {
					event.Skipped = append(event.Skipped, d.UserID)
				}
			}
		}
		s.Auditor.Log(r.Context(), event)

		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleProjectsForUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["userId"]

		projects, err := s.Workflow.ListProjectsForUser(r.Context(), userID)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, projects)
	}
}

// projectUsers joins grants with directory profiles. A directory failure
// degrades to ids and roles only.
func projectUsers(s *server.Server, r *http.Request, grants []model.UserRole) []ProjectUser {
	out := make([]ProjectUser, 0, len(grants))
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		out = append(out, ProjectUser{UserID: g.UserID, RoleID: g.RoleID})
		ids = append(ids, g.UserID)
	}
	if len(ids) == 0 || s.Directory == nil {
		return out
	}

	users, err := s.Directory.UsersByIDs(r.Context(), ids)
	if err != nil {
		s.Logger.Warn("failed to load project user profiles", zap.Error(err))
		return out
	}
	byID := make(map[string]int, len(users))
	for i, u := range users {
		byID[u.UserID] = i
	}
	for i := range out {
		idx, ok := byID[out[i].UserID]
		if !ok {
			continue
		}
		out[i].Email = users[idx].Email
		out[i].Name = users[idx].FullName()
		out[i].Picture = users[idx].Picture
	}
	return out
}
