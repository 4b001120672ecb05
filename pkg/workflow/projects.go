package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Reasons reported by the add-user operations
const (
	ReasonAlreadyHasRole   = "User already has a role in this project"
	ReasonAlreadyMember    = "User is already a member of this project"
	ReasonAlreadyInProject = "User already assigned role or added to project"
	ReasonAdded            = "User successfully added to project"
)

// CreateProjectInput holds the fields of a new project
type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectKey  string `json:"project_key"`
	OwnerUserID string `json:"user_id"`
}

// Validate checks the required fields
func (in CreateProjectInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.ProjectKey) == "" {
		missing = append(missing, "project_key")
	}
	if strings.TrimSpace(in.OwnerUserID) == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return invalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AddResult reports the outcome of adding one user to a project
type AddResult struct {
	Added  bool   `json:"added"`
	Reason string `json:"reason"`
}

// UserAddDetail reports the outcome for one user of a bulk add
type UserAddDetail struct {
	UserID string `json:"user_id"`
	Added  bool   `json:"added"`
	Reason string `json:"reason"`
}

// BulkAddResult reports the outcome of a bulk add
type BulkAddResult struct {
	TotalRequested int             `json:"total_requested"`
	AddedCount     int             `json:"added_count"`
	SkippedCount   int             `json:"skipped_count"`
	Details        []UserAddDetail `json:"details"`
}

// ProjectWithRole is a project joined with the role a user holds in it
type ProjectWithRole struct {
	model.Project
	RoleID int `json:"role_id"`
}

// CreateProject creates a project, grants the owner the admin role and adds
// the owner as a member, all in one unit of work.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	adminRoleID, err := s.resolveRole(ctx, s.uow.Roles(), model.RoleNameAdmin.String())
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ProjectKey:  strings.TrimSpace(in.ProjectKey),
		CreatedBy:   in.OwnerUserID,
	}

	err = s.atomic(ctx, func(tx store.Tx) error {
		if err := tx.Users().EnsureUser(ctx, in.OwnerUserID); err != nil {
			return fmt.Errorf("failed to ensure owner: %w", err)
		}
		if err := tx.Projects().CreateProject(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		if err := tx.Memberships().CreateGrant(ctx, &model.UserRole{
			UserID:    in.OwnerUserID,
			RoleID:    adminRoleID,
			ProjectID: project.ProjectID,
		}); err != nil {
			return fmt.Errorf("failed to grant admin role: %w", err)
		}
		if err := tx.Memberships().CreateMembership(ctx, &model.ProjectUser{
			ProjectID: project.ProjectID,
			UserID:    in.OwnerUserID,
		}); err != nil {
			return fmt.Errorf("failed to add owner to project: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("project creation rolled back",
			zap.String("project_key", project.ProjectKey),
			zap.String("owner", in.OwnerUserID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("project created",
		zap.Int("project_id", project.ProjectID),
		zap.String("project_key", project.ProjectKey),
		zap.String("owner", in.OwnerUserID))
	return project, nil
}

// AddUserToProject grants the default member role to the user and adds them
// to the project. A user already holding a role or membership is reported
// with Added false and nothing is written.
func (s *Service) AddUserToProject(ctx context.Context, projectID int, userID string) (AddResult, error) {
	if projectID <= 0 || strings.TrimSpace(userID) == "" {
		return AddResult{}, invalidInput("project id and user id are required")
	}

	var result AddResult
	err := s.atomic(ctx, func(tx store.Tx) error {
		hasGrant, err := tx.Memberships().GrantExists(ctx, userID, projectID)
		if err != nil {
			return err
		}
		if hasGrant {
			result = AddResult{Added: false, Reason: ReasonAlreadyHasRole}
			return nil
		}

		isMember, err := tx.Memberships().MembershipExists(ctx, projectID, userID)
		if err != nil {
			return err
		}
		if isMember {
			result = AddResult{Added: false, Reason: ReasonAlreadyMember}
			return nil
		}

		roleID, err := s.resolveRole(ctx, tx.Roles(), s.opts.DefaultMemberRole)
		if err != nil {
			return err
		}
		if err := tx.Users().EnsureUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Memberships().CreateGrant(ctx, &model.UserRole{
			UserID:    userID,
			RoleID:    roleID,
			ProjectID: projectID,
		}); err != nil {
			return err
		}
		if err := tx.Memberships().CreateMembership(ctx, &model.ProjectUser{
			ProjectID: projectID,
			UserID:    userID,
		}); err != nil {
			return err
		}

		result = AddResult{Added: true, Reason: ReasonAdded}
		return nil
	})
	if err != nil {
		// A concurrent add won the race between our checks and inserts
		if errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Debug("concurrent add detected",
				zap.Int("project_id", projectID),
				zap.String("user_id", userID))
			return AddResult{Added: false, Reason: ReasonAlreadyHasRole}, nil
		}
		return AddResult{}, fmt.Errorf("failed to add user to project %d: %w", projectID, err)
	}

	if result.Added {
		s.logger.Info("user added to project",
			zap.Int("project_id", projectID),
			zap.String("user_id", userID))
	}
	return result, nil
}

// AddUsersToProject adds every user not yet in the project, in one unit of
// work. Details follow the order of userIDs with duplicates collapsed.
func (s *Service) AddUsersToProject(ctx context.Context, userIDs []string, projectID int) (*BulkAddResult, error) {
	if len(userIDs) == 0 {
		return nil, invalidInput("user ids must be a non-empty list")
	}
	if projectID <= 0 {
		return nil, invalidInput("project id is required")
	}

	requested := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if strings.TrimSpace(id) == "" {
			return nil, invalidInput("user ids must not be empty")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		requested = append(requested, id)
	}

	added := make(map[string]bool, len(requested))
	err := s.atomic(ctx, func(tx store.Tx) error {
		withGrant, err := tx.Memberships().UsersWithGrant(ctx, projectID, requested)
		if err != nil {
			return err
		}
		withMembership, err := tx.Memberships().UsersWithMembership(ctx, projectID, requested)
		if err != nil {
			return err
		}

		present := make(map[string]struct{}, len(withGrant)+len(withMembership))
		for _, id := range withGrant {
			present[id] = struct{}{}
		}
		for _, id := range withMembership {
			present[id] = struct{}{}
		}

		var toInsert []string
		for _, id := range requested {
			if _, ok := present[id]; !ok {
				toInsert = append(toInsert, id)
			}
		}
		if len(toInsert) == 0 {
			return nil
		}

		roleID, err := s.resolveRole(ctx, tx.Roles(), s.opts.DefaultMemberRole)
		if err != nil {
			return err
		}
		if err := tx.Users().EnsureUsers(ctx, toInsert); err != nil {
			return err
		}

		granted, err := tx.Memberships().CreateGrants(ctx, projectID, roleID, toInsert)
		if err != nil {
			return err
		}
		if len(granted) == 0 {
			return nil
		}
		if _, err := tx.Memberships().CreateMemberships(ctx, projectID, granted); err != nil {
			return err
		}
		for _, id := range granted {
			added[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add users to project %d: %w", projectID, err)
	}

	result := &BulkAddResult{
		TotalRequested: len(requested),
		Details:        make([]UserAddDetail, 0, len(requested)),
	}
	for _, id := range requested {
		detail := UserAddDetail{UserID: id, Added: added[id], Reason: ReasonAlreadyInProject}
		if detail.Added {
			detail.Reason = ReasonAdded
			result.AddedCount++
		} else {
			result.SkippedCount++
		}
		result.Details = append(result.Details, detail)
	}

	s.logger.Info("bulk add to project",
		zap.Int("project_id", projectID),
		zap.Int("requested", result.TotalRequested),
		zap.Int("added", result.AddedCount),
		zap.Int("skipped", result.SkippedCount))
	return result, nil
}

// ListProjectsForUser returns the projects the user holds a role in, each
// with the role id. A user without grants gets an empty slice.
func (s *Service) ListProjectsForUser(ctx context.Context, userID string) ([]ProjectWithRole, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("user id is required")
	}

	grants, err := s.uow.Memberships().GrantsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	if len(grants) == 0 {
		return []ProjectWithRole{}, nil
	}

	roleByProject := make(map[int]int, len(grants))
	projectIDs := make([]int, 0, len(grants))
	for _, g := range grants {
		if _, ok := roleByProject[g.ProjectID]; ok {
			continue
		}
		roleByProject[g.ProjectID] = g.RoleID
		projectIDs = append(projectIDs, g.ProjectID)
	}

	projects, err := s.uow.Projects().ListProjectsByIDs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]ProjectWithRole, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectWithRole{Project: p, RoleID: roleByProject[p.ProjectID]})
	}
	return out, nil
}

// ListProjects returns every project
func (s *Service) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.uow.Projects().ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project by id
func (s *Service) GetProject(ctx context.Context, projectID int) (*model.Project, error) {
	return s.uow.Projects().GetProject(ctx, projectID)
}

// UpdateProject edits a project's name, description or key
func (s *Service) UpdateProject(ctx context.Context, projectID int, update store.ProjectUpdate) (*model.Project, error) {
	if update.IsEmpty() {
		return nil, invalidInput("no fields to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, invalidInput("name must not be empty")
	}
	if update.ProjectKey != nil && strings.TrimSpace(*update.ProjectKey) == "" {
		return nil, invalidInput("project_key must not be empty")
	}

	var project *model.Project
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		project, err = tx.Projects().UpdateProject(ctx, projectID, update)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", projectID, err)
	}
	return project, nil
}

// ListProjectUsers returns the grants within a project. A missing project
// is reported as store.ErrNotFound.
func (s *Service) ListProjectUsers(ctx context.Context, projectID int) ([]model.UserRole, error) {
	if _, err := s.uow.Projects().GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.uow.Memberships().GrantsForProject(ctx, projectID)
}
