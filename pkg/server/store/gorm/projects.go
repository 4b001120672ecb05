package gorm

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Ensure ProjectsStore implements store.ProjectsStore
var _ store.ProjectsStore = (*ProjectsStore)(nil)

// ProjectsStore implements store.ProjectsStore using GORM
type ProjectsStore struct {
	db *gorm.DB
}

// NewProjectsStore creates a new ProjectsStore
func NewProjectsStore(db *gorm.DB) *ProjectsStore {
	return &ProjectsStore{db: db}
}

// CreateProject inserts the project and fills in its generated fields
func (s *ProjectsStore) CreateProject(ctx context.Context, project *model.Project) error {
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO projects (name, description, project_key, created_by)
		VALUES (?, ?, ?, ?)
		RETURNING project_id, created_at, updated_at
	`, project.Name, project.Description, project.ProjectKey, project.CreatedBy).
		Row().Scan(&project.ProjectID, &project.CreatedAt, &project.UpdatedAt)
	return mapError(err)
}

// GetProject retrieves a project by id
func (s *ProjectsStore) GetProject(ctx context.Context, projectID int) (*model.Project, error) {
	var project model.Project
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Take(&project).Error; err != nil {
		return nil, mapError(err)
	}
	return &project, nil
}

// ListProjects returns all projects ordered by id
func (s *ProjectsStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := s.db.WithContext(ctx).Order("project_id").Find(&projects).Error; err != nil {
		return nil, mapError(err)
	}
	return projects, nil
}

// ListProjectsByIDs returns the projects whose id is in projectIDs
func (s *ProjectsStore) ListProjectsByIDs(ctx context.Context, projectIDs []int) ([]model.Project, error) {
	projects := []model.Project{}
	if len(projectIDs) == 0 {
		return projects, nil
	}
	err := s.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("project_id").
		Find(&projects).Error
	if err != nil {
		return nil, mapError(err)
	}
	return projects, nil
}

// UpdateProject applies update and returns the updated project
func (s *ProjectsStore) UpdateProject(ctx context.Context, projectID int, update store.ProjectUpdate) (*model.Project, error) {
	if update.IsEmpty() {
		return s.GetProject(ctx, projectID)
	}

	var sets []string
	var args []interface{}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.ProjectKey != nil {
		sets = append(sets, "project_key = ?")
		args = append(args, *update.ProjectKey)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, projectID)

	var project model.Project
	tx := s.db.WithContext(ctx).Raw(`
		UPDATE projects SET `+strings.Join(sets, ", ")+`
		WHERE project_id = ?
		RETURNING project_id, name, description, project_key, created_by, created_at, updated_at
	`, args...).Scan(&project)
	if tx.Error != nil {
		return nil, mapError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &project, nil
}
