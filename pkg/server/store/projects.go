package store

import (
	"context"

	"github.com/intellecta-dev/intellecta/pkg/model"
)

// ProjectUpdate holds the editable project fields. Nil fields are left unchanged.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ProjectKey  *string `json:"project_key,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u ProjectUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.ProjectKey == nil
}

// ProjectsStore abstracts project storage operations
type ProjectsStore interface {
	// CreateProject inserts the project and fills in its generated fields.
	// Returns ErrAlreadyExists if the project key is taken.
	CreateProject(ctx context.Context, project *model.Project) error

	// GetProject retrieves a project by id.
	// Returns ErrNotFound if the project doesn't exist.
	GetProject(ctx context.Context, projectID int) (*model.Project, error)

	// ListProjects returns all projects ordered by id
	ListProjects(ctx context.Context) ([]model.Project, error)

	// ListProjectsByIDs returns the projects whose id is in projectIDs
	ListProjectsByIDs(ctx context.Context, projectIDs []int) ([]model.Project, error)

	// UpdateProject applies update and returns the updated project.
	// Returns ErrNotFound if the project doesn't exist and ErrAlreadyExists
	// if the new key is taken.
	UpdateProject(ctx context.Context, projectID int, update ProjectUpdate) (*model.Project, error)
}
