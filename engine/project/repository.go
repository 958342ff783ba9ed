package project

import (
	"context"

	"github.com/masar-hq/masar/engine/core"
)

// ListFilter narrows List queries.
type ListFilter struct {
	Status *core.Status
	Limit  int
	Offset int
}

// Repository defines the interface for project data access
type Repository interface {
	// Create creates a new project
	Create(ctx context.Context, p *Project) error
	// GetByID retrieves a project by its ID within an organisation
	GetByID(ctx context.Context, orgID, projectID core.ID) (*Project, error)
	// Update updates an existing project
	Update(ctx context.Context, p *Project) error
	// UpdateStatus updates status and progress fields only
	UpdateStatus(ctx context.Context, orgID, projectID core.ID, status core.Status, progress int) error
	// Delete deletes a project and cascades to activities, tasks,
	// dependencies, and constraints
	Delete(ctx context.Context, orgID, projectID core.ID) error
	// List retrieves projects within an organisation
	List(ctx context.Context, orgID core.ID, filter ListFilter) ([]*Project, error)
	// Count returns the total matching a filter, ignoring pagination
	Count(ctx context.Context, orgID core.ID, filter ListFilter) (int64, error)

	// AddMember links a user to the project
	AddMember(ctx context.Context, projectID, userID core.ID) error
	// RemoveMember unlinks a user from the project
	RemoveMember(ctx context.Context, projectID, userID core.ID) error
	// ListMemberIDs returns the user IDs linked to the project
	ListMemberIDs(ctx context.Context, projectID core.ID) ([]core.ID, error)
	// IsMember reports whether the user owns or is linked to the project
	IsMember(ctx context.Context, projectID, userID core.ID) (bool, error)
}
