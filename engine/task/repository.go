package task

import (
	"context"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Repository defines the interface for task data access
type Repository interface {
	// Create creates a new task
	Create(ctx context.Context, t *Task) error
	// GetByID retrieves a task by its ID
	GetByID(ctx context.Context, id core.ID) (*Task, error)
	// Update updates an existing task
	Update(ctx context.Context, t *Task) error
	// UpdateDates writes only the start and end dates
	UpdateDates(ctx context.Context, id core.ID, start, end time.Time) error
	// UpdateStatus writes only status, tracking status, and progress
	UpdateStatus(ctx context.Context, id core.ID, status core.Status, tracking core.TrackingStatus, progress int) error
	// Delete deletes a task and cascades to its dependencies and constraints
	Delete(ctx context.Context, id core.ID) error
	// ListByActivity retrieves all tasks of an activity ordered by start date
	ListByActivity(ctx context.Context, activityID core.ID) ([]*Task, error)
	// ListByProject retrieves all tasks of a project across its activities
	ListByProject(ctx context.Context, projectID core.ID) ([]*Task, error)
	// ListByAssignee retrieves tasks assigned to a user with pagination
	ListByAssignee(ctx context.Context, assigneeID core.ID, limit, offset int) ([]*Task, error)
}
