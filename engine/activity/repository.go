package activity

import (
	"context"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Repository defines the interface for activity data access
type Repository interface {
	// Create creates a new activity
	Create(ctx context.Context, a *Activity) error
	// GetByID retrieves an activity by its ID
	GetByID(ctx context.Context, id core.ID) (*Activity, error)
	// Update updates an existing activity
	Update(ctx context.Context, a *Activity) error
	// UpdateDates writes only the start and end dates
	UpdateDates(ctx context.Context, id core.ID, start, end time.Time) error
	// UpdateStatus writes only status, tracking status, and progress
	UpdateStatus(ctx context.Context, id core.ID, status core.Status, tracking core.TrackingStatus, progress int) error
	// Delete deletes an activity and cascades to its tasks, dependencies,
	// and constraints
	Delete(ctx context.Context, id core.ID) error
	// ListByProject retrieves all activities of a project ordered by start date
	ListByProject(ctx context.Context, projectID core.ID) ([]*Activity, error)
}
