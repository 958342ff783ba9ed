package analytics

import (
	"context"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Dashboard aggregates the tenant-wide health view.
type Dashboard struct {
	TotalProjects      int64                  `json:"totalProjects"`
	ProjectsByStatus   map[core.Status]int64  `json:"projectsByStatus"`
	ItemsByTracking    map[core.TrackingStatus]int64 `json:"itemsByTracking"`
	AverageProgress    float64                `json:"averageProgress"`
	OverdueTasks       int64                  `json:"overdueTasks"`
}

// ProjectSummary aggregates one project's execution state.
type ProjectSummary struct {
	ProjectID          core.ID               `json:"projectId"`
	Name               string                `json:"name"`
	Status             core.Status           `json:"status"`
	ProgressPercentage int                   `json:"progressPercentage"`
	ActivitiesByStatus map[core.Status]int64 `json:"activitiesByStatus"`
	TasksByStatus      map[core.Status]int64 `json:"tasksByStatus"`
	OverdueTasks       int64                 `json:"overdueTasks"`
	CriticalItems      int                   `json:"criticalItems"`
	ProjectedEndDate   time.Time             `json:"projectedEndDate"`
}

// Repository defines the read-only aggregate queries behind analytics.
type Repository interface {
	// CountProjectsByStatus groups an organisation's projects by status
	CountProjectsByStatus(ctx context.Context, orgID core.ID) (map[core.Status]int64, error)
	// CountItemsByTracking groups activities and tasks by tracking status
	CountItemsByTracking(ctx context.Context, orgID core.ID) (map[core.TrackingStatus]int64, error)
	// AverageProjectProgress returns the mean progress across projects
	AverageProjectProgress(ctx context.Context, orgID core.ID) (float64, error)
	// CountOverdueTasks counts open tasks past their end date
	CountOverdueTasks(ctx context.Context, orgID core.ID, now time.Time) (int64, error)
	// CountActivitiesByStatus groups a project's activities by status
	CountActivitiesByStatus(ctx context.Context, projectID core.ID) (map[core.Status]int64, error)
	// CountTasksByStatus groups a project's tasks by status
	CountTasksByStatus(ctx context.Context, projectID core.ID) (map[core.Status]int64, error)
	// CountOverdueProjectTasks counts a project's open tasks past their end date
	CountOverdueProjectTasks(ctx context.Context, projectID core.ID, now time.Time) (int64, error)
}
