package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/analytics"
	"github.com/masar-hq/masar/engine/core"
)

// analyticsRepository implements analytics.Repository using PostgreSQL
type analyticsRepository struct {
	db DBInterface
}

// NewAnalyticsRepository creates a new PostgreSQL analytics repository
func NewAnalyticsRepository(db DBInterface) analytics.Repository {
	return &analyticsRepository{db: db}
}

// CountProjectsByStatus groups an organisation's projects by status
func (r *analyticsRepository) CountProjectsByStatus(ctx context.Context, orgID core.ID) (map[core.Status]int64, error) {
	query := `SELECT status, COUNT(*) FROM projects WHERE org_id = $1 GROUP BY status`
	return r.countByStatus(ctx, query, orgID)
}

// CountItemsByTracking groups activities and tasks by tracking status
func (r *analyticsRepository) CountItemsByTracking(
	ctx context.Context,
	orgID core.ID,
) (map[core.TrackingStatus]int64, error) {
	query := `
		SELECT tracking_status, COUNT(*) FROM (
			SELECT a.tracking_status
			FROM activities a
			JOIN projects p ON p.id = a.project_id
			WHERE p.org_id = $1
			UNION ALL
			SELECT t.tracking_status
			FROM tasks t
			JOIN activities a ON a.id = t.activity_id
			JOIN projects p ON p.id = a.project_id
			WHERE p.org_id = $1
		) items
		GROUP BY tracking_status
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count items by tracking: %w", err)
	}
	defer rows.Close()
	counts := make(map[core.TrackingStatus]int64)
	for rows.Next() {
		var status core.TrackingStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// AverageProjectProgress returns the mean progress across projects
func (r *analyticsRepository) AverageProjectProgress(ctx context.Context, orgID core.ID) (float64, error) {
	query := `SELECT COALESCE(AVG(progress_percentage), 0) FROM projects WHERE org_id = $1`
	var avg float64
	if err := r.db.QueryRow(ctx, query, orgID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average project progress: %w", err)
	}
	return avg, nil
}

// CountOverdueTasks counts open tasks past their end date
func (r *analyticsRepository) CountOverdueTasks(ctx context.Context, orgID core.ID, now time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tasks t
		JOIN activities a ON a.id = t.activity_id
		JOIN projects p ON p.id = a.project_id
		WHERE p.org_id = $1 AND t.end_date < $2 AND t.status NOT IN ('COMPLETED', 'VERIFIED')
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, orgID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return count, nil
}

// CountActivitiesByStatus groups a project's activities by status
func (r *analyticsRepository) CountActivitiesByStatus(ctx context.Context, projectID core.ID) (map[core.Status]int64, error) {
	query := `SELECT status, COUNT(*) FROM activities WHERE project_id = $1 GROUP BY status`
	return r.countByStatus(ctx, query, projectID)
}

// CountTasksByStatus groups a project's tasks by status
func (r *analyticsRepository) CountTasksByStatus(ctx context.Context, projectID core.ID) (map[core.Status]int64, error) {
	query := `
		SELECT t.status, COUNT(*)
		FROM tasks t
		JOIN activities a ON a.id = t.activity_id
		WHERE a.project_id = $1
		GROUP BY t.status
	`
	return r.countByStatus(ctx, query, projectID)
}

// CountOverdueProjectTasks counts a project's open tasks past their end date
func (r *analyticsRepository) CountOverdueProjectTasks(
	ctx context.Context,
	projectID core.ID,
	now time.Time,
) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tasks t
		JOIN activities a ON a.id = t.activity_id
		WHERE a.project_id = $1 AND t.end_date < $2 AND t.status NOT IN ('COMPLETED', 'VERIFIED')
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, projectID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count overdue project tasks: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) countByStatus(ctx context.Context, query string, arg any) (map[core.Status]int64, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()
	counts := make(map[core.Status]int64)
	for rows.Next() {
		var status core.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
