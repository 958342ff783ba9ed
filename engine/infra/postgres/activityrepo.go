package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/core"
)

const activityColumns = "id, project_id, name, description, start_date, end_date, status, tracking_status, progress_percentage, checklist, created_at, updated_at"

// activityRepository implements activity.Repository using PostgreSQL
type activityRepository struct {
	db DBInterface
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(db DBInterface) activity.Repository {
	return &activityRepository{db: db}
}

func scanActivity(scannable interface{ Scan(dest ...any) error }) (*activity.Activity, error) {
	var a activity.Activity
	var checklist []byte
	err := scannable.Scan(
		&a.ID,
		&a.ProjectID,
		&a.Name,
		&a.Description,
		&a.StartDate,
		&a.EndDate,
		&a.Status,
		&a.TrackingStatus,
		&a.ProgressPercentage,
		&checklist,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, activity.ErrActivityNotFound
		}
		return nil, err
	}
	if len(checklist) > 0 {
		if err := json.Unmarshal(checklist, &a.Checklist); err != nil {
			return nil, fmt.Errorf("decode checklist: %w", err)
		}
	}
	return &a, nil
}

// Create creates a new activity
func (r *activityRepository) Create(ctx context.Context, a *activity.Activity) error {
	checklist, err := json.Marshal(a.Checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	if a.Checklist == nil {
		checklist = []byte("[]")
	}
	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.Exec(ctx, query,
		a.ID,
		a.ProjectID,
		a.Name,
		a.Description,
		a.StartDate,
		a.EndDate,
		a.Status,
		a.TrackingStatus,
		a.ProgressPercentage,
		checklist,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("activity references missing project: %w", err)
		}
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by its ID
func (r *activityRepository) GetByID(ctx context.Context, id core.ID) (*activity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	a, err := scanActivity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, activity.ErrActivityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// Update updates an existing activity
func (r *activityRepository) Update(ctx context.Context, a *activity.Activity) error {
	checklist, err := json.Marshal(a.Checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	if a.Checklist == nil {
		checklist = []byte("[]")
	}
	query := `
		UPDATE activities
		SET name = $2, description = $3, start_date = $4, end_date = $5, checklist = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Description, a.StartDate, a.EndDate, checklist)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// UpdateDates writes only the start and end dates
func (r *activityRepository) UpdateDates(ctx context.Context, id core.ID, start, end time.Time) error {
	query := `
		UPDATE activities
		SET start_date = $2, end_date = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, start, end)
	if err != nil {
		return fmt.Errorf("failed to update activity dates: %w", err)
	}
	if result.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// UpdateStatus writes only status, tracking status, and progress
func (r *activityRepository) UpdateStatus(
	ctx context.Context,
	id core.ID,
	status core.Status,
	tracking core.TrackingStatus,
	progress int,
) error {
	query := `
		UPDATE activities
		SET status = $2, tracking_status = $3, progress_percentage = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, status, tracking, progress)
	if err != nil {
		return fmt.Errorf("failed to update activity status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// Delete deletes an activity; tasks, dependencies, and constraints cascade
func (r *activityRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// ListByProject retrieves all activities of a project ordered by start date
func (r *activityRepository) ListByProject(ctx context.Context, projectID core.ID) ([]*activity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE project_id = $1 ORDER BY start_date, id`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()
	var activities []*activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
