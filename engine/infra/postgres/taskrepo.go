package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/task"
)

const taskColumns = "id, activity_id, name, description, start_date, end_date, duration_hours, assignee_id, status, tracking_status, progress_percentage, created_at, updated_at"

// taskRepository implements task.Repository using PostgreSQL
type taskRepository struct {
	db DBInterface
}

// NewTaskRepository creates a new PostgreSQL task repository
func NewTaskRepository(db DBInterface) task.Repository {
	return &taskRepository{db: db}
}

func scanTask(scannable interface{ Scan(dest ...any) error }) (*task.Task, error) {
	var t task.Task
	err := scannable.Scan(
		&t.ID,
		&t.ActivityID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.DurationHours,
		&t.AssigneeID,
		&t.Status,
		&t.TrackingStatus,
		&t.ProgressPercentage,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create creates a new task
func (r *taskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.ActivityID,
		t.Name,
		t.Description,
		t.StartDate,
		t.EndDate,
		t.DurationHours,
		t.AssigneeID,
		t.Status,
		t.TrackingStatus,
		t.ProgressPercentage,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("task references missing entity: %w", err)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID
func (r *taskRepository) GetByID(ctx context.Context, id core.ID) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// Update updates an existing task
func (r *taskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET name = $2, description = $3, start_date = $4, end_date = $5,
		    duration_hours = $6, assignee_id = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		t.ID, t.Name, t.Description, t.StartDate, t.EndDate, t.DurationHours, t.AssigneeID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// UpdateDates writes only the start and end dates
func (r *taskRepository) UpdateDates(ctx context.Context, id core.ID, start, end time.Time) error {
	query := `
		UPDATE tasks
		SET start_date = $2, end_date = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, start, end)
	if err != nil {
		return fmt.Errorf("failed to update task dates: %w", err)
	}
	if result.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// UpdateStatus writes only status, tracking status, and progress
func (r *taskRepository) UpdateStatus(
	ctx context.Context,
	id core.ID,
	status core.Status,
	tracking core.TrackingStatus,
	progress int,
) error {
	query := `
		UPDATE tasks
		SET status = $2, tracking_status = $3, progress_percentage = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, status, tracking, progress)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// Delete deletes a task; dependencies and constraints cascade
func (r *taskRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// ListByActivity retrieves all tasks of an activity ordered by start date
func (r *taskRepository) ListByActivity(ctx context.Context, activityID core.ID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE activity_id = $1 ORDER BY start_date, id`
	return r.queryTasks(ctx, query, activityID)
}

// ListByProject retrieves all tasks of a project across its activities
func (r *taskRepository) ListByProject(ctx context.Context, projectID core.ID) ([]*task.Task, error) {
	query := `
		SELECT ` + prefixedTaskColumns("t") + `
		FROM tasks t
		JOIN activities a ON a.id = t.activity_id
		WHERE a.project_id = $1
		ORDER BY t.start_date, t.id
	`
	return r.queryTasks(ctx, query, projectID)
}

// ListByAssignee retrieves tasks assigned to a user with pagination
func (r *taskRepository) ListByAssignee(ctx context.Context, assigneeID core.ID, limit, offset int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE assignee_id = $1
		ORDER BY start_date, id
		LIMIT $2 OFFSET $3
	`
	return r.queryTasks(ctx, query, assigneeID, limit, offset)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func prefixedTaskColumns(alias string) string {
	return alias + ".id, " + alias + ".activity_id, " + alias + ".name, " + alias + ".description, " +
		alias + ".start_date, " + alias + ".end_date, " + alias + ".duration_hours, " + alias + ".assignee_id, " +
		alias + ".status, " + alias + ".tracking_status, " + alias + ".progress_percentage, " +
		alias + ".created_at, " + alias + ".updated_at"
}
