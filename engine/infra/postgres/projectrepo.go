package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/project"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const projectColumns = "id, org_id, owner_id, name, description, start_date, timezone, status, progress_percentage, created_at, updated_at"

// projectRepository implements project.Repository using PostgreSQL
type projectRepository struct {
	db DBInterface
}

// NewProjectRepository creates a new PostgreSQL project repository
func NewProjectRepository(db DBInterface) project.Repository {
	return &projectRepository{db: db}
}

func scanProject(scannable interface{ Scan(dest ...any) error }) (*project.Project, error) {
	var p project.Project
	err := scannable.Scan(
		&p.ID,
		&p.OrgID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.StartDate,
		&p.Timezone,
		&p.Status,
		&p.ProgressPercentage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create creates a new project
func (r *projectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.OrgID,
		p.OwnerID,
		p.Name,
		p.Description,
		p.StartDate,
		p.Timezone,
		p.Status,
		p.ProgressPercentage,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project references missing entity: %w", err)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by its ID within an organisation
func (r *projectRepository) GetByID(ctx context.Context, orgID, projectID core.ID) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE org_id = $1 AND id = $2`
	p, err := scanProject(r.db.QueryRow(ctx, query, orgID, projectID))
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// Update updates an existing project
func (r *projectRepository) Update(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = $3, description = $4, start_date = $5, timezone = $6, updated_at = CURRENT_TIMESTAMP
		WHERE org_id = $1 AND id = $2
	`
	result, err := r.db.Exec(ctx, query, p.OrgID, p.ID, p.Name, p.Description, p.StartDate, p.Timezone)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// UpdateStatus updates status and progress fields only
func (r *projectRepository) UpdateStatus(
	ctx context.Context,
	orgID, projectID core.ID,
	status core.Status,
	progress int,
) error {
	query := `
		UPDATE projects
		SET status = $3, progress_percentage = $4, updated_at = CURRENT_TIMESTAMP
		WHERE org_id = $1 AND id = $2
	`
	result, err := r.db.Exec(ctx, query, orgID, projectID, status, progress)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// Delete deletes a project; activities, tasks, dependencies, and constraints
// cascade in the schema
func (r *projectRepository) Delete(ctx context.Context, orgID, projectID core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE org_id = $1 AND id = $2`, orgID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// List retrieves projects within an organisation
func (r *projectRepository) List(ctx context.Context, orgID core.ID, filter project.ListFilter) ([]*project.Project, error) {
	builder := psql.Select(projectColumns).
		From("projects").
		Where(sq.Eq{"org_id": orgID}).
		OrderBy("created_at DESC")
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project list query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()
	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Count returns the total matching a filter, ignoring pagination
func (r *projectRepository) Count(ctx context.Context, orgID core.ID, filter project.ListFilter) (int64, error) {
	builder := psql.Select("COUNT(*)").From("projects").Where(sq.Eq{"org_id": orgID})
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build project count query: %w", err)
	}
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// AddMember links a user to the project
func (r *projectRepository) AddMember(ctx context.Context, projectID, userID core.ID) error {
	query := `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

// RemoveMember unlinks a user from the project
func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID core.ID) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	if _, err := r.db.Exec(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	return nil
}

// ListMemberIDs returns the user IDs linked to the project
func (r *projectRepository) ListMemberIDs(ctx context.Context, projectID core.ID) ([]core.ID, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM project_members WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()
	var ids []core.ID
	for rows.Next() {
		var id core.ID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsMember reports whether the user owns or is linked to the project
func (r *projectRepository) IsMember(ctx context.Context, projectID, userID core.ID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2
			UNION
			SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return exists, nil
}
