package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/core"
)

const constraintColumns = "id, project_id, item_id, item_type, constraint_type, constraint_date, created_at"

// constraintRepository implements constraint.Repository using PostgreSQL
type constraintRepository struct {
	db DBInterface
}

// NewConstraintRepository creates a new PostgreSQL constraint repository
func NewConstraintRepository(db DBInterface) constraint.Repository {
	return &constraintRepository{db: db}
}

func scanConstraint(scannable interface{ Scan(dest ...any) error }) (*constraint.DateConstraint, error) {
	var c constraint.DateConstraint
	err := scannable.Scan(
		&c.ID,
		&c.ProjectID,
		&c.ItemID,
		&c.ItemType,
		&c.Type,
		&c.Date,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, constraint.ErrConstraintNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create creates a new constraint
func (r *constraintRepository) Create(ctx context.Context, c *constraint.DateConstraint) error {
	query := `
		INSERT INTO date_constraints (` + constraintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.ProjectID,
		c.ItemID,
		c.ItemType,
		c.Type,
		c.Date,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create constraint: %w", err)
	}
	return nil
}

// GetByID retrieves a constraint by its ID
func (r *constraintRepository) GetByID(ctx context.Context, id core.ID) (*constraint.DateConstraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM date_constraints WHERE id = $1`
	c, err := scanConstraint(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, constraint.ErrConstraintNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get constraint: %w", err)
	}
	return c, nil
}

// Delete atomically removes a constraint
func (r *constraintRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM date_constraints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete constraint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return constraint.ErrConstraintNotFound
	}
	return nil
}

// ListByItem retrieves all constraints of one item
func (r *constraintRepository) ListByItem(
	ctx context.Context,
	itemID core.ID,
	itemType core.ItemType,
) ([]*constraint.DateConstraint, error) {
	query := `
		SELECT ` + constraintColumns + `
		FROM date_constraints
		WHERE item_id = $1 AND item_type = $2
		ORDER BY created_at, id
	`
	return r.queryConstraints(ctx, query, itemID, itemType)
}

// ListByProject retrieves all constraints of a project
func (r *constraintRepository) ListByProject(ctx context.Context, projectID core.ID) ([]*constraint.DateConstraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM date_constraints WHERE project_id = $1 ORDER BY created_at, id`
	return r.queryConstraints(ctx, query, projectID)
}

func (r *constraintRepository) queryConstraints(
	ctx context.Context,
	query string,
	args ...any,
) ([]*constraint.DateConstraint, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list constraints: %w", err)
	}
	defer rows.Close()
	var constraints []*constraint.DateConstraint
	for rows.Next() {
		c, err := scanConstraint(rows)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}
