package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
)

const dependencyColumns = "id, project_id, dep_type, lag, lag_kind, activity_predecessor_id, activity_successor_id, task_predecessor_id, task_successor_id, created_at"

// dependencyRepository implements depgraph.Repository using PostgreSQL
type dependencyRepository struct {
	db DBInterface
}

// NewDependencyRepository creates a new PostgreSQL dependency repository
func NewDependencyRepository(db DBInterface) depgraph.Repository {
	return &dependencyRepository{db: db}
}

func scanDependency(scannable interface{ Scan(dest ...any) error }) (*depgraph.Dependency, error) {
	var d depgraph.Dependency
	err := scannable.Scan(
		&d.ID,
		&d.ProjectID,
		&d.Type,
		&d.Lag,
		&d.LagKind,
		&d.ActivityPredecessorID,
		&d.ActivitySuccessorID,
		&d.TaskPredecessorID,
		&d.TaskSuccessorID,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, depgraph.ErrDependencyNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a dependency by its ID
func (r *dependencyRepository) GetByID(ctx context.Context, id core.ID) (*depgraph.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE id = $1`
	d, err := scanDependency(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, depgraph.ErrDependencyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get dependency: %w", err)
	}
	return d, nil
}

// Delete atomically removes a dependency
func (r *dependencyRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dependencies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dependency: %w", err)
	}
	if result.RowsAffected() == 0 {
		return depgraph.ErrDependencyNotFound
	}
	return nil
}

// ListSuccessors returns outgoing edges of an item, scoped to the kind
func (r *dependencyRepository) ListSuccessors(
	ctx context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	column := "task_predecessor_id"
	if kind == core.ItemTypeActivity {
		column = "activity_predecessor_id"
	}
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE ` + column + ` = $1 ORDER BY created_at, id`
	return queryDependencies(ctx, r.db, query, itemID)
}

// ListPredecessors returns incoming edges of an item, scoped to the kind
func (r *dependencyRepository) ListPredecessors(
	ctx context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	column := "task_successor_id"
	if kind == core.ItemTypeActivity {
		column = "activity_successor_id"
	}
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE ` + column + ` = $1 ORDER BY created_at, id`
	return queryDependencies(ctx, r.db, query, itemID)
}

// ListByProject returns all edges of a project, scoped to the kind
func (r *dependencyRepository) ListByProject(
	ctx context.Context,
	projectID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	condition := "task_predecessor_id IS NOT NULL"
	if kind == core.ItemTypeActivity {
		condition = "activity_predecessor_id IS NOT NULL"
	}
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE project_id = $1 AND ` + condition + ` ORDER BY created_at, id`
	return queryDependencies(ctx, r.db, query, projectID)
}

// CreateChecked inserts the edge inside one transaction. A per
// (project, endpoint-kind) advisory lock serialises concurrent inserts so the
// verify callback sees a linearisable view of the subgraph.
func (r *dependencyRepository) CreateChecked(
	ctx context.Context,
	dep *depgraph.Dependency,
	verify func(ctx context.Context, reader depgraph.Reader) error,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin dependency transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()
	_, err = tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
		dep.ProjectID.String(), string(dep.Kind()),
	)
	if err != nil {
		return fmt.Errorf("acquire dependency lock: %w", err)
	}
	if err := verify(ctx, &txReader{tx: tx}); err != nil {
		return err
	}
	query := `
		INSERT INTO dependencies (` + dependencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		dep.ID,
		dep.ProjectID,
		dep.Type,
		dep.Lag,
		dep.LagKind,
		dep.ActivityPredecessorID,
		dep.ActivitySuccessorID,
		dep.TaskPredecessorID,
		dep.TaskSuccessorID,
		dep.CreatedAt,
	)
	if err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", depgraph.ErrConcurrentUpdate, err)
		}
		if isForeignKeyViolation(err) {
			return depgraph.ErrEndpointNotFound
		}
		return fmt.Errorf("failed to create dependency: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", depgraph.ErrConcurrentUpdate, err)
		}
		return fmt.Errorf("commit dependency transaction: %w", err)
	}
	return nil
}

// txReader exposes the dependency read surface within a transaction.
type txReader struct {
	tx pgx.Tx
}

func (r *txReader) ListSuccessors(
	ctx context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	column := "task_predecessor_id"
	if kind == core.ItemTypeActivity {
		column = "activity_predecessor_id"
	}
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE ` + column + ` = $1 ORDER BY created_at, id`
	return queryDependencies(ctx, r.tx, query, itemID)
}

func (r *txReader) ListPredecessors(
	ctx context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	column := "task_successor_id"
	if kind == core.ItemTypeActivity {
		column = "activity_successor_id"
	}
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE ` + column + ` = $1 ORDER BY created_at, id`
	return queryDependencies(ctx, r.tx, query, itemID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryDependencies(ctx context.Context, q querier, query string, args ...any) ([]*depgraph.Dependency, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer rows.Close()
	var deps []*depgraph.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}
