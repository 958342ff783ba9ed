package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActivityDependency() *depgraph.Dependency {
	pred := core.MustNewID()
	succ := core.MustNewID()
	return &depgraph.Dependency{
		ID:                    core.MustNewID(),
		ProjectID:             core.MustNewID(),
		Type:                  depgraph.TypeFS,
		Lag:                   1,
		LagKind:               depgraph.LagCalendarDays,
		ActivityPredecessorID: &pred,
		ActivitySuccessorID:   &succ,
		CreatedAt:             time.Now().UTC(),
	}
}

func TestDependencyRepository_CreateChecked(t *testing.T) {
	t.Run("Should lock, verify, insert, and commit in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewDependencyRepository(mock)
		dep := testActivityDependency()

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WithArgs(dep.ProjectID.String(), string(core.ItemTypeActivity)).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectQuery("SELECT id, project_id, dep_type").
			WithArgs(*dep.ActivitySuccessorID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "project_id", "dep_type", "lag", "lag_kind",
				"activity_predecessor_id", "activity_successor_id",
				"task_predecessor_id", "task_successor_id", "created_at",
			}))
		mock.ExpectExec("INSERT INTO dependencies").
			WithArgs(dep.ID, dep.ProjectID, dep.Type, dep.Lag, dep.LagKind,
				dep.ActivityPredecessorID, dep.ActivitySuccessorID,
				dep.TaskPredecessorID, dep.TaskSuccessorID, dep.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		err = repo.CreateChecked(context.Background(), dep,
			func(ctx context.Context, r depgraph.Reader) error {
				succs, verr := r.ListSuccessors(ctx, *dep.ActivitySuccessorID, core.ItemTypeActivity)
				require.NoError(t, verr)
				assert.Empty(t, succs)
				return nil
			})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should abort without inserting when verification fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewDependencyRepository(mock)
		dep := testActivityDependency()
		rejection := errors.New("would create a cycle")

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WithArgs(dep.ProjectID.String(), string(core.ItemTypeActivity)).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectRollback()

		err = repo.CreateChecked(context.Background(), dep,
			func(context.Context, depgraph.Reader) error { return rejection })

		assert.ErrorIs(t, err, rejection)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDependencyRepository_Delete(t *testing.T) {
	t.Run("Should report missing dependencies", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewDependencyRepository(mock)
		id := core.MustNewID()
		mock.ExpectExec("DELETE FROM dependencies").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = repo.Delete(context.Background(), id)

		assert.ErrorIs(t, err, depgraph.ErrDependencyNotFound)
	})
}
