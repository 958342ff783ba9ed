package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/core"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRows(u *user.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "org_id", "email", "name", "role", "password_hash", "created_at", "updated_at",
	}).AddRow(u.ID, u.OrgID, u.Email, u.Name, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
}

func testUser() *user.User {
	now := time.Now().UTC()
	return &user.User{
		ID:           core.MustNewID(),
		OrgID:        core.MustNewID(),
		Email:        "pm@acme.test",
		Name:         "Alex",
		Role:         core.RolePM,
		PasswordHash: "bcrypt-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Run("Should scan a full user row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewUserRepository(mock)
		u := testUser()
		mock.ExpectQuery("SELECT id, org_id, email, name, role, password_hash, created_at, updated_at").
			WithArgs(u.Email).
			WillReturnRows(newUserRows(u))

		got, err := repo.GetByEmail(context.Background(), u.Email)

		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Role, got.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map no rows to the not-found sentinel", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewUserRepository(mock)
		mock.ExpectQuery("SELECT id, org_id, email").
			WithArgs("ghost@acme.test").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "org_id", "email", "name", "role", "password_hash", "created_at", "updated_at",
			}))

		_, err = repo.GetByEmail(context.Background(), "ghost@acme.test")

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestUserRepository_Create(t *testing.T) {
	t.Run("Should insert all columns", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewUserRepository(mock)
		u := testUser()
		mock.ExpectExec("INSERT INTO users").
			WithArgs(u.ID, u.OrgID, u.Email, u.Name, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(context.Background(), u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map unique violations to the email-exists sentinel", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewUserRepository(mock)
		u := testUser()
		mock.ExpectExec("INSERT INTO users").
			WithArgs(u.ID, u.OrgID, u.Email, u.Name, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: codeUniqueViolation})

		err = repo.Create(context.Background(), u)

		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	t.Run("Should report missing users", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewUserRepository(mock)
		id := core.MustNewID()
		mock.ExpectExec("UPDATE users SET password_hash").
			WithArgs(id, "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = repo.UpdatePassword(context.Background(), id, "new-hash")

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
