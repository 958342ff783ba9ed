package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/core"
)

// userRepository implements user.Repository using PostgreSQL
type userRepository struct {
	db DBInterface
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db DBInterface) user.Repository {
	return &userRepository{db: db}
}

func scanUser(scannable interface{ Scan(dest ...any) error }) (*user.User, error) {
	var u user.User
	err := scannable.Scan(
		&u.ID,
		&u.OrgID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, org_id, email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.OrgID,
		u.Email,
		u.Name,
		u.Role,
		u.PasswordHash,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by its ID
func (r *userRepository) GetByID(ctx context.Context, id core.ID) (*user.User, error) {
	query := `
		SELECT id, org_id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, org_id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// Update updates an existing user
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, role = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, u.ID, u.Email, u.Name, u.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdatePassword writes only the password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id core.ID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete deletes a user by its ID
func (r *userRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListByOrg retrieves users of an organisation with pagination
func (r *userRepository) ListByOrg(ctx context.Context, orgID core.ID, limit, offset int) ([]*user.User, error) {
	query := `
		SELECT id, org_id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE org_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()
	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
