package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
)

// refreshRepository implements auth.RefreshRepository using PostgreSQL
type refreshRepository struct {
	db DBInterface
}

// NewRefreshRepository creates a new PostgreSQL refresh token repository
func NewRefreshRepository(db DBInterface) auth.RefreshRepository {
	return &refreshRepository{db: db}
}

// Create stores a new refresh token row
func (r *refreshRepository) Create(ctx context.Context, t *auth.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, t.TokenHash, t.UserID, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetByHash retrieves a token row by its hash
func (r *refreshRepository) GetByHash(ctx context.Context, hash string) (*auth.RefreshToken, error) {
	query := `
		SELECT token_hash, user_id, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	var t auth.RefreshToken
	err := r.db.QueryRow(ctx, query, hash).Scan(
		&t.TokenHash,
		&t.UserID,
		&t.ExpiresAt,
		&t.RevokedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrRefreshNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &t, nil
}

// Revoke marks one token as revoked
func (r *refreshRepository) Revoke(ctx context.Context, hash string) error {
	query := `UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE token_hash = $1 AND revoked_at IS NULL`
	result, err := r.db.Exec(ctx, query, hash)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auth.ErrRefreshNotFound
	}
	return nil
}

// RevokeAllForUser marks every token of a user as revoked
func (r *refreshRepository) RevokeAllForUser(ctx context.Context, userID core.ID) error {
	query := `UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpired removes rows past their lifetime
func (r *refreshRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
