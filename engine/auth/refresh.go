package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// RefreshToken is an opaque, revocable session row. Only the hash of the
// token value is stored.
type RefreshToken struct {
	TokenHash string     `json:"-"         db:"token_hash"`
	UserID    core.ID    `json:"userId"    db:"user_id"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	RevokedAt *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// IsUsable reports whether the token is neither revoked nor expired.
func (r *RefreshToken) IsUsable(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.ExpiresAt)
}

// HashRefreshToken derives the storage key of a refresh token value.
func HashRefreshToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// RefreshRepository defines the interface for refresh token data access
type RefreshRepository interface {
	// Create stores a new refresh token row
	Create(ctx context.Context, t *RefreshToken) error
	// GetByHash retrieves a token row by its hash
	GetByHash(ctx context.Context, hash string) (*RefreshToken, error)
	// Revoke marks one token as revoked
	Revoke(ctx context.Context, hash string) error
	// RevokeAllForUser marks every token of a user as revoked
	RevokeAllForUser(ctx context.Context, userID core.ID) error
	// DeleteExpired removes rows past their lifetime
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
