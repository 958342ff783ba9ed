package user

import (
	"context"

	"github.com/masar-hq/masar/engine/core"
)

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user; the email is unique system-wide
	Create(ctx context.Context, u *User) error
	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id core.ID) (*User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Update updates an existing user
	Update(ctx context.Context, u *User) error
	// UpdatePassword writes only the password hash
	UpdatePassword(ctx context.Context, id core.ID, passwordHash string) error
	// Delete deletes a user by its ID
	Delete(ctx context.Context, id core.ID) error
	// ListByOrg retrieves users of an organisation with pagination
	ListByOrg(ctx context.Context, orgID core.ID, limit, offset int) ([]*User, error)
}
