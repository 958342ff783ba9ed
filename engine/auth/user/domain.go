package user

import (
	"fmt"
	"regexp"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// emailRegex matches valid email addresses
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User belongs to exactly one organisation and is identified by a unique
// email across the whole system.
type User struct {
	ID           core.ID   `json:"id"        db:"id"`
	OrgID        core.ID   `json:"orgId"     db:"org_id"`
	Email        string    `json:"email"     db:"email"`
	Name         string    `json:"name"      db:"name"`
	Role         core.Role `json:"role"      db:"role"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate checks the user's required fields
func (u *User) Validate() error {
	if !emailRegex.MatchString(u.Email) {
		return fmt.Errorf("invalid email address %q", u.Email)
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	if u.OrgID.IsZero() {
		return fmt.Errorf("user organization is required")
	}
	return nil
}

// Summary is the user shape returned to API clients.
type Summary struct {
	ID    core.ID   `json:"id"`
	OrgID core.ID   `json:"orgId"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  core.Role `json:"role"`
}

// Summarize strips credential fields for API responses.
func (u *User) Summarize() *Summary {
	return &Summary{ID: u.ID, OrgID: u.OrgID, Email: u.Email, Name: u.Name, Role: u.Role}
}
