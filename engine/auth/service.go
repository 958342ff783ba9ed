package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Service implements login, token refresh, logout, password changes, and
// PMO-gated user creation.
type Service struct {
	users      user.Repository
	refresh    RefreshRepository
	issuer     *TokenIssuer
	refreshTTL time.Duration
	clock      func() time.Time
}

// NewService creates a new auth service
func NewService(
	users user.Repository,
	refresh RefreshRepository,
	issuer *TokenIssuer,
	refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		refresh:    refresh,
		issuer:     issuer,
		refreshTTL: refreshTTL,
		clock:      time.Now,
	}
}

// Session is the result of a successful login or refresh.
type Session struct {
	User         *user.User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues an access token plus a fresh opaque
// refresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, core.NewError(ErrInvalidCredentials, core.KindUnauthenticated, nil)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, core.NewError(ErrInvalidCredentials, core.KindUnauthenticated, nil)
	}
	session, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("User logged in", "user_id", u.ID, "email", u.Email)
	return session, nil
}

func (s *Service) openSession(ctx context.Context, u *user.User) (*Session, error) {
	now := s.clock()
	access, err := s.issuer.Mint(u.ID, u.OrgID, u.Role, now)
	if err != nil {
		return nil, err
	}
	refreshValue := uuid.NewString()
	row := &RefreshToken{
		TokenHash: HashRefreshToken(refreshValue),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.refresh.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{User: u, AccessToken: access, RefreshToken: refreshValue}, nil
}

// Refresh exchanges a usable refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshValue string) (string, error) {
	row, err := s.lookupRefresh(ctx, refreshValue)
	if err != nil {
		return "", err
	}
	u, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		return "", err
	}
	return s.issuer.Mint(u.ID, u.OrgID, u.Role, s.clock())
}

func (s *Service) lookupRefresh(ctx context.Context, refreshValue string) (*RefreshToken, error) {
	row, err := s.refresh.GetByHash(ctx, HashRefreshToken(refreshValue))
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return nil, core.NewError(ErrRefreshNotFound, core.KindUnauthenticated, nil)
		}
		return nil, err
	}
	if !row.IsUsable(s.clock()) {
		return nil, core.NewError(ErrRefreshExpired, core.KindUnauthenticated, nil)
	}
	return row, nil
}

// Logout revokes one refresh token.
func (s *Service) Logout(ctx context.Context, refreshValue string) error {
	return s.refresh.Revoke(ctx, HashRefreshToken(refreshValue))
}

// LogoutAllDevices revokes every refresh token of the user.
func (s *Service) LogoutAllDevices(ctx context.Context, userID core.ID) error {
	if err := s.refresh.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("All sessions revoked", "user_id", userID)
	return nil
}

// ChangePassword verifies the old password, writes the new hash, and revokes
// every refresh token of the user, the caller's own included.
func (s *Service) ChangePassword(ctx context.Context, userID core.ID, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return core.NewError(ErrInvalidCredentials, core.KindUnauthenticated, nil)
	}
	if len(newPassword) < 8 {
		return core.NewError(fmt.Errorf("password must be at least 8 characters"), core.KindValidationFailed, nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.refresh.RevokeAllForUser(ctx, userID)
}

// CreateUserInput carries the fields of a user creation request.
type CreateUserInput struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Role     core.Role `json:"role"`
	OrgID    core.ID   `json:"orgId"`
}

// CreateUser creates a user within an organisation. Role gating is enforced
// at the boundary; the service enforces email uniqueness and shape.
func (s *Service) CreateUser(ctx context.Context, input *CreateUserInput) (*user.User, error) {
	if len(input.Password) < 8 {
		return nil, core.NewError(fmt.Errorf("password must be at least 8 characters"), core.KindValidationFailed, nil)
	}
	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if existing != nil {
		return nil, core.NewError(user.ErrEmailExists, core.KindUniqueConflict, nil)
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.clock().UTC()
	u := &user.User{
		ID:           id,
		OrgID:        input.OrgID,
		Email:        input.Email,
		Name:         input.Name,
		Role:         input.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return nil, core.NewError(user.ErrEmailExists, core.KindUniqueConflict, nil)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.FromContext(ctx).Info("User created", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id core.ID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}
