package auth

import (
	"context"
	"testing"
	"time"

	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID    map[core.ID]*user.User
	byEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[core.ID]*user.User{}, byEmail: map[string]*user.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return user.ErrEmailExists
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id core.ID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id core.ID, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id core.ID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeUserRepo) ListByOrg(context.Context, core.ID, int, int) ([]*user.User, error) {
	return nil, nil
}

type fakeRefreshRepo struct {
	rows map[string]*RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{rows: map[string]*RefreshToken{}}
}

func (r *fakeRefreshRepo) Create(_ context.Context, t *RefreshToken) error {
	r.rows[t.TokenHash] = t
	return nil
}

func (r *fakeRefreshRepo) GetByHash(_ context.Context, hash string) (*RefreshToken, error) {
	row, ok := r.rows[hash]
	if !ok {
		return nil, ErrRefreshNotFound
	}
	return row, nil
}

func (r *fakeRefreshRepo) Revoke(_ context.Context, hash string) error {
	row, ok := r.rows[hash]
	if !ok || row.RevokedAt != nil {
		return ErrRefreshNotFound
	}
	now := time.Now()
	row.RevokedAt = &now
	return nil
}

func (r *fakeRefreshRepo) RevokeAllForUser(_ context.Context, userID core.ID) error {
	now := time.Now()
	for _, row := range r.rows {
		if row.UserID == userID && row.RevokedAt == nil {
			row.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for hash, row := range r.rows {
		if row.ExpiresAt.Before(before) {
			delete(r.rows, hash)
			n++
		}
	}
	return n, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeRefreshRepo) {
	t.Helper()
	users := newFakeUserRepo()
	refresh := newFakeRefreshRepo()
	issuer := NewTokenIssuer("test-secret", 15*time.Minute)
	return NewService(users, refresh, issuer, 7*24*time.Hour), users, refresh
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password string, role core.Role) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &user.User{
		ID:           core.MustNewID(),
		OrgID:        core.MustNewID(),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestService_Login(t *testing.T) {
	t.Run("Should issue access and refresh tokens for valid credentials", func(t *testing.T) {
		svc, users, refresh := newTestService(t)
		u := seedUser(t, users, "pm@acme.test", "hunter2-secret", core.RolePM)

		session, err := svc.Login(context.Background(), "pm@acme.test", "hunter2-secret")

		require.NoError(t, err)
		assert.Equal(t, u.ID, session.User.ID)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		_, ok := refresh.rows[HashRefreshToken(session.RefreshToken)]
		assert.True(t, ok)
	})

	t.Run("Should reject wrong passwords and unknown emails alike", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		seedUser(t, users, "pm@acme.test", "hunter2-secret", core.RolePM)

		_, err := svc.Login(context.Background(), "pm@acme.test", "wrong")
		assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))

		_, err = svc.Login(context.Background(), "ghost@acme.test", "hunter2-secret")
		assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
	})
}

func TestService_Refresh(t *testing.T) {
	t.Run("Should exchange a live refresh token for a new access token", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		seedUser(t, users, "pm@acme.test", "hunter2-secret", core.RolePM)
		session, err := svc.Login(context.Background(), "pm@acme.test", "hunter2-secret")
		require.NoError(t, err)

		access, err := svc.Refresh(context.Background(), session.RefreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, access)
	})

	t.Run("Should reject revoked tokens", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		seedUser(t, users, "pm@acme.test", "hunter2-secret", core.RolePM)
		session, err := svc.Login(context.Background(), "pm@acme.test", "hunter2-secret")
		require.NoError(t, err)
		require.NoError(t, svc.Logout(context.Background(), session.RefreshToken))

		_, err = svc.Refresh(context.Background(), session.RefreshToken)

		assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
	})

	t.Run("Should reject unknown tokens", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Refresh(context.Background(), "no-such-token")

		assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
	})
}

func TestService_ChangePassword(t *testing.T) {
	t.Run("Should rotate the hash and revoke existing sessions", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		u := seedUser(t, users, "pm@acme.test", "hunter2-secret", core.RolePM)
		ctx := context.Background()
		session, err := svc.Login(ctx, "pm@acme.test", "hunter2-secret")
		require.NoError(t, err)

		require.NoError(t, svc.ChangePassword(ctx, u.ID, "hunter2-secret", "even-better-secret"))

		_, err = svc.Login(ctx, "pm@acme.test", "even-better-secret")
		assert.NoError(t, err)
		_, err = svc.Refresh(ctx, session.RefreshToken)
		assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
	})

	t.Run("Should reject a wrong old password", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		u := seedUser(t, users, "pm@acme.test", "hunter2-secret", core.RolePM)

		err := svc.ChangePassword(context.Background(), u.ID, "wrong", "even-better-secret")

		assert.Equal(t, core.KindUnauthenticated, core.KindOf(err))
	})
}

func TestService_CreateUser(t *testing.T) {
	t.Run("Should create a user with a hashed password", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		u, err := svc.CreateUser(context.Background(), &CreateUserInput{
			Email:    "member@acme.test",
			Name:     "Sam",
			Password: "long-enough-pass",
			Role:     core.RoleTeamMember,
			OrgID:    core.MustNewID(),
		})

		require.NoError(t, err)
		assert.NotEqual(t, "long-enough-pass", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("long-enough-pass")))
	})

	t.Run("Should reject duplicate emails", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		seedUser(t, users, "member@acme.test", "hunter2-secret", core.RoleTeamMember)

		_, err := svc.CreateUser(context.Background(), &CreateUserInput{
			Email:    "member@acme.test",
			Password: "long-enough-pass",
			Role:     core.RoleTeamMember,
			OrgID:    core.MustNewID(),
		})

		assert.Equal(t, core.KindUniqueConflict, core.KindOf(err))
	})

	t.Run("Should reject short passwords", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.CreateUser(context.Background(), &CreateUserInput{
			Email:    "member@acme.test",
			Password: "short",
			Role:     core.RoleTeamMember,
			OrgID:    core.MustNewID(),
		})

		assert.Equal(t, core.KindValidationFailed, core.KindOf(err))
	})
}
