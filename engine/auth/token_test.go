package auth

import (
	"testing"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	t.Run("Should round-trip claims through mint and verify", func(t *testing.T) {
		issuer := NewTokenIssuer("test-secret", 15*time.Minute)
		userID := core.MustNewID()
		orgID := core.MustNewID()

		token, err := issuer.Mint(userID, orgID, core.RolePM, time.Now())
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, orgID, claims.OrgID)
		assert.Equal(t, core.RolePM, claims.Role)
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		issuer := NewTokenIssuer("test-secret", 15*time.Minute)

		token, err := issuer.Mint(core.MustNewID(), core.MustNewID(), core.RolePM, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Should reject tokens signed with another secret", func(t *testing.T) {
		issuer := NewTokenIssuer("test-secret", 15*time.Minute)
		other := NewTokenIssuer("other-secret", 15*time.Minute)

		token, err := other.Mint(core.MustNewID(), core.MustNewID(), core.RolePM, time.Now())
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject garbage tokens", func(t *testing.T) {
		issuer := NewTokenIssuer("test-secret", 15*time.Minute)

		_, err := issuer.Verify("not.a.token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHashRefreshToken(t *testing.T) {
	t.Run("Should be deterministic and collision-free across values", func(t *testing.T) {
		assert.Equal(t, HashRefreshToken("abc"), HashRefreshToken("abc"))
		assert.NotEqual(t, HashRefreshToken("abc"), HashRefreshToken("abd"))
		assert.Len(t, HashRefreshToken("abc"), 64)
	})
}
