package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults when no environment is set", func(t *testing.T) {
		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, EnvDevelopment, cfg.Environment)
		assert.Equal(t, 5005, cfg.Server.Port)
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	})

	t.Run("Should override defaults from MASAR_ environment variables", func(t *testing.T) {
		t.Setenv("MASAR_SERVER_PORT", "9090")
		t.Setenv("MASAR_DATABASE_URL", "postgres://db.example/masar")
		t.Setenv("MASAR_AUTH_JWT_SECRET", "super-secret")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "postgres://db.example/masar", cfg.Database.URL)
		assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
	})

	t.Run("Should reject production without a JWT secret", func(t *testing.T) {
		t.Setenv("MASAR_ENVIRONMENT", "production")

		_, err := Load()

		assert.Error(t, err)
	})

	t.Run("Should reject unknown environments", func(t *testing.T) {
		t.Setenv("MASAR_ENVIRONMENT", "staging")

		_, err := Load()

		assert.Error(t, err)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the stored configuration", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 1234
		ctx := ContextWithConfig(context.Background(), cfg)

		assert.Equal(t, 1234, FromContext(ctx).Server.Port)
	})

	t.Run("Should fall back to defaults without a stored configuration", func(t *testing.T) {
		cfg := FromContext(context.Background())

		require.NotNil(t, cfg)
		assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	})
}
