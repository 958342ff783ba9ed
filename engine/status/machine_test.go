package status

import (
	"testing"

	"github.com/masar-hq/masar/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("Should allow every transition in the table", func(t *testing.T) {
		allowed := []struct {
			from core.Status
			to   core.Status
			role core.Role
		}{
			{core.StatusNotStarted, core.StatusInProgress, core.RoleTeamMember},
			{core.StatusNotStarted, core.StatusCompleted, core.RoleTeamMember},
			{core.StatusInProgress, core.StatusOnHold, core.RoleTeamMember},
			{core.StatusInProgress, core.StatusCompleted, core.RoleTeamMember},
			{core.StatusOnHold, core.StatusInProgress, core.RoleTeamMember},
			{core.StatusCompleted, core.StatusVerified, core.RolePM},
			{core.StatusCompleted, core.StatusVerified, core.RolePMO},
			{core.StatusVerified, core.StatusInProgress, core.RolePM},
		}
		for _, tc := range allowed {
			assert.NoError(t, CanTransition(tc.from, tc.to, tc.role),
				"%s -> %s as %s", tc.from, tc.to, tc.role)
		}
	})

	t.Run("Should reject every pair outside the table", func(t *testing.T) {
		states := []core.Status{
			core.StatusNotStarted, core.StatusInProgress, core.StatusOnHold,
			core.StatusCompleted, core.StatusVerified,
		}
		allowed := map[core.Status]map[core.Status]bool{
			core.StatusNotStarted: {core.StatusInProgress: true, core.StatusCompleted: true},
			core.StatusInProgress: {core.StatusOnHold: true, core.StatusCompleted: true},
			core.StatusOnHold:     {core.StatusInProgress: true},
			core.StatusCompleted:  {core.StatusVerified: true},
			core.StatusVerified:   {core.StatusInProgress: true},
		}
		for _, from := range states {
			for _, to := range states {
				if from == to || allowed[from][to] {
					continue
				}
				err := CanTransition(from, to, core.RolePMO)
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	})

	t.Run("Should gate verification transitions by role", func(t *testing.T) {
		for _, role := range []core.Role{core.RoleTeamMember, core.RoleClient} {
			err := CanTransition(core.StatusCompleted, core.StatusVerified, role)
			assert.ErrorIs(t, err, ErrVerificationRole, "role %s", role)
			err = CanTransition(core.StatusVerified, core.StatusInProgress, role)
			assert.ErrorIs(t, err, ErrVerificationRole, "role %s", role)
		}
	})
}

func TestProgressHelpers(t *testing.T) {
	t.Run("Should force progress to 100 on completion and verification", func(t *testing.T) {
		assert.Equal(t, 100, progressAfterTransition(core.StatusCompleted, 40))
		assert.Equal(t, 100, progressAfterTransition(core.StatusVerified, 40))
		assert.Equal(t, 40, progressAfterTransition(core.StatusInProgress, 40))
	})

	t.Run("Should clamp progress to the unit interval", func(t *testing.T) {
		assert.Equal(t, 0, clampProgress(-5))
		assert.Equal(t, 100, clampProgress(140))
		assert.Equal(t, 55, clampProgress(55))
	})
}
