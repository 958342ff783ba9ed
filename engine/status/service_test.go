package status

import (
	"context"
	"testing"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/infra/memory"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	orgID core.ID
	proj  core.ID
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	o := &org.Organization{
		ID:                core.MustNewID(),
		Name:              "acme",
		Timezone:          "UTC",
		WorkingDaysOfWeek: "1111111",
		WorkingHours:      []org.WorkBlock{{Start: "00:00", End: "24:00"}},
	}
	require.NoError(t, store.Orgs().Create(ctx, o))
	p := &project.Project{
		ID:        core.MustNewID(),
		OrgID:     o.ID,
		OwnerID:   core.MustNewID(),
		Name:      "rollout",
		StartDate: day(2024, 1, 1),
		Status:    core.StatusInProgress,
	}
	require.NoError(t, store.Projects().Create(ctx, p))
	calendars := calendar.NewService(store.Orgs())
	svc := NewService(store.Projects(), store.Activities(), store.Tasks(), calendars).
		WithClock(func() time.Time { return now })
	return &fixture{store: store, svc: svc, orgID: o.ID, proj: p.ID}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) addActivity(t *testing.T, status core.Status) core.ID {
	t.Helper()
	a := &activity.Activity{
		ID:        core.MustNewID(),
		ProjectID: f.proj,
		Name:      "activity",
		StartDate: day(2024, 1, 1),
		EndDate:   day(2024, 1, 11),
		Status:    status,
	}
	require.NoError(t, f.store.Activities().Create(context.Background(), a))
	return a.ID
}

func (f *fixture) addTask(t *testing.T, activityID core.ID, status core.Status, progress int) core.ID {
	t.Helper()
	tk := &task.Task{
		ID:                 core.MustNewID(),
		ActivityID:         activityID,
		Name:               "task",
		StartDate:          day(2024, 1, 1),
		EndDate:            day(2024, 1, 11),
		DurationHours:      80,
		Status:             status,
		ProgressPercentage: progress,
	}
	require.NoError(t, f.store.Tasks().Create(context.Background(), tk))
	return tk.ID
}

func TestService_UpdateTaskStatus(t *testing.T) {
	t.Run("Should transition and roll progress up to the parent", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusInProgress, 40)
		f.addTask(t, a, core.StatusNotStarted, 0)
		ctx := context.Background()

		updated, err := f.svc.UpdateTaskStatus(ctx, f.orgID, t1, core.StatusCompleted, core.RoleTeamMember)

		require.NoError(t, err)
		assert.Equal(t, core.StatusCompleted, updated.Status)
		assert.Equal(t, 100, updated.ProgressPercentage)
		parent, err := f.store.Activities().GetByID(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, 50, parent.ProgressPercentage)
	})

	t.Run("Should reject transitions outside the table", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusNotStarted, 0)

		_, err := f.svc.UpdateTaskStatus(context.Background(), f.orgID, t1, core.StatusVerified, core.RolePMO)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_UpdateActivityStatus(t *testing.T) {
	t.Run("Should block verification while tasks remain unverified", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusCompleted)
		t1 := f.addTask(t, a, core.StatusCompleted, 100)
		ctx := context.Background()

		_, err := f.svc.UpdateActivityStatus(ctx, f.orgID, a, core.StatusVerified, core.RolePMO)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrActivityVerifyBlocked)
		assert.Equal(t, core.KindActivityVerifyBlocked, core.KindOf(err))

		// Once the task is verified, the activity follows
		_, err = f.svc.UpdateTaskStatus(ctx, f.orgID, t1, core.StatusVerified, core.RolePMO)
		require.NoError(t, err)
		updated, err := f.svc.UpdateActivityStatus(ctx, f.orgID, a, core.StatusVerified, core.RolePMO)
		require.NoError(t, err)
		assert.Equal(t, core.StatusVerified, updated.Status)
		assert.Equal(t, 100, updated.ProgressPercentage)
	})

	t.Run("Should reject verification for non-managing roles", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusCompleted)

		_, err := f.svc.UpdateActivityStatus(context.Background(), f.orgID, a, core.StatusVerified, core.RoleTeamMember)

		assert.Equal(t, core.KindForbidden, core.KindOf(err))
	})
}

func TestService_UpdateTaskProgress(t *testing.T) {
	t.Run("Should accept edits only while in progress", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)
		running := f.addTask(t, a, core.StatusInProgress, 10)
		idle := f.addTask(t, a, core.StatusNotStarted, 0)
		ctx := context.Background()

		updated, err := f.svc.UpdateTaskProgress(ctx, f.orgID, running, 60)
		require.NoError(t, err)
		assert.Equal(t, 60, updated.ProgressPercentage)

		_, err = f.svc.UpdateTaskProgress(ctx, f.orgID, idle, 60)
		assert.ErrorIs(t, err, ErrProgressNotEditable)
	})

	t.Run("Should clamp progress into the unit interval", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusInProgress, 10)

		updated, err := f.svc.UpdateTaskProgress(context.Background(), f.orgID, t1, 150)

		require.NoError(t, err)
		assert.Equal(t, 100, updated.ProgressPercentage)
	})
}

func TestService_RecalculateActivityProgress(t *testing.T) {
	t.Run("Should average child progress with rounding", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)
		f.addTask(t, a, core.StatusInProgress, 33)
		f.addTask(t, a, core.StatusInProgress, 34)
		f.addTask(t, a, core.StatusInProgress, 0)

		progress, err := f.svc.RecalculateActivityProgress(context.Background(), a)

		require.NoError(t, err)
		assert.Equal(t, 22, progress)
	})

	t.Run("Should report zero for childless activities", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)

		progress, err := f.svc.RecalculateActivityProgress(context.Background(), a)

		require.NoError(t, err)
		assert.Equal(t, 0, progress)
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a := f.addActivity(t, core.StatusInProgress)
		f.addTask(t, a, core.StatusInProgress, 40)
		ctx := context.Background()

		first, err := f.svc.RecalculateActivityProgress(ctx, a)
		require.NoError(t, err)
		second, err := f.svc.RecalculateActivityProgress(ctx, a)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestService_Tracking(t *testing.T) {
	t.Run("Should flag in-progress tasks far behind expected progress", func(t *testing.T) {
		// Task spans Jan 1 to Jan 11 round the clock; at Jan 6 half the
		// working time is consumed but only 20% is reported
		f := newFixture(t, day(2024, 1, 6))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusInProgress, 20)

		tracking, err := f.svc.TaskTracking(context.Background(), f.orgID, t1)

		require.NoError(t, err)
		assert.Equal(t, core.TrackingAtRisk, tracking.Status)
		assert.Contains(t, tracking.Reason, "expected 50%")
	})

	t.Run("Should mark past-due tasks off track", func(t *testing.T) {
		f := newFixture(t, day(2024, 2, 1))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusInProgress, 90)

		tracking, err := f.svc.TaskTracking(context.Background(), f.orgID, t1)

		require.NoError(t, err)
		assert.Equal(t, core.TrackingOffTrack, tracking.Status)
		assert.Equal(t, "past due", tracking.Reason)
	})

	t.Run("Should flag minimal progress once time has elapsed", func(t *testing.T) {
		// Early in the span: expected is ~10%, within the margin of the
		// reported 5%, but the minimal-progress floor still applies
		f := newFixture(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusInProgress, 5)

		tracking, err := f.svc.TaskTracking(context.Background(), f.orgID, t1)

		require.NoError(t, err)
		assert.Equal(t, core.TrackingAtRisk, tracking.Status)
		assert.Equal(t, "minimal progress", tracking.Reason)
	})

	t.Run("Should keep healthy tasks on track", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 6))
		a := f.addActivity(t, core.StatusInProgress)
		t1 := f.addTask(t, a, core.StatusInProgress, 48)

		tracking, err := f.svc.TaskTracking(context.Background(), f.orgID, t1)

		require.NoError(t, err)
		assert.Equal(t, core.TrackingOnTrack, tracking.Status)
	})

	t.Run("Should map non-running statuses directly", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 6))
		a := f.addActivity(t, core.StatusInProgress)
		onHold := f.addTask(t, a, core.StatusOnHold, 50)
		done := f.addTask(t, a, core.StatusCompleted, 100)
		ctx := context.Background()

		tracking, err := f.svc.TaskTracking(ctx, f.orgID, onHold)
		require.NoError(t, err)
		assert.Equal(t, core.TrackingAtRisk, tracking.Status)

		tracking, err = f.svc.TaskTracking(ctx, f.orgID, done)
		require.NoError(t, err)
		assert.Equal(t, core.TrackingOnTrack, tracking.Status)
	})
}

func TestService_RecalculateProjectProgress(t *testing.T) {
	t.Run("Should average activity rollups into the project", func(t *testing.T) {
		f := newFixture(t, day(2024, 1, 2))
		a1 := f.addActivity(t, core.StatusInProgress)
		f.addTask(t, a1, core.StatusInProgress, 100)
		a2 := f.addActivity(t, core.StatusInProgress)
		f.addTask(t, a2, core.StatusInProgress, 0)
		ctx := context.Background()

		progress, err := f.svc.RecalculateProjectProgress(ctx, f.orgID, f.proj)

		require.NoError(t, err)
		assert.Equal(t, 50, progress)
		stored, err := f.store.Projects().GetByID(ctx, f.orgID, f.proj)
		require.NoError(t, err)
		assert.Equal(t, 50, stored.ProgressPercentage)
	})
}
