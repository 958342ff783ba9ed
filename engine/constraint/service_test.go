package constraint_test

import (
	"context"
	"testing"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/infra/memory"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/engine/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	svc   *constraint.Service
	orgID core.ID
	proj  core.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	o := &org.Organization{
		ID:                core.MustNewID(),
		Name:              "acme",
		Timezone:          "UTC",
		WorkingDaysOfWeek: "1111111",
		WorkingHours:      []org.WorkBlock{{Start: "00:00", End: "24:00"}},
	}
	require.NoError(t, store.Orgs().Create(context.Background(), o))
	calendars := calendar.NewService(store.Orgs())
	svc := constraint.NewService(store.Constraints(), store.Dependencies(), store.Activities(), store.Tasks(), calendars)
	return &fixture{store: store, svc: svc, orgID: o.ID, proj: core.MustNewID()}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) addActivity(t *testing.T, name string, start, end time.Time) core.ID {
	t.Helper()
	a := &activity.Activity{
		ID:        core.MustNewID(),
		ProjectID: f.proj,
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
	require.NoError(t, f.store.Activities().Create(context.Background(), a))
	return a.ID
}

func (f *fixture) addTask(t *testing.T, name string, start, end time.Time, hours float64) (core.ID, core.ID) {
	t.Helper()
	parent := f.addActivity(t, name+"-parent", start, end)
	tk := &task.Task{
		ID:            core.MustNewID(),
		ActivityID:    parent,
		Name:          name,
		StartDate:     start,
		EndDate:       end,
		DurationHours: hours,
	}
	require.NoError(t, f.store.Tasks().Create(context.Background(), tk))
	return tk.ID, parent
}

func (f *fixture) constrain(t *testing.T, itemID core.ID, itemType core.ItemType, typ constraint.Type, date time.Time) *constraint.DateConstraint {
	t.Helper()
	c, err := f.svc.AddConstraint(context.Background(), &constraint.DateConstraint{
		ItemID:   itemID,
		ItemType: itemType,
		Type:     typ,
		Date:     &date,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) linkActivities(t *testing.T, pred, succ core.ID, lag float64) *depgraph.Dependency {
	t.Helper()
	dep := &depgraph.Dependency{
		ID:                    core.MustNewID(),
		ProjectID:             f.proj,
		Type:                  depgraph.TypeFS,
		Lag:                   lag,
		LagKind:               depgraph.LagCalendarDays,
		ActivityPredecessorID: &pred,
		ActivitySuccessorID:   &succ,
	}
	require.NoError(t, f.store.Dependencies().CreateChecked(
		context.Background(), dep,
		func(context.Context, depgraph.Reader) error { return nil },
	))
	return dep
}

func TestService_ValidateDateEdit(t *testing.T) {
	t.Run("Should reject an edit that misses a must-start-on date with the suggested date", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 15), day(2024, 1, 22))
		f.constrain(t, a, core.ItemTypeActivity, constraint.TypeMustStartOn, day(2024, 1, 15))

		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 20), day(2024, 1, 27))

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		v := result.Violations[0]
		assert.Equal(t, constraint.ViolationHardConstraint, v.Kind)
		require.NotNil(t, v.SuggestedDate)
		assert.Equal(t, day(2024, 1, 15), *v.SuggestedDate)
	})

	t.Run("Should flag inverted date ranges", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 1), day(2024, 1, 5))

		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 10), day(2024, 1, 5))

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.NotEmpty(t, result.Violations)
		assert.Equal(t, constraint.ViolationInvalidDuration, result.Violations[0].Kind)
	})

	t.Run("Should reject starts before a predecessor finishes, naming the predecessor", func(t *testing.T) {
		f := newFixture(t)
		pred := f.addActivity(t, "pred", day(2024, 1, 1), day(2024, 1, 10))
		succ := f.addActivity(t, "succ", day(2024, 1, 12), day(2024, 1, 15))
		f.linkActivities(t, pred, succ, 2)

		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, succ,
			day(2024, 1, 11), day(2024, 1, 14))

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		v := result.Violations[0]
		assert.Equal(t, constraint.ViolationPredecessorConflict, v.Kind)
		require.NotNil(t, v.AffectedItemID)
		assert.Equal(t, pred, *v.AffectedItemID)
		require.NotNil(t, v.SuggestedDate)
		assert.Equal(t, day(2024, 1, 12), *v.SuggestedDate)
	})

	t.Run("Should reject ends that push into a successor", func(t *testing.T) {
		f := newFixture(t)
		pred := f.addActivity(t, "pred", day(2024, 1, 1), day(2024, 1, 10))
		succ := f.addActivity(t, "succ", day(2024, 1, 12), day(2024, 1, 15))
		f.linkActivities(t, pred, succ, 1)

		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, pred,
			day(2024, 1, 1), day(2024, 1, 12))

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		v := result.Violations[0]
		assert.Equal(t, constraint.ViolationSuccessorConflict, v.Kind)
		require.NotNil(t, v.SuggestedDate)
		assert.Equal(t, day(2024, 1, 11), *v.SuggestedDate)
	})

	t.Run("Should flag starts outside working time with a snapped suggestion", func(t *testing.T) {
		f := newFixture(t)
		// Override with a Mon-Fri organisation so a Saturday start fails
		o, err := f.store.Orgs().GetByID(context.Background(), f.orgID)
		require.NoError(t, err)
		o.WorkingDaysOfWeek = "0111110"
		o.WorkingHours = []org.WorkBlock{{Start: "09:00", End: "17:00"}}
		require.NoError(t, f.store.Orgs().Update(context.Background(), o))
		a := f.addActivity(t, "a", day(2024, 1, 1), day(2024, 1, 5))

		// Saturday 2024-01-06
		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 6), day(2024, 1, 10))

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		v := result.Violations[0]
		assert.Equal(t, constraint.ViolationCalendarConflict, v.Kind)
		require.NotNil(t, v.SuggestedDate)
		assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), *v.SuggestedDate)
	})

	t.Run("Should accumulate violations across checks", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 15), day(2024, 1, 22))
		f.constrain(t, a, core.ItemTypeActivity, constraint.TypeMustStartOn, day(2024, 1, 15))
		f.constrain(t, a, core.ItemTypeActivity, constraint.TypeFinishNoLater, day(2024, 1, 25))

		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 20), day(2024, 1, 27))

		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Len(t, result.Violations, 2)
	})
}

func TestService_ApplyDateEdit(t *testing.T) {
	t.Run("Should persist valid edits and revalidate clean", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 1), day(2024, 1, 5))
		ctx := context.Background()

		result, err := f.svc.ApplyDateEdit(
			ctx, f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 3), day(2024, 1, 9), false)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Validation.Valid)
		stored, err := f.store.Activities().GetByID(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 3), stored.StartDate)
		assert.Equal(t, day(2024, 1, 9), stored.EndDate)
		// The applied dates validate clean on a second pass
		revalidated, err := f.svc.ValidateDateEdit(
			ctx, f.orgID, core.ItemTypeActivity, a, stored.StartDate, stored.EndDate)
		require.NoError(t, err)
		assert.True(t, revalidated.Valid)
	})

	t.Run("Should leave the item untouched when invalid and not forced", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 15), day(2024, 1, 22))
		f.constrain(t, a, core.ItemTypeActivity, constraint.TypeMustStartOn, day(2024, 1, 15))
		ctx := context.Background()

		result, err := f.svc.ApplyDateEdit(
			ctx, f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 20), day(2024, 1, 27), false)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.False(t, result.Validation.Valid)
		stored, err := f.store.Activities().GetByID(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 15), stored.StartDate)
	})

	t.Run("Should write anyway under force override and keep violations for audit", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 15), day(2024, 1, 22))
		f.constrain(t, a, core.ItemTypeActivity, constraint.TypeMustStartOn, day(2024, 1, 15))
		ctx := context.Background()

		result, err := f.svc.ApplyDateEdit(
			ctx, f.orgID, core.ItemTypeActivity, a,
			day(2024, 1, 20), day(2024, 1, 27), true)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Validation.Valid)
		assert.NotEmpty(t, result.Validation.Violations)
		stored, err := f.store.Activities().GetByID(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 20), stored.StartDate)
	})
}

func TestService_ValidDateRange(t *testing.T) {
	t.Run("Should intersect constraints with predecessor and successor windows", func(t *testing.T) {
		f := newFixture(t)
		pred := f.addActivity(t, "pred", day(2024, 1, 1), day(2024, 1, 10))
		item := f.addActivity(t, "item", day(2024, 1, 12), day(2024, 1, 15))
		succ := f.addActivity(t, "succ", day(2024, 1, 20), day(2024, 1, 25))
		f.linkActivities(t, pred, item, 1)
		f.linkActivities(t, item, succ, 2)
		f.constrain(t, item, core.ItemTypeActivity, constraint.TypeStartNoLater, day(2024, 1, 14))
		ctx := context.Background()

		r, err := f.svc.ValidDateRange(ctx, core.ItemTypeActivity, item)

		require.NoError(t, err)
		assert.Empty(t, r.Violations)
		assert.Equal(t, day(2024, 1, 11), r.MinStart)
		assert.Equal(t, day(2024, 1, 14), r.MaxStart)
		assert.Equal(t, day(2024, 1, 18), r.MaxEnd)
		// Any edit within the range validates clean
		result, err := f.svc.ValidateDateEdit(
			ctx, f.orgID, core.ItemTypeActivity, item, day(2024, 1, 12), day(2024, 1, 17))
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("Should report infeasibility when the window inverts", func(t *testing.T) {
		f := newFixture(t)
		item := f.addActivity(t, "item", day(2024, 1, 12), day(2024, 1, 15))
		f.constrain(t, item, core.ItemTypeActivity, constraint.TypeStartNoEarlier, day(2024, 1, 20))
		f.constrain(t, item, core.ItemTypeActivity, constraint.TypeStartNoLater, day(2024, 1, 10))

		r, err := f.svc.ValidDateRange(context.Background(), core.ItemTypeActivity, item)

		require.NoError(t, err)
		require.Len(t, r.Violations, 1)
		assert.Equal(t, constraint.ViolationHardConstraint, r.Violations[0].Kind)
	})

	t.Run("Should restore the original range after removing a constraint", func(t *testing.T) {
		f := newFixture(t)
		item := f.addActivity(t, "item", day(2024, 1, 12), day(2024, 1, 15))
		ctx := context.Background()
		before, err := f.svc.ValidDateRange(ctx, core.ItemTypeActivity, item)
		require.NoError(t, err)

		c := f.constrain(t, item, core.ItemTypeActivity, constraint.TypeStartNoEarlier, day(2024, 1, 14))
		require.NoError(t, f.svc.RemoveConstraint(ctx, c.ID))

		after, err := f.svc.ValidDateRange(ctx, core.ItemTypeActivity, item)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestService_PropagateDateChanges(t *testing.T) {
	t.Run("Should reschedule direct successors from the item end plus lag", func(t *testing.T) {
		f := newFixture(t)
		pred, _ := f.addTask(t, "pred", day(2024, 1, 1), day(2024, 1, 3), 48)
		succ, _ := f.addTask(t, "succ", day(2024, 1, 4), day(2024, 1, 6), 48)
		dep := &depgraph.Dependency{
			ID:                core.MustNewID(),
			ProjectID:         f.proj,
			Type:              depgraph.TypeFS,
			Lag:               1,
			LagKind:           depgraph.LagCalendarDays,
			TaskPredecessorID: &pred,
			TaskSuccessorID:   &succ,
		}
		ctx := context.Background()
		require.NoError(t, f.store.Dependencies().CreateChecked(
			ctx, dep, func(context.Context, depgraph.Reader) error { return nil }))
		// Move the predecessor out by two days first
		_, err := f.svc.ApplyDateEdit(ctx, f.orgID, core.ItemTypeTask, pred, day(2024, 1, 3), day(2024, 1, 5), true)
		require.NoError(t, err)

		changes, err := f.svc.PropagateDateChanges(ctx, f.orgID, core.ItemTypeTask, pred)

		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, succ, changes[0].ItemID)
		assert.Equal(t, day(2024, 1, 6), changes[0].NewStart)
		assert.Equal(t, day(2024, 1, 8), changes[0].NewEnd)
		stored, err := f.store.Tasks().GetByID(ctx, succ)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 6), stored.StartDate)
		assert.Equal(t, day(2024, 1, 8), stored.EndDate)
	})

	t.Run("Should skip successors already in place", func(t *testing.T) {
		f := newFixture(t)
		pred, _ := f.addTask(t, "pred", day(2024, 1, 1), day(2024, 1, 3), 48)
		succ, _ := f.addTask(t, "succ", day(2024, 1, 3), day(2024, 1, 5), 48)
		dep := &depgraph.Dependency{
			ID:                core.MustNewID(),
			ProjectID:         f.proj,
			Type:              depgraph.TypeFS,
			Lag:               0,
			LagKind:           depgraph.LagCalendarDays,
			TaskPredecessorID: &pred,
			TaskSuccessorID:   &succ,
		}
		ctx := context.Background()
		require.NoError(t, f.store.Dependencies().CreateChecked(
			ctx, dep, func(context.Context, depgraph.Reader) error { return nil }))

		changes, err := f.svc.PropagateDateChanges(ctx, f.orgID, core.ItemTypeTask, pred)

		require.NoError(t, err)
		assert.Empty(t, changes)
	})
}

func TestService_AddConstraint(t *testing.T) {
	t.Run("Should require a date for dated kinds", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 1), day(2024, 1, 5))

		_, err := f.svc.AddConstraint(context.Background(), &constraint.DateConstraint{
			ItemID:   a,
			ItemType: core.ItemTypeActivity,
			Type:     constraint.TypeMustStartOn,
		})

		assert.Equal(t, core.KindValidationFailed, core.KindOf(err))
	})

	t.Run("Should accept ASAP without a date and never violate edits", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a", day(2024, 1, 1), day(2024, 1, 5))
		_, err := f.svc.AddConstraint(context.Background(), &constraint.DateConstraint{
			ItemID:   a,
			ItemType: core.ItemTypeActivity,
			Type:     constraint.TypeASAP,
		})
		require.NoError(t, err)

		result, err := f.svc.ValidateDateEdit(
			context.Background(), f.orgID, core.ItemTypeActivity, a,
			day(2024, 2, 1), day(2024, 2, 5))

		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("Should reject constraints for missing items", func(t *testing.T) {
		f := newFixture(t)
		date := day(2024, 1, 1)

		_, err := f.svc.AddConstraint(context.Background(), &constraint.DateConstraint{
			ItemID:   core.MustNewID(),
			ItemType: core.ItemTypeActivity,
			Type:     constraint.TypeMustStartOn,
			Date:     &date,
		})

		assert.ErrorIs(t, err, constraint.ErrItemNotFound)
	})
}
