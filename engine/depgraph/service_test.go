package depgraph_test

import (
	"context"
	"testing"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/infra/memory"
	"github.com/masar-hq/masar/engine/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	svc   *depgraph.Service
	proj  core.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store: store,
		svc:   depgraph.NewService(store.Dependencies(), store.Activities(), store.Tasks()),
		proj:  core.MustNewID(),
	}
}

func (f *fixture) addActivity(t *testing.T, name string) core.ID {
	t.Helper()
	a := &activity.Activity{
		ID:        core.MustNewID(),
		ProjectID: f.proj,
		Name:      name,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.Activities().Create(context.Background(), a))
	return a.ID
}

func (f *fixture) addTask(t *testing.T, activityID core.ID, name string) core.ID {
	t.Helper()
	tk := &task.Task{
		ID:            core.MustNewID(),
		ActivityID:    activityID,
		Name:          name,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		DurationHours: 8,
	}
	require.NoError(t, f.store.Tasks().Create(context.Background(), tk))
	return tk.ID
}

func TestService_CreateActivityDependency(t *testing.T) {
	t.Run("Should create an edge between two activities", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "design")
		b := f.addActivity(t, "build")

		dep, err := f.svc.CreateActivityDependency(context.Background(), a, b, depgraph.TypeFS, 0)

		require.NoError(t, err)
		assert.Equal(t, core.ItemTypeActivity, dep.Kind())
		assert.Equal(t, a, dep.PredecessorID())
		assert.Equal(t, b, dep.SuccessorID())
		assert.Equal(t, depgraph.LagCalendarDays, dep.LagKind)
	})

	t.Run("Should reject self dependencies", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "design")

		_, err := f.svc.CreateActivityDependency(context.Background(), a, a, depgraph.TypeFS, 0)

		assert.ErrorIs(t, err, depgraph.ErrSelfDependency)
		assert.Equal(t, core.KindSelfDependency, core.KindOf(err))
	})

	t.Run("Should reject edges that would close a cycle and leave the graph unchanged", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		a := f.addActivity(t, "a")
		b := f.addActivity(t, "b")
		c := f.addActivity(t, "c")
		_, err := f.svc.CreateActivityDependency(ctx, a, b, depgraph.TypeFS, 0)
		require.NoError(t, err)
		_, err = f.svc.CreateActivityDependency(ctx, b, c, depgraph.TypeFS, 0)
		require.NoError(t, err)

		_, err = f.svc.CreateActivityDependency(ctx, c, a, depgraph.TypeFS, 0)

		assert.ErrorIs(t, err, depgraph.ErrCycleDetected)
		assert.Equal(t, core.KindCycleDetected, core.KindOf(err))
		// The existing edges survive intact
		aOut, err := f.svc.GetSuccessors(ctx, a, core.ItemTypeActivity)
		require.NoError(t, err)
		require.Len(t, aOut, 1)
		cOut, err := f.svc.GetSuccessors(ctx, c, core.ItemTypeActivity)
		require.NoError(t, err)
		assert.Empty(t, cOut)
	})

	t.Run("Should reject cycles through longer paths", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		nodes := make([]core.ID, 5)
		for i := range nodes {
			nodes[i] = f.addActivity(t, "n")
		}
		for i := 0; i < len(nodes)-1; i++ {
			_, err := f.svc.CreateActivityDependency(ctx, nodes[i], nodes[i+1], depgraph.TypeFS, 0)
			require.NoError(t, err)
		}

		_, err := f.svc.CreateActivityDependency(ctx, nodes[4], nodes[0], depgraph.TypeSS, 1)

		assert.ErrorIs(t, err, depgraph.ErrCycleDetected)
	})

	t.Run("Should reject missing endpoints", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActivity(t, "a")

		_, err := f.svc.CreateActivityDependency(context.Background(), a, core.MustNewID(), depgraph.TypeFS, 0)

		assert.Equal(t, core.KindNotFound, core.KindOf(err))
	})

	t.Run("Should never reach the predecessor from the successor after creation", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		a := f.addActivity(t, "a")
		b := f.addActivity(t, "b")
		c := f.addActivity(t, "c")
		for _, pair := range [][2]core.ID{{a, b}, {a, c}, {b, c}} {
			dep, err := f.svc.CreateActivityDependency(ctx, pair[0], pair[1], depgraph.TypeFS, 0)
			require.NoError(t, err)
			// Walk successor edges from the new successor; the predecessor
			// must be unreachable
			seen := map[core.ID]bool{}
			frontier := []core.ID{dep.SuccessorID()}
			for len(frontier) > 0 {
				node := frontier[0]
				frontier = frontier[1:]
				require.NotEqual(t, dep.PredecessorID(), node)
				if seen[node] {
					continue
				}
				seen[node] = true
				succs, err := f.svc.GetSuccessors(ctx, node, core.ItemTypeActivity)
				require.NoError(t, err)
				for _, s := range succs {
					frontier = append(frontier, s.SuccessorID())
				}
			}
		}
	})
}

func TestService_CreateTaskDependency(t *testing.T) {
	t.Run("Should keep task edges in a subgraph disjoint from activity edges", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		actA := f.addActivity(t, "a")
		actB := f.addActivity(t, "b")
		t1 := f.addTask(t, actA, "t1")
		t2 := f.addTask(t, actB, "t2")
		_, err := f.svc.CreateActivityDependency(ctx, actA, actB, depgraph.TypeFS, 0)
		require.NoError(t, err)

		dep, err := f.svc.CreateTaskDependency(ctx, t1, t2, depgraph.TypeSS, 2)

		require.NoError(t, err)
		assert.Equal(t, core.ItemTypeTask, dep.Kind())
		// Activity listing must not surface task edges
		activityDeps, err := f.svc.GetDependencies(ctx, actA, core.ItemTypeActivity)
		require.NoError(t, err)
		require.Len(t, activityDeps.Outgoing, 1)
		taskDeps, err := f.svc.GetDependencies(ctx, t1, core.ItemTypeTask)
		require.NoError(t, err)
		require.Len(t, taskDeps.Outgoing, 1)
		assert.Equal(t, dep.ID, taskDeps.Outgoing[0].ID)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("Should restore the predecessor successor list after create and delete", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		a := f.addActivity(t, "a")
		b := f.addActivity(t, "b")
		before, err := f.svc.GetSuccessors(ctx, a, core.ItemTypeActivity)
		require.NoError(t, err)

		dep, err := f.svc.CreateActivityDependency(ctx, a, b, depgraph.TypeFF, 1)
		require.NoError(t, err)
		require.NoError(t, f.svc.Delete(ctx, dep.ID))

		after, err := f.svc.GetSuccessors(ctx, a, core.ItemTypeActivity)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Should report missing dependencies", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Delete(context.Background(), core.MustNewID())

		assert.ErrorIs(t, err, depgraph.ErrDependencyNotFound)
	})
}
