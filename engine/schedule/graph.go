package schedule

import (
	"sort"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/task"
)

type edge struct {
	from *node
	to   *node
	typ  depgraph.Type
	lag  float64
}

type node struct {
	id            core.ID
	kind          core.ItemType
	name          string
	storedStart   time.Time
	storedEnd     time.Time
	durationHours float64
	preds         []*edge
	succs         []*edge

	earlyStart time.Time
	earlyEnd   time.Time
	lateStart  time.Time
	lateEnd    time.Time
}

// graph holds one node per activity and per task of a project, with edges
// mirrored in both directions.
type graph struct {
	nodes  map[core.ID]*node
	sorted []*node
}

// buildGraph constructs the schedule graph from a consistent snapshot.
// Activity duration is the wall-clock span of the stored dates; a zero span
// falls back to the longest child task duration. Task duration is the
// intrinsic working-hours field.
func buildGraph(
	activities []*activity.Activity,
	tasks []*task.Task,
	deps []*depgraph.Dependency,
) *graph {
	g := &graph{nodes: make(map[core.ID]*node, len(activities)+len(tasks))}
	maxChildDuration := make(map[core.ID]float64)
	for _, t := range tasks {
		if t.DurationHours > maxChildDuration[t.ActivityID] {
			maxChildDuration[t.ActivityID] = t.DurationHours
		}
	}
	for _, a := range activities {
		duration := a.DurationHours()
		if duration == 0 {
			duration = maxChildDuration[a.ID]
		}
		g.nodes[a.ID] = &node{
			id:            a.ID,
			kind:          core.ItemTypeActivity,
			name:          a.Name,
			storedStart:   a.StartDate,
			storedEnd:     a.EndDate,
			durationHours: duration,
		}
	}
	for _, t := range tasks {
		g.nodes[t.ID] = &node{
			id:            t.ID,
			kind:          core.ItemTypeTask,
			name:          t.Name,
			storedStart:   t.StartDate,
			storedEnd:     t.EndDate,
			durationHours: t.DurationHours,
		}
	}
	for _, d := range deps {
		from, ok := g.nodes[d.PredecessorID()]
		if !ok {
			continue
		}
		to, ok := g.nodes[d.SuccessorID()]
		if !ok {
			continue
		}
		e := &edge{from: from, to: to, typ: d.Type, lag: d.Lag}
		from.succs = append(from.succs, e)
		to.preds = append(to.preds, e)
	}
	return g
}

// topologicalOrder runs Kahn's algorithm with a deterministic tie-break on
// node ID. It returns ErrGraphCycle when the order does not cover the graph.
func (g *graph) topologicalOrder() ([]*node, error) {
	indegree := make(map[core.ID]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.preds)
	}
	var ready []*node
	for _, n := range g.nodes {
		if indegree[n.id] == 0 {
			ready = append(ready, n)
		}
	}
	sortNodes(ready)
	order := make([]*node, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		var unlocked []*node
		for _, e := range n.succs {
			indegree[e.to.id]--
			if indegree[e.to.id] == 0 {
				unlocked = append(unlocked, e.to)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sortNodes(ready)
		}
	}
	if len(order) != len(g.nodes) {
		return nil, core.NewError(ErrGraphCycle, core.KindGraphCycle, nil)
	}
	g.sorted = order
	return order, nil
}

func sortNodes(nodes []*node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
}
