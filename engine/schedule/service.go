package schedule

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
	"github.com/masar-hq/masar/pkg/logger"
)

// day converts a calendar-day lag into wall-clock time. Lag is calendar days
// throughout, never working days.
const day = 24 * time.Hour

// Service computes project schedules with the critical path method. Results
// are pure values; nothing here writes to the store.
type Service struct {
	projects   project.Repository
	activities activity.Repository
	tasks      task.Repository
	deps       depgraph.Repository
	calendars  *calendar.Service
}

// NewService creates a new CPM scheduler
func NewService(
	projects project.Repository,
	activities activity.Repository,
	tasks task.Repository,
	deps depgraph.Repository,
	calendars *calendar.Service,
) *Service {
	return &Service{
		projects:   projects,
		activities: activities,
		tasks:      tasks,
		deps:       deps,
		calendars:  calendars,
	}
}

// CalculateProjectSchedule loads the project snapshot and runs the forward
// and backward passes, producing early/late dates, slack, the critical path,
// and feasibility warnings.
func (s *Service) CalculateProjectSchedule(ctx context.Context, orgID, projectID core.ID) (*ProjectSchedule, error) {
	snap, err := s.loadSnapshot(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	g := buildGraph(snap.activities, snap.tasks, snap.deps)
	order, err := g.topologicalOrder()
	if err != nil {
		return nil, err
	}
	if err := s.forwardPass(ctx, order, snap); err != nil {
		return nil, err
	}
	if err := s.backwardPass(ctx, order); err != nil {
		return nil, err
	}
	result := s.assemble(projectID, order)
	logger.FromContext(ctx).Debug("Project schedule computed",
		"project_id", projectID,
		"items", len(result.Items),
		"critical", len(result.CriticalPath),
		"feasible", result.IsFeasible,
	)
	return result, nil
}

type snapshot struct {
	project    *project.Project
	activities []*activity.Activity
	tasks      []*task.Task
	deps       []*depgraph.Dependency
	pattern    *calendar.Pattern
}

// loadSnapshot batches all reads at the start of the operation so every node
// sees a consistent pre-image of the graph.
func (s *Service) loadSnapshot(ctx context.Context, orgID, projectID core.ID) (*snapshot, error) {
	proj, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	activities, err := s.activities.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	activityDeps, err := s.deps.ListByProject(ctx, projectID, core.ItemTypeActivity)
	if err != nil {
		return nil, fmt.Errorf("load activity dependencies: %w", err)
	}
	taskDeps, err := s.deps.ListByProject(ctx, projectID, core.ItemTypeTask)
	if err != nil {
		return nil, fmt.Errorf("load task dependencies: %w", err)
	}
	pattern, err := s.calendars.ResolvePattern(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &snapshot{
		project:    proj,
		activities: activities,
		tasks:      tasks,
		deps:       append(activityDeps, taskDeps...),
		pattern:    pattern,
	}, nil
}

// forwardPass computes early dates in topological order. FS and SS bind the
// start; FF and SF bind the end, and the start candidate subtracts duration
// as wall-clock hours (kept consistent with the backward pass).
func (s *Service) forwardPass(ctx context.Context, order []*node, snap *snapshot) error {
	for _, n := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		earlyStart := snap.project.StartDate
		durationWall := wallDuration(n.durationHours)
		for _, e := range n.preds {
			lag := lagDuration(e.lag)
			var candidate time.Time
			switch e.typ {
			case depgraph.TypeFS:
				candidate = e.from.earlyEnd.Add(lag)
			case depgraph.TypeSS:
				candidate = e.from.earlyStart.Add(lag)
			case depgraph.TypeFF:
				candidate = e.from.earlyEnd.Add(lag).Add(-durationWall)
			case depgraph.TypeSF:
				candidate = e.from.earlyStart.Add(lag).Add(-durationWall)
			}
			if candidate.After(earlyStart) {
				earlyStart = candidate
			}
		}
		n.earlyStart = earlyStart
		earlyEnd, err := snap.pattern.AddWorkingTime(ctx, earlyStart, n.durationHours)
		if err != nil {
			return err
		}
		n.earlyEnd = earlyEnd
	}
	return nil
}

// backwardPass computes late dates in reverse topological order. The late
// start subtracts duration as wall-clock hours, mirroring the FF/SF handling
// of the forward pass.
func (s *Service) backwardPass(ctx context.Context, order []*node) error {
	projectEnd := time.Time{}
	for _, n := range order {
		if n.earlyEnd.After(projectEnd) {
			projectEnd = n.earlyEnd
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := order[i]
		durationWall := wallDuration(n.durationHours)
		lateEnd := projectEnd
		for _, e := range n.succs {
			lag := lagDuration(e.lag)
			var candidate time.Time
			switch e.typ {
			case depgraph.TypeFS:
				candidate = e.to.lateStart.Add(-lag)
			case depgraph.TypeSS:
				candidate = e.to.lateStart.Add(-lag).Add(durationWall)
			case depgraph.TypeFF:
				candidate = e.to.lateEnd.Add(-lag)
			case depgraph.TypeSF:
				candidate = e.to.lateEnd.Add(-lag).Add(durationWall)
			}
			if candidate.Before(lateEnd) {
				lateEnd = candidate
			}
		}
		n.lateEnd = lateEnd
		n.lateStart = lateEnd.Add(-durationWall)
	}
	return nil
}

func (s *Service) assemble(projectID core.ID, order []*node) *ProjectSchedule {
	result := &ProjectSchedule{
		ProjectID: projectID,
		Items:     make([]Item, 0, len(order)),
		Warnings:  []string{},
	}
	var minStart, maxEnd time.Time
	for _, n := range order {
		slackDays := n.lateStart.Sub(n.earlyStart).Hours() / 24
		isCritical := slackDays < 1
		item := Item{
			ItemID:        n.id,
			ItemType:      n.kind,
			Name:          n.name,
			DurationHours: n.durationHours,
			EarlyStart:    n.earlyStart,
			EarlyEnd:      n.earlyEnd,
			LateStart:     n.lateStart,
			LateEnd:       n.lateEnd,
			SlackDays:     slackDays,
			IsCritical:    isCritical,
		}
		result.Items = append(result.Items, item)
		if isCritical {
			result.CriticalPath = append(result.CriticalPath, n.id)
		}
		if minStart.IsZero() || n.earlyStart.Before(minStart) {
			minStart = n.earlyStart
		}
		if n.earlyEnd.After(maxEnd) {
			maxEnd = n.earlyEnd
		}
	}
	result.StartDate = minStart
	result.EndDate = maxEnd
	if len(order) > 0 {
		if maxEnd.Before(minStart) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("schedule spans a negative interval: end %s precedes start %s",
					maxEnd.Format(time.RFC3339), minStart.Format(time.RFC3339)))
		} else {
			result.TotalDurationDays = maxEnd.Sub(minStart).Hours() / 24
		}
	}
	for _, item := range result.Items {
		if item.DurationHours < 0 || math.IsNaN(item.DurationHours) || math.IsInf(item.DurationHours, 0) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("item %s has a non-finite duration", item.ItemID))
		}
	}
	result.IsFeasible = len(result.Warnings) == 0
	return result
}

func lagDuration(lagDays float64) time.Duration {
	return time.Duration(lagDays * float64(day))
}

func wallDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
