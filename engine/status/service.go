package status

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
	"github.com/masar-hq/masar/pkg/logger"
)

// Service drives the status lifecycle and progress rollup. It is the only
// writer of status, tracking, and progress fields.
type Service struct {
	projects   project.Repository
	activities activity.Repository
	tasks      task.Repository
	calendars  *calendar.Service
	clock      func() time.Time
}

// NewService creates a new status service
func NewService(
	projects project.Repository,
	activities activity.Repository,
	tasks task.Repository,
	calendars *calendar.Service,
) *Service {
	return &Service{
		projects:   projects,
		activities: activities,
		tasks:      tasks,
		calendars:  calendars,
		clock:      time.Now,
	}
}

// WithClock substitutes the time source, used by tests to pin "now".
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// UpdateTaskStatus transitions a task and rolls the new progress up to its
// parent activity.
func (s *Service) UpdateTaskStatus(
	ctx context.Context,
	orgID, taskID core.ID,
	to core.Status,
	role core.Role,
) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(t.Status, to, role); err != nil {
		return nil, err
	}
	t.Status = to
	t.ProgressPercentage = progressAfterTransition(to, t.ProgressPercentage)
	tracking, err := s.deriveItemTracking(ctx, orgID, t.Status, t.StartDate, t.EndDate, t.ProgressPercentage)
	if err != nil {
		return nil, err
	}
	t.TrackingStatus = tracking.Status
	if err := s.tasks.UpdateStatus(ctx, taskID, t.Status, t.TrackingStatus, t.ProgressPercentage); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if _, err := s.RecalculateActivityProgress(ctx, t.ActivityID); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Task status updated",
		"task_id", taskID, "status", to, "tracking", t.TrackingStatus)
	return t, nil
}

// UpdateActivityStatus transitions an activity. Verification additionally
// requires every child task to be verified already.
func (s *Service) UpdateActivityStatus(
	ctx context.Context,
	orgID, activityID core.ID,
	to core.Status,
	role core.Role,
) (*activity.Activity, error) {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(a.Status, to, role); err != nil {
		return nil, err
	}
	if to == core.StatusVerified {
		if err := s.checkTasksVerified(ctx, activityID); err != nil {
			return nil, err
		}
	}
	a.Status = to
	a.ProgressPercentage = progressAfterTransition(to, a.ProgressPercentage)
	tracking, err := s.deriveItemTracking(ctx, orgID, a.Status, a.StartDate, a.EndDate, a.ProgressPercentage)
	if err != nil {
		return nil, err
	}
	a.TrackingStatus = tracking.Status
	if err := s.activities.UpdateStatus(ctx, activityID, a.Status, a.TrackingStatus, a.ProgressPercentage); err != nil {
		return nil, fmt.Errorf("update activity status: %w", err)
	}
	logger.FromContext(ctx).Info("Activity status updated",
		"activity_id", activityID, "status", to, "tracking", a.TrackingStatus)
	return a, nil
}

func (s *Service) checkTasksVerified(ctx context.Context, activityID core.ID) error {
	tasks, err := s.tasks.ListByActivity(ctx, activityID)
	if err != nil {
		return fmt.Errorf("load activity tasks: %w", err)
	}
	unverified := 0
	for _, t := range tasks {
		if t.Status != core.StatusVerified {
			unverified++
		}
	}
	if unverified > 0 {
		return core.NewError(ErrActivityVerifyBlocked, core.KindActivityVerifyBlocked, map[string]any{
			"unverifiedTasks": unverified,
		})
	}
	return nil
}

// UpdateTaskProgress applies a manual progress edit, allowed only while the
// task is IN_PROGRESS. The value is clamped to [0, 100] and rolled up.
func (s *Service) UpdateTaskProgress(
	ctx context.Context,
	orgID, taskID core.ID,
	progress int,
) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != core.StatusInProgress {
		return nil, core.NewError(ErrProgressNotEditable, core.KindProgressNotEditable, map[string]any{
			"status": t.Status,
		})
	}
	t.ProgressPercentage = clampProgress(progress)
	tracking, err := s.deriveItemTracking(ctx, orgID, t.Status, t.StartDate, t.EndDate, t.ProgressPercentage)
	if err != nil {
		return nil, err
	}
	t.TrackingStatus = tracking.Status
	if err := s.tasks.UpdateStatus(ctx, taskID, t.Status, t.TrackingStatus, t.ProgressPercentage); err != nil {
		return nil, fmt.Errorf("update task progress: %w", err)
	}
	if _, err := s.RecalculateActivityProgress(ctx, t.ActivityID); err != nil {
		return nil, err
	}
	return t, nil
}

// RecalculateActivityProgress sets an activity's progress to the rounded
// mean of its children, or 0 with no children. The operation is idempotent.
func (s *Service) RecalculateActivityProgress(ctx context.Context, activityID core.ID) (int, error) {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return 0, err
	}
	tasks, err := s.tasks.ListByActivity(ctx, activityID)
	if err != nil {
		return 0, fmt.Errorf("load activity tasks: %w", err)
	}
	progress := 0
	if len(tasks) > 0 {
		sum := 0
		for _, t := range tasks {
			sum += t.ProgressPercentage
		}
		progress = int(math.Round(float64(sum) / float64(len(tasks))))
	}
	if progress == a.ProgressPercentage {
		return progress, nil
	}
	if err := s.activities.UpdateStatus(ctx, activityID, a.Status, a.TrackingStatus, progress); err != nil {
		return 0, fmt.Errorf("write activity progress: %w", err)
	}
	return progress, nil
}

// RecalculateProjectProgress rolls every activity up and then sets the
// project progress to the rounded mean across activities. Per-activity
// failures are logged and do not abort the batch.
func (s *Service) RecalculateProjectProgress(ctx context.Context, orgID, projectID core.ID) (int, error) {
	log := logger.FromContext(ctx)
	p, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return 0, err
	}
	activities, err := s.activities.ListByProject(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("load project activities: %w", err)
	}
	sum, counted := 0, 0
	for _, a := range activities {
		progress, rollupErr := s.RecalculateActivityProgress(ctx, a.ID)
		if rollupErr != nil {
			log.Error("Activity progress rollup failed",
				"activity_id", a.ID, "error", rollupErr)
			continue
		}
		sum += progress
		counted++
	}
	progress := 0
	if counted > 0 {
		progress = int(math.Round(float64(sum) / float64(counted)))
	}
	if progress != p.ProgressPercentage {
		if err := s.projects.UpdateStatus(ctx, orgID, projectID, p.Status, progress); err != nil {
			return 0, fmt.Errorf("write project progress: %w", err)
		}
	}
	return progress, nil
}

// TaskTracking derives and persists the tracking status of a task.
func (s *Service) TaskTracking(ctx context.Context, orgID, taskID core.ID) (*Tracking, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	tracking, err := s.deriveItemTracking(ctx, orgID, t.Status, t.StartDate, t.EndDate, t.ProgressPercentage)
	if err != nil {
		return nil, err
	}
	if tracking.Status != t.TrackingStatus {
		if err := s.tasks.UpdateStatus(ctx, taskID, t.Status, tracking.Status, t.ProgressPercentage); err != nil {
			return nil, fmt.Errorf("write task tracking: %w", err)
		}
	}
	return tracking, nil
}

// ActivityTracking derives and persists the tracking status of an activity.
func (s *Service) ActivityTracking(ctx context.Context, orgID, activityID core.ID) (*Tracking, error) {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	tracking, err := s.deriveItemTracking(ctx, orgID, a.Status, a.StartDate, a.EndDate, a.ProgressPercentage)
	if err != nil {
		return nil, err
	}
	if tracking.Status != a.TrackingStatus {
		if err := s.activities.UpdateStatus(ctx, activityID, a.Status, tracking.Status, a.ProgressPercentage); err != nil {
			return nil, fmt.Errorf("write activity tracking: %w", err)
		}
	}
	return tracking, nil
}

func (s *Service) deriveItemTracking(
	ctx context.Context,
	orgID core.ID,
	st core.Status,
	start, end time.Time,
	progress int,
) (*Tracking, error) {
	pattern, err := s.calendars.ResolvePattern(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return DeriveTracking(ctx, pattern, st, start, end, progress, s.clock())
}
