package task

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/pkg/logger"
)

// Service manages task CRUD. Status, progress, and scheduling-driven date
// changes flow through the status and constraint services instead.
type Service struct {
	repo Repository
}

// NewService creates a new task service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a task in NOT_STARTED status
func (s *Service) Create(ctx context.Context, t *Task) (*Task, error) {
	t.Status = core.StatusNotStarted
	t.TrackingStatus = core.TrackingOnTrack
	t.ProgressPercentage = 0
	if err := t.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}
	t.ID = id
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Task created", "task_id", t.ID, "activity_id", t.ActivityID)
	return t, nil
}

// Get retrieves a task by ID
func (s *Service) Get(ctx context.Context, id core.ID) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Update updates descriptive fields, duration, and assignee. Date changes go
// through the constraint validator.
func (s *Service) Update(ctx context.Context, t *Task) (*Task, error) {
	if err := t.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID)
}

// Delete removes a task and its edges and constraints
func (s *Service) Delete(ctx context.Context, id core.ID) error {
	return s.repo.Delete(ctx, id)
}

// ListByActivity retrieves all tasks of an activity
func (s *Service) ListByActivity(ctx context.Context, activityID core.ID) ([]*Task, error) {
	return s.repo.ListByActivity(ctx, activityID)
}
