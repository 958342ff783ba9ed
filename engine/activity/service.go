package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/pkg/logger"
)

// Service manages activity CRUD. Status, progress, and scheduling-driven
// date changes flow through the status and constraint services instead.
type Service struct {
	repo Repository
}

// NewService creates a new activity service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates an activity in NOT_STARTED status
func (s *Service) Create(ctx context.Context, a *Activity) (*Activity, error) {
	a.Status = core.StatusNotStarted
	a.TrackingStatus = core.TrackingOnTrack
	a.ProgressPercentage = 0
	if err := a.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate activity ID: %w", err)
	}
	a.ID = id
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Activity created", "activity_id", a.ID, "project_id", a.ProjectID)
	return a, nil
}

// Get retrieves an activity by ID
func (s *Service) Get(ctx context.Context, id core.ID) (*Activity, error) {
	return s.repo.GetByID(ctx, id)
}

// Update updates descriptive fields and the checklist. Date changes go
// through the constraint validator.
func (s *Service) Update(ctx context.Context, a *Activity) (*Activity, error) {
	if err := a.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, a.ID)
}

// Delete removes an activity and everything it owns
func (s *Service) Delete(ctx context.Context, id core.ID) error {
	return s.repo.Delete(ctx, id)
}

// ListByProject retrieves all activities of a project
func (s *Service) ListByProject(ctx context.Context, projectID core.ID) ([]*Activity, error) {
	return s.repo.ListByProject(ctx, projectID)
}
