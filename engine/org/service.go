package org

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/pkg/logger"
)

// CacheInvalidator evicts cached calendar state for an organisation. The
// calendar service implements it; the org service calls it on every mutation
// of timezone, weekday mask, working hours, or holidays.
type CacheInvalidator interface {
	InvalidateOrg(orgID core.ID)
}

// Service manages organisations and their holidays
type Service struct {
	repo  Repository
	cache CacheInvalidator
}

// NewService creates a new organisation service
func NewService(repo Repository, cache CacheInvalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create creates a new organisation
func (s *Service) Create(ctx context.Context, o *Organization) (*Organization, error) {
	if err := o.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization ID: %w", err)
	}
	o.ID = id
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	logger.FromContext(ctx).Info("Organization created", "org_id", o.ID, "name", o.Name)
	return o, nil
}

// Get retrieves an organisation by ID
func (s *Service) Get(ctx context.Context, id core.ID) (*Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateWorkingConfig updates the working-time configuration and invalidates
// the calendar cache for the organisation.
func (s *Service) UpdateWorkingConfig(ctx context.Context, o *Organization) (*Organization, error) {
	if err := o.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	s.invalidate(ctx, o.ID)
	return o, nil
}

// Delete removes an organisation with cascade semantics
func (s *Service) Delete(ctx context.Context, id core.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	logger.FromContext(ctx).Info("Organization deleted", "org_id", id)
	return nil
}

// AddHoliday creates a holiday and invalidates the calendar cache
func (s *Service) AddHoliday(ctx context.Context, h *Holiday) (*Holiday, error) {
	if h.Date.IsZero() {
		return nil, core.NewError(fmt.Errorf("holiday date is required"), core.KindValidationFailed, nil)
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate holiday ID: %w", err)
	}
	h.ID = id
	h.CreatedAt = time.Now().UTC()
	if err := s.repo.CreateHoliday(ctx, h); err != nil {
		return nil, err
	}
	s.invalidate(ctx, h.OrgID)
	return h, nil
}

// RemoveHoliday deletes a holiday and invalidates the calendar cache
func (s *Service) RemoveHoliday(ctx context.Context, orgID, holidayID core.ID) error {
	if err := s.repo.DeleteHoliday(ctx, orgID, holidayID); err != nil {
		return err
	}
	s.invalidate(ctx, orgID)
	return nil
}

// ListHolidays retrieves all holidays of an organisation
func (s *Service) ListHolidays(ctx context.Context, orgID core.ID) ([]*Holiday, error) {
	return s.repo.ListHolidays(ctx, orgID)
}

func (s *Service) invalidate(ctx context.Context, orgID core.ID) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateOrg(orgID)
	logger.FromContext(ctx).Debug("Calendar cache invalidated", "org_id", orgID)
}
