package project

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/pkg/logger"
)

// Service manages project lifecycle and membership
type Service struct {
	repo Repository
}

// NewService creates a new project service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a project in NOT_STARTED status with zero progress.
func (s *Service) Create(ctx context.Context, p *Project) (*Project, error) {
	p.Status = core.StatusNotStarted
	p.ProgressPercentage = 0
	if err := p.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}
	p.ID = id
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Project created", "project_id", p.ID, "org_id", p.OrgID)
	return p, nil
}

// Get retrieves a project within an organisation
func (s *Service) Get(ctx context.Context, orgID, projectID core.ID) (*Project, error) {
	return s.repo.GetByID(ctx, orgID, projectID)
}

// Update updates a project's descriptive fields and start date
func (s *Service) Update(ctx context.Context, p *Project) (*Project, error) {
	if err := p.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.OrgID, p.ID)
}

// Delete removes a project and everything it owns
func (s *Service) Delete(ctx context.Context, orgID, projectID core.ID) error {
	if err := s.repo.Delete(ctx, orgID, projectID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Project deleted", "project_id", projectID)
	return nil
}

// List returns one page of projects plus the total count
func (s *Service) List(
	ctx context.Context,
	orgID core.ID,
	page core.PageRequest,
	status *core.Status,
) (core.Page[*Project], error) {
	normalized := page.Normalize()
	filter := ListFilter{Status: status, Limit: normalized.Limit, Offset: page.Offset()}
	projects, err := s.repo.List(ctx, orgID, filter)
	if err != nil {
		return core.Page[*Project]{}, err
	}
	total, err := s.repo.Count(ctx, orgID, filter)
	if err != nil {
		return core.Page[*Project]{}, err
	}
	return core.NewPage(projects, page, total), nil
}

// RequireMember rejects access for users who neither own nor belong to the
// project. PMO users bypass membership.
func (s *Service) RequireMember(ctx context.Context, projectID, userID core.ID, role core.Role) error {
	if role == core.RolePMO {
		return nil
	}
	ok, err := s.repo.IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewError(ErrNotMember, core.KindForbidden, nil)
	}
	return nil
}

// AddMember links a user to the project
func (s *Service) AddMember(ctx context.Context, projectID, userID core.ID) error {
	return s.repo.AddMember(ctx, projectID, userID)
}

// RemoveMember unlinks a user from the project
func (s *Service) RemoveMember(ctx context.Context, projectID, userID core.ID) error {
	return s.repo.RemoveMember(ctx, projectID, userID)
}
