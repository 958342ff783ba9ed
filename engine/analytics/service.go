package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/schedule"
)

// Service assembles the read-only dashboard, project, and schedule reports.
type Service struct {
	repo      Repository
	projects  project.Repository
	scheduler *schedule.Service
	clock     func() time.Time
}

// NewService creates a new analytics service
func NewService(repo Repository, projects project.Repository, scheduler *schedule.Service) *Service {
	return &Service{repo: repo, projects: projects, scheduler: scheduler, clock: time.Now}
}

// Dashboard builds the tenant-wide aggregate view.
func (s *Service) Dashboard(ctx context.Context, orgID core.ID) (*Dashboard, error) {
	byStatus, err := s.repo.CountProjectsByStatus(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("dashboard project counts: %w", err)
	}
	total := int64(0)
	for _, n := range byStatus {
		total += n
	}
	byTracking, err := s.repo.CountItemsByTracking(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("dashboard tracking counts: %w", err)
	}
	avgProgress, err := s.repo.AverageProjectProgress(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("dashboard average progress: %w", err)
	}
	overdue, err := s.repo.CountOverdueTasks(ctx, orgID, s.clock())
	if err != nil {
		return nil, fmt.Errorf("dashboard overdue tasks: %w", err)
	}
	return &Dashboard{
		TotalProjects:    total,
		ProjectsByStatus: byStatus,
		ItemsByTracking:  byTracking,
		AverageProgress:  avgProgress,
		OverdueTasks:     overdue,
	}, nil
}

// ProjectSummary builds one project's execution report, including the count
// of critical items from a fresh schedule computation.
func (s *Service) ProjectSummary(ctx context.Context, orgID, projectID core.ID) (*ProjectSummary, error) {
	p, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	activitiesByStatus, err := s.repo.CountActivitiesByStatus(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("summary activity counts: %w", err)
	}
	tasksByStatus, err := s.repo.CountTasksByStatus(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("summary task counts: %w", err)
	}
	overdue, err := s.repo.CountOverdueProjectTasks(ctx, projectID, s.clock())
	if err != nil {
		return nil, fmt.Errorf("summary overdue tasks: %w", err)
	}
	sched, err := s.scheduler.CalculateProjectSchedule(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectSummary{
		ProjectID:          p.ID,
		Name:               p.Name,
		Status:             p.Status,
		ProgressPercentage: p.ProgressPercentage,
		ActivitiesByStatus: activitiesByStatus,
		TasksByStatus:      tasksByStatus,
		OverdueTasks:       overdue,
		CriticalItems:      len(sched.CriticalPath),
		ProjectedEndDate:   sched.EndDate,
	}, nil
}

// ScheduleReport returns the full CPM result for a project.
func (s *Service) ScheduleReport(ctx context.Context, orgID, projectID core.ID) (*schedule.ProjectSchedule, error) {
	return s.scheduler.CalculateProjectSchedule(ctx, orgID, projectID)
}
