package constraint

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/task"
	"github.com/masar-hq/masar/pkg/logger"
)

// day converts a calendar-day lag into wall-clock time.
const day = 24 * time.Hour

// Representable date range bounds used to seed valid-range computation.
var (
	minDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Service validates and applies manual date edits against hard constraints,
// precedence edges, and the working calendar. It is the only writer of
// constraints, and of item dates outside entity creation.
type Service struct {
	repo      Repository
	deps      depgraph.Repository
	items     *itemResolver
	calendars *calendar.Service
}

// NewService creates a new constraint validator service
func NewService(
	repo Repository,
	deps depgraph.Repository,
	activities activity.Repository,
	tasks task.Repository,
	calendars *calendar.Service,
) *Service {
	return &Service{
		repo:      repo,
		deps:      deps,
		items:     &itemResolver{activities: activities, tasks: tasks},
		calendars: calendars,
	}
}

// AddConstraint stores a new hard constraint for an item.
func (s *Service) AddConstraint(ctx context.Context, c *DateConstraint) (*DateConstraint, error) {
	if err := c.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	item, err := s.items.resolve(ctx, c.ItemType, c.ItemID)
	if err != nil {
		return nil, err
	}
	c.ProjectID = item.ProjectID
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate constraint ID: %w", err)
	}
	c.ID = id
	c.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create constraint: %w", err)
	}
	logger.FromContext(ctx).Info("Constraint created",
		"constraint_id", c.ID, "item_id", c.ItemID, "type", c.Type)
	return c, nil
}

// RemoveConstraint deletes a constraint by ID.
func (s *Service) RemoveConstraint(ctx context.Context, id core.ID) error {
	return s.repo.Delete(ctx, id)
}

// ListByItem returns all constraints of one item.
func (s *Service) ListByItem(ctx context.Context, itemID core.ID, itemType core.ItemType) ([]*DateConstraint, error) {
	return s.repo.ListByItem(ctx, itemID, itemType)
}

// ValidateDateEdit checks a proposed (newStart, newEnd) against duration
// ordering, the item's hard constraints, predecessor and successor edges, and
// the working calendar. All violations are accumulated.
func (s *Service) ValidateDateEdit(
	ctx context.Context,
	orgID core.ID,
	itemType core.ItemType,
	itemID core.ID,
	newStart, newEnd time.Time,
) (*ValidationResult, error) {
	item, err := s.items.resolve(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	result := &ValidationResult{Violations: []Violation{}}
	if newEnd.Before(newStart) {
		result.Violations = append(result.Violations, Violation{
			Kind:    ViolationInvalidDuration,
			Message: "end date precedes start date",
		})
	}
	if err := s.checkConstraints(ctx, item, newStart, newEnd, result); err != nil {
		return nil, err
	}
	if err := s.checkPredecessors(ctx, item, newStart, result); err != nil {
		return nil, err
	}
	if err := s.checkSuccessors(ctx, item, newEnd, result); err != nil {
		return nil, err
	}
	if err := s.checkCalendar(ctx, orgID, newStart, result); err != nil {
		return nil, err
	}
	result.Valid = len(result.Violations) == 0
	return result, nil
}

func (s *Service) checkConstraints(
	ctx context.Context,
	item *scheduledItem,
	newStart, newEnd time.Time,
	result *ValidationResult,
) error {
	constraints, err := s.repo.ListByItem(ctx, item.ID, item.Type)
	if err != nil {
		return fmt.Errorf("load constraints: %w", err)
	}
	for _, c := range constraints {
		if !c.Type.RequiresDate() {
			continue
		}
		date := *c.Date
		violated := false
		switch c.Type {
		case TypeMustStartOn:
			violated = !newStart.Equal(date)
		case TypeMustFinishOn:
			violated = !newEnd.Equal(date)
		case TypeStartNoEarlier:
			violated = newStart.Before(date)
		case TypeStartNoLater:
			violated = newStart.After(date)
		case TypeFinishNoEarlier:
			violated = newEnd.Before(date)
		case TypeFinishNoLater:
			violated = newEnd.After(date)
		}
		if violated {
			suggested := date
			result.Violations = append(result.Violations, Violation{
				Kind:          ViolationHardConstraint,
				Message:       fmt.Sprintf("%s constraint requires %s", c.Type, date.Format(time.RFC3339)),
				SuggestedDate: &suggested,
			})
		}
	}
	return nil
}

// checkPredecessors enforces newStart >= pred.endDate + lag for every
// predecessor. All edge types use FS semantics for this validation.
func (s *Service) checkPredecessors(
	ctx context.Context,
	item *scheduledItem,
	newStart time.Time,
	result *ValidationResult,
) error {
	edges, err := s.deps.ListPredecessors(ctx, item.ID, item.Type)
	if err != nil {
		return fmt.Errorf("load predecessors: %w", err)
	}
	for _, edge := range edges {
		predID := edge.PredecessorID()
		pred, err := s.items.resolve(ctx, item.Type, predID)
		if err != nil {
			return err
		}
		required := pred.End.Add(lagDuration(edge.Lag))
		if newStart.Before(required) {
			affected := predID
			suggested := required
			result.Violations = append(result.Violations, Violation{
				Kind: ViolationPredecessorConflict,
				Message: fmt.Sprintf("start conflicts with predecessor %s: earliest allowed is %s",
					predID, required.Format(time.RFC3339)),
				AffectedItemID: &affected,
				SuggestedDate:  &suggested,
			})
		}
	}
	return nil
}

// checkSuccessors enforces newEnd <= succ.startDate - lag for every successor.
func (s *Service) checkSuccessors(
	ctx context.Context,
	item *scheduledItem,
	newEnd time.Time,
	result *ValidationResult,
) error {
	edges, err := s.deps.ListSuccessors(ctx, item.ID, item.Type)
	if err != nil {
		return fmt.Errorf("load successors: %w", err)
	}
	for _, edge := range edges {
		succID := edge.SuccessorID()
		succ, err := s.items.resolve(ctx, item.Type, succID)
		if err != nil {
			return err
		}
		required := succ.Start.Add(-lagDuration(edge.Lag))
		if newEnd.After(required) {
			affected := succID
			suggested := required
			result.Violations = append(result.Violations, Violation{
				Kind: ViolationSuccessorConflict,
				Message: fmt.Sprintf("end conflicts with successor %s: latest allowed is %s",
					succID, required.Format(time.RFC3339)),
				AffectedItemID: &affected,
				SuggestedDate:  &suggested,
			})
		}
	}
	return nil
}

func (s *Service) checkCalendar(
	ctx context.Context,
	orgID core.ID,
	newStart time.Time,
	result *ValidationResult,
) error {
	pattern, err := s.calendars.ResolvePattern(ctx, orgID)
	if err != nil {
		return err
	}
	if pattern.IsWorkingInstant(newStart) {
		return nil
	}
	violation := Violation{
		Kind:    ViolationCalendarConflict,
		Message: "start does not fall in working time",
	}
	if snapped, snapErr := pattern.SnapToWorkingTime(ctx, newStart, calendar.SnapForward); snapErr == nil {
		violation.SuggestedDate = &snapped
	}
	result.Violations = append(result.Violations, violation)
	return nil
}

// ApplyDateEdit validates and, when valid or forced, atomically persists the
// new dates. A forced write reports success with the violations attached for
// audit.
func (s *Service) ApplyDateEdit(
	ctx context.Context,
	orgID core.ID,
	itemType core.ItemType,
	itemID core.ID,
	newStart, newEnd time.Time,
	forceOverride bool,
) (*EditResult, error) {
	validation, err := s.ValidateDateEdit(ctx, orgID, itemType, itemID, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if !validation.Valid && !forceOverride {
		return &EditResult{Success: false, Validation: *validation}, nil
	}
	if err := s.items.writeDates(ctx, itemType, itemID, newStart, newEnd); err != nil {
		return nil, fmt.Errorf("apply date edit: %w", err)
	}
	if !validation.Valid {
		logger.FromContext(ctx).Warn("Date edit forced past violations",
			"item_id", itemID, "violations", len(validation.Violations))
	}
	return &EditResult{Success: true, Validation: *validation}, nil
}

// ValidDateRange computes the window of admissible start and end dates for
// an item given its constraints, predecessors, and successors.
func (s *Service) ValidDateRange(
	ctx context.Context,
	itemType core.ItemType,
	itemID core.ID,
) (*DateRange, error) {
	item, err := s.items.resolve(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	r := &DateRange{MinStart: minDate, MaxStart: maxDate, MinEnd: minDate, MaxEnd: maxDate}
	constraints, err := s.repo.ListByItem(ctx, item.ID, item.Type)
	if err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	for _, c := range constraints {
		if !c.Type.RequiresDate() {
			continue
		}
		date := *c.Date
		switch c.Type {
		case TypeMustStartOn:
			r.MinStart = latest(r.MinStart, date)
			r.MaxStart = earliest(r.MaxStart, date)
		case TypeMustFinishOn:
			r.MinEnd = latest(r.MinEnd, date)
			r.MaxEnd = earliest(r.MaxEnd, date)
		case TypeStartNoEarlier:
			r.MinStart = latest(r.MinStart, date)
		case TypeStartNoLater:
			r.MaxStart = earliest(r.MaxStart, date)
		case TypeFinishNoEarlier:
			r.MinEnd = latest(r.MinEnd, date)
		case TypeFinishNoLater:
			r.MaxEnd = earliest(r.MaxEnd, date)
		}
	}
	preds, err := s.deps.ListPredecessors(ctx, item.ID, item.Type)
	if err != nil {
		return nil, fmt.Errorf("load predecessors: %w", err)
	}
	for _, edge := range preds {
		pred, err := s.items.resolve(ctx, item.Type, edge.PredecessorID())
		if err != nil {
			return nil, err
		}
		r.MinStart = latest(r.MinStart, pred.End.Add(lagDuration(edge.Lag)))
	}
	succs, err := s.deps.ListSuccessors(ctx, item.ID, item.Type)
	if err != nil {
		return nil, fmt.Errorf("load successors: %w", err)
	}
	for _, edge := range succs {
		succ, err := s.items.resolve(ctx, item.Type, edge.SuccessorID())
		if err != nil {
			return nil, err
		}
		r.MaxEnd = earliest(r.MaxEnd, succ.Start.Add(-lagDuration(edge.Lag)))
	}
	if r.MinStart.After(r.MaxStart) || r.MinEnd.After(r.MaxEnd) {
		r.Violations = append(r.Violations, Violation{
			Kind:    ViolationHardConstraint,
			Message: "constraints leave no feasible date range",
		})
	}
	return r, nil
}

// PropagateDateChanges pushes the item's end date onto its direct successors:
// each successor starts at item.endDate + lag and ends after its duration of
// working time. Transitive propagation is the caller's responsibility.
func (s *Service) PropagateDateChanges(
	ctx context.Context,
	orgID core.ID,
	itemType core.ItemType,
	itemID core.ID,
) ([]DateChange, error) {
	item, err := s.items.resolve(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	pattern, err := s.calendars.ResolvePattern(ctx, orgID)
	if err != nil {
		return nil, err
	}
	edges, err := s.deps.ListSuccessors(ctx, item.ID, item.Type)
	if err != nil {
		return nil, fmt.Errorf("load successors: %w", err)
	}
	changes := make([]DateChange, 0, len(edges))
	for _, edge := range edges {
		succID := edge.SuccessorID()
		succ, err := s.items.resolve(ctx, item.Type, succID)
		if err != nil {
			return nil, err
		}
		newStart := item.End.Add(lagDuration(edge.Lag))
		newEnd, err := pattern.AddWorkingTime(ctx, newStart, succ.DurationHours)
		if err != nil {
			return nil, err
		}
		if succ.Start.Equal(newStart) && succ.End.Equal(newEnd) {
			continue
		}
		if err := s.items.writeDates(ctx, item.Type, succID, newStart, newEnd); err != nil {
			return nil, fmt.Errorf("propagate to %s: %w", succID, err)
		}
		changes = append(changes, DateChange{
			ItemID:   succID,
			ItemType: item.Type,
			OldStart: succ.Start,
			OldEnd:   succ.End,
			NewStart: newStart,
			NewEnd:   newEnd,
		})
	}
	if len(changes) > 0 {
		logger.FromContext(ctx).Info("Dates propagated to successors",
			"item_id", itemID, "changed", len(changes))
	}
	return changes, nil
}

func lagDuration(lagDays float64) time.Duration {
	return time.Duration(lagDays * float64(day))
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
