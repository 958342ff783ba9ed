package depgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/task"
	"github.com/masar-hq/masar/pkg/logger"
	"github.com/sethvargo/go-retry"
)

// ErrConcurrentUpdate is surfaced by the repository when the store aborts a
// checked create due to serialisation; the service retries it.
var ErrConcurrentUpdate = errors.New("concurrent dependency update")

// ItemDependencies groups an item's edges by direction.
type ItemDependencies struct {
	Incoming []*Dependency `json:"incoming"`
	Outgoing []*Dependency `json:"outgoing"`
}

// Service manages precedence edges. It is the only writer of dependencies.
type Service struct {
	repo       Repository
	activities activity.Repository
	tasks      task.Repository
}

// NewService creates a new dependency graph service
func NewService(repo Repository, activities activity.Repository, tasks task.Repository) *Service {
	return &Service{repo: repo, activities: activities, tasks: tasks}
}

// CreateActivityDependency creates an edge between two activities of the same
// project after self-loop and cycle validation.
func (s *Service) CreateActivityDependency(
	ctx context.Context,
	predID, succID core.ID,
	depType Type,
	lag float64,
) (*Dependency, error) {
	pred, err := s.activities.GetByID(ctx, predID)
	if err != nil {
		return nil, s.endpointErr(err, predID)
	}
	succ, err := s.activities.GetByID(ctx, succID)
	if err != nil {
		return nil, s.endpointErr(err, succID)
	}
	if pred.ProjectID != succ.ProjectID {
		return nil, core.NewError(
			fmt.Errorf("dependency endpoints belong to different projects"),
			core.KindValidationFailed,
			nil,
		)
	}
	dep := &Dependency{
		ProjectID:             pred.ProjectID,
		Type:                  depType,
		Lag:                   lag,
		LagKind:               LagCalendarDays,
		ActivityPredecessorID: &predID,
		ActivitySuccessorID:   &succID,
	}
	return s.create(ctx, dep)
}

// CreateTaskDependency creates an edge between two tasks of the same project
// after self-loop and cycle validation.
func (s *Service) CreateTaskDependency(
	ctx context.Context,
	predID, succID core.ID,
	depType Type,
	lag float64,
) (*Dependency, error) {
	pred, err := s.tasks.GetByID(ctx, predID)
	if err != nil {
		return nil, s.endpointErr(err, predID)
	}
	succ, err := s.tasks.GetByID(ctx, succID)
	if err != nil {
		return nil, s.endpointErr(err, succID)
	}
	predActivity, err := s.activities.GetByID(ctx, pred.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("resolve predecessor activity: %w", err)
	}
	succActivity, err := s.activities.GetByID(ctx, succ.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("resolve successor activity: %w", err)
	}
	if predActivity.ProjectID != succActivity.ProjectID {
		return nil, core.NewError(
			fmt.Errorf("dependency endpoints belong to different projects"),
			core.KindValidationFailed,
			nil,
		)
	}
	dep := &Dependency{
		ProjectID:         predActivity.ProjectID,
		Type:              depType,
		Lag:               lag,
		LagKind:           LagCalendarDays,
		TaskPredecessorID: &predID,
		TaskSuccessorID:   &succID,
	}
	return s.create(ctx, dep)
}

func (s *Service) create(ctx context.Context, dep *Dependency) (*Dependency, error) {
	if err := dep.Validate(); err != nil {
		return nil, core.NewError(err, core.KindValidationFailed, nil)
	}
	pred, succ := dep.PredecessorID(), dep.SuccessorID()
	if pred == succ {
		return nil, core.NewError(ErrSelfDependency, core.KindSelfDependency, nil)
	}
	// First pass outside the transaction rejects cheap cases early; the
	// authoritative check re-runs inside CreateChecked under the project lock.
	if err := s.checkCycle(ctx, s.repo, dep); err != nil {
		return nil, err
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate dependency ID: %w", err)
	}
	dep.ID = id
	dep.CreatedAt = time.Now().UTC()
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(50*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		createErr := s.repo.CreateChecked(ctx, dep, func(ctx context.Context, r Reader) error {
			return s.checkCycle(ctx, r, dep)
		})
		if errors.Is(createErr, ErrConcurrentUpdate) {
			return retry.RetryableError(createErr)
		}
		return createErr
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Dependency created",
		"dependency_id", dep.ID,
		"kind", dep.Kind(),
		"type", dep.Type,
		"lag", dep.Lag,
	)
	return dep, nil
}

// checkCycle rejects the edge when a path succ ->* pred already exists in the
// same-kind subgraph. DFS keeps both a visited set and a recursion set.
func (s *Service) checkCycle(ctx context.Context, r Reader, dep *Dependency) error {
	pred, succ := dep.PredecessorID(), dep.SuccessorID()
	kind := dep.Kind()
	visited := make(map[core.ID]bool)
	onStack := make(map[core.ID]bool)
	var walk func(node core.ID) error
	walk = func(node core.ID) error {
		if node == pred {
			return core.NewError(ErrCycleDetected, core.KindCycleDetected, nil)
		}
		if visited[node] {
			return nil
		}
		visited[node] = true
		onStack[node] = true
		defer delete(onStack, node)
		edges, err := r.ListSuccessors(ctx, node, kind)
		if err != nil {
			return fmt.Errorf("cycle check: %w", err)
		}
		for _, edge := range edges {
			next := edge.SuccessorID()
			if onStack[next] {
				continue
			}
			if err := walk(next); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(succ)
}

// GetPredecessors returns the incoming edges of an item, scoped to its kind
func (s *Service) GetPredecessors(ctx context.Context, itemID core.ID, kind core.ItemType) ([]*Dependency, error) {
	return s.repo.ListPredecessors(ctx, itemID, kind)
}

// GetSuccessors returns the outgoing edges of an item, scoped to its kind
func (s *Service) GetSuccessors(ctx context.Context, itemID core.ID, kind core.ItemType) ([]*Dependency, error) {
	return s.repo.ListSuccessors(ctx, itemID, kind)
}

// GetDependencies returns both directions for an item
func (s *Service) GetDependencies(ctx context.Context, itemID core.ID, kind core.ItemType) (*ItemDependencies, error) {
	incoming, err := s.repo.ListPredecessors(ctx, itemID, kind)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.repo.ListSuccessors(ctx, itemID, kind)
	if err != nil {
		return nil, err
	}
	return &ItemDependencies{Incoming: incoming, Outgoing: outgoing}, nil
}

// Delete removes a dependency edge
func (s *Service) Delete(ctx context.Context, id core.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Dependency deleted", "dependency_id", id)
	return nil
}

func (s *Service) endpointErr(err error, id core.ID) error {
	if errors.Is(err, activity.ErrActivityNotFound) || errors.Is(err, task.ErrTaskNotFound) {
		return core.NewError(ErrEndpointNotFound, core.KindNotFound, map[string]any{"itemId": id})
	}
	return err
}
