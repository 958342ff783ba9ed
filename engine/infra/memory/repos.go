package memory

import (
	"context"
	"sort"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
)

type orgStore struct{ s *Store }

func (r *orgStore) Create(_ context.Context, o *org.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *o
	r.s.orgs[o.ID] = &clone
	return nil
}

func (r *orgStore) GetByID(_ context.Context, id core.ID) (*org.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, org.ErrOrgNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *orgStore) Update(_ context.Context, o *org.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[o.ID]; !ok {
		return org.ErrOrgNotFound
	}
	clone := *o
	r.s.orgs[o.ID] = &clone
	return nil
}

func (r *orgStore) Delete(_ context.Context, id core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[id]; !ok {
		return org.ErrOrgNotFound
	}
	for pid, p := range r.s.projects {
		if p.OrgID == id {
			r.s.cascadeProject(pid)
		}
	}
	for hid, h := range r.s.holidays {
		if h.OrgID == id {
			delete(r.s.holidays, hid)
		}
	}
	delete(r.s.orgs, id)
	return nil
}

func (r *orgStore) List(_ context.Context, limit, offset int) ([]*org.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var orgs []*org.Organization
	for _, o := range r.s.orgs {
		clone := *o
		orgs = append(orgs, &clone)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return paginate(orgs, limit, offset), nil
}

func (r *orgStore) CreateHoliday(_ context.Context, h *org.Holiday) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.holidays {
		if existing.OrgID == h.OrgID && sameDay(existing.Date, h.Date) {
			return org.ErrHolidayExists
		}
	}
	clone := *h
	r.s.holidays[h.ID] = &clone
	return nil
}

func (r *orgStore) DeleteHoliday(_ context.Context, orgID, holidayID core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.holidays[holidayID]
	if !ok || h.OrgID != orgID {
		return org.ErrHolidayNotFound
	}
	delete(r.s.holidays, holidayID)
	return nil
}

func (r *orgStore) ListHolidays(_ context.Context, orgID core.ID) ([]*org.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var holidays []*org.Holiday
	for _, h := range r.s.holidays {
		if h.OrgID == orgID {
			clone := *h
			holidays = append(holidays, &clone)
		}
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}

func (r *orgStore) ListHolidaysInRange(ctx context.Context, orgID core.ID, from, to time.Time) ([]*org.Holiday, error) {
	all, err := r.ListHolidays(ctx, orgID)
	if err != nil {
		return nil, err
	}
	var holidays []*org.Holiday
	for _, h := range all {
		if !h.Date.Before(from) && !h.Date.After(to) {
			holidays = append(holidays, h)
		}
	}
	return holidays, nil
}

type projectStore struct{ s *Store }

func (r *projectStore) Create(_ context.Context, p *project.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *p
	r.s.projects[p.ID] = &clone
	return nil
}

func (r *projectStore) GetByID(_ context.Context, orgID, projectID core.ID) (*project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[projectID]
	if !ok || p.OrgID != orgID {
		return nil, project.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *projectStore) Update(_ context.Context, p *project.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; !ok {
		return project.ErrProjectNotFound
	}
	clone := *p
	r.s.projects[p.ID] = &clone
	return nil
}

func (r *projectStore) UpdateStatus(
	_ context.Context,
	orgID, projectID core.ID,
	status core.Status,
	progress int,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok || p.OrgID != orgID {
		return project.ErrProjectNotFound
	}
	p.Status = status
	p.ProgressPercentage = progress
	return nil
}

func (r *projectStore) Delete(_ context.Context, orgID, projectID core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok || p.OrgID != orgID {
		return project.ErrProjectNotFound
	}
	r.s.cascadeProject(p.ID)
	return nil
}

func (r *projectStore) List(_ context.Context, orgID core.ID, filter project.ListFilter) ([]*project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var projects []*project.Project
	for _, p := range r.s.projects {
		if p.OrgID != orgID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		clone := *p
		projects = append(projects, &clone)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return paginate(projects, filter.Limit, filter.Offset), nil
}

func (r *projectStore) Count(ctx context.Context, orgID core.ID, filter project.ListFilter) (int64, error) {
	all, err := r.List(ctx, orgID, project.ListFilter{Status: filter.Status})
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *projectStore) AddMember(_ context.Context, projectID, userID core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.members[projectID] == nil {
		r.s.members[projectID] = make(map[core.ID]bool)
	}
	r.s.members[projectID][userID] = true
	return nil
}

func (r *projectStore) RemoveMember(_ context.Context, projectID, userID core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.members[projectID], userID)
	return nil
}

func (r *projectStore) ListMemberIDs(_ context.Context, projectID core.ID) ([]core.ID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []core.ID
	for id := range r.s.members[projectID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *projectStore) IsMember(_ context.Context, projectID, userID core.ID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.projects[projectID]; ok && p.OwnerID == userID {
		return true, nil
	}
	return r.s.members[projectID][userID], nil
}

type activityStore struct{ s *Store }

func (r *activityStore) Create(_ context.Context, a *activity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *a
	r.s.activities[a.ID] = &clone
	return nil
}

func (r *activityStore) GetByID(_ context.Context, id core.ID) (*activity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.activities[id]
	if !ok {
		return nil, activity.ErrActivityNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *activityStore) Update(_ context.Context, a *activity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[a.ID]; !ok {
		return activity.ErrActivityNotFound
	}
	clone := *a
	r.s.activities[a.ID] = &clone
	return nil
}

func (r *activityStore) UpdateDates(_ context.Context, id core.ID, start, end time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return activity.ErrActivityNotFound
	}
	a.StartDate = start
	a.EndDate = end
	return nil
}

func (r *activityStore) UpdateStatus(
	_ context.Context,
	id core.ID,
	status core.Status,
	tracking core.TrackingStatus,
	progress int,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return activity.ErrActivityNotFound
	}
	a.Status = status
	a.TrackingStatus = tracking
	a.ProgressPercentage = progress
	return nil
}

func (r *activityStore) Delete(_ context.Context, id core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[id]; !ok {
		return activity.ErrActivityNotFound
	}
	r.s.cascadeActivity(id)
	return nil
}

func (r *activityStore) ListByProject(_ context.Context, projectID core.ID) ([]*activity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var activities []*activity.Activity
	for _, a := range r.s.activities {
		if a.ProjectID == projectID {
			clone := *a
			activities = append(activities, &clone)
		}
	}
	sort.Slice(activities, func(i, j int) bool {
		if !activities[i].StartDate.Equal(activities[j].StartDate) {
			return activities[i].StartDate.Before(activities[j].StartDate)
		}
		return activities[i].ID < activities[j].ID
	})
	return activities, nil
}

type taskStore struct{ s *Store }

func (r *taskStore) Create(_ context.Context, t *task.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *t
	r.s.tasks[t.ID] = &clone
	return nil
}

func (r *taskStore) GetByID(_ context.Context, id core.ID) (*task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *taskStore) Update(_ context.Context, t *task.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[t.ID]; !ok {
		return task.ErrTaskNotFound
	}
	clone := *t
	r.s.tasks[t.ID] = &clone
	return nil
}

func (r *taskStore) UpdateDates(_ context.Context, id core.ID, start, end time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	t.StartDate = start
	t.EndDate = end
	return nil
}

func (r *taskStore) UpdateStatus(
	_ context.Context,
	id core.ID,
	status core.Status,
	tracking core.TrackingStatus,
	progress int,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	t.Status = status
	t.TrackingStatus = tracking
	t.ProgressPercentage = progress
	return nil
}

func (r *taskStore) Delete(_ context.Context, id core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return task.ErrTaskNotFound
	}
	r.s.cascadeTask(id)
	return nil
}

func (r *taskStore) ListByActivity(_ context.Context, activityID core.ID) ([]*task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var tasks []*task.Task
	for _, t := range r.s.tasks {
		if t.ActivityID == activityID {
			clone := *t
			tasks = append(tasks, &clone)
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *taskStore) ListByProject(_ context.Context, projectID core.ID) ([]*task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var tasks []*task.Task
	for _, t := range r.s.tasks {
		a, ok := r.s.activities[t.ActivityID]
		if ok && a.ProjectID == projectID {
			clone := *t
			tasks = append(tasks, &clone)
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *taskStore) ListByAssignee(_ context.Context, assigneeID core.ID, limit, offset int) ([]*task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var tasks []*task.Task
	for _, t := range r.s.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == assigneeID {
			clone := *t
			tasks = append(tasks, &clone)
		}
	}
	sortTasks(tasks)
	return paginate(tasks, limit, offset), nil
}

type depStore struct{ s *Store }

func (r *depStore) GetByID(_ context.Context, id core.ID) (*depgraph.Dependency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.deps[id]
	if !ok {
		return nil, depgraph.ErrDependencyNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *depStore) Delete(_ context.Context, id core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.deps[id]; !ok {
		return depgraph.ErrDependencyNotFound
	}
	delete(r.s.deps, id)
	return nil
}

func (r *depStore) ListSuccessors(
	_ context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listSuccessorsLocked(itemID, kind), nil
}

func (r *depStore) listSuccessorsLocked(itemID core.ID, kind core.ItemType) []*depgraph.Dependency {
	var deps []*depgraph.Dependency
	for _, d := range r.s.deps {
		if d.Kind() != kind || d.PredecessorID() != itemID {
			continue
		}
		clone := *d
		deps = append(deps, &clone)
	}
	sortDeps(deps)
	return deps
}

func (r *depStore) ListPredecessors(
	_ context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var deps []*depgraph.Dependency
	for _, d := range r.s.deps {
		if d.Kind() != kind || d.SuccessorID() != itemID {
			continue
		}
		clone := *d
		deps = append(deps, &clone)
	}
	sortDeps(deps)
	return deps, nil
}

func (r *depStore) ListByProject(
	_ context.Context,
	projectID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var deps []*depgraph.Dependency
	for _, d := range r.s.deps {
		if d.ProjectID == projectID && d.Kind() == kind {
			clone := *d
			deps = append(deps, &clone)
		}
	}
	sortDeps(deps)
	return deps, nil
}

// CreateChecked serialises on the store lock, mirroring the per-project
// advisory lock of the Postgres driver.
func (r *depStore) CreateChecked(
	ctx context.Context,
	dep *depgraph.Dependency,
	verify func(ctx context.Context, reader depgraph.Reader) error,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := verify(ctx, &lockedReader{r}); err != nil {
		return err
	}
	clone := *dep
	r.s.deps[dep.ID] = &clone
	return nil
}

// lockedReader serves reads while the store lock is already held.
type lockedReader struct{ r *depStore }

func (l *lockedReader) ListSuccessors(
	_ context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	return l.r.listSuccessorsLocked(itemID, kind), nil
}

func (l *lockedReader) ListPredecessors(
	_ context.Context,
	itemID core.ID,
	kind core.ItemType,
) ([]*depgraph.Dependency, error) {
	var deps []*depgraph.Dependency
	for _, d := range l.r.s.deps {
		if d.Kind() == kind && d.SuccessorID() == itemID {
			clone := *d
			deps = append(deps, &clone)
		}
	}
	sortDeps(deps)
	return deps, nil
}

type constraintStore struct{ s *Store }

func (r *constraintStore) Create(_ context.Context, c *constraint.DateConstraint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *c
	r.s.constraints[c.ID] = &clone
	return nil
}

func (r *constraintStore) GetByID(_ context.Context, id core.ID) (*constraint.DateConstraint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.constraints[id]
	if !ok {
		return nil, constraint.ErrConstraintNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *constraintStore) Delete(_ context.Context, id core.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.constraints[id]; !ok {
		return constraint.ErrConstraintNotFound
	}
	delete(r.s.constraints, id)
	return nil
}

func (r *constraintStore) ListByItem(
	_ context.Context,
	itemID core.ID,
	itemType core.ItemType,
) ([]*constraint.DateConstraint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var constraints []*constraint.DateConstraint
	for _, c := range r.s.constraints {
		if c.ItemID == itemID && c.ItemType == itemType {
			clone := *c
			constraints = append(constraints, &clone)
		}
	}
	sort.Slice(constraints, func(i, j int) bool { return constraints[i].ID < constraints[j].ID })
	return constraints, nil
}

func (r *constraintStore) ListByProject(_ context.Context, projectID core.ID) ([]*constraint.DateConstraint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var constraints []*constraint.DateConstraint
	for _, c := range r.s.constraints {
		if c.ProjectID == projectID {
			clone := *c
			constraints = append(constraints, &clone)
		}
	}
	sort.Slice(constraints, func(i, j int) bool { return constraints[i].ID < constraints[j].ID })
	return constraints, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sortTasks(tasks []*task.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].StartDate.Equal(tasks[j].StartDate) {
			return tasks[i].StartDate.Before(tasks[j].StartDate)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func sortDeps(deps []*depgraph.Dependency) {
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
