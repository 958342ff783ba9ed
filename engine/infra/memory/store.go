// Package memory provides a map-backed Store implementation with the same
// contracts as the Postgres driver, including cascade deletes. It backs unit
// tests and local experimentation; nothing persists across processes.
package memory

import (
	"sync"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
)

// Store holds every entity table behind one lock.
type Store struct {
	mu          sync.RWMutex
	orgs        map[core.ID]*org.Organization
	holidays    map[core.ID]*org.Holiday
	projects    map[core.ID]*project.Project
	members     map[core.ID]map[core.ID]bool
	activities  map[core.ID]*activity.Activity
	tasks       map[core.ID]*task.Task
	deps        map[core.ID]*depgraph.Dependency
	constraints map[core.ID]*constraint.DateConstraint
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		orgs:        make(map[core.ID]*org.Organization),
		holidays:    make(map[core.ID]*org.Holiday),
		projects:    make(map[core.ID]*project.Project),
		members:     make(map[core.ID]map[core.ID]bool),
		activities:  make(map[core.ID]*activity.Activity),
		tasks:       make(map[core.ID]*task.Task),
		deps:        make(map[core.ID]*depgraph.Dependency),
		constraints: make(map[core.ID]*constraint.DateConstraint),
	}
}

// Orgs returns the organisation repository view
func (s *Store) Orgs() org.Repository { return &orgStore{s} }

// Projects returns the project repository view
func (s *Store) Projects() project.Repository { return &projectStore{s} }

// Activities returns the activity repository view
func (s *Store) Activities() activity.Repository { return &activityStore{s} }

// Tasks returns the task repository view
func (s *Store) Tasks() task.Repository { return &taskStore{s} }

// Dependencies returns the dependency repository view
func (s *Store) Dependencies() depgraph.Repository { return &depStore{s} }

// Constraints returns the constraint repository view
func (s *Store) Constraints() constraint.Repository { return &constraintStore{s} }

// cascadeProject removes everything a project owns. Caller holds the lock.
func (s *Store) cascadeProject(projectID core.ID) {
	for id, a := range s.activities {
		if a.ProjectID == projectID {
			s.cascadeActivity(id)
		}
	}
	for id, c := range s.constraints {
		if c.ProjectID == projectID {
			delete(s.constraints, id)
		}
	}
	for id, d := range s.deps {
		if d.ProjectID == projectID {
			delete(s.deps, id)
		}
	}
	delete(s.members, projectID)
	delete(s.projects, projectID)
}

// cascadeActivity removes an activity, its tasks, and their edges and
// constraints. Caller holds the lock.
func (s *Store) cascadeActivity(activityID core.ID) {
	for id, t := range s.tasks {
		if t.ActivityID == activityID {
			s.cascadeTask(id)
		}
	}
	for id, d := range s.deps {
		if matches(d.ActivityPredecessorID, activityID) || matches(d.ActivitySuccessorID, activityID) {
			delete(s.deps, id)
		}
	}
	s.dropConstraints(activityID, core.ItemTypeActivity)
	delete(s.activities, activityID)
}

// cascadeTask removes a task with its edges and constraints. Caller holds
// the lock.
func (s *Store) cascadeTask(taskID core.ID) {
	for id, d := range s.deps {
		if matches(d.TaskPredecessorID, taskID) || matches(d.TaskSuccessorID, taskID) {
			delete(s.deps, id)
		}
	}
	s.dropConstraints(taskID, core.ItemTypeTask)
	delete(s.tasks, taskID)
}

func (s *Store) dropConstraints(itemID core.ID, itemType core.ItemType) {
	for id, c := range s.constraints {
		if c.ItemID == itemID && c.ItemType == itemType {
			delete(s.constraints, id)
		}
	}
}

func matches(ref *core.ID, id core.ID) bool {
	return ref != nil && *ref == id
}
