package depgraph

import (
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Type is the precedence semantics of an edge.
type Type string

const (
	// TypeFS finish-to-start: successor starts after predecessor finishes.
	TypeFS Type = "FS"
	// TypeSS start-to-start: successor starts after predecessor starts.
	TypeSS Type = "SS"
	// TypeFF finish-to-finish: successor finishes after predecessor finishes.
	TypeFF Type = "FF"
	// TypeSF start-to-finish: successor finishes after predecessor starts.
	TypeSF Type = "SF"
)

// IsValid checks if the dependency type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeFS, TypeSS, TypeFF, TypeSF:
		return true
	default:
		return false
	}
}

// LagKind records the unit of the lag offset. Only calendar days exist today;
// the field keeps room for working-day lag without a schema change.
type LagKind string

const (
	LagCalendarDays LagKind = "CALENDAR_DAYS"
)

// Dependency is a typed, lagged precedence edge between two activities or two
// tasks. Exactly one endpoint pair is set; activity-kind and task-kind edges
// occupy disjoint subgraphs.
type Dependency struct {
	ID                    core.ID   `json:"id"   db:"id"`
	ProjectID             core.ID   `json:"projectId" db:"project_id"`
	Type                  Type      `json:"type" db:"dep_type"`
	Lag                   float64   `json:"lag"  db:"lag"`
	LagKind               LagKind   `json:"lagKind" db:"lag_kind"`
	ActivityPredecessorID *core.ID  `json:"activityPredecessorId,omitempty" db:"activity_predecessor_id"`
	ActivitySuccessorID   *core.ID  `json:"activitySuccessorId,omitempty"   db:"activity_successor_id"`
	TaskPredecessorID     *core.ID  `json:"taskPredecessorId,omitempty"     db:"task_predecessor_id"`
	TaskSuccessorID       *core.ID  `json:"taskSuccessorId,omitempty"       db:"task_successor_id"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
}

// Kind returns the endpoint kind of the edge.
func (d *Dependency) Kind() core.ItemType {
	if d.ActivityPredecessorID != nil || d.ActivitySuccessorID != nil {
		return core.ItemTypeActivity
	}
	return core.ItemTypeTask
}

// PredecessorID returns the predecessor endpoint regardless of kind.
func (d *Dependency) PredecessorID() core.ID {
	if d.ActivityPredecessorID != nil {
		return *d.ActivityPredecessorID
	}
	if d.TaskPredecessorID != nil {
		return *d.TaskPredecessorID
	}
	return ""
}

// SuccessorID returns the successor endpoint regardless of kind.
func (d *Dependency) SuccessorID() core.ID {
	if d.ActivitySuccessorID != nil {
		return *d.ActivitySuccessorID
	}
	if d.TaskSuccessorID != nil {
		return *d.TaskSuccessorID
	}
	return ""
}

// Validate enforces the endpoint invariant: exactly one of the activity pair
// or the task pair is set, both sides present, kinds never mixed.
func (d *Dependency) Validate() error {
	if !d.Type.IsValid() {
		return fmt.Errorf("invalid dependency type %q", d.Type)
	}
	activityPair := d.ActivityPredecessorID != nil || d.ActivitySuccessorID != nil
	taskPair := d.TaskPredecessorID != nil || d.TaskSuccessorID != nil
	if activityPair == taskPair {
		return fmt.Errorf("dependency must set exactly one endpoint pair")
	}
	if activityPair && (d.ActivityPredecessorID == nil || d.ActivitySuccessorID == nil) {
		return fmt.Errorf("activity dependency requires both endpoints")
	}
	if taskPair && (d.TaskPredecessorID == nil || d.TaskSuccessorID == nil) {
		return fmt.Errorf("task dependency requires both endpoints")
	}
	return nil
}
