package task

import (
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Task is a leaf work item within an activity. Duration is an intrinsic
// number of working hours, unlike activities whose span derives from dates.
type Task struct {
	ID                 core.ID             `json:"id"                 db:"id"`
	ActivityID         core.ID             `json:"activityId"         db:"activity_id"`
	Name               string              `json:"name"               db:"name"`
	Description        string              `json:"description"        db:"description"`
	StartDate          time.Time           `json:"startDate"          db:"start_date"`
	EndDate            time.Time           `json:"endDate"            db:"end_date"`
	DurationHours      float64             `json:"durationHours"      db:"duration_hours"`
	AssigneeID         *core.ID            `json:"assigneeId,omitempty" db:"assignee_id"`
	Status             core.Status         `json:"status"             db:"status"`
	TrackingStatus     core.TrackingStatus `json:"trackingStatus"     db:"tracking_status"`
	ProgressPercentage int                 `json:"progressPercentage" db:"progress_percentage"`
	CreatedAt          time.Time           `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time           `json:"updatedAt"          db:"updated_at"`
}

// Validate checks the task's invariants: positive duration and ordered dates
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if t.ActivityID.IsZero() {
		return fmt.Errorf("task activity is required")
	}
	if t.DurationHours <= 0 {
		return fmt.Errorf("task duration must be positive")
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("task dates are required")
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("task end date must not precede start date")
	}
	return nil
}
