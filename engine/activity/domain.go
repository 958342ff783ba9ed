package activity

import (
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// ChecklistItem is one entry of an activity's verification checklist.
type ChecklistItem struct {
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// Activity is a mid-level work package grouping tasks within a project. Its
// dates act as an envelope around its children; duration is derived from the
// stored dates, not carried as a field.
type Activity struct {
	ID                 core.ID             `json:"id"                 db:"id"`
	ProjectID          core.ID             `json:"projectId"          db:"project_id"`
	Name               string              `json:"name"               db:"name"`
	Description        string              `json:"description"        db:"description"`
	StartDate          time.Time           `json:"startDate"          db:"start_date"`
	EndDate            time.Time           `json:"endDate"            db:"end_date"`
	Status             core.Status         `json:"status"             db:"status"`
	TrackingStatus     core.TrackingStatus `json:"trackingStatus"     db:"tracking_status"`
	ProgressPercentage int                 `json:"progressPercentage" db:"progress_percentage"`
	Checklist          []ChecklistItem     `json:"checklist,omitempty" db:"checklist"`
	CreatedAt          time.Time           `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time           `json:"updatedAt"          db:"updated_at"`
}

// Validate checks the activity's date invariant and required fields
func (a *Activity) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("activity name is required")
	}
	if a.ProjectID.IsZero() {
		return fmt.Errorf("activity project is required")
	}
	if a.StartDate.IsZero() || a.EndDate.IsZero() {
		return fmt.Errorf("activity dates are required")
	}
	if a.EndDate.Before(a.StartDate) {
		return fmt.Errorf("activity end date must not precede start date")
	}
	return nil
}

// DurationHours returns the wall-clock span of the stored dates in hours.
func (a *Activity) DurationHours() float64 {
	return a.EndDate.Sub(a.StartDate).Hours()
}
