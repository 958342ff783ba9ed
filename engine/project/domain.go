package project

import (
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Project is the top level of the work breakdown. It belongs to one
// organisation, has one owner, and zero or more members.
type Project struct {
	ID                 core.ID     `json:"id"                 db:"id"`
	OrgID              core.ID     `json:"orgId"              db:"org_id"`
	OwnerID            core.ID     `json:"ownerId"            db:"owner_id"`
	Name               string      `json:"name"               db:"name"`
	Description        string      `json:"description"        db:"description"`
	StartDate          time.Time   `json:"startDate"          db:"start_date"`
	Timezone           string      `json:"timezone"           db:"timezone"`
	Status             core.Status `json:"status"             db:"status"`
	ProgressPercentage int         `json:"progressPercentage" db:"progress_percentage"`
	CreatedAt          time.Time   `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt"          db:"updated_at"`
}

// Validate checks the project's required fields
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.OrgID.IsZero() {
		return fmt.Errorf("project organization is required")
	}
	if p.OwnerID.IsZero() {
		return fmt.Errorf("project owner is required")
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("project start date is required")
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
		}
	}
	return nil
}
