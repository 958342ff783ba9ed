package constraint

import (
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Type is one of the eight manual date-constraint kinds.
type Type string

const (
	TypeASAP            Type = "ASAP"
	TypeALAP            Type = "ALAP"
	TypeMustStartOn     Type = "MUST_START_ON"
	TypeMustFinishOn    Type = "MUST_FINISH_ON"
	TypeStartNoEarlier  Type = "START_NO_EARLIER"
	TypeStartNoLater    Type = "START_NO_LATER"
	TypeFinishNoEarlier Type = "FINISH_NO_EARLIER"
	TypeFinishNoLater   Type = "FINISH_NO_LATER"
)

// IsValid checks if the constraint type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeASAP, TypeALAP, TypeMustStartOn, TypeMustFinishOn,
		TypeStartNoEarlier, TypeStartNoLater, TypeFinishNoEarlier, TypeFinishNoLater:
		return true
	default:
		return false
	}
}

// RequiresDate reports whether the kind carries a constraint date. ASAP and
// ALAP are soft scheduling preferences without one.
func (t Type) RequiresDate() bool {
	return t != TypeASAP && t != TypeALAP
}

// DateConstraint associates an activity or task with a manual date rule.
type DateConstraint struct {
	ID        core.ID       `json:"id"        db:"id"`
	ProjectID core.ID       `json:"projectId" db:"project_id"`
	ItemID    core.ID       `json:"itemId"    db:"item_id"`
	ItemType  core.ItemType `json:"itemType"  db:"item_type"`
	Type      Type          `json:"constraintType" db:"constraint_type"`
	Date      *time.Time    `json:"constraintDate,omitempty" db:"constraint_date"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

// Validate checks the constraint's shape
func (c *DateConstraint) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid constraint type %q", c.Type)
	}
	if !c.ItemType.IsValid() {
		return fmt.Errorf("invalid item type %q", c.ItemType)
	}
	if c.ItemID.IsZero() {
		return fmt.Errorf("constraint item is required")
	}
	if c.Type.RequiresDate() && (c.Date == nil || c.Date.IsZero()) {
		return fmt.Errorf("constraint type %s requires a date", c.Type)
	}
	return nil
}

// ViolationKind classifies a date-edit violation.
type ViolationKind string

const (
	ViolationInvalidDuration     ViolationKind = "INVALID_DURATION"
	ViolationHardConstraint      ViolationKind = "HARD_CONSTRAINT"
	ViolationPredecessorConflict ViolationKind = "PREDECESSOR_CONFLICT"
	ViolationSuccessorConflict   ViolationKind = "SUCCESSOR_CONFLICT"
	ViolationCalendarConflict    ViolationKind = "CALENDAR_CONFLICT"
)

// Violation describes one reason a date edit is rejected, with a suggested
// date where one is computable.
type Violation struct {
	Kind           ViolationKind `json:"kind"`
	Message        string        `json:"message"`
	AffectedItemID *core.ID      `json:"affectedItemId,omitempty"`
	SuggestedDate  *time.Time    `json:"suggestedDate,omitempty"`
}

// ValidationResult accumulates all violations of one proposed edit.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// EditResult reports whether an ApplyDateEdit wrote, plus the validation that
// backed the decision. A forced write still carries its violations for audit.
type EditResult struct {
	Success    bool             `json:"success"`
	Validation ValidationResult `json:"validation"`
}

// DateRange is the valid window for an item's start and end dates.
type DateRange struct {
	MinStart   time.Time   `json:"minStart"`
	MaxStart   time.Time   `json:"maxStart"`
	MinEnd     time.Time   `json:"minEnd"`
	MaxEnd     time.Time   `json:"maxEnd"`
	Violations []Violation `json:"violations,omitempty"`
}

// DateChange records one downstream date write made by propagation.
type DateChange struct {
	ItemID   core.ID       `json:"itemId"`
	ItemType core.ItemType `json:"itemType"`
	OldStart time.Time     `json:"oldStart"`
	OldEnd   time.Time     `json:"oldEnd"`
	NewStart time.Time     `json:"newStart"`
	NewEnd   time.Time     `json:"newEnd"`
}
