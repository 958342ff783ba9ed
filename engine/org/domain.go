package org

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// WorkBlock is a single intra-day working interval in wall-clock "HH:MM".
// Blocks are ordered and non-overlapping; End is exclusive.
type WorkBlock struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Minutes returns the block boundaries as minutes since midnight.
func (b WorkBlock) Minutes() (start, end int, err error) {
	start, err = parseClock(b.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid block start %q: %w", b.Start, err)
	}
	end, err = parseClock(b.End)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid block end %q: %w", b.End, err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("block end %q not after start %q", b.End, b.Start)
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute")
	}
	// "24:00" is the exclusive end of a full-day block
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid hour")
	}
	return h*60 + m, nil
}

// Organization is a tenant. It owns users, projects, and holidays, and carries
// the working-time configuration consumed by the calendar.
type Organization struct {
	ID       core.ID `json:"id"         db:"id"`
	Name     string  `json:"name"       db:"name"`
	Timezone string  `json:"timezone"   db:"timezone"`
	// WorkingDaysOfWeek is a seven-character inclusion mask, positions Sun..Sat.
	WorkingDaysOfWeek string      `json:"workingDaysOfWeek" db:"working_days_of_week"`
	WorkingHours      []WorkBlock `json:"workingHours"      db:"working_hours"`
	CreatedAt         time.Time   `json:"createdAt"  db:"created_at"`
	UpdatedAt         time.Time   `json:"updatedAt"  db:"updated_at"`
}

// Validate checks the organisation's working-time configuration.
func (o *Organization) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("organization name is required")
	}
	if _, err := time.LoadLocation(o.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", o.Timezone, err)
	}
	if len(o.WorkingDaysOfWeek) != 7 {
		return fmt.Errorf("workingDaysOfWeek must be a seven-character mask")
	}
	if len(o.WorkingHours) == 0 {
		return fmt.Errorf("at least one working-hours block is required")
	}
	prevEnd := -1
	for _, block := range o.WorkingHours {
		start, end, err := block.Minutes()
		if err != nil {
			return err
		}
		if start < prevEnd {
			return fmt.Errorf("working-hours blocks must be ordered and non-overlapping")
		}
		prevEnd = end
	}
	return nil
}

// WorksOnWeekday reports whether the mask includes the given weekday.
// Any character other than '0', '-', or ' ' marks the day as working.
func (o *Organization) WorksOnWeekday(d time.Weekday) bool {
	if len(o.WorkingDaysOfWeek) != 7 {
		return false
	}
	switch o.WorkingDaysOfWeek[int(d)] {
	case '0', '-', ' ':
		return false
	default:
		return true
	}
}

// Holiday marks a full calendar day as non-working for one organisation.
type Holiday struct {
	ID          core.ID   `json:"id"          db:"id"`
	OrgID       core.ID   `json:"orgId"       db:"org_id"`
	Date        time.Time `json:"date"        db:"date"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
