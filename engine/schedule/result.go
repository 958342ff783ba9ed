package schedule

import (
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Item is the computed schedule of a single activity or task.
type Item struct {
	ItemID        core.ID       `json:"itemId"`
	ItemType      core.ItemType `json:"itemType"`
	Name          string        `json:"name"`
	DurationHours float64       `json:"durationHours"`
	EarlyStart    time.Time     `json:"earlyStart"`
	EarlyEnd      time.Time     `json:"earlyEnd"`
	LateStart     time.Time     `json:"lateStart"`
	LateEnd       time.Time     `json:"lateEnd"`
	SlackDays     float64       `json:"slackDays"`
	IsCritical    bool          `json:"isCritical"`
}

// ProjectSchedule is the full CPM result for one project. It is a pure value;
// the core never persists it.
type ProjectSchedule struct {
	ProjectID         core.ID   `json:"projectId"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	TotalDurationDays float64   `json:"totalDurationDays"`
	Items             []Item    `json:"items"`
	CriticalPath      []core.ID `json:"criticalPath"`
	IsFeasible        bool      `json:"isFeasible"`
	Warnings          []string  `json:"warnings"`
}
