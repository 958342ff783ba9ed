package status

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/core"
)

// atRiskMargin is the allowed gap between expected and actual progress
// before an in-progress item is flagged.
const atRiskMargin = 5

// minimalProgressFloor flags items that have consumed working time but
// report almost no progress.
const minimalProgressFloor = 10

// Tracking is a derived tracking status with its reason.
type Tracking struct {
	Status core.TrackingStatus `json:"status"`
	Reason string              `json:"reason"`
}

// DeriveTracking classifies schedule health from status, dates, and actual
// progress against the working calendar.
func DeriveTracking(
	ctx context.Context,
	pattern *calendar.Pattern,
	status core.Status,
	start, end time.Time,
	actualProgress int,
	now time.Time,
) (*Tracking, error) {
	switch status {
	case core.StatusOnHold:
		return &Tracking{Status: core.TrackingAtRisk, Reason: "item is on hold"}, nil
	case core.StatusNotStarted, core.StatusCompleted, core.StatusVerified:
		return &Tracking{Status: core.TrackingOnTrack, Reason: ""}, nil
	}
	if now.After(end) {
		return &Tracking{Status: core.TrackingOffTrack, Reason: "past due"}, nil
	}
	total, err := pattern.WorkingDuration(ctx, start, end)
	if err != nil {
		return nil, err
	}
	elapsed, err := pattern.WorkingDuration(ctx, start, now)
	if err != nil {
		return nil, err
	}
	expected := 0.0
	if total > 0 {
		expected = 100 * elapsed / total
	}
	if expected > float64(actualProgress)+atRiskMargin {
		return &Tracking{
			Status: core.TrackingAtRisk,
			Reason: fmt.Sprintf("expected %.0f%% complete, actual %d%%", expected, actualProgress),
		}, nil
	}
	if actualProgress < minimalProgressFloor && elapsed > 0 {
		return &Tracking{Status: core.TrackingAtRisk, Reason: "minimal progress"}, nil
	}
	return &Tracking{Status: core.TrackingOnTrack, Reason: ""}, nil
}
