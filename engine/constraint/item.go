package constraint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/task"
)

// scheduledItem is the uniform view of an activity or task the validator
// operates on.
type scheduledItem struct {
	ID            core.ID
	Type          core.ItemType
	ProjectID     core.ID
	Start         time.Time
	End           time.Time
	DurationHours float64
}

// itemResolver loads activities and tasks behind the uniform item view and
// writes dates back to the right table.
type itemResolver struct {
	activities activity.Repository
	tasks      task.Repository
}

func (r *itemResolver) resolve(ctx context.Context, itemType core.ItemType, itemID core.ID) (*scheduledItem, error) {
	switch itemType {
	case core.ItemTypeActivity:
		a, err := r.activities.GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, activity.ErrActivityNotFound) {
				return nil, core.NewError(ErrItemNotFound, core.KindNotFound, map[string]any{"itemId": itemID})
			}
			return nil, err
		}
		return &scheduledItem{
			ID:            a.ID,
			Type:          core.ItemTypeActivity,
			ProjectID:     a.ProjectID,
			Start:         a.StartDate,
			End:           a.EndDate,
			DurationHours: a.DurationHours(),
		}, nil
	case core.ItemTypeTask:
		t, err := r.tasks.GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, task.ErrTaskNotFound) {
				return nil, core.NewError(ErrItemNotFound, core.KindNotFound, map[string]any{"itemId": itemID})
			}
			return nil, err
		}
		a, err := r.activities.GetByID(ctx, t.ActivityID)
		if err != nil {
			return nil, fmt.Errorf("resolve task activity: %w", err)
		}
		return &scheduledItem{
			ID:            t.ID,
			Type:          core.ItemTypeTask,
			ProjectID:     a.ProjectID,
			Start:         t.StartDate,
			End:           t.EndDate,
			DurationHours: t.DurationHours,
		}, nil
	default:
		return nil, core.NewError(fmt.Errorf("invalid item type %q", itemType), core.KindValidationFailed, nil)
	}
}

func (r *itemResolver) writeDates(ctx context.Context, itemType core.ItemType, itemID core.ID, start, end time.Time) error {
	if itemType == core.ItemTypeActivity {
		return r.activities.UpdateDates(ctx, itemID, start, end)
	}
	return r.tasks.UpdateDates(ctx, itemID, start, end)
}
