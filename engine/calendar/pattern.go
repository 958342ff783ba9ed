package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/org"
)

// SnapDirection selects which way SnapToWorkingTime moves an instant.
type SnapDirection int

const (
	SnapForward SnapDirection = iota
	SnapBackward
)

// maxWorkingHours caps a single AddWorkingTime call at one leap year of
// round-the-clock working time.
const maxWorkingHours = 366 * 24

// maxScanDays bounds the wall-clock scan so a calendar with no working time
// terminates with ErrScheduleOverflow instead of spinning.
const maxScanDays = 3700

type block struct {
	startMin int
	endMin   int
}

// Pattern is an organisation's working-time configuration resolved into a
// form the arithmetic can consume: location, weekday mask, parsed blocks, and
// the holiday date-set keyed by local calendar day.
type Pattern struct {
	OrgID    core.ID
	Location *time.Location
	weekdays [7]bool
	blocks   []block
	holidays map[string]struct{}
}

// NewPattern resolves an organisation and its holidays into a Pattern.
func NewPattern(o *org.Organization, holidays []*org.Holiday) (*Pattern, error) {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", o.Timezone, err)
	}
	p := &Pattern{
		OrgID:    o.ID,
		Location: loc,
		holidays: make(map[string]struct{}, len(holidays)),
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		p.weekdays[int(d)] = o.WorksOnWeekday(d)
	}
	for _, b := range o.WorkingHours {
		start, end, err := b.Minutes()
		if err != nil {
			return nil, err
		}
		p.blocks = append(p.blocks, block{startMin: start, endMin: end})
	}
	if len(p.blocks) == 0 {
		return nil, fmt.Errorf("organization %s has no working-hours blocks", o.ID)
	}
	for _, h := range holidays {
		// A holiday's Date is a calendar day; key it by that day as stored.
		p.holidays[h.Date.Format(time.DateOnly)] = struct{}{}
	}
	return p, nil
}

// IsHoliday reports whether the instant falls on a holiday, compared by
// calendar day in the organisation timezone.
func (p *Pattern) IsHoliday(t time.Time) bool {
	_, ok := p.holidays[t.In(p.Location).Format(time.DateOnly)]
	return ok
}

// IsWorkingDay reports whether the weekday mask includes the instant's local
// weekday and the day is not a holiday.
func (p *Pattern) IsWorkingDay(t time.Time) bool {
	local := t.In(p.Location)
	return p.weekdays[int(local.Weekday())] && !p.IsHoliday(t)
}

// IsWorkingTime reports whether the local wall-clock falls inside some
// working block. The day itself is not consulted; see IsWorkingInstant.
func (p *Pattern) IsWorkingTime(t time.Time) bool {
	local := t.In(p.Location)
	minute := local.Hour()*60 + local.Minute()
	for _, b := range p.blocks {
		if minute >= b.startMin && minute < b.endMin {
			return true
		}
	}
	return false
}

// IsWorkingInstant reports whether the instant is inside working time on a
// working day.
func (p *Pattern) IsWorkingInstant(t time.Time) bool {
	return p.IsWorkingDay(t) && p.IsWorkingTime(t)
}

// TotalWorkingHoursPerDay returns the summed block lengths in hours.
func (p *Pattern) TotalWorkingHoursPerDay() float64 {
	total := 0
	for _, b := range p.blocks {
		total += b.endMin - b.startMin
	}
	return float64(total) / 60
}

// blockBounds materialises a block's boundaries on the local day of t.
func (p *Pattern) blockBounds(t time.Time, b block) (start, end time.Time) {
	local := t.In(p.Location)
	y, m, d := local.Date()
	start = time.Date(y, m, d, b.startMin/60, b.startMin%60, 0, 0, p.Location)
	end = time.Date(y, m, d, b.endMin/60, b.endMin%60, 0, 0, p.Location)
	return start, end
}

// nextLocalMidnight returns 00:00 of the day after t in the pattern location.
func (p *Pattern) nextLocalMidnight(t time.Time) time.Time {
	local := t.In(p.Location)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, p.Location)
}

// AddWorkingTime advances start by hours of cumulative working time, skipping
// non-working instants. A start inside a working block consumes to the end of
// that block first; a start outside advances to the next working instant.
// Exceeding the safety cap returns ErrScheduleOverflow.
func (p *Pattern) AddWorkingTime(ctx context.Context, start time.Time, hours float64) (time.Time, error) {
	if hours <= 0 {
		return start, nil
	}
	if hours > maxWorkingHours {
		return time.Time{}, fmt.Errorf("%w: %v working hours exceeds cap", ErrScheduleOverflow, hours)
	}
	remaining := time.Duration(hours * float64(time.Hour))
	cur := start
	for day := 0; day < maxScanDays; day++ {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		dayStart := cur
		if p.IsWorkingDay(cur) {
			for _, b := range p.blocks {
				blockStart, blockEnd := p.blockBounds(dayStart, b)
				if !cur.Before(blockEnd) {
					continue
				}
				pos := cur
				if pos.Before(blockStart) {
					pos = blockStart
				}
				avail := blockEnd.Sub(pos)
				if avail >= remaining {
					return pos.Add(remaining), nil
				}
				remaining -= avail
				cur = blockEnd
			}
		}
		cur = p.nextLocalMidnight(dayStart)
	}
	return time.Time{}, fmt.Errorf("%w: no working time found within %d days", ErrScheduleOverflow, maxScanDays)
}

// WorkingDuration returns the hours of overlap between [a, b] and the union
// of working-time intervals. It returns 0 when a >= b.
func (p *Pattern) WorkingDuration(ctx context.Context, a, b time.Time) (float64, error) {
	if !a.Before(b) {
		return 0, nil
	}
	var total time.Duration
	cur := a
	for day := 0; day < maxScanDays && cur.Before(b); day++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if p.IsWorkingDay(cur) {
			for _, blk := range p.blocks {
				blockStart, blockEnd := p.blockBounds(cur, blk)
				lo := maxTime(blockStart, a)
				hi := minTime(blockEnd, b)
				if lo.Before(hi) {
					total += hi.Sub(lo)
				}
			}
		}
		cur = p.nextLocalMidnight(cur)
	}
	return total.Hours(), nil
}

// WorkingDaysInRange returns the working calendar days between a and b
// inclusive, as local midnights in the organisation timezone.
func (p *Pattern) WorkingDaysInRange(ctx context.Context, a, b time.Time) ([]time.Time, error) {
	if b.Before(a) {
		return nil, nil
	}
	var days []time.Time
	local := a.In(p.Location)
	y, m, d := local.Date()
	cur := time.Date(y, m, d, 0, 0, 0, 0, p.Location)
	for day := 0; day < maxScanDays && !cur.After(b); day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.IsWorkingDay(cur) {
			days = append(days, cur)
		}
		cur = p.nextLocalMidnight(cur)
	}
	return days, nil
}

// SnapToWorkingTime moves the instant to the nearest working instant in the
// given direction. An instant already inside working time is returned as is.
// Snapping backward lands on a block end, the supremum of the preceding
// working interval.
func (p *Pattern) SnapToWorkingTime(ctx context.Context, t time.Time, dir SnapDirection) (time.Time, error) {
	if p.IsWorkingInstant(t) {
		return t, nil
	}
	if dir == SnapForward {
		return p.snapForward(ctx, t)
	}
	return p.snapBackward(ctx, t)
}

func (p *Pattern) snapForward(ctx context.Context, t time.Time) (time.Time, error) {
	cur := t
	for day := 0; day < maxScanDays; day++ {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		if p.IsWorkingDay(cur) {
			for _, b := range p.blocks {
				blockStart, blockEnd := p.blockBounds(cur, b)
				if cur.Before(blockStart) {
					return blockStart, nil
				}
				if cur.Before(blockEnd) {
					return cur, nil
				}
			}
		}
		cur = p.nextLocalMidnight(cur)
	}
	return time.Time{}, fmt.Errorf("%w: no working time found within %d days", ErrScheduleOverflow, maxScanDays)
}

func (p *Pattern) snapBackward(ctx context.Context, t time.Time) (time.Time, error) {
	cur := t
	for day := 0; day < maxScanDays; day++ {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		if p.IsWorkingDay(cur) {
			for i := len(p.blocks) - 1; i >= 0; i-- {
				blockStart, blockEnd := p.blockBounds(cur, p.blocks[i])
				if cur.After(blockEnd) || cur.Equal(blockEnd) {
					return blockEnd, nil
				}
				if cur.After(blockStart) {
					return cur, nil
				}
			}
		}
		local := cur.In(p.Location)
		y, m, d := local.Date()
		// End of the previous day; block scan above resolves the exact instant.
		cur = time.Date(y, m, d, 0, 0, 0, 0, p.Location).Add(-time.Nanosecond)
	}
	return time.Time{}, fmt.Errorf("%w: no working time found within %d days", ErrScheduleOverflow, maxScanDays)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
