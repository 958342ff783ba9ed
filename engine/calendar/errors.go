package calendar

import "errors"

// ErrScheduleOverflow is returned when working-time arithmetic exceeds its
// safety cap without terminating
var ErrScheduleOverflow = errors.New("schedule overflow")
