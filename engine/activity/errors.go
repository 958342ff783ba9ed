package activity

import "errors"

// ErrActivityNotFound is returned when an activity is not found in the repository
var ErrActivityNotFound = errors.New("activity not found")
