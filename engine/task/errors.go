package task

import "errors"

// ErrTaskNotFound is returned when a task is not found in the repository
var ErrTaskNotFound = errors.New("task not found")
