package project

import "errors"

// ErrProjectNotFound is returned when a project is not found in the repository
var ErrProjectNotFound = errors.New("project not found")

// ErrNotMember is returned when a user is neither owner nor member of a project
var ErrNotMember = errors.New("user is not a member of the project")
