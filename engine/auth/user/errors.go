package user

import "errors"

// ErrUserNotFound is returned when a user is not found in the repository
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when the email is already taken
var ErrEmailExists = errors.New("email already exists")
