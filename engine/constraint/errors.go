package constraint

import "errors"

// ErrConstraintNotFound is returned when a constraint is not found in the repository
var ErrConstraintNotFound = errors.New("constraint not found")

// ErrItemNotFound is returned when the constrained item does not exist
var ErrItemNotFound = errors.New("constrained item not found")
