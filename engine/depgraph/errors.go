package depgraph

import "errors"

// ErrDependencyNotFound is returned when a dependency is not found in the repository
var ErrDependencyNotFound = errors.New("dependency not found")

// ErrSelfDependency is returned when an edge would link an item to itself
var ErrSelfDependency = errors.New("item cannot depend on itself")

// ErrCycleDetected is returned when an edge would close a cycle
var ErrCycleDetected = errors.New("dependency would create a cycle")

// ErrEndpointNotFound is returned when an edge endpoint does not exist
var ErrEndpointNotFound = errors.New("dependency endpoint not found")
