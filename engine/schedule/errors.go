package schedule

import "errors"

// ErrGraphCycle is an invariant breach: the persisted dependency graph
// contains a cycle that edge validation should have rejected
var ErrGraphCycle = errors.New("dependency graph contains a cycle")
