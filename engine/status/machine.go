package status

import (
	"github.com/masar-hq/masar/engine/core"
)

// transitions is the allowed status transition table, including shortcuts.
var transitions = map[core.Status][]core.Status{
	core.StatusNotStarted: {core.StatusInProgress, core.StatusCompleted},
	core.StatusInProgress: {core.StatusOnHold, core.StatusCompleted},
	core.StatusOnHold:     {core.StatusInProgress},
	core.StatusCompleted:  {core.StatusVerified},
	core.StatusVerified:   {core.StatusInProgress},
}

// verificationGated marks the transitions only PM and PMO roles may perform.
func verificationGated(from, to core.Status) bool {
	if from == core.StatusCompleted && to == core.StatusVerified {
		return true
	}
	// Rework: pulling a verified item back into progress
	if from == core.StatusVerified && to == core.StatusInProgress {
		return true
	}
	return false
}

// CanTransition reports whether the role may move an item from one status to
// another.
func CanTransition(from, to core.Status, role core.Role) error {
	allowed := false
	for _, next := range transitions[from] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return core.NewError(ErrInvalidTransition, core.KindInvalidTransition, map[string]any{
			"from": from,
			"to":   to,
		})
	}
	if verificationGated(from, to) && !role.CanVerify() {
		return core.NewError(ErrVerificationRole, core.KindForbidden, map[string]any{
			"role": role,
		})
	}
	return nil
}

// progressAfterTransition applies the completion side effect: entering
// COMPLETED or VERIFIED forces progress to 100.
func progressAfterTransition(to core.Status, current int) int {
	if to == core.StatusCompleted || to == core.StatusVerified {
		return 100
	}
	return current
}

// clampProgress bounds a progress value to [0, 100].
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
