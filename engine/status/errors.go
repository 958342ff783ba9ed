package status

import "errors"

// ErrInvalidTransition is returned when a status transition is not in the table
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrVerificationRole is returned when a non PM/PMO role attempts a
// verification transition
var ErrVerificationRole = errors.New("verification requires PM or PMO role")

// ErrActivityVerifyBlocked is returned when an activity cannot be verified
// because child tasks are not all verified
var ErrActivityVerifyBlocked = errors.New("activity has unverified tasks")

// ErrProgressNotEditable is returned when progress is edited outside
// IN_PROGRESS
var ErrProgressNotEditable = errors.New("progress is editable only while in progress")
