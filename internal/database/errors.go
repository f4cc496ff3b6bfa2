package database

import "errors"

// Validation and policy failures, non-retryable.
var (
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrPastDate         = errors.New("cannot book for a past date")
	ErrDateTooFar       = errors.New("booking date is too far in the future")
	ErrDurationLimit    = errors.New("booking duration exceeds user limit")
)

// Conflicts with existing state, non-retryable without changing input.
var (
	ErrUserTimeConflict  = errors.New("user already has a booking at this time")
	ErrSlotAlreadyBooked = errors.New("slot is already booked")
)

// Missing resources.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Business-rule rejections.
var (
	ErrRoomInactive     = errors.New("room is not active")
	ErrForbidden        = errors.New("operation not permitted for this user")
	ErrPastCancellation = errors.New("cannot cancel a past booking")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// Transient failures. Callers may retry the whole operation from scratch;
// the store never retries internally.
var (
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrTransactionTimeout     = errors.New("booking transaction timed out")
)

// IsRetryable reports whether the caller may safely re-run the operation
// after re-reading slot state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrTransactionTimeout)
}
