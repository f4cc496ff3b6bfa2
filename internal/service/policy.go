package service

import (
	"time"

	"roombook/internal/database"
	"roombook/internal/models"
)

// BookingRequest is the shape of a slot-booking attempt as seen by the
// policy evaluator and the transaction coordinator.
type BookingRequest struct {
	UserID    string
	RoomID    string
	SlotID    string
	Date      time.Time
	StartTime string // HH:mm
	EndTime   string // HH:mm
}

// EvaluateBooking validates a request against the user's booking policy and
// their existing confirmed bookings for the requested date. Pure: no side
// effects and no slot state; slot availability is the transaction
// coordinator's job, checked under stronger isolation.
//
// Checks run in order: time range shape, past date, duration limit, then
// self-overlap (skipped when the user may hold concurrent multi-room
// bookings).
func EvaluateBooking(req BookingRequest, user *models.User, existing []*models.Booking, now time.Time) error {
	if req.StartTime >= req.EndTime {
		return database.ErrInvalidTimeRange
	}

	if req.Date.Before(models.Midnight(now)) {
		return database.ErrPastDate
	}

	duration, err := models.DurationMinutes(req.StartTime, req.EndTime)
	if err != nil {
		return database.ErrInvalidTimeRange
	}
	if int64(duration) > user.MaxBookingDuration {
		return database.ErrDurationLimit
	}

	if !user.CanBookMultipleRooms {
		reqDay := req.Date.Format(models.DateLayout)
		for _, b := range existing {
			if b.Status != models.StatusConfirmed {
				continue
			}
			if b.Date.Format(models.DateLayout) != reqDay {
				continue
			}
			// Half-open intervals: a touching boundary is not a conflict.
			if models.Overlaps(req.StartTime, req.EndTime, b.StartTime, b.EndTime) {
				return database.ErrUserTimeConflict
			}
		}
	}

	return nil
}
