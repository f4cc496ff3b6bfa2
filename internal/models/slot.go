package models

import "time"

// Slot is one bookable interval of a room on a calendar day. BookingID is a
// weak back-reference into bookings; the Booking row is the owning record.
// Invariant: IsBooked is false iff BookingID is empty.
type Slot struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"` // HH:mm
	EndTime   string    `json:"end_time"`   // HH:mm
	IsBooked  bool      `json:"is_booked"`
	BookingID string    `json:"booking_id,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
