package models

import "time"

// Booking owns its slots via the slots' booking_id back-reference. The model
// supports several slots per booking; the create path books exactly one.
type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"room_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"` // HH:mm
	EndTime   string    `json:"end_time"`   // HH:mm
	Status    string    `json:"status"`     // pending, confirmed, cancelled
	Slots     []Slot    `json:"slots,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}
