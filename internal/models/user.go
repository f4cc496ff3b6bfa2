package models

import "time"

// User carries the per-user booking policy. The policy attributes are owned
// by an external permissions workflow; the engine only reads them.
type User struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	Role                 string    `json:"role"` // user, admin
	MaxBookingDuration   int64     `json:"max_booking_duration"` // minutes
	CanBookMultipleRooms bool      `json:"can_book_multiple_rooms"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
