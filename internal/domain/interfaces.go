package domain

import (
	"context"
	"time"

	"roombook/internal/database"
	"roombook/internal/models"
)

// Repository is the persistent slot/booking store. All mutation of slots and
// bookings goes through CreateBookingWithSlot, CancelBooking, InsertSlots and
// DeleteUnbookedSlots; nothing else writes to those tables.
type Repository interface {
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	ListActiveRooms(ctx context.Context) ([]*models.Room, error)
	DeactivateRoom(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserPolicy(ctx context.Context, id string, maxBookingDuration int64, canBookMultipleRooms bool) error

	InsertSlots(ctx context.Context, slots []models.Slot) (int, error)
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
	ListAvailableSlots(ctx context.Context, filter database.SlotFilter) ([]models.Slot, error)
	ListRoomSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error)
	DeleteUnbookedSlots(ctx context.Context, roomID string, startDate, endDate time.Time) (int64, error)
	GetBookingSlots(ctx context.Context, bookingID string) ([]models.Slot, error)

	CreateBookingWithSlot(ctx context.Context, booking *models.Booking, slotID string) error
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListUserBookingsOnDate(ctx context.Context, userID string, date time.Time, status string) ([]*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	ListRoomBookings(ctx context.Context, roomID string, startDate, endDate *time.Time) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error)
}

// AvailabilityCache caches per-room/per-date slot views. A nil slice with a
// nil error means miss. Implementations must treat errors as degradable: the
// caller always falls back to the store.
type AvailabilityCache interface {
	GetSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error)
	SetSlots(ctx context.Context, roomID string, date time.Time, slots []models.Slot) error
	Invalidate(ctx context.Context, roomID string, date time.Time) error
	InvalidateRoom(ctx context.Context, roomID string) error
}

var _ Repository = (*database.DB)(nil)

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID, roomID, slotID string, date time.Time, startTime, endTime string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID, role string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID, userID, role string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	ListRoomBookings(ctx context.Context, roomID, userID, role string, startDate, endDate *time.Time) ([]*models.Booking, error)
}

type SlotService interface {
	GenerateSlots(ctx context.Context, roomID, userID, role string, startDate, endDate time.Time, durationMinutes int, dailyStart, dailyEnd string) (int, error)
	ListAvailableSlots(ctx context.Context, filter database.SlotFilter) ([]models.Slot, error)
	ListRoomSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error)
	DeleteSlots(ctx context.Context, roomID, userID, role string, startDate, endDate time.Time) (int64, error)
}

type RoomService interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]*models.Room, error)
	DeactivateRoom(ctx context.Context, id, userID, role string) error
}
