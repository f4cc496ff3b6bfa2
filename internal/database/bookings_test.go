package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"roombook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedRoomWithSlots(t *testing.T, db *DB, roomID string, starts ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.CreateRoom(ctx, &models.Room{
		ID: roomID, Name: "Room " + roomID, Capacity: 4, OwnerID: "owner-1", IsActive: true,
	}))

	date, err := models.ParseDate("2026-09-15")
	require.NoError(t, err)

	slots := make([]models.Slot, 0, len(starts))
	for _, start := range starts {
		endMin, err := models.MinuteOfDay(start)
		require.NoError(t, err)
		slots = append(slots, models.Slot{
			ID:        roomID + "-" + start,
			RoomID:    roomID,
			Date:      date,
			StartTime: start,
			EndTime:   models.FormatMinute(endMin + 60),
		})
	}
	n, err := db.InsertSlots(ctx, slots)
	require.NoError(t, err)
	require.Equal(t, len(starts), n)
}

func TestCreateBookingWithSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedRoomWithSlots(t, db, "room-1", "09:00", "10:00")
	date, _ := models.ParseDate("2026-09-15")

	booking := &models.Booking{
		UserID: "user-1", RoomID: "room-1",
		Date: date, StartTime: "09:00", EndTime: "10:00",
	}
	err := db.CreateBookingWithSlot(ctx, booking, "room-1-09:00")
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.StatusConfirmed, booking.Status)
	assert.Equal(t, int64(1), booking.Version)
	require.Len(t, booking.Slots, 1)
	assert.Equal(t, "room-1-09:00", booking.Slots[0].ID)

	// Slot is claimed and version incremented.
	slot, err := db.GetSlot(ctx, "room-1-09:00")
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, booking.ID, slot.BookingID)
	assert.Equal(t, int64(2), slot.Version)

	// Second attempt on the same slot fails without touching state.
	again := &models.Booking{
		UserID: "user-2", RoomID: "room-1",
		Date: date, StartTime: "09:00", EndTime: "10:00",
	}
	err = db.CreateBookingWithSlot(ctx, again, "room-1-09:00")
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	_, err = db.GetBooking(ctx, again.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	// The free neighbour slot is unaffected.
	free, err := db.GetSlot(ctx, "room-1-10:00")
	require.NoError(t, err)
	assert.False(t, free.IsBooked)
}

func TestCreateBookingMissingSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	date, _ := models.ParseDate("2026-09-15")

	booking := &models.Booking{UserID: "user-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"}
	err := db.CreateBookingWithSlot(ctx, booking, "no-such-slot")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCreateBookingExpiredDeadline(t *testing.T) {
	db := newTestDB(t)
	seedRoomWithSlots(t, db, "room-1", "09:00")
	date, _ := models.ParseDate("2026-09-15")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	booking := &models.Booking{UserID: "user-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"}
	err := db.CreateBookingWithSlot(ctx, booking, "room-1-09:00")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionTimeout)
	assert.True(t, IsRetryable(err))

	// Nothing committed, slot still free.
	slot, err := db.GetSlot(context.Background(), "room-1-09:00")
	require.NoError(t, err)
	assert.False(t, slot.IsBooked)
	assert.Equal(t, int64(1), slot.Version)
}

func TestCancelBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedRoomWithSlots(t, db, "room-1", "09:00")
	date, _ := models.ParseDate("2026-09-15")

	booking := &models.Booking{UserID: "user-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, db.CreateBookingWithSlot(ctx, booking, "room-1-09:00"))

	cancelled, err := db.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(2), cancelled.Version)

	// Slot is released and versioned again.
	slot, err := db.GetSlot(ctx, "room-1-09:00")
	require.NoError(t, err)
	assert.False(t, slot.IsBooked)
	assert.Empty(t, slot.BookingID)
	assert.Equal(t, int64(3), slot.Version)

	// Cancel is not repeatable.
	_, err = db.CancelBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	_, err = db.CancelBooking(ctx, "no-such-booking")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRebookAfterCancel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedRoomWithSlots(t, db, "room-1", "09:00")
	date, _ := models.ParseDate("2026-09-15")

	first := &models.Booking{UserID: "user-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, db.CreateBookingWithSlot(ctx, first, "room-1-09:00"))
	_, err := db.CancelBooking(ctx, first.ID)
	require.NoError(t, err)

	second := &models.Booking{UserID: "user-2", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, db.CreateBookingWithSlot(ctx, second, "room-1-09:00"))

	slot, err := db.GetSlot(ctx, "room-1-09:00")
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, second.ID, slot.BookingID)

	// Cancelled booking keeps its history, new booking owns the slot.
	old, err := db.GetBooking(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, old.Status)
	assert.Empty(t, old.Slots)
}

func TestListUserBookingsOnDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedRoomWithSlots(t, db, "room-1", "09:00", "10:00", "11:00")
	date, _ := models.ParseDate("2026-09-15")

	for _, start := range []string{"09:00", "11:00"} {
		endMin, _ := models.MinuteOfDay(start)
		b := &models.Booking{
			UserID: "user-1", RoomID: "room-1", Date: date,
			StartTime: start, EndTime: models.FormatMinute(endMin + 60),
		}
		require.NoError(t, db.CreateBookingWithSlot(ctx, b, "room-1-"+start))
	}

	bookings, err := db.ListUserBookingsOnDate(ctx, "user-1", date, models.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "09:00", bookings[0].StartTime)
	assert.Equal(t, "11:00", bookings[1].StartTime)

	bookings, err = db.ListUserBookingsOnDate(ctx, "user-2", date, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestGetDailyBookings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedRoomWithSlots(t, db, "room-1", "09:00", "10:00")
	date, _ := models.ParseDate("2026-09-15")

	b1 := &models.Booking{UserID: "user-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, db.CreateBookingWithSlot(ctx, b1, "room-1-09:00"))
	b2 := &models.Booking{UserID: "user-2", RoomID: "room-1", Date: date, StartTime: "10:00", EndTime: "11:00"}
	require.NoError(t, db.CreateBookingWithSlot(ctx, b2, "room-1-10:00"))

	// Cancelled bookings drop out of the schedule.
	_, err := db.CancelBooking(ctx, b2.ID)
	require.NoError(t, err)

	daily, err := db.GetDailyBookings(ctx, date, date.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, daily, 1)
	require.Len(t, daily["2026-09-15"], 1)
	assert.Equal(t, b1.ID, daily["2026-09-15"][0].ID)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrConcurrentModification))
	assert.True(t, IsRetryable(ErrTransactionTimeout))
	assert.False(t, IsRetryable(ErrSlotAlreadyBooked))
	assert.False(t, IsRetryable(errors.New("other")))
}
