package repository

import (
	"context"
	"testing"
	"time"

	"roombook/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRedisAvailabilityCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	cache := NewRedisAvailabilityCache(client, 5*time.Minute)
	ctx := context.Background()
	date := testDate(t, "2026-09-15")

	t.Run("SetAndGetSlots", func(t *testing.T) {
		slots := []models.Slot{
			{ID: "slot-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"},
			{ID: "slot-2", RoomID: "room-1", Date: date, StartTime: "10:00", EndTime: "11:00", IsBooked: true, BookingID: "bk-1"},
		}

		err := cache.SetSlots(ctx, "room-1", date, slots)
		require.NoError(t, err)

		got, err := cache.GetSlots(ctx, "room-1", date)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "slot-1", got[0].ID)
		assert.Equal(t, "10:00", got[1].StartTime)
		assert.True(t, got[1].IsBooked)
		assert.Equal(t, "bk-1", got[1].BookingID)
	})

	t.Run("MissReturnsNil", func(t *testing.T) {
		got, err := cache.GetSlots(ctx, "room-missing", date)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EmptyDayIsNotAMiss", func(t *testing.T) {
		err := cache.SetSlots(ctx, "room-empty", date, nil)
		require.NoError(t, err)

		got, err := cache.GetSlots(ctx, "room-empty", date)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("TTLExpires", func(t *testing.T) {
		err := cache.SetSlots(ctx, "room-ttl", date, []models.Slot{{ID: "s"}})
		require.NoError(t, err)

		s.FastForward(5*time.Minute + time.Second)

		got, err := cache.GetSlots(ctx, "room-ttl", date)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, cache.SetSlots(ctx, "room-2", date, []models.Slot{{ID: "s"}}))

		err := cache.Invalidate(ctx, "room-2", date)
		require.NoError(t, err)

		got, err := cache.GetSlots(ctx, "room-2", date)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("InvalidateRoom", func(t *testing.T) {
		other := testDate(t, "2026-09-16")
		require.NoError(t, cache.SetSlots(ctx, "room-3", date, []models.Slot{{ID: "a"}}))
		require.NoError(t, cache.SetSlots(ctx, "room-3", other, []models.Slot{{ID: "b"}}))
		require.NoError(t, cache.SetSlots(ctx, "room-4", date, []models.Slot{{ID: "c"}}))

		err := cache.InvalidateRoom(ctx, "room-3")
		require.NoError(t, err)

		got, err := cache.GetSlots(ctx, "room-3", date)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = cache.GetSlots(ctx, "room-3", other)
		require.NoError(t, err)
		assert.Nil(t, got)

		// Other rooms untouched.
		got, err = cache.GetSlots(ctx, "room-4", date)
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("NilClient", func(t *testing.T) {
		cache := NewRedisAvailabilityCache(nil, time.Minute)
		_, err := cache.GetSlots(ctx, "room-1", date)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		err := Close(client)
		assert.NoError(t, err)
	})
}
