package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/internal/database"
	"roombook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySlots(t *testing.T) {
	t.Run("ExactFit", func(t *testing.T) {
		windows, err := buildDailySlots("09:00", "12:00", 60)
		require.NoError(t, err)
		assert.Equal(t, [][2]string{
			{"09:00", "10:00"},
			{"10:00", "11:00"},
			{"11:00", "12:00"},
		}, windows)
	})

	t.Run("PartialTrailingIntervalDropped", func(t *testing.T) {
		windows, err := buildDailySlots("09:00", "10:30", 60)
		require.NoError(t, err)
		assert.Equal(t, [][2]string{{"09:00", "10:00"}}, windows)
	})

	t.Run("WindowShorterThanDuration", func(t *testing.T) {
		windows, err := buildDailySlots("09:00", "09:30", 60)
		require.NoError(t, err)
		assert.Empty(t, windows)
	})

	t.Run("OddDuration", func(t *testing.T) {
		windows, err := buildDailySlots("08:00", "10:00", 45)
		require.NoError(t, err)
		assert.Equal(t, [][2]string{
			{"08:00", "08:45"},
			{"08:45", "09:30"},
		}, windows)
	})

	t.Run("InvertedWindow", func(t *testing.T) {
		_, err := buildDailySlots("12:00", "09:00", 60)
		assert.ErrorIs(t, err, database.ErrInvalidTimeRange)
	})

	t.Run("MalformedTime", func(t *testing.T) {
		_, err := buildDailySlots("9am", "12:00", 60)
		assert.ErrorIs(t, err, database.ErrInvalidTimeRange)
	})
}

func TestGenerateSlots(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	t.Run("ThreeDays", func(t *testing.T) {
		repo := new(mockRepo)
		cache := new(mockCache)
		svc := NewSlotService(repo, cache, testLogger())

		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)
		repo.On("InsertSlots", ctx, mock.MatchedBy(func(slots []models.Slot) bool {
			// 3 windows per day over 3 days.
			return len(slots) == 9 &&
				slots[0].StartTime == "09:00" && slots[0].EndTime == "10:00" &&
				slots[8].StartTime == "11:00" && slots[8].EndTime == "12:00"
		})).Return(9, nil)
		cache.On("InvalidateRoom", ctx, "room-1").Return(nil)

		created, err := svc.GenerateSlots(ctx, "room-1", "owner-1", models.RoleUser, start, end, 60, "09:00", "12:00")
		require.NoError(t, err)
		assert.Equal(t, 9, created)
		cache.AssertCalled(t, "InvalidateRoom", ctx, "room-1")
	})

	t.Run("NotOwnerForbidden", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewSlotService(repo, nil, testLogger())
		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)

		_, err := svc.GenerateSlots(ctx, "room-1", "user-9", models.RoleUser, start, end, 60, "09:00", "12:00")
		assert.ErrorIs(t, err, database.ErrForbidden)
		repo.AssertNotCalled(t, "InsertSlots", mock.Anything, mock.Anything)
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewSlotService(repo, nil, testLogger())
		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)
		repo.On("InsertSlots", ctx, mock.Anything).Return(3, nil)

		created, err := svc.GenerateSlots(ctx, "room-1", "admin-1", models.RoleAdmin, start, start, 60, "09:00", "12:00")
		require.NoError(t, err)
		assert.Equal(t, 3, created)
	})

	t.Run("InvertedDateRange", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewSlotService(repo, nil, testLogger())
		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)

		_, err := svc.GenerateSlots(ctx, "room-1", "owner-1", models.RoleUser, end, start, 60, "09:00", "12:00")
		assert.ErrorIs(t, err, database.ErrInvalidTimeRange)
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewSlotService(repo, nil, testLogger())
		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)

		_, err := svc.GenerateSlots(ctx, "room-1", "owner-1", models.RoleUser, start, end, 0, "09:00", "12:00")
		assert.ErrorIs(t, err, database.ErrInvalidTimeRange)
	})
}

func TestListRoomSlotsCache(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	stored := []models.Slot{{ID: "slot-1", RoomID: "room-1", StartTime: "09:00", EndTime: "10:00"}}

	t.Run("Hit", func(t *testing.T) {
		repo := new(mockRepo)
		cache := new(mockCache)
		svc := NewSlotService(repo, cache, testLogger())
		cache.On("GetSlots", ctx, "room-1", date).Return(stored, nil)

		got, err := svc.ListRoomSlots(ctx, "room-1", date)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		repo.AssertNotCalled(t, "ListRoomSlots", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissFillsCache", func(t *testing.T) {
		repo := new(mockRepo)
		cache := new(mockCache)
		svc := NewSlotService(repo, cache, testLogger())
		cache.On("GetSlots", ctx, "room-1", date).Return(nil, nil)
		repo.On("ListRoomSlots", ctx, "room-1", date).Return(stored, nil)
		cache.On("SetSlots", ctx, "room-1", date, stored).Return(nil)

		got, err := svc.ListRoomSlots(ctx, "room-1", date)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		cache.AssertCalled(t, "SetSlots", ctx, "room-1", date, stored)
	})

	t.Run("CacheErrorDegradesToStore", func(t *testing.T) {
		repo := new(mockRepo)
		cache := new(mockCache)
		svc := NewSlotService(repo, cache, testLogger())
		cache.On("GetSlots", ctx, "room-1", date).Return(nil, errors.New("redis down"))
		repo.On("ListRoomSlots", ctx, "room-1", date).Return(stored, nil)
		cache.On("SetSlots", ctx, "room-1", date, stored).Return(errors.New("redis down"))

		got, err := svc.ListRoomSlots(ctx, "room-1", date)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("NoCache", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewSlotService(repo, nil, testLogger())
		repo.On("ListRoomSlots", ctx, "room-1", date).Return(stored, nil)

		got, err := svc.ListRoomSlots(ctx, "room-1", date)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})
}

func TestDeleteSlots(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	t.Run("Owner", func(t *testing.T) {
		repo := new(mockRepo)
		cache := new(mockCache)
		svc := NewSlotService(repo, cache, testLogger())
		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)
		repo.On("DeleteUnbookedSlots", ctx, "room-1", start, end).Return(int64(5), nil)
		cache.On("InvalidateRoom", ctx, "room-1").Return(nil)

		deleted, err := svc.DeleteSlots(ctx, "room-1", "owner-1", models.RoleUser, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(5), deleted)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewSlotService(repo, nil, testLogger())
		repo.On("GetRoom", ctx, "room-1").Return(activeRoom(), nil)

		_, err := svc.DeleteSlots(ctx, "room-1", "user-9", models.RoleUser, start, end)
		assert.ErrorIs(t, err, database.ErrForbidden)
	})
}
