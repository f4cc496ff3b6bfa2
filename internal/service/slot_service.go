package service

import (
	"context"
	"time"

	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/metrics"
	"roombook/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.SlotService = (*SlotService)(nil)

// SlotService generates and serves slot inventory. Generation is a one-shot
// synchronous batch; listings are plain reads, optionally cached.
type SlotService struct {
	repo   domain.Repository
	cache  domain.AvailabilityCache
	logger *zerolog.Logger
}

func NewSlotService(repo domain.Repository, cache domain.AvailabilityCache, logger *zerolog.Logger) *SlotService {
	return &SlotService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GenerateSlots fills a room's inventory for the inclusive date range with
// contiguous slots of exactly durationMinutes inside [dailyStart, dailyEnd).
// A trailing interval shorter than the duration is dropped. Idempotent:
// re-generating an overlapping range skips existing slots, booked ones
// included, and only newly inserted slots count toward the result.
func (s *SlotService) GenerateSlots(ctx context.Context, roomID, userID, role string, startDate, endDate time.Time, durationMinutes int, dailyStart, dailyEnd string) (int, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room.OwnerID != userID && role != models.RoleAdmin {
		return 0, database.ErrForbidden
	}

	if startDate.After(endDate) {
		return 0, database.ErrInvalidTimeRange
	}
	if durationMinutes < 1 {
		return 0, database.ErrInvalidTimeRange
	}

	daily, err := buildDailySlots(dailyStart, dailyEnd, durationMinutes)
	if err != nil {
		return 0, err
	}

	var slots []models.Slot
	for d := models.Midnight(startDate); !d.After(endDate); d = d.AddDate(0, 0, 1) {
		for _, window := range daily {
			slots = append(slots, models.Slot{
				RoomID:    roomID,
				Date:      d,
				StartTime: window[0],
				EndTime:   window[1],
			})
		}
	}

	created, err := s.repo.InsertSlots(ctx, slots)
	if err != nil {
		return 0, err
	}

	metrics.AddSlotsGenerated(created)
	s.invalidateRoom(ctx, roomID)

	s.logger.Info().
		Str("room_id", roomID).
		Str("start", startDate.Format(models.DateLayout)).
		Str("end", endDate.Format(models.DateLayout)).
		Int("created", created).
		Msg("slot inventory generated")

	return created, nil
}

// buildDailySlots slices one day's operating window [start, end) into
// [start, end] HH:mm pairs of exactly duration minutes; floor division, the
// partial trailing interval is dropped.
func buildDailySlots(dailyStart, dailyEnd string, duration int) ([][2]string, error) {
	start, err := models.MinuteOfDay(dailyStart)
	if err != nil {
		return nil, database.ErrInvalidTimeRange
	}
	end, err := models.MinuteOfDay(dailyEnd)
	if err != nil {
		return nil, database.ErrInvalidTimeRange
	}
	if start >= end {
		return nil, database.ErrInvalidTimeRange
	}

	var windows [][2]string
	for cur := start; cur+duration <= end; cur += duration {
		windows = append(windows, [2]string{
			models.FormatMinute(cur),
			models.FormatMinute(cur + duration),
		})
	}
	return windows, nil
}

// ListAvailableSlots is the read path for searching free slots. No
// transaction; the listing is eventually consistent by design.
func (s *SlotService) ListAvailableSlots(ctx context.Context, filter database.SlotFilter) ([]models.Slot, error) {
	return s.repo.ListAvailableSlots(ctx, filter)
}

// ListRoomSlots serves a room's full day view through the availability
// cache. Cache errors degrade to a direct store read; correctness never
// depends on cache freshness.
func (s *SlotService) ListRoomSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSlots(ctx, roomID, date)
		if err != nil {
			metrics.IncCacheError()
			s.logger.Warn().Err(err).Str("room_id", roomID).Msg("availability cache read failed, falling back to store")
		} else if cached != nil {
			metrics.IncCacheHit()
			return cached, nil
		} else {
			metrics.IncCacheMiss()
		}
	}

	slots, err := s.repo.ListRoomSlots(ctx, roomID, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSlots(ctx, roomID, date, slots); err != nil {
			s.logger.Warn().Err(err).Str("room_id", roomID).Msg("availability cache write failed")
		}
	}
	return slots, nil
}

// DeleteSlots removes free inventory in the range; booked slots are left
// untouched. Owner or admin only.
func (s *SlotService) DeleteSlots(ctx context.Context, roomID, userID, role string, startDate, endDate time.Time) (int64, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room.OwnerID != userID && role != models.RoleAdmin {
		return 0, database.ErrForbidden
	}

	deleted, err := s.repo.DeleteUnbookedSlots(ctx, roomID, startDate, endDate)
	if err != nil {
		return 0, err
	}

	s.invalidateRoom(ctx, roomID)
	return deleted, nil
}

func (s *SlotService) invalidateRoom(ctx context.Context, roomID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRoom(ctx, roomID); err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("availability cache invalidation failed")
	}
}
