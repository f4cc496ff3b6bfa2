package repository

import (
	"context"
	"sync/atomic"
	"time"

	"roombook/internal/domain"
	"roombook/internal/models"

	"github.com/rs/zerolog"
)

var (
	_ domain.AvailabilityCache = (*RedisAvailabilityCache)(nil)
	_ domain.AvailabilityCache = (*MemoryAvailabilityCache)(nil)
	_ domain.AvailabilityCache = (*FailoverAvailabilityCache)(nil)
)

// FailoverAvailabilityCache routes reads/writes to the primary cache and
// falls back to the secondary when the primary errors. The primary is
// retried after one minute.
type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverAvailabilityCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverAvailabilityCache) GetSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error) {
	if !r.isDown.Load() {
		slots, err := r.primary.GetSlots(ctx, roomID, date)
		if err == nil {
			return slots, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		slots, err := r.primary.GetSlots(ctx, roomID, date)
		if err == nil {
			r.isDown.Store(false)
			return slots, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSlots(ctx, roomID, date)
}

func (r *FailoverAvailabilityCache) SetSlots(ctx context.Context, roomID string, date time.Time, slots []models.Slot) error {
	if !r.isDown.Load() {
		err := r.primary.SetSlots(ctx, roomID, date, slots)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSlots(ctx, roomID, date, slots)
}

func (r *FailoverAvailabilityCache) Invalidate(ctx context.Context, roomID string, date time.Time) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx, roomID, date)
		if err == nil {
			// Drop the fallback entry too so a later failover cannot
			// serve a stale view.
			_ = r.fallback.Invalidate(ctx, roomID, date)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Invalidate(ctx, roomID, date)
}

func (r *FailoverAvailabilityCache) InvalidateRoom(ctx context.Context, roomID string) error {
	if !r.isDown.Load() {
		err := r.primary.InvalidateRoom(ctx, roomID)
		if err == nil {
			_ = r.fallback.InvalidateRoom(ctx, roomID)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.InvalidateRoom(ctx, roomID)
}
