package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"roombook/internal/models"
)

// MemoryAvailabilityCache is the in-process fallback used when Redis is
// disabled or unreachable. Entries expire lazily on read.
type MemoryAvailabilityCache struct {
	entries sync.Map
	ttl     time.Duration
}

type cacheEntry struct {
	slots     []models.Slot
	expiresAt time.Time
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		ttl: ttl,
	}
}

func (m *MemoryAvailabilityCache) GetSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error) {
	key := availabilityKey(roomID, date)
	val, ok := m.entries.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		m.entries.Delete(key)
		return nil, nil
	}
	slots := make([]models.Slot, len(entry.slots))
	copy(slots, entry.slots)
	return slots, nil
}

func (m *MemoryAvailabilityCache) SetSlots(ctx context.Context, roomID string, date time.Time, slots []models.Slot) error {
	stored := make([]models.Slot, len(slots))
	copy(stored, slots)
	m.entries.Store(availabilityKey(roomID, date), &cacheEntry{
		slots:     stored,
		expiresAt: time.Now().Add(m.ttl),
	})
	return nil
}

func (m *MemoryAvailabilityCache) Invalidate(ctx context.Context, roomID string, date time.Time) error {
	m.entries.Delete(availabilityKey(roomID, date))
	return nil
}

func (m *MemoryAvailabilityCache) InvalidateRoom(ctx context.Context, roomID string) error {
	prefix := "room:" + roomID + ":availability:"
	m.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			m.entries.Delete(key)
		}
		return true
	})
	return nil
}
