package repository

import (
	"context"
	"sync"
	"time"

	"parklot/internal/models"
)

// MemoryCache is a process-local read cache with per-entry TTL. It
// backs the failover pair when Redis is down and serves single-node
// deployments on its own.
type MemoryCache struct {
	reservations sync.Map // int64 -> memoryEntry
	floors       sync.Map // string -> memoryEntry
	ttl          time.Duration
}

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

const floorsKey = "floors"

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	val, ok := c.reservations.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if entry.expired() {
		c.reservations.Delete(id)
		return nil, nil
	}
	return entry.value.(*models.Reservation), nil
}

func (c *MemoryCache) SetReservation(ctx context.Context, reservation *models.Reservation) error {
	c.reservations.Store(reservation.ID, memoryEntry{
		value:     reservation,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *MemoryCache) InvalidateReservation(ctx context.Context, id int64) error {
	c.reservations.Delete(id)
	return nil
}

func (c *MemoryCache) GetFloors(ctx context.Context) ([]*models.Floor, error) {
	val, ok := c.floors.Load(floorsKey)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if entry.expired() {
		c.floors.Delete(floorsKey)
		return nil, nil
	}
	return entry.value.([]*models.Floor), nil
}

func (c *MemoryCache) SetFloors(ctx context.Context, floors []*models.Floor) error {
	c.floors.Store(floorsKey, memoryEntry{
		value:     floors,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *MemoryCache) InvalidateFloors(ctx context.Context) error {
	c.floors.Delete(floorsKey)
	return nil
}
