package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"parklot/internal/domain"
	"parklot/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing the
// primary again after marking it down.
const recoveryInterval = time.Minute

// FailoverCache serves from the primary (Redis) until it fails, then
// falls back to the in-memory cache and periodically probes the
// primary for recovery.
type FailoverCache struct {
	primary  domain.Cache
	fallback domain.Cache
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverCache(primary, fallback domain.Cache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	c.isDown.Store(true)
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
}

// shouldProbe reports whether enough time has passed to retry the
// primary after a failure.
func (c *FailoverCache) shouldProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) < recoveryInterval {
		return false
	}
	c.lastCheck = time.Now()
	return true
}

func (c *FailoverCache) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	if !c.isDown.Load() || c.shouldProbe() {
		reservation, err := c.primary.GetReservation(ctx, id)
		if err == nil {
			c.isDown.Store(false)
			return reservation, nil
		}
		c.markDown(err)
	}
	return c.fallback.GetReservation(ctx, id)
}

func (c *FailoverCache) SetReservation(ctx context.Context, reservation *models.Reservation) error {
	if !c.isDown.Load() || c.shouldProbe() {
		err := c.primary.SetReservation(ctx, reservation)
		if err == nil {
			c.isDown.Store(false)
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.SetReservation(ctx, reservation)
}

func (c *FailoverCache) InvalidateReservation(ctx context.Context, id int64) error {
	// Invalidation goes to both sides so a recovered primary cannot
	// serve a stale entry.
	var primaryErr error
	if !c.isDown.Load() {
		if primaryErr = c.primary.InvalidateReservation(ctx, id); primaryErr != nil {
			c.markDown(primaryErr)
		}
	}
	return c.fallback.InvalidateReservation(ctx, id)
}

func (c *FailoverCache) GetFloors(ctx context.Context) ([]*models.Floor, error) {
	if !c.isDown.Load() || c.shouldProbe() {
		floors, err := c.primary.GetFloors(ctx)
		if err == nil {
			c.isDown.Store(false)
			return floors, nil
		}
		c.markDown(err)
	}
	return c.fallback.GetFloors(ctx)
}

func (c *FailoverCache) SetFloors(ctx context.Context, floors []*models.Floor) error {
	if !c.isDown.Load() || c.shouldProbe() {
		err := c.primary.SetFloors(ctx, floors)
		if err == nil {
			c.isDown.Store(false)
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.SetFloors(ctx, floors)
}

func (c *FailoverCache) InvalidateFloors(ctx context.Context) error {
	var primaryErr error
	if !c.isDown.Load() {
		if primaryErr = c.primary.InvalidateFloors(ctx); primaryErr != nil {
			c.markDown(primaryErr)
		}
	}
	return c.fallback.InvalidateFloors(ctx)
}
