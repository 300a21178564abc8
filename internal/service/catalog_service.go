package service

import (
	"context"
	"fmt"
	"time"

	"parklot/internal/domain"
	"parklot/internal/models"

	"github.com/rs/zerolog"
)

// CatalogService manages the floor and slot inventory. Writes are
// admin-only; floor reads go through the cache.
type CatalogService struct {
	catalog domain.Catalog
	ledger  domain.Ledger
	cache   domain.Cache
	logger  *zerolog.Logger
}

func NewCatalogService(catalog domain.Catalog, ledger domain.Ledger, cache domain.Cache, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		ledger:  ledger,
		cache:   cache,
		logger:  logger,
	}
}

// CreateFloor adds a floor. Admin only.
func (s *CatalogService) CreateFloor(ctx context.Context, actor domain.Actor, floor *models.Floor) error {
	if !actor.Admin {
		return domain.ErrForbidden
	}

	if err := s.catalog.CreateFloor(ctx, floor); err != nil {
		return err
	}

	if err := s.cache.InvalidateFloors(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("floors cache invalidate failed")
	}

	s.logger.Info().Int64("floor_id", floor.ID).Int("floor_number", floor.FloorNumber).Msg("floor created")
	return nil
}

// CreateSlot adds a slot to an existing floor. Admin only.
func (s *CatalogService) CreateSlot(ctx context.Context, actor domain.Actor, slot *models.Slot) error {
	if !actor.Admin {
		return domain.ErrForbidden
	}
	if _, ok := models.DefaultHourlyRates[slot.VehicleType]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownVehicleType, slot.VehicleType)
	}

	if err := s.catalog.CreateSlot(ctx, slot); err != nil {
		return err
	}

	s.logger.Info().Int64("slot_id", slot.ID).Str("number", slot.Number).Msg("slot created")
	return nil
}

// Floors lists all floors, cache first.
func (s *CatalogService) Floors(ctx context.Context) ([]*models.Floor, error) {
	if cached, err := s.cache.GetFloors(ctx); err == nil && cached != nil {
		return cached, nil
	}

	floors, err := s.catalog.GetFloors(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetFloors(ctx, floors); err != nil {
		s.logger.Warn().Err(err).Msg("floors cache set failed")
	}
	return floors, nil
}

// Slots lists the full slot inventory.
func (s *CatalogService) Slots(ctx context.Context) ([]*models.Slot, error) {
	return s.catalog.GetSlots(ctx)
}

// Slot returns one slot by id.
func (s *CatalogService) Slot(ctx context.Context, id int64) (*models.Slot, error) {
	return s.catalog.GetSlot(ctx, id)
}

// AvailableSlots returns active slots with no active reservation
// overlapping [start, end]. floorID zero means all floors.
func (s *CatalogService) AvailableSlots(ctx context.Context, start, end time.Time, floorID int64) ([]*models.Slot, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start must be before end", domain.ErrInvalidWindow)
	}
	return s.ledger.FindAvailableSlots(ctx, start.UTC(), end.UTC(), floorID)
}
