package database

import (
	"context"
	"errors"
	"fmt"

	"parklot/internal/config"
	"parklot/internal/domain"
	"parklot/internal/models"
)

// SyncCatalog creates any floors and slots from the seed config that do
// not exist yet. Existing rows are left untouched, so the sync is safe
// to run on every startup.
func (db *DB) SyncCatalog(ctx context.Context, seeds []config.FloorSeed) error {
	for _, seed := range seeds {
		floor, err := db.GetFloorByNumber(ctx, seed.FloorNumber)
		if errors.Is(err, domain.ErrFloorNotFound) {
			floor = &models.Floor{Name: seed.Name, FloorNumber: seed.FloorNumber}
			if err := db.CreateFloor(ctx, floor); err != nil {
				return fmt.Errorf("seed floor %d: %w", seed.FloorNumber, err)
			}
			db.logger.Info().Int("floor_number", seed.FloorNumber).Str("name", seed.Name).Msg("seeded floor")
		} else if err != nil {
			return err
		}

		for _, slotSeed := range seed.Slots {
			_, err := db.GetSlotByNumber(ctx, floor.ID, slotSeed.Number)
			if errors.Is(err, domain.ErrSlotNotFound) {
				slot := &models.Slot{
					FloorID:     floor.ID,
					Number:      slotSeed.Number,
					VehicleType: slotSeed.VehicleType,
					IsActive:    true,
				}
				if err := db.CreateSlot(ctx, slot); err != nil {
					return fmt.Errorf("seed slot %s on floor %d: %w", slotSeed.Number, seed.FloorNumber, err)
				}
				db.logger.Info().Str("slot", slotSeed.Number).Int("floor_number", seed.FloorNumber).Msg("seeded slot")
			} else if err != nil {
				return err
			}
		}
	}
	return nil
}
