package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parklot/internal/domain"
	"parklot/internal/models"
)

func (db *DB) CreateSlot(ctx context.Context, slot *models.Slot) error {
	if _, err := db.GetFloor(ctx, slot.FloorID); err != nil {
		return err
	}

	query := `INSERT INTO slots (floor_id, number, vehicle_type, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, slot.FloorID, slot.Number, slot.VehicleType, slot.IsActive, now, now)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("slot %s on floor %d: %w", slot.Number, slot.FloorID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	slot.ID = id
	slot.CreatedAt = now
	slot.UpdatedAt = now
	return nil
}

func (db *DB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	query := `SELECT id, floor_id, number, vehicle_type, is_active, created_at, updated_at
              FROM slots WHERE id = ?`
	s := &models.Slot{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.FloorID, &s.Number, &s.VehicleType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return s, nil
}

func (db *DB) GetSlots(ctx context.Context) ([]*models.Slot, error) {
	query := `SELECT id, floor_id, number, vehicle_type, is_active, created_at, updated_at
              FROM slots ORDER BY floor_id, number`
	return db.querySlots(ctx, query)
}

func (db *DB) GetSlotByNumber(ctx context.Context, floorID int64, number string) (*models.Slot, error) {
	query := `SELECT id, floor_id, number, vehicle_type, is_active, created_at, updated_at
              FROM slots WHERE floor_id = ? AND number = ?`
	s := &models.Slot{}
	err := db.QueryRowContext(ctx, query, floorID, number).Scan(
		&s.ID, &s.FloorID, &s.Number, &s.VehicleType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot by number: %w", err)
	}
	return s, nil
}

// FindAvailableSlots returns active slots with no active reservation
// overlapping [start, end]. Overlap boundaries are inclusive, matching
// the admission rule. floorID 0 means all floors.
func (db *DB) FindAvailableSlots(ctx context.Context, start, end time.Time, floorID int64) ([]*models.Slot, error) {
	query := `SELECT id, floor_id, number, vehicle_type, is_active, created_at, updated_at
              FROM slots
              WHERE is_active = 1 AND id NOT IN (
                  SELECT slot_id FROM reservations
                  WHERE status = ? AND start_time <= ? AND end_time >= ?
              )`
	args := []any{models.StatusActive, end.Unix(), start.Unix()}

	if floorID != 0 {
		query += ` AND floor_id = ?`
		args = append(args, floorID)
	}
	query += ` ORDER BY floor_id, number`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find available slots: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

func (db *DB) querySlots(ctx context.Context, query string, args ...any) ([]*models.Slot, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()
	return scanSlots(rows)
}

func scanSlots(rows *sql.Rows) ([]*models.Slot, error) {
	var slots []*models.Slot
	for rows.Next() {
		s := &models.Slot{}
		if err := rows.Scan(&s.ID, &s.FloorID, &s.Number, &s.VehicleType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
