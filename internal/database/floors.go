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

func (db *DB) CreateFloor(ctx context.Context, floor *models.Floor) error {
	query := `INSERT INTO floors (name, floor_number, created_at, updated_at) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, floor.Name, floor.FloorNumber, now, now)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("floor %d: %w", floor.FloorNumber, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create floor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	floor.ID = id
	floor.CreatedAt = now
	floor.UpdatedAt = now
	return nil
}

func (db *DB) GetFloors(ctx context.Context) ([]*models.Floor, error) {
	query := `SELECT id, name, floor_number, created_at, updated_at FROM floors ORDER BY floor_number`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get floors: %w", err)
	}
	defer rows.Close()

	var floors []*models.Floor
	for rows.Next() {
		f := &models.Floor{}
		if err := rows.Scan(&f.ID, &f.Name, &f.FloorNumber, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan floor: %w", err)
		}
		floors = append(floors, f)
	}
	return floors, rows.Err()
}

func (db *DB) GetFloorByNumber(ctx context.Context, floorNumber int) (*models.Floor, error) {
	query := `SELECT id, name, floor_number, created_at, updated_at FROM floors WHERE floor_number = ?`
	f := &models.Floor{}
	err := db.QueryRowContext(ctx, query, floorNumber).Scan(
		&f.ID, &f.Name, &f.FloorNumber, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFloorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get floor by number: %w", err)
	}
	return f, nil
}

func (db *DB) GetFloor(ctx context.Context, id int64) (*models.Floor, error) {
	query := `SELECT id, name, floor_number, created_at, updated_at FROM floors WHERE id = ?`
	f := &models.Floor{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.FloorNumber, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFloorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get floor: %w", err)
	}
	return f, nil
}
