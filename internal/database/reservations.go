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

const reservationColumns = `id, slot_id, holder_id, vehicle_number, start_time, end_time,
                 cost, status, created_at, updated_at, version`

// FindConflicts returns all active reservations on the slot that
// overlap [start, end]. Boundaries are inclusive: a reservation ending
// exactly when another starts still conflicts.
func (db *DB) FindConflicts(ctx context.Context, slotID int64, start, end time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations
              WHERE slot_id = ? AND status = ? AND start_time <= ? AND end_time >= ?
              ORDER BY start_time`
	rows, err := db.QueryContext(ctx, query, slotID, models.StatusActive, end.Unix(), start.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicts: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// AdmitReservation atomically re-checks the slot for conflicts and
// inserts the reservation as active. The check and the insert run in a
// single write transaction, so two concurrent admissions for
// overlapping windows on the same slot cannot both commit. Transient
// write-lock failures are retried with backoff; a conflict that
// persists through all attempts means someone else won the window and
// surfaces as ErrSlotNotAvailable.
func (db *DB) AdmitReservation(ctx context.Context, reservation *models.Reservation) error {
	var lastErr error
	for attempt := 1; attempt <= models.AdmitMaxAttempts; attempt++ {
		err := db.admitOnce(ctx, reservation)
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}

		lastErr = err
		db.logger.Warn().Err(err).Int("attempt", attempt).
			Int64("slot_id", reservation.SlotID).
			Msg("admission hit a write lock, retrying")
		if waitErr := db.admitRetry.Wait(ctx, attempt); waitErr != nil {
			return waitErr
		}
	}

	db.logger.Warn().Err(lastErr).Int64("slot_id", reservation.SlotID).
		Msg("admission write conflict persisted, treating as lost race")
	return domain.ErrSlotNotAvailable
}

func (db *DB) admitOnce(ctx context.Context, reservation *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var conflicts int
	queryCount := `SELECT COUNT(*) FROM reservations
                   WHERE slot_id = ? AND status = ? AND start_time <= ? AND end_time >= ?`
	err = tx.QueryRowContext(ctx, queryCount,
		reservation.SlotID, models.StatusActive,
		reservation.EndTime.Unix(), reservation.StartTime.Unix(),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check conflicts in tx: %w", err)
	}
	if conflicts > 0 {
		return domain.ErrSlotNotAvailable
	}

	queryInsert := `INSERT INTO reservations (
                slot_id, holder_id, vehicle_number, start_time, end_time,
                cost, status, created_at, updated_at, version
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryInsert,
		reservation.SlotID,
		reservation.HolderID,
		reservation.VehicleNumber,
		reservation.StartTime.Unix(),
		reservation.EndTime.Unix(),
		reservation.Cost,
		models.StatusActive,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit admission: %w", err)
	}

	reservation.ID = id
	reservation.Status = models.StatusActive
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	reservation.Version = 1
	return nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// CancelReservationWithVersion transitions a reservation to cancelled
// iff its version still matches. A zero-row update means another writer
// got there first; the caller re-reads and retries or reports.
func (db *DB) CancelReservationWithVersion(ctx context.Context, id, version int64) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, models.StatusCancelled, time.Now().UTC(), id, version)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetHolderReservations(ctx context.Context, holderID string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations WHERE holder_id = ? ORDER BY start_time DESC`
	rows, err := db.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holder reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetReservationsByTimeRange returns reservations, cancelled ones
// included, whose window starts inside [start, end]. Used by the
// occupancy report.
func (db *DB) GetReservationsByTimeRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations WHERE start_time >= ? AND start_time <= ?
              ORDER BY start_time, id`
	rows, err := db.QueryContext(ctx, query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations by time range: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	r := &models.Reservation{}
	var startUnix, endUnix int64
	err := row.Scan(
		&r.ID, &r.SlotID, &r.HolderID, &r.VehicleNumber,
		&startUnix, &endUnix, &r.Cost, &r.Status,
		&r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	r.StartTime = time.Unix(startUnix, 0).UTC()
	r.EndTime = time.Unix(endUnix, 0).UTC()
	return r, nil
}

func scanReservations(rows *sql.Rows) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}
