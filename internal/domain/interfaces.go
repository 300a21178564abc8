package domain

import (
	"context"
	"time"

	"parklot/internal/models"
)

// Actor is the authenticated caller of an operation, resolved by the
// API auth layer from its client key. Identity issuance itself is
// outside this service.
type Actor struct {
	HolderID string
	Name     string
	Admin    bool
}

// CanAccess reports whether the actor may see or mutate a reservation
// owned by holderID.
func (a Actor) CanAccess(holderID string) bool {
	return a.Admin || a.HolderID == holderID
}

// RateTable resolves the hourly rate for a vehicle category.
type RateTable interface {
	RateFor(vehicleType string) (float64, error)
}

// Ledger is the single source of truth for reservations. Only the
// ledger mutates reservation rows; everything else reads through it.
type Ledger interface {
	FindConflicts(ctx context.Context, slotID int64, start, end time.Time) ([]*models.Reservation, error)
	AdmitReservation(ctx context.Context, reservation *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	CancelReservationWithVersion(ctx context.Context, id, version int64) error
	GetHolderReservations(ctx context.Context, holderID string) ([]*models.Reservation, error)
	GetReservationsByTimeRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error)
	FindAvailableSlots(ctx context.Context, start, end time.Time, floorID int64) ([]*models.Slot, error)
}

// Catalog holds the slot inventory. Slots are immutable for booking
// purposes once created.
type Catalog interface {
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	GetSlots(ctx context.Context) ([]*models.Slot, error)
	GetFloors(ctx context.Context) ([]*models.Floor, error)
	CreateFloor(ctx context.Context, floor *models.Floor) error
	CreateSlot(ctx context.Context, slot *models.Slot) error
}

// Cache is a best-effort read cache for catalog and reservation views.
// A nil result with a nil error is a miss.
type Cache interface {
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	SetReservation(ctx context.Context, reservation *models.Reservation) error
	InvalidateReservation(ctx context.Context, id int64) error
	GetFloors(ctx context.Context) ([]*models.Floor, error)
	SetFloors(ctx context.Context, floors []*models.Floor) error
	InvalidateFloors(ctx context.Context) error
}

// EventPublisher emits domain events for interested consumers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
