package domain

import "errors"

// Sentinel errors returned by the ledger and services. Callers match
// with errors.Is; the HTTP layer maps them to status codes.
var (
	ErrInvalidWindow          = errors.New("invalid reservation window")
	ErrInvalidVehicleNumber   = errors.New("invalid vehicle number")
	ErrFloorNotFound          = errors.New("floor not found")
	ErrSlotNotFound           = errors.New("slot not found")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrSlotNotAvailable       = errors.New("slot is not available for the requested time period")
	ErrAlreadyCancelled       = errors.New("reservation is already cancelled")
	ErrForbidden              = errors.New("operation not permitted")
	ErrAlreadyExists          = errors.New("resource already exists")
	ErrUnknownVehicleType     = errors.New("unknown vehicle type")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)
