package models

import "time"

// Floor groups parking slots on one level of the facility.
type Floor struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	FloorNumber int       `json:"floor_number" yaml:"floor_number"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// Slot is a bookable parking space. VehicleType selects the hourly rate.
type Slot struct {
	ID          int64     `json:"id" yaml:"id"`
	FloorID     int64     `json:"floor_id" yaml:"floor_id"`
	Number      string    `json:"number" yaml:"number"`
	VehicleType string    `json:"vehicle_type" yaml:"vehicle_type"`
	IsActive    bool      `json:"is_active" yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// Reservation is a time-bounded claim on one slot by one holder.
// Rows are never deleted; cancellation flips Status and keeps history.
// Version is bumped on every write and guards concurrent updates.
type Reservation struct {
	ID            int64     `json:"id"`
	SlotID        int64     `json:"slot_id"`
	HolderID      string    `json:"holder_id"`
	VehicleNumber string    `json:"vehicle_number"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Cost          float64   `json:"cost"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// IsCancelled reports whether the reservation reached its terminal state.
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// Duration returns the length of the reserved window.
func (r *Reservation) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
