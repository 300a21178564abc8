package schedule

import (
	"time"

	"parklot/internal/domain"
)

// BilledHours rounds a duration up to whole hours. Any partial hour,
// however small, bills as a full hour. Non-positive durations bill
// zero hours (validation rejects them before pricing runs).
func BilledHours(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	hours := int64(d / time.Hour)
	if d%time.Hour > 0 {
		hours++
	}
	return hours
}

// Cost computes the billed amount for a window at the given hourly rate.
func Cost(hourlyRate float64, d time.Duration) float64 {
	return float64(BilledHours(d)) * hourlyRate
}

// Rates is a flat per-category rate table loaded from config.
type Rates map[string]float64

// RateFor returns the hourly rate for a vehicle category.
func (r Rates) RateFor(vehicleType string) (float64, error) {
	rate, ok := r[vehicleType]
	if !ok {
		return 0, domain.ErrUnknownVehicleType
	}
	return rate, nil
}
