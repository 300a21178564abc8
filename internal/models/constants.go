package models

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

const (
	VehicleTypeTwoWheeler  = "two_wheeler"
	VehicleTypeFourWheeler = "four_wheeler"
)

const (
	// MaxReservationDuration is the default cap on a single reservation window.
	MaxReservationDurationHours = 24

	// AdmitMaxAttempts bounds retries of an admission that lost a write race.
	AdmitMaxAttempts = 3

	// CancelMaxAttempts bounds retries of a cancellation on version conflicts.
	CancelMaxAttempts = 3

	// DefaultCacheTTL is the lifetime of cached catalog and reservation reads.
	DefaultCacheTTL = 5 * 60 // seconds

	// DefaultRateLimitRPS and DefaultRateLimitBurst apply per API client.
	DefaultRateLimitRPS   = 10.0
	DefaultRateLimitBurst = 20
)

// DefaultHourlyRates is the flat per-category rate table used when the
// config does not override it.
var DefaultHourlyRates = map[string]float64{
	VehicleTypeTwoWheeler:  20.0,
	VehicleTypeFourWheeler: 30.0,
}
