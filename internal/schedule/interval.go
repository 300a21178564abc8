package schedule

import "time"

// Overlaps reports whether two reservation windows conflict. Both
// windows must satisfy start < end; the caller guarantees that.
//
// Boundaries are inclusive: a reservation ending exactly at 12:00
// conflicts with one starting at 12:00. That matches the booking rule
// the rest of the system enforces, so do not relax it to half-open
// intervals.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return !startA.After(endB) && !endA.Before(startB)
}
