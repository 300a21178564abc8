package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	assert.NotPanics(t, Register)
}

func TestCounters(t *testing.T) {
	Register()

	before := testutil.ToFloat64(reservationsCreated)
	IncReservationCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(reservationsCreated))

	before = testutil.ToFloat64(admissionConflicts)
	IncAdmissionConflict()
	assert.Equal(t, before+1, testutil.ToFloat64(admissionConflicts))

	before = testutil.ToFloat64(reservationsCancelled)
	IncReservationCancelled()
	assert.Equal(t, before+1, testutil.ToFloat64(reservationsCancelled))

	assert.NotPanics(t, func() {
		IncHTTP("reservations")
		ObserveAdmission(0.002)
	})
}
