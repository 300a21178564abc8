package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "reservations_created_total",
			Help:      "Successfully admitted reservations.",
		},
	)

	reservationsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "reservations_cancelled_total",
			Help:      "Reservations transitioned to cancelled.",
		},
	)

	admissionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "admission_conflicts_total",
			Help:      "Admissions rejected because the slot was taken.",
		},
	)

	admissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "parklot",
			Name:      "admission_duration_seconds",
			Help:      "Wall time of the conflict-check-and-insert step.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			reservationsCreated,
			reservationsCancelled,
			admissionConflicts,
			admissionDuration,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservationCreated counts an admitted reservation.
func IncReservationCreated() {
	reservationsCreated.Inc()
}

// IncReservationCancelled counts a cancellation.
func IncReservationCancelled() {
	reservationsCancelled.Inc()
}

// IncAdmissionConflict counts an admission that lost to an existing booking.
func IncAdmissionConflict() {
	admissionConflicts.Inc()
}

// ObserveAdmission records how long one admission attempt took.
func ObserveAdmission(seconds float64) {
	admissionDuration.Observe(seconds)
}
