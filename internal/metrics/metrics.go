package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showbook",
			Name:      "reservations_total",
			Help:      "Reserve calls by outcome (pending, insufficient, error).",
		},
		[]string{"outcome"},
	)

	reclaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "showbook",
			Name:      "reclaimed_bookings_total",
			Help:      "Stale pending bookings failed by the reclaimer.",
		},
	)

	reclaimSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showbook",
			Name:      "reclaim_skipped_total",
			Help:      "Reclaimer ticks skipped, by reason.",
		},
		[]string{"reason"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "showbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservations, reclaimed, reclaimSkipped, httpRequests)
	})
}

// IncReservation increments the reserve counter for an outcome label.
func IncReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

// AddReclaimed adds n to the reclaimed bookings counter.
func AddReclaimed(n int) {
	reclaimed.Add(float64(n))
}

// IncReclaimSkipped increments the skipped-tick counter for a reason label.
func IncReclaimSkipped(reason string) {
	reclaimSkipped.WithLabelValues(reason).Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
