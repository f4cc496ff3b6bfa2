package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "bookings_created_total",
			Help:      "Bookings committed successfully.",
		},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings cancelled successfully.",
		},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "booking_conflicts_total",
			Help:      "Rejected booking attempts by reason.",
		},
		[]string{"reason"},
	)

	slotsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "slots_generated_total",
			Help:      "Slot inventory rows created.",
		},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "availability_cache_requests_total",
			Help:      "Availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, bookingsCancelled, bookingConflicts, slotsGenerated, cacheRequests)
	})
}

func IncBookingCreated()        { bookingsCreated.Inc() }
func IncBookingCancelled()      { bookingsCancelled.Inc() }
func IncConflict(reason string) { bookingConflicts.WithLabelValues(reason).Inc() }
func AddSlotsGenerated(n int)   { slotsGenerated.Add(float64(n)) }
func IncCacheHit()              { cacheRequests.WithLabelValues("hit").Inc() }
func IncCacheMiss()             { cacheRequests.WithLabelValues("miss").Inc() }
func IncCacheError()            { cacheRequests.WithLabelValues("error").Inc() }
