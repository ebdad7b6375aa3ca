// Package metrics holds the engine's Prometheus counters, exposed on
// /metrics by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassesScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classes_scheduled_total",
		Help: "Class instances created by the scheduler.",
	})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings admitted against a class.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Bookings transitioned to cancelled.",
	})

	BookingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_rejections_total",
		Help: "Booking attempts rejected, by reason.",
	}, []string{"reason"})
)
