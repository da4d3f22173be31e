package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tripsTotal        *prometheus.CounterVec
	tripDuration      *prometheus.HistogramVec
	moveConflicts     prometheus.Counter
	deliveriesTotal   prometheus.Counter
	fleetBusyVehicles prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Counter, prometheus.Counter, prometheus.Gauge) {
	trips := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catering_trips_total",
			Help: "Number of catering trips by outcome",
		},
		[]string{"outcome"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catering_trip_duration_seconds",
			Help:    "Time from vehicle acquisition to trip end",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)
	conflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catering_move_conflicts_total",
			Help: "Number of movement requests rejected by ground control",
		},
	)
	deliveries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catering_deliveries_total",
			Help: "Number of catering requests fully processed",
		},
	)
	busy := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catering_fleet_busy_vehicles",
			Help: "Vehicles currently assigned to a trip",
		},
	)
	return trips, dur, conflicts, deliveries, busy
}

func init() {
	tripsTotal, tripDuration, moveConflicts, deliveriesTotal, fleetBusyVehicles = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tripsTotal, tripDuration, moveConflicts, deliveriesTotal, fleetBusyVehicles)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tripsTotal, tripDuration, moveConflicts, deliveriesTotal, fleetBusyVehicles = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
