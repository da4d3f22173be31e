package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/catering/core/metrics"
)

// PromSink records trip results and fleet occupancy in Prometheus metrics.
type PromSink struct {
	trips     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	conflicts prometheus.Histogram
	meals     prometheus.Counter
	fleet     *prometheus.GaugeVec
}

// NewPromSink registers catering metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	trips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catering_vehicle_trips_total",
		Help: "Trips per vehicle and outcome",
	}, []string{"vehicle_id", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catering_vehicle_trip_seconds",
		Help:    "Trip duration per vehicle",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"vehicle_id"})
	conflicts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catering_trip_conflicts",
		Help:    "Movement conflicts encountered per trip",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 30},
	})
	meals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catering_meals_delivered_total",
		Help: "Meals carried by completed trips",
	})
	fleet := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catering_fleet_vehicles",
		Help: "Registered vehicles by status",
	}, []string{"status"})

	var err error
	if trips, err = register(reg, trips); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if conflicts, err = register(reg, conflicts); err != nil {
		return nil, err
	}
	if meals, err = register(reg, meals); err != nil {
		return nil, err
	}
	if fleet, err = register(reg, fleet); err != nil {
		return nil, err
	}
	return &PromSink{trips: trips, duration: duration, conflicts: conflicts, meals: meals, fleet: fleet}, nil
}

// register adds c to reg, returning the already registered collector when an
// identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTripResult counts the trip and observes its duration.
func (s *PromSink) RecordTripResult(r coremetrics.TripResult) error {
	vehicle := r.VehicleID
	if vehicle == "" {
		vehicle = "none"
	}
	s.trips.WithLabelValues(vehicle, r.Outcome).Inc()
	s.conflicts.Observe(float64(r.Conflicts))
	if r.Outcome == coremetrics.OutcomeCompleted {
		s.duration.WithLabelValues(vehicle).Observe(r.Duration().Seconds())
		s.meals.Add(float64(r.Meals))
	}
	return nil
}

// RecordFleetSize sets the fleet gauges.
func (s *PromSink) RecordFleetSize(total, busy int) error {
	s.fleet.WithLabelValues("busy").Set(float64(busy))
	s.fleet.WithLabelValues("available").Set(float64(total - busy))
	return nil
}
