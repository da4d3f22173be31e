package metrics

import "time"

// Trip outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	// OutcomeAborted means no vehicle could be obtained for the trip.
	OutcomeAborted = "aborted"
)

// TripResult describes one finished vehicle trip.
type TripResult struct {
	TripID     string
	AircraftID string
	VehicleID  string
	Meals      int
	Outcome    string
	// Phase is the last phase the trip reached.
	Phase     string
	Conflicts int
	Start     time.Time
	End       time.Time
}

// Duration returns how long the trip ran.
func (r TripResult) Duration() time.Duration { return r.End.Sub(r.Start) }

// MetricsSink records trip results for observability purposes.
type MetricsSink interface {
	RecordTripResult(res TripResult) error
}

// FleetSizeRecorder records fleet occupancy.
type FleetSizeRecorder interface {
	RecordFleetSize(total, busy int) error
}

// DeliveryRecord summarises one catering request once it finished.
type DeliveryRecord struct {
	AircraftID string
	TotalMeals int
	Trips      int
	Failed     int
	Start      time.Time
	End        time.Time
}

// DeliveryRecorder records finished catering requests.
type DeliveryRecorder interface {
	RecordDelivery(rec DeliveryRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTripResult(TripResult) error   { return nil }
func (NopSink) RecordFleetSize(int, int) error      { return nil }
func (NopSink) RecordDelivery(DeliveryRecord) error { return nil }
