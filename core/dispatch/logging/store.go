package logging

import (
	"context"
	"time"
)

// TripRecord captures one catering trip and how it ended.
type TripRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	TripID      string    `json:"trip_id"`
	AircraftID  string    `json:"aircraft_id"`
	VehicleID   string    `json:"vehicle_id,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Meals       int       `json:"meals"`
	Outcome     string    `json:"outcome"`
	Phase       string    `json:"phase"`
	Conflicts   int       `json:"conflicts"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

// TripQuery defines filters for retrieving records.
type TripQuery struct {
	Start      time.Time
	End        time.Time
	AircraftID string
	VehicleID  string
	Outcome    string
}

// Match reports whether r satisfies every non-empty filter of q.
func (q TripQuery) Match(r TripRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.AircraftID != "" && r.AircraftID != q.AircraftID {
		return false
	}
	if q.VehicleID != "" && r.VehicleID != q.VehicleID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

// LogStore persists TripRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec TripRecord) error
	Query(ctx context.Context, q TripQuery) ([]TripRecord, error)
	Close() error
}
