package events

import (
	"time"

	"github.com/kilianp07/catering/core/model"
)

// Event is implemented by every event emitted by the core.
type Event interface {
	EventName() string
}

// FleetSnapshotEvent carries the fleet after a state change.
type FleetSnapshotEvent struct {
	Vehicles []model.VehicleSnapshot `json:"vehicles"`
	Time     time.Time               `json:"time"`
}

func (FleetSnapshotEvent) EventName() string { return "ReceiveVehicleUpdate" }

// TripEvent is published when a trip enters a new phase. Err is set when
// Phase is "failed".
type TripEvent struct {
	TripID     string    `json:"trip_id"`
	AircraftID string    `json:"aircraft_id"`
	VehicleID  string    `json:"vehicle_id,omitempty"`
	Phase      string    `json:"phase"`
	Meals      int       `json:"meals"`
	Err        string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

func (TripEvent) EventName() string { return "TripUpdate" }

// DeliveryEvent brackets the catering of one aircraft. Action is "started"
// or "finished".
type DeliveryEvent struct {
	AircraftID string    `json:"aircraft_id"`
	Action     string    `json:"action"`
	TotalMeals int       `json:"total_meals"`
	Time       time.Time `json:"time"`
}

func (DeliveryEvent) EventName() string { return "DeliveryUpdate" }
