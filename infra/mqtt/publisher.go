package mqtt

import (
	"encoding/json"
	"time"

	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/model"
)

// encodeStatus renders the wire payload shared with the live status stream.
func encodeStatus(vehicles []model.VehicleSnapshot, at time.Time) ([]byte, error) {
	if vehicles == nil {
		vehicles = []model.VehicleSnapshot{}
	}
	return json.Marshal(events.FleetSnapshotEvent{Vehicles: vehicles, Time: at.UTC()})
}

// DecodeStatus parses a payload written by StatusPublisher.
func DecodeStatus(payload []byte) (events.FleetSnapshotEvent, error) {
	var ev events.FleetSnapshotEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}
