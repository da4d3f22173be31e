package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// VehicleStatus is the externally visible status of a catering vehicle.
type VehicleStatus int

const (
	StatusAvailable VehicleStatus = iota
	StatusBusy
)

func (s VehicleStatus) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusBusy:
		return "Busy"
	default:
		return fmt.Sprintf("VehicleStatus(%d)", int(s))
	}
}

// MarshalJSON renders the status by name.
func (s VehicleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a status name.
func (s *VehicleStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case "Available":
		*s = StatusAvailable
	case "Busy":
		*s = StatusBusy
	default:
		return fmt.Errorf("unknown vehicle status %q", raw)
	}
	return nil
}

// VehicleState is the tagged state of a vehicle: either Available or Busy.
// Only the types declared in this package implement it.
type VehicleState interface {
	Status() VehicleStatus
	// Node is the last known position of the vehicle.
	Node() string
	sealed()
}

// Available means the vehicle is parked at a node and may be acquired.
type Available struct {
	At string
}

func (Available) Status() VehicleStatus { return StatusAvailable }
func (a Available) Node() string        { return a.At }
func (Available) sealed()               {}

// Busy means the vehicle is assigned to a trip. At tracks transit progress
// for observability only.
type Busy struct {
	At    string
	Since time.Time
}

func (Busy) Status() VehicleStatus { return StatusBusy }
func (b Busy) Node() string        { return b.At }
func (Busy) sealed()               {}

// Registration is what the ground control service hands back when a vehicle
// is registered.
type Registration struct {
	VehicleID    string            `json:"vehicleId"`
	GarageNodeID string            `json:"garageNodeId"`
	ServiceSpots map[string]string `json:"serviceSpots"`
}

// VehicleSnapshot is a point-in-time copy of a vehicle.
type VehicleSnapshot struct {
	VehicleID    string            `json:"vehicle_id"`
	Status       VehicleStatus     `json:"status"`
	BaseNode     string            `json:"base_node"`
	CurrentNode  string            `json:"current_node"`
	ServiceSpots map[string]string `json:"service_spots"`
}

// CopySpots returns an independent copy of a service spot map.
func CopySpots(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
