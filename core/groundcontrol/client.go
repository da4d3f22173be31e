// Package groundcontrol describes the contract of the airport ground traffic
// control service and the flight orchestrator the catering core talks to.
// Wire formats are owned by the adapters in infra/groundcontrol.
package groundcontrol

import (
	"context"

	"github.com/kilianp07/catering/core/model"
)

// Client is everything the dispatch core needs from ground control.
type Client interface {
	// RegisterVehicle asks ground control for a new vehicle of the given type.
	RegisterVehicle(ctx context.Context, vehicleType string) (model.Registration, error)

	// GetRoute returns the ordered nodes from one node to another. A valid
	// route has at least two nodes.
	GetRoute(ctx context.Context, from, to, vehicleType string) ([]string, error)

	// RequestMove asks permission to drive one edge and returns its distance.
	// A transient refusal is reported as ErrConflict and may be retried.
	RequestMove(ctx context.Context, vehicleID, vehicleType, from, to string) (float64, error)

	// NotifyArrival reports that a vehicle reached a node.
	NotifyArrival(ctx context.Context, vehicleID, vehicleType, node string) error

	// NotifyStart and NotifyFinish bracket the catering of one aircraft.
	NotifyStart(ctx context.Context, aircraftID string) error
	NotifyFinish(ctx context.Context, aircraftID string, totalMeals int) error
}
