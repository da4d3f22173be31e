// Package vehicles exposes the catering fleet over HTTP.
package vehicles

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/catering/core/model"
)

// FleetSource returns the current fleet.
type FleetSource interface {
	Fleet() []model.VehicleSnapshot
}

// NewFleetHandler returns an HTTP handler exposing the fleet via GET /vehicles.
func NewFleetHandler(src FleetSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries := src.Fleet()
		if entries == nil {
			entries = []model.VehicleSnapshot{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
