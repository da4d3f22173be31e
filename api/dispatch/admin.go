package dispatch

import (
	"context"
	"encoding/json"
	"net/http"

	coredispatch "github.com/kilianp07/catering/core/dispatch"
)

// Fleet is the part of the orchestrator the admin endpoints drive.
type Fleet interface {
	Tuning() coredispatch.Tuning
	UpdateTuning(t coredispatch.Tuning) error
	RegisterVehicles(ctx context.Context, n int, vehicleType string) int
	Reload(ctx context.Context) int
}

// Catalog is the editable meal catalog.
type Catalog interface {
	MealTypes
	SetMealTypes(types []string) error
	Capacity() int
	SetCapacity(n int) error
}

// ModeSwitch toggles between the ground-control service and the offline client.
type ModeSwitch interface {
	SetOffline(offline bool)
	Offline() bool
}

// Admin groups the operator endpoints.
type Admin struct {
	Fleet   Fleet
	Catalog Catalog
	Mode    ModeSwitch
}

type capacityBody struct {
	Capacity int `json:"capacity"`
}

type modeBody struct {
	Offline bool `json:"offline"`
}

type vehiclesBody struct {
	Count int    `json:"count"`
	Type  string `json:"type"`
}

type registeredBody struct {
	Registered int `json:"registered"`
}

// Capacity serves GET and PUT /admin/capacity.
func (a Admin) Capacity(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		var body capacityBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := a.Catalog.SetCapacity(body.Capacity); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, capacityBody{Capacity: a.Catalog.Capacity()})
}

// MealTypes serves PUT /admin/mealtypes with a JSON array of names.
func (a Admin) MealTypes(w http.ResponseWriter, r *http.Request) {
	var types []string
	if err := json.NewDecoder(r.Body).Decode(&types); err != nil {
		writeError(w, http.StatusBadRequest, "expected a JSON array of meal types")
		return
	}
	if err := a.Catalog.SetMealTypes(types); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"meal_types": a.Catalog.MealTypes()})
}

// Mode serves GET and PUT /admin/mode.
func (a Admin) Mode(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		var body modeBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a.Mode.SetOffline(body.Offline)
	}
	writeJSON(w, http.StatusOK, modeBody{Offline: a.Mode.Offline()})
}

// Config serves GET and PUT /admin/config. Fields missing from a PUT body
// keep their current value.
func (a Admin) Config(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		t := a.Fleet.Tuning()
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := a.Fleet.UpdateTuning(t); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, a.Fleet.Tuning())
}

// Vehicles serves POST /admin/vehicles.
func (a Admin) Vehicles(w http.ResponseWriter, r *http.Request) {
	var body vehiclesBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Count < 1 {
		writeError(w, http.StatusBadRequest, "count must be at least 1")
		return
	}
	n := a.Fleet.RegisterVehicles(r.Context(), body.Count, body.Type)
	writeJSON(w, http.StatusOK, registeredBody{Registered: n})
}

// Reload serves POST /admin/reload.
func (a Admin) Reload(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, registeredBody{Registered: a.Fleet.Reload(r.Context())})
}
