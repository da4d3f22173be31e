// Package fleet holds the registry of catering vehicles. The registry is the
// only component allowed to change a vehicle's status or position and is safe
// for any number of concurrent callers.
package fleet

import (
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/catering/core/logger"
	"github.com/kilianp07/catering/core/model"
)

// Acquired describes a vehicle handed out by AcquireAvailable.
type Acquired struct {
	VehicleID    string
	BaseNode     string
	CurrentNode  string
	ServiceSpots map[string]string
	// Override is the service spot mapped to the flight id, if any.
	Override string
}

type vehicle struct {
	id    string
	base  string
	spots map[string]string
	state model.VehicleState
}

// Registry stores every known vehicle under a single mutex.
type Registry struct {
	mu       sync.RWMutex
	vehicles map[string]*vehicle
	limit    int
	log      logger.Logger
	now      func() time.Time
}

// NewRegistry creates an empty registry bounded by limit vehicles.
func NewRegistry(limit int, log logger.Logger) *Registry {
	return &Registry{
		vehicles: make(map[string]*vehicle),
		limit:    limit,
		log:      log,
		now:      time.Now,
	}
}

// Limit returns the global fleet ceiling.
func (r *Registry) Limit() int { return r.limit }

// TryRegister adds an Available vehicle if the fleet is below its ceiling.
// It returns false without mutation otherwise or when the id is taken.
func (r *Registry) TryRegister(id, base string, spots map[string]string) bool {
	return r.tryAdd(id, base, spots, false)
}

// TryRegisterBusy is TryRegister for a vehicle that is immediately assigned
// to the caller, so no other trip can acquire it in between.
func (r *Registry) TryRegisterBusy(id, base string, spots map[string]string) bool {
	return r.tryAdd(id, base, spots, true)
}

func (r *Registry) tryAdd(id, base string, spots map[string]string, busy bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		r.log.Warnf("refusing to register vehicle without id")
		return false
	}
	if _, exists := r.vehicles[id]; exists {
		r.log.Warnf("vehicle %s already registered", id)
		return false
	}
	if len(r.vehicles) >= r.limit {
		r.log.Warnf("global vehicle limit %d reached, cannot add %s", r.limit, id)
		return false
	}
	v := &vehicle{id: id, base: base, spots: model.CopySpots(spots), state: model.Available{At: base}}
	if busy {
		v.state = model.Busy{At: base, Since: r.now()}
	}
	r.vehicles[id] = v
	r.log.Infow("vehicle registered", map[string]any{"vehicle_id": id, "base_node": base, "busy": busy})
	return true
}

// CanRegisterMore reports whether the fleet is below its ceiling. The answer
// is advisory: TryRegister may still fail under contention.
func (r *Registry) CanRegisterMore() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vehicles) < r.limit
}

// AcquireAvailable picks any Available vehicle and marks it Busy. Which
// vehicle is chosen is unspecified and varies between calls.
func (r *Registry) AcquireAvailable(flightID string) (Acquired, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vehicles {
		if v.state.Status() != model.StatusAvailable {
			continue
		}
		at := v.state.Node()
		v.state = model.Busy{At: at, Since: r.now()}
		r.log.Infof("acquired vehicle %s for flight %s", v.id, flightID)
		return Acquired{
			VehicleID:    v.id,
			BaseNode:     v.base,
			CurrentNode:  at,
			ServiceSpots: model.CopySpots(v.spots),
			Override:     v.spots[flightID],
		}, true
	}
	r.log.Debugf("no free vehicle for flight %s", flightID)
	return Acquired{}, false
}

// Lookup returns the registration data of a vehicle.
func (r *Registry) Lookup(id string) (Acquired, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	if !ok {
		return Acquired{}, false
	}
	return Acquired{VehicleID: v.id, BaseNode: v.base, CurrentNode: v.state.Node(), ServiceSpots: model.CopySpots(v.spots)}, true
}

// MarkBusy flips a vehicle to Busy, keeping its position.
func (r *Registry) MarkBusy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		r.log.Warnf("mark busy: unknown vehicle %s", id)
		return
	}
	if _, busy := v.state.(model.Busy); busy {
		return
	}
	v.state = model.Busy{At: v.state.Node(), Since: r.now()}
	r.log.Infof("vehicle %s marked Busy", id)
}

// MarkAvailable parks a vehicle at base and makes it acquirable again.
func (r *Registry) MarkAvailable(id, base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		r.log.Warnf("mark available: unknown vehicle %s", id)
		return
	}
	v.state = model.Available{At: base}
	r.log.Infof("vehicle %s marked Available at %s", id, base)
}

// UpdateCurrentNode records the last known position of a vehicle.
func (r *Registry) UpdateCurrentNode(id, node string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return
	}
	switch st := v.state.(type) {
	case model.Busy:
		st.At = node
		v.state = st
	case model.Available:
		v.state = model.Available{At: node}
	}
}

// AllVehicles returns a consistent copy of the fleet sorted by vehicle id.
func (r *Registry) AllVehicles() []model.VehicleSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.VehicleSnapshot, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, model.VehicleSnapshot{
			VehicleID:    v.id,
			Status:       v.state.Status(),
			BaseNode:     v.base,
			CurrentNode:  v.state.Node(),
			ServiceSpots: model.CopySpots(v.spots),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// Count returns the number of registered vehicles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vehicles)
}

// BusyCount returns the number of vehicles currently Busy.
func (r *Registry) BusyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, v := range r.vehicles {
		if v.state.Status() == model.StatusBusy {
			n++
		}
	}
	return n
}

// Saturated reports whether the fleet is at its ceiling with every vehicle
// Busy, checked under one lock.
func (r *Registry) Saturated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.vehicles) < r.limit {
		return false
	}
	for _, v := range r.vehicles {
		if v.state.Status() == model.StatusAvailable {
			return false
		}
	}
	return true
}

// HasAvailable reports whether at least one vehicle is Available.
func (r *Registry) HasAvailable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vehicles {
		if v.state.Status() == model.StatusAvailable {
			return true
		}
	}
	return false
}

// Reset drops every vehicle.
func (r *Registry) Reset() {
	r.mu.Lock()
	n := len(r.vehicles)
	r.vehicles = make(map[string]*vehicle)
	r.mu.Unlock()
	r.log.Infof("registry reset, %d vehicles removed", n)
}
