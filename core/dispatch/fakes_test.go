package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kilianp07/catering/core/catalog"
	"github.com/kilianp07/catering/core/fleet"
	"github.com/kilianp07/catering/core/gate"
	"github.com/kilianp07/catering/core/groundcontrol"
	"github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/infra/logger"
)

// fakeGround is an in-memory ground control. Every route is
// [from, "taxiway", to] and every edge is one distance unit long.
type fakeGround struct {
	mu sync.Mutex

	nextID      int
	registerErr error
	spots       map[string]string

	routeErr      error
	returnRoute   []string
	arrivalErr    error
	panicOnArrive bool

	conflicts     int
	victim        string
	conflictCalls int

	moves    map[string]int
	started  []string
	finished map[string]int
	startErr error

	onMove     func()
	onRegister func()
	outbound   []string
}

func newFakeGround() *fakeGround {
	return &fakeGround{moves: map[string]int{}, finished: map[string]int{}}
}

func (f *fakeGround) RegisterVehicle(_ context.Context, _ string) (model.Registration, error) {
	if f.onRegister != nil {
		f.onRegister()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return model.Registration{}, f.registerErr
	}
	f.nextID++
	return model.Registration{
		VehicleID:    fmt.Sprintf("cat-%d", f.nextID),
		GarageNodeID: "garage",
		ServiceSpots: model.CopySpots(f.spots),
	}, nil
}

func (f *fakeGround) GetRoute(_ context.Context, from, to, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.routeErr != nil {
		return nil, f.routeErr
	}
	if from == "garage" {
		f.outbound = append(f.outbound, to)
	}
	if to == "garage" && f.returnRoute != nil {
		return f.returnRoute, nil
	}
	return []string{from, "taxiway", to}, nil
}

func (f *fakeGround) RequestMove(_ context.Context, vehicleID, _, _, _ string) (float64, error) {
	if f.onMove != nil {
		f.onMove()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves[vehicleID]++
	if f.conflicts > 0 {
		if f.victim == "" {
			f.victim = vehicleID
		}
		if f.victim == vehicleID && f.conflictCalls < f.conflicts {
			f.conflictCalls++
			return 0, groundcontrol.ErrConflict
		}
	}
	return 1, nil
}

func (f *fakeGround) NotifyArrival(_ context.Context, _, _, _ string) error {
	f.mu.Lock()
	explode := f.panicOnArrive
	f.panicOnArrive = false
	err := f.arrivalErr
	f.mu.Unlock()
	if explode {
		panic("arrival handler exploded")
	}
	return err
}

func (f *fakeGround) NotifyStart(_ context.Context, aircraftID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, aircraftID)
	return f.startErr
}

func (f *fakeGround) NotifyFinish(_ context.Context, aircraftID string, totalMeals int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished[aircraftID] = totalMeals
	return nil
}

func (f *fakeGround) outboundDestinations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outbound...)
}

func (f *fakeGround) movesOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves[id]
}

// recordingSink keeps every trip and delivery result.
type recordingSink struct {
	mu         sync.Mutex
	trips      []metrics.TripResult
	deliveries []metrics.DeliveryRecord
}

func (s *recordingSink) RecordTripResult(r metrics.TripResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = append(s.trips, r)
	return nil
}

func (s *recordingSink) RecordDelivery(r metrics.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, r)
	return nil
}

func (s *recordingSink) outcomes() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, r := range s.trips {
		out[r.Outcome]++
	}
	return out
}

func (s *recordingSink) meals() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, r := range s.trips {
		out = append(out, r.Meals)
	}
	return out
}

// recordingPublisher counts snapshots and keeps the last one.
type recordingPublisher struct {
	mu    sync.Mutex
	calls int
	last  []model.VehicleSnapshot
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, v []model.VehicleSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = v
	return p.err
}

func testConfig() Config {
	return Config{
		GlobalFleetLimit:   5,
		PerFlightLimit:     2,
		InitialVehicles:    3,
		VehicleType:        "catering",
		MovementSpeed:      10,
		ConflictRetryCount: 30,
		ConflictBackoffMS:  1,
		PollIntervalMS:     1,
		TransitUnitMS:      1,
		ServiceDwellMS:     1,
	}
}

type harness struct {
	orch     *Orchestrator
	registry *fleet.Registry
	gate     *gate.Gate
	ground   *fakeGround
	sink     *recordingSink
	pub      *recordingPublisher
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	log := logger.NopLogger{}
	cat, err := catalog.New(catalog.Config{MealTypes: []string{"Standard", "Vegetarian"}, Capacity: 100})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	h := &harness{
		registry: fleet.NewRegistry(cfg.GlobalFleetLimit, log),
		gate:     gate.NewGate(cfg.PollInterval(), log),
		ground:   newFakeGround(),
		sink:     &recordingSink{},
		pub:      &recordingPublisher{},
	}
	h.orch, err = NewOrchestrator(cfg, h.registry, h.gate, h.ground, cat, h.pub, log)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	h.orch.SetMetricsSink(h.sink)
	return h
}

var errBoom = errors.New("boom")
