// Package dispatch turns catering requests into vehicle trips.
//
// A request is split into batches of at most two vehicles, each carrying up
// to one vehicle capacity of meals. Every trip acquires or registers a
// vehicle, drives it to the aircraft edge by edge under ground-control
// permission, services the aircraft and drives back. Trip failures are
// contained: the vehicle is returned to the pool and the request carries on.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/kilianp07/catering/core/dispatch/logging"
	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/fleet"
	"github.com/kilianp07/catering/core/gate"
	"github.com/kilianp07/catering/core/groundcontrol"
	"github.com/kilianp07/catering/core/logger"
	"github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/core/status"
	"github.com/kilianp07/catering/internal/eventbus"
)

// batchWidth is the most vehicles sent to one aircraft in a single batch.
const batchWidth = 2

// MealCatalog tells which meal types are accepted and how many meals fit in
// one vehicle.
type MealCatalog interface {
	Allowed(mealType string) bool
	Capacity() int
}

// Orchestrator drives catering requests through the fleet.
type Orchestrator struct {
	cfg       Config
	registry  *fleet.Registry
	gate      *gate.Gate
	client    groundcontrol.Client
	catalog   MealCatalog
	publisher status.Publisher
	log       logger.Logger

	mu      sync.Mutex
	tuning  Tuning
	metrics metrics.MetricsSink
	bus     *eventbus.Bus[events.Event]
	store   logging.LogStore

	deliveries sync.WaitGroup
	newID      func() string
}

// NewOrchestrator creates an orchestrator. cfg is completed with defaults and
// validated. publisher may be nil.
func NewOrchestrator(cfg Config, reg *fleet.Registry, g *gate.Gate, client groundcontrol.Client, catalog MealCatalog, publisher status.Publisher, log logger.Logger) (*Orchestrator, error) {
	if reg == nil || g == nil || client == nil || catalog == nil || log == nil {
		return nil, ErrNilParameter
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch config: %w", err)
	}
	if publisher == nil {
		publisher = status.NopPublisher{}
	}
	return &Orchestrator{
		cfg:       cfg,
		registry:  reg,
		gate:      g,
		client:    client,
		catalog:   catalog,
		publisher: publisher,
		log:       log,
		tuning: Tuning{
			ConflictRetryCount: cfg.ConflictRetryCount,
			MovementSpeed:      cfg.MovementSpeed,
			NumberOfVehicles:   cfg.InitialVehicles,
		},
		newID: func() string { return uuid.NewString() },
	}, nil
}

// SetMetricsSink configures where trip results are recorded.
func (o *Orchestrator) SetMetricsSink(sink metrics.MetricsSink) {
	o.mu.Lock()
	o.metrics = sink
	o.mu.Unlock()
}

// SetEventBus configures the bus receiving trip and delivery events.
func (o *Orchestrator) SetEventBus(bus *eventbus.Bus[events.Event]) {
	o.mu.Lock()
	o.bus = bus
	o.mu.Unlock()
}

// SetLogStore configures the store used to persist trip records.
func (o *Orchestrator) SetLogStore(store logging.LogStore) {
	o.mu.Lock()
	o.store = store
	o.mu.Unlock()
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() Config { return o.cfg }

// Tuning returns the current runtime parameters.
func (o *Orchestrator) Tuning() Tuning {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tuning
}

// UpdateTuning replaces the runtime parameters. Trips already on the move
// keep the values they started with.
func (o *Orchestrator) UpdateTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	o.mu.Lock()
	o.tuning = t
	o.mu.Unlock()
	o.log.Infof("tuning updated: retries=%d speed=%.1f vehicles=%d", t.ConflictRetryCount, t.MovementSpeed, t.NumberOfVehicles)
	return nil
}

// Fleet returns a snapshot of every vehicle ordered by id.
func (o *Orchestrator) Fleet() []model.VehicleSnapshot {
	return o.registry.AllVehicles()
}

// Submit validates req and processes it in the background. The returned
// result only reports whether the request was accepted; trip outcomes are
// observed through the publisher, events and the trip log.
func (o *Orchestrator) Submit(ctx context.Context, req model.DeliveryRequest) (model.DeliveryResult, error) {
	valid, err := o.validate(req)
	if err != nil {
		return model.DeliveryResult{}, err
	}
	res := model.DeliveryResult{
		Status:     "success",
		Waiting:    o.registry.Saturated(),
		TotalMeals: valid.TotalMeals(),
	}
	if res.Waiting {
		o.log.Infof("no catering vehicle free for flight %s, request will wait", req.AircraftID)
	}
	bg := context.WithoutCancel(ctx)
	o.deliveries.Add(1)
	go func() {
		defer o.deliveries.Done()
		o.deliver(bg, valid)
	}()
	return res, nil
}

// Deliver validates req and processes it before returning. Trips reports how
// many trips were started.
func (o *Orchestrator) Deliver(ctx context.Context, req model.DeliveryRequest) (model.DeliveryResult, error) {
	valid, err := o.validate(req)
	if err != nil {
		return model.DeliveryResult{}, err
	}
	res := model.DeliveryResult{
		Status:     "success",
		Waiting:    o.registry.Saturated(),
		TotalMeals: valid.TotalMeals(),
	}
	res.Trips = o.deliver(context.WithoutCancel(ctx), valid)
	return res, nil
}

// Wait blocks until every request accepted by Submit has finished.
func (o *Orchestrator) Wait() {
	o.deliveries.Wait()
}

// validate keeps the orders whose meal type is known and whose count is
// positive. The returned request carries only those orders.
func (o *Orchestrator) validate(req model.DeliveryRequest) (model.DeliveryRequest, error) {
	req.AircraftID = strings.TrimSpace(req.AircraftID)
	if req.AircraftID == "" {
		return model.DeliveryRequest{}, fmt.Errorf("%w: aircraft id is required", ErrInvalidInput)
	}
	kept := make([]model.MealOrder, 0, len(req.Meals))
	for _, m := range req.Meals {
		switch {
		case !o.catalog.Allowed(m.MealType):
			o.log.Warnf("invalid meal type %q for flight %s skipped", m.MealType, req.AircraftID)
		case m.Count <= 0:
			o.log.Warnf("meal %s with count %d for flight %s skipped", m.MealType, m.Count, req.AircraftID)
		default:
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return model.DeliveryRequest{}, fmt.Errorf("%w: no valid meals for flight %s", ErrInvalidInput, req.AircraftID)
	}
	req.Meals = kept
	return req, nil
}

// deliver runs the batch loop for one validated request and returns the
// number of trips started.
func (o *Orchestrator) deliver(ctx context.Context, req model.DeliveryRequest) int {
	flight := req.AircraftID
	total := req.TotalMeals()
	start := time.Now()
	o.log.Infof("catering started for flight %s: %d meals", flight, total)
	o.emit(events.DeliveryEvent{AircraftID: flight, Action: "started", TotalMeals: total, Time: start})
	if err := o.client.NotifyStart(ctx, flight); err != nil {
		o.log.Warnf("start notification for flight %s failed: %v", flight, err)
	}

	var (
		mu     sync.Mutex
		failed int
		trips  int
	)
	capacity := o.catalog.Capacity()
	remaining := total
	for remaining > 0 {
		if err := o.gate.WaitUntilBelow(ctx, flight, o.cfg.PerFlightLimit); err != nil {
			o.log.Errorf("flight %s: %v", flight, err)
			break
		}
		width := 1
		if remaining > capacity {
			width = batchWidth
		}
		if err := o.waitForFleet(ctx); err != nil {
			o.log.Errorf("flight %s: %v", flight, err)
			break
		}
		var wg conc.WaitGroup
		for i := 0; i < width; i++ {
			meals := min(capacity, remaining-i*capacity)
			if err := o.gate.WaitUntilBelow(ctx, flight, o.cfg.PerFlightLimit); err != nil {
				o.log.Errorf("flight %s: %v", flight, err)
				break
			}
			epoch := o.gate.Increment(flight)
			trips++
			wg.Go(func() {
				if !o.runDelivery(ctx, req, meals, epoch) {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			})
		}
		if r := wg.WaitAndRecover(); r != nil {
			o.log.Errorf("catering trip for flight %s panicked: %v", flight, r.Value)
			mu.Lock()
			failed++
			mu.Unlock()
		}
		remaining -= width * capacity
		if remaining < 0 {
			remaining = 0
		}
	}

	if err := o.client.NotifyFinish(ctx, flight, total); err != nil {
		o.log.Warnf("finish notification for flight %s failed: %v", flight, err)
	}
	end := time.Now()
	deliveriesTotal.Inc()
	o.emit(events.DeliveryEvent{AircraftID: flight, Action: "finished", TotalMeals: total, Time: end})
	if dr, ok := o.sink().(metrics.DeliveryRecorder); ok {
		rec := metrics.DeliveryRecord{AircraftID: flight, TotalMeals: total, Trips: trips, Failed: failed, Start: start, End: end}
		if err := dr.RecordDelivery(rec); err != nil {
			o.log.Errorf("delivery metrics error: %v", err)
		}
	}
	o.log.Infof("catering finished for flight %s: %d trips, %d failed", flight, trips, failed)
	return trips
}

// waitForFleet polls while every vehicle is busy and the fleet is full.
func (o *Orchestrator) waitForFleet(ctx context.Context) error {
	if !o.registry.Saturated() {
		return nil
	}
	o.log.Infof("global vehicle limit reached, waiting for a vehicle to return")
	ticker := time.NewTicker(o.cfg.PollInterval())
	defer ticker.Stop()
	for o.registry.Saturated() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// RegisterVehicle asks ground control for a new vehicle and adds it to the
// fleet. It returns false when the fleet is full or registration failed.
func (o *Orchestrator) RegisterVehicle(ctx context.Context, vehicleType string) bool {
	if vehicleType == "" {
		vehicleType = o.cfg.VehicleType
	}
	if !o.registry.CanRegisterMore() {
		o.log.Warnf("global vehicle limit %d reached, not registering", o.registry.Limit())
		return false
	}
	reg, err := o.client.RegisterVehicle(ctx, vehicleType)
	if err != nil {
		o.log.Errorf("failed to register %s vehicle: %v", vehicleType, err)
		return false
	}
	if !o.registry.TryRegister(reg.VehicleID, reg.GarageNodeID, reg.ServiceSpots) {
		return false
	}
	o.publishFleet(ctx)
	return true
}

// RegisterVehicles registers up to n vehicles and returns how many were added.
func (o *Orchestrator) RegisterVehicles(ctx context.Context, n int, vehicleType string) int {
	added := 0
	for i := 0; i < n; i++ {
		if !o.RegisterVehicle(ctx, vehicleType) {
			break
		}
		added++
	}
	return added
}

// Reload empties the fleet and the flight counters, then registers the
// configured number of vehicles again. Trips still running keep their
// vehicles; those vehicles are no longer tracked once the trip ends, and
// their flight slots do not count against requests made after the reload.
func (o *Orchestrator) Reload(ctx context.Context) int {
	o.registry.Reset()
	o.gate.Reset()
	n := o.Tuning().NumberOfVehicles
	added := o.RegisterVehicles(ctx, n, o.cfg.VehicleType)
	o.log.Infof("fleet reloaded with %d of %d vehicles", added, n)
	o.publishFleet(ctx)
	return added
}

func (o *Orchestrator) sink() metrics.MetricsSink {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.metrics
}

func (o *Orchestrator) logStore() logging.LogStore {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store
}

func (o *Orchestrator) emit(e events.Event) {
	o.mu.Lock()
	bus := o.bus
	o.mu.Unlock()
	if bus != nil {
		bus.Publish(e)
	}
}

// publishFleet pushes the current snapshot to the status publisher. Failures
// are logged and never affect the caller.
func (o *Orchestrator) publishFleet(ctx context.Context) {
	snap := o.registry.AllVehicles()
	busy := 0
	for _, v := range snap {
		if v.Status == model.StatusBusy {
			busy++
		}
	}
	fleetBusyVehicles.Set(float64(busy))
	if err := o.publisher.Publish(ctx, snap); err != nil {
		o.log.Warnf("fleet status publish failed: %v", err)
	}
}
