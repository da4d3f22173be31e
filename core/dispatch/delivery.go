package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kilianp07/catering/core/dispatch/logging"
	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/fleet"
	"github.com/kilianp07/catering/core/groundcontrol"
	"github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/core/model"
)

// runDelivery performs one trip carrying meals to req.AircraftID. The flight
// counter is decremented exactly once and an acquired vehicle is always left
// Available, whatever happens on the way, including a panic.
func (o *Orchestrator) runDelivery(ctx context.Context, req model.DeliveryRequest, meals int, epoch uint64) bool {
	flight := req.AircraftID
	t := newTrip(o.newID(), flight, meals, o.emitTrip)
	var (
		veh      fleet.Acquired
		acquired bool
	)
	err := errTripInterrupted
	defer func() {
		if err != nil && acquired {
			o.registry.MarkAvailable(veh.VehicleID, veh.BaseNode)
			o.log.Warnf("vehicle %s released after failed trip for flight %s", veh.VehicleID, flight)
			o.publishFleet(ctx)
		}
		o.gate.Release(flight, epoch)
		o.finishTrip(ctx, t, err)
	}()

	v, aerr := o.obtainVehicle(ctx, flight)
	if aerr != nil {
		err = aerr
		return false
	}
	veh, acquired = v, true
	t.VehicleID = veh.VehicleID
	if ferr := t.fire(ctx, evAcquire); ferr != nil {
		o.log.Debugf("trip %s: %v", t.ID, ferr)
	}
	err = o.drive(ctx, t, req, veh)
	return err == nil
}

// obtainVehicle hands out a free vehicle, registering a new one while the
// fleet is below its ceiling, and otherwise polls until one is released.
func (o *Orchestrator) obtainVehicle(ctx context.Context, flight string) (fleet.Acquired, error) {
	if v, ok := o.registry.AcquireAvailable(flight); ok {
		return v, nil
	}
	if o.registry.CanRegisterMore() {
		reg, err := o.client.RegisterVehicle(ctx, o.cfg.VehicleType)
		if err != nil {
			o.log.Errorf("failed to register catering vehicle for flight %s: %v", flight, err)
			return fleet.Acquired{}, fmt.Errorf("register vehicle: %w", err)
		}
		if o.registry.TryRegisterBusy(reg.VehicleID, reg.GarageNodeID, reg.ServiceSpots) {
			o.log.Infof("registered catering vehicle %s for flight %s", reg.VehicleID, flight)
			return fleet.Acquired{
				VehicleID:    reg.VehicleID,
				BaseNode:     reg.GarageNodeID,
				CurrentNode:  reg.GarageNodeID,
				ServiceSpots: model.CopySpots(reg.ServiceSpots),
				Override:     reg.ServiceSpots[flight],
			}, nil
		}
		o.log.Warnf("fleet filled up while registering for flight %s, waiting for a vehicle", flight)
	}
	ticker := time.NewTicker(o.cfg.PollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fleet.Acquired{}, ctx.Err()
		case <-ticker.C:
		}
		if v, ok := o.registry.AcquireAvailable(flight); ok {
			return v, nil
		}
	}
}

// drive moves an acquired vehicle to the aircraft, services it and brings
// the vehicle back to its base.
func (o *Orchestrator) drive(ctx context.Context, t *trip, req model.DeliveryRequest, veh fleet.Acquired) error {
	tun := o.Tuning()
	vt := o.cfg.VehicleType
	o.registry.MarkBusy(veh.VehicleID)
	o.publishFleet(ctx)

	t.Destination = Destination(req, veh)
	route, err := o.client.GetRoute(ctx, veh.BaseNode, t.Destination, vt)
	if err == nil {
		err = groundcontrol.ValidateRoute(route)
	}
	if err != nil {
		return fmt.Errorf("route %s -> %s: %w", veh.BaseNode, t.Destination, err)
	}
	_ = t.fire(ctx, evDepart)
	if err := o.traverse(ctx, t, route, tun); err != nil {
		return err
	}

	_ = t.fire(ctx, evService)
	o.log.Infof("vehicle %s servicing flight %s with %d meals", veh.VehicleID, t.AircraftID, t.Meals)
	if err := sleep(ctx, o.cfg.ServiceDwell()); err != nil {
		return err
	}

	_ = t.fire(ctx, evReturn)
	back, err := o.client.GetRoute(ctx, t.Destination, veh.BaseNode, vt)
	if err == nil {
		err = groundcontrol.ValidateRoute(back)
	}
	if err != nil {
		o.log.Warnf("no route back to base for vehicle %s: %v", veh.VehicleID, err)
	} else if err := o.traverse(ctx, t, back, tun); err != nil {
		return err
	}

	o.registry.MarkAvailable(veh.VehicleID, veh.BaseNode)
	o.publishFleet(ctx)
	_ = t.fire(ctx, evComplete)
	return nil
}

// traverse walks route edge by edge: permission, transit time, arrival.
func (o *Orchestrator) traverse(ctx context.Context, t *trip, route []string, tun Tuning) error {
	vt := o.cfg.VehicleType
	for i := 0; i+1 < len(route); i++ {
		from, to := route[i], route[i+1]
		dist, err := o.requestMove(ctx, t, from, to, tun.ConflictRetryCount)
		if err != nil {
			return err
		}
		if err := sleep(ctx, TransitTime(dist, tun.MovementSpeed, o.cfg.TransitUnit())); err != nil {
			return err
		}
		if err := o.client.NotifyArrival(ctx, t.VehicleID, vt, to); err != nil {
			return fmt.Errorf("arrival of %s at %s: %w", t.VehicleID, to, err)
		}
		o.registry.UpdateCurrentNode(t.VehicleID, to)
		o.publishFleet(ctx)
	}
	return nil
}

// requestMove asks for permission to move along one edge, retrying conflicts
// at a constant interval. attempts bounds the total number of requests.
func (o *Orchestrator) requestMove(ctx context.Context, t *trip, from, to string, attempts int) (float64, error) {
	if attempts < 1 {
		attempts = 1
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(o.cfg.ConflictBackoff())
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	var dist float64
	op := func() error {
		d, err := o.client.RequestMove(ctx, t.VehicleID, o.cfg.VehicleType, from, to)
		if errors.Is(err, groundcontrol.ErrConflict) {
			t.Conflicts++
			moveConflicts.Inc()
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		dist = d
		return nil
	}
	notify := func(err error, wait time.Duration) {
		o.log.Warnf("move %s -> %s for vehicle %s refused, retrying in %s", from, to, t.VehicleID, wait)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if errors.Is(err, groundcontrol.ErrConflict) {
			return 0, fmt.Errorf("move %s -> %s after %d attempts: %w: %w", from, to, attempts, ErrRetriesExhausted, err)
		}
		return 0, fmt.Errorf("move %s -> %s: %w", from, to, err)
	}
	return dist, nil
}

// Destination picks where a vehicle delivers. The drop point is the
// vehicle's service spot for the requested node, else its spot for the
// aircraft, else the node itself (the aircraft id when no node is given),
// suffixed with the vehicle id so vehicles working the same flight never
// share a drop point.
func Destination(req model.DeliveryRequest, veh fleet.Acquired) string {
	point := req.NodeID
	if spot, ok := veh.ServiceSpots[req.NodeID]; ok && req.NodeID != "" {
		point = spot
	} else if veh.Override != "" {
		point = veh.Override
	} else if point == "" {
		point = req.AircraftID
	}
	return point + "_" + veh.VehicleID
}

// TransitTime converts a distance into the time a vehicle needs to cover it,
// rounded up to whole units.
func TransitTime(distance, speed float64, unit time.Duration) time.Duration {
	if distance <= 0 || speed <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(distance/speed)) * unit
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) emitTrip(t *trip) {
	ev := events.TripEvent{
		TripID:     t.ID,
		AircraftID: t.AircraftID,
		VehicleID:  t.VehicleID,
		Phase:      t.Phase(),
		Meals:      t.Meals,
		Time:       time.Now(),
	}
	if t.err != nil {
		ev.Err = t.err.Error()
	}
	o.emit(ev)
}

// finishTrip settles the trip outcome and records it everywhere it is
// observed: prometheus, the metrics sink and the trip log.
func (o *Orchestrator) finishTrip(ctx context.Context, t *trip, err error) {
	outcome := metrics.OutcomeCompleted
	if err != nil {
		outcome = metrics.OutcomeFailed
		if t.VehicleID == "" {
			outcome = metrics.OutcomeAborted
		}
		t.fail(ctx, err)
		o.log.Errorf("catering trip %s for flight %s %s in phase %s: %v", t.ID, t.AircraftID, outcome, t.Reached(), err)
	}
	end := time.Now()
	tripsTotal.WithLabelValues(outcome).Inc()
	tripDuration.WithLabelValues(outcome).Observe(end.Sub(t.Start).Seconds())

	if sink := o.sink(); sink != nil {
		res := metrics.TripResult{
			TripID:     t.ID,
			AircraftID: t.AircraftID,
			VehicleID:  t.VehicleID,
			Meals:      t.Meals,
			Outcome:    outcome,
			Phase:      t.Reached(),
			Conflicts:  t.Conflicts,
			Start:      t.Start,
			End:        end,
		}
		if merr := sink.RecordTripResult(res); merr != nil {
			o.log.Errorf("metrics error: %v", merr)
		}
	}
	if store := o.logStore(); store != nil {
		rec := logging.TripRecord{
			Timestamp:   end,
			TripID:      t.ID,
			AircraftID:  t.AircraftID,
			VehicleID:   t.VehicleID,
			Destination: t.Destination,
			Meals:       t.Meals,
			Outcome:     outcome,
			Phase:       t.Reached(),
			Conflicts:   t.Conflicts,
			DurationMS:  end.Sub(t.Start).Milliseconds(),
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if lerr := store.Append(ctx, rec); lerr != nil {
			o.log.Errorf("trip log error: %v", lerr)
		}
	}
}
