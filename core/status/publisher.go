// Package status broadcasts fleet snapshots to observers. Publishing is best
// effort: the dispatch core logs failures and carries on.
package status

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/internal/eventbus"
)

// Publisher pushes the current fleet to its audience.
type Publisher interface {
	Publish(ctx context.Context, vehicles []model.VehicleSnapshot) error
}

// NopPublisher discards snapshots.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []model.VehicleSnapshot) error { return nil }

// MultiPublisher fans a snapshot out to several publishers. Every publisher
// is tried; errors are joined.
type MultiPublisher struct {
	Publishers []Publisher
}

// NewMultiPublisher creates a MultiPublisher, skipping nil entries.
func NewMultiPublisher(pubs ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range pubs {
		if p != nil {
			m.Publishers = append(m.Publishers, p)
		}
	}
	return m
}

func (m *MultiPublisher) Publish(ctx context.Context, vehicles []model.VehicleSnapshot) error {
	var errs []error
	for _, p := range m.Publishers {
		if err := p.Publish(ctx, vehicles); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BusPublisher emits snapshots as FleetSnapshotEvent on the event bus, which
// feeds the live status stream of the HTTP API.
type BusPublisher struct {
	bus *eventbus.Bus[events.Event]
	now func() time.Time
}

// NewBusPublisher wraps bus.
func NewBusPublisher(bus *eventbus.Bus[events.Event]) *BusPublisher {
	return &BusPublisher{bus: bus, now: time.Now}
}

func (p *BusPublisher) Publish(_ context.Context, vehicles []model.VehicleSnapshot) error {
	p.bus.Publish(events.FleetSnapshotEvent{Vehicles: vehicles, Time: p.now()})
	return nil
}
