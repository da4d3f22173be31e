package metrics

import (
	"context"

	"github.com/kilianp07/catering/core/events"
	coremetrics "github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records fleet occupancy
// for every snapshot. It stops when the context is canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	fr, ok := sink.(coremetrics.FleetSizeRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.FleetSnapshotEvent); ok {
					busy := 0
					for _, v := range e.Vehicles {
						if v.Status == model.StatusBusy {
							busy++
						}
					}
					_ = fr.RecordFleetSize(len(e.Vehicles), busy)
				}
			}
		}
	}()
}
