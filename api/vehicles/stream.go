package vehicles

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/internal/eventbus"
)

// KeepAlive is how often an idle stream receives a comment line.
var KeepAlive = 15 * time.Second

// NewStreamHandler streams fleet snapshots as Server-Sent Events via
// GET /vehiclestatus. The current fleet is sent first, then every snapshot
// published on the bus.
func NewStreamHandler(bus *eventbus.Bus[events.Event], src FleetSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		sub := bus.Subscribe()
		defer bus.Unsubscribe(sub)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		initial := events.FleetSnapshotEvent{Vehicles: src.Fleet(), Time: time.Now().UTC()}
		if err := writeEvent(w, initial); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(KeepAlive)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case ev, ok := <-sub:
				if !ok {
					return
				}
				snap, ok := ev.(events.FleetSnapshotEvent)
				if !ok {
					continue
				}
				if err := writeEvent(w, snap); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})
}

func writeEvent(w http.ResponseWriter, ev events.FleetSnapshotEvent) error {
	if ev.Vehicles == nil {
		ev.Vehicles = []model.VehicleSnapshot{}
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.EventName(), data)
	return err
}
