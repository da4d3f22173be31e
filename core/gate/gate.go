// Package gate bounds how many vehicles work a single flight at once.
//
// Counters are plain bookkeeping: the gate does not know which vehicles are
// involved and admission is polled, not reserved. Callers wait with
// WaitUntilBelow and then Increment; two callers may both pass the wait
// before either increments.
package gate

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/catering/core/logger"
)

// DefaultPollInterval is used when NewGate receives a non-positive interval.
const DefaultPollInterval = time.Second

// Gate holds per-flight vehicle counters.
type Gate struct {
	mu       sync.Mutex
	counts   map[string]int
	epoch    uint64
	interval time.Duration
	log      logger.Logger
}

// NewGate creates a gate polling at the given interval.
func NewGate(interval time.Duration, log logger.Logger) *Gate {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Gate{counts: make(map[string]int), interval: interval, log: log}
}

// Increment records one more vehicle dispatched for flight. The returned
// epoch is handed back to Release when the vehicle leaves.
func (g *Gate) Increment(flight string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[flight]++
	return g.epoch
}

// Decrement records a vehicle leaving flight. The counter never goes below
// zero; entries that reach zero are evicted.
func (g *Gate) Decrement(flight string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decrement(flight)
}

// Release is Decrement for a slot taken in epoch. Slots taken before the
// last Reset were already cleared and are ignored.
func (g *Gate) Release(flight string, epoch uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if epoch != g.epoch {
		g.log.Debugf("release for flight %s from before reset ignored", flight)
		return
	}
	g.decrement(flight)
}

func (g *Gate) decrement(flight string) {
	n, ok := g.counts[flight]
	if !ok {
		g.log.Warnf("decrement on idle flight %s ignored", flight)
		return
	}
	if n <= 1 {
		delete(g.counts, flight)
		return
	}
	g.counts[flight] = n - 1
}

// Count returns the current counter for flight.
func (g *Gate) Count(flight string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[flight]
}

// WaitUntilBelow blocks until the counter for flight is strictly below
// limit. Only ctx ends the wait early; there is no fairness between waiters.
func (g *Gate) WaitUntilBelow(ctx context.Context, flight string, limit int) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		n := g.Count(flight)
		if n < limit {
			return nil
		}
		g.log.Debugf("waiting: %d vehicles already working flight %s", n, flight)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Snapshot returns a copy of all non-zero counters.
func (g *Gate) Snapshot() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.counts))
	for k, v := range g.counts {
		out[k] = v
	}
	return out
}

// Reset clears every counter.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.counts = make(map[string]int)
	g.epoch++
	g.mu.Unlock()
}
