package status

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/catering/core/logger"
	"github.com/kilianp07/catering/core/model"
)

// DefaultPublishTimeout bounds one background publish.
const DefaultPublishTimeout = 5 * time.Second

// AsyncPublisher hands snapshots to a background worker so callers never
// wait on a slow broker. Only the latest pending snapshot is kept: a newer
// fleet state replaces one that has not been sent yet.
type AsyncPublisher struct {
	next    Publisher
	log     logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending []model.VehicleSnapshot
	queued  bool
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewAsyncPublisher starts the worker publishing to next.
func NewAsyncPublisher(next Publisher, log logger.Logger) *AsyncPublisher {
	p := &AsyncPublisher{
		next:    next,
		log:     log,
		timeout: DefaultPublishTimeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish queues vehicles and returns immediately. It never fails.
func (p *AsyncPublisher) Publish(_ context.Context, vehicles []model.VehicleSnapshot) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.pending = vehicles
	p.queued = true
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close flushes the pending snapshot and stops the worker.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	close(p.done)
	p.wg.Wait()
	return nil
}

func (p *AsyncPublisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.done:
			p.flush()
			return
		}
	}
}

func (p *AsyncPublisher) flush() {
	p.mu.Lock()
	vehicles, ok := p.pending, p.queued
	p.pending, p.queued = nil, false
	p.mu.Unlock()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.next.Publish(ctx, vehicles); err != nil {
		p.log.Warnf("fleet status publish failed: %v", err)
	}
}
