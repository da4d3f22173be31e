// Package nats publishes fleet snapshots on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/infra/logger"
)

// DefaultSubject is used when Config.Subject is empty.
const DefaultSubject = "catering.vehicles.status"

// Config locates the NATS server.
type Config struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
	Name    string `json:"name"`
}

// SetDefaults fills the subject and connection name.
func (c *Config) SetDefaults() {
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Name == "" {
		c.Name = "catering-dispatch"
	}
}

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// StatusPublisher sends every fleet snapshot to the configured subject.
type StatusPublisher struct {
	nc      conn
	subject string
	log     logger.Logger
	now     func() time.Time
}

var connect = func(cfg Config, log logger.Logger) (conn, error) {
	return nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
	)
}

// NewStatusPublisher connects to cfg.URL.
func NewStatusPublisher(cfg Config) (*StatusPublisher, error) {
	cfg.SetDefaults()
	log := logger.New("nats_status")
	nc, err := connect(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}
	log.Infof("publishing fleet status on %s", cfg.Subject)
	return &StatusPublisher{nc: nc, subject: cfg.Subject, log: log, now: time.Now}, nil
}

func (p *StatusPublisher) Publish(ctx context.Context, vehicles []model.VehicleSnapshot) error {
	if vehicles == nil {
		vehicles = []model.VehicleSnapshot{}
	}
	data, err := json.Marshal(events.FleetSnapshotEvent{Vehicles: vehicles, Time: p.now().UTC()})
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *StatusPublisher) Close() error {
	return p.nc.Drain()
}
