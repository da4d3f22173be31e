package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/catering/api"
	"github.com/kilianp07/catering/config"
	"github.com/kilianp07/catering/core/catalog"
	"github.com/kilianp07/catering/core/dispatch"
	"github.com/kilianp07/catering/core/dispatch/logging"
	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/fleet"
	"github.com/kilianp07/catering/core/gate"
	coregc "github.com/kilianp07/catering/core/groundcontrol"
	coremetrics "github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/core/status"
	"github.com/kilianp07/catering/infra/groundcontrol"
	"github.com/kilianp07/catering/infra/logger"
	"github.com/kilianp07/catering/infra/metrics"
	"github.com/kilianp07/catering/infra/mqtt"
	"github.com/kilianp07/catering/infra/nats"
	"github.com/kilianp07/catering/internal/eventbus"
)

// Service wires the orchestrator to its adapters and serves the HTTP API.
type Service struct {
	Orchestrator *dispatch.Orchestrator
	Mode         *groundcontrol.Switch
	Handler      http.Handler

	cfg    *config.Config
	bus    *eventbus.Bus[events.Event]
	sink   coremetrics.MetricsSink
	store  logging.LogStore
	log    logger.Logger
	closer []func() error
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	svc := &Service{cfg: cfg, log: logg, bus: eventbus.New[events.Event](64)}

	var online coregc.Client
	if cfg.GroundControl.BaseURL != "" {
		online = groundcontrol.NewHTTPClient(cfg.GroundControl)
	}
	svc.Mode = groundcontrol.NewSwitch(online, groundcontrol.NewOfflineClient(nil), cfg.GroundControl.Offline, logger.New("ground-control"))

	cat, err := catalog.New(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	publishers := []status.Publisher{status.NewBusPublisher(svc.bus)}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewStatusPublisher(cfg.MQTT)
		if err != nil {
			svc.cleanup()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.closer = append(svc.closer, func() error { pub.Disconnect(); return nil })
		publishers = append(publishers, pub)
	}
	if cfg.NATS.URL != "" {
		pub, err := nats.NewStatusPublisher(cfg.NATS)
		if err != nil {
			svc.cleanup()
			return nil, err
		}
		svc.closer = append(svc.closer, pub.Close)
		publishers = append(publishers, pub)
	}

	statusPub := status.NewAsyncPublisher(status.NewMultiPublisher(publishers...), logger.New("status"))
	svc.closer = append(svc.closer, statusPub.Close)

	if svc.sink, err = svc.buildSink(); err != nil {
		svc.cleanup()
		return nil, err
	}

	svc.store, err = logging.Open(cfg.Logging.Options())
	if err != nil {
		svc.cleanup()
		return nil, fmt.Errorf("trip log: %w", err)
	}
	svc.closer = append(svc.closer, svc.store.Close)

	orch, err := dispatch.NewOrchestrator(
		cfg.Dispatch,
		fleet.NewRegistry(cfg.Dispatch.GlobalFleetLimit, logger.New("fleet")),
		gate.NewGate(cfg.Dispatch.PollInterval(), logger.New("gate")),
		svc.Mode,
		cat,
		statusPub,
		logger.New("dispatch"),
	)
	if err != nil {
		svc.cleanup()
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	orch.SetMetricsSink(svc.sink)
	orch.SetEventBus(svc.bus)
	orch.SetLogStore(svc.store)
	svc.Orchestrator = orch

	svc.Handler = api.NewRouter(api.Deps{
		Orchestrator: orch,
		Catalog:      cat,
		Mode:         svc.Mode,
		Trips:        svc.store,
		Bus:          svc.bus,
		AdminToken:   cfg.HTTP.AdminToken,
	})
	return svc, nil
}

func (s *Service) buildSink() (coremetrics.MetricsSink, error) {
	var sinks []coremetrics.MetricsSink
	if s.cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(s.cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if s.cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(s.cfg.Metrics)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			s.closer = append(s.closer, func() error { is.Close(); return nil })
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

// Run seeds the fleet, serves the API and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	n := s.Orchestrator.RegisterVehicles(ctx, s.cfg.Dispatch.InitialVehicles, "")
	s.log.Infof("fleet seeded with %d of %d vehicles", n, s.cfg.Dispatch.InitialVehicles)

	srv := &http.Server{Addr: s.cfg.HTTP.Address, Handler: s.Handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.cleanup()
	s.bus.Close()
	return err
}

func (s *Service) cleanup() error {
	var errs []error
	for i := len(s.closer) - 1; i >= 0; i-- {
		if err := s.closer[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closer = nil
	return errors.Join(errs...)
}
