package groundcontrol

import (
	"context"
	"sync/atomic"

	"github.com/kilianp07/catering/core/groundcontrol"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/infra/logger"
)

// Switch forwards every call to the online or the offline client depending
// on the current mode. The mode can be flipped at any time; a call in
// flight finishes on the client it started with.
type Switch struct {
	online  groundcontrol.Client
	offline groundcontrol.Client
	useMock atomic.Bool
	log     logger.Logger
}

// NewSwitch creates a switch starting in the given mode.
func NewSwitch(online, offline groundcontrol.Client, startOffline bool, log logger.Logger) *Switch {
	if log == nil {
		log = logger.New("ground-control")
	}
	s := &Switch{online: online, offline: offline, log: log}
	s.useMock.Store(startOffline || online == nil)
	return s
}

// SetOffline selects the offline client when true.
func (s *Switch) SetOffline(offline bool) {
	if !offline && s.online == nil {
		s.log.Warnf("no online ground control configured, staying offline")
		return
	}
	if prev := s.useMock.Swap(offline); prev != offline {
		s.log.Infof("ground control mode changed, offline=%t", offline)
	}
}

// Offline reports whether the offline client is in use.
func (s *Switch) Offline() bool { return s.useMock.Load() }

func (s *Switch) current() groundcontrol.Client {
	if s.useMock.Load() {
		return s.offline
	}
	return s.online
}

func (s *Switch) RegisterVehicle(ctx context.Context, vehicleType string) (model.Registration, error) {
	return s.current().RegisterVehicle(ctx, vehicleType)
}

func (s *Switch) GetRoute(ctx context.Context, from, to, vehicleType string) ([]string, error) {
	return s.current().GetRoute(ctx, from, to, vehicleType)
}

func (s *Switch) RequestMove(ctx context.Context, vehicleID, vehicleType, from, to string) (float64, error) {
	return s.current().RequestMove(ctx, vehicleID, vehicleType, from, to)
}

func (s *Switch) NotifyArrival(ctx context.Context, vehicleID, vehicleType, node string) error {
	return s.current().NotifyArrival(ctx, vehicleID, vehicleType, node)
}

func (s *Switch) NotifyStart(ctx context.Context, aircraftID string) error {
	return s.current().NotifyStart(ctx, aircraftID)
}

func (s *Switch) NotifyFinish(ctx context.Context, aircraftID string, totalMeals int) error {
	return s.current().NotifyFinish(ctx, aircraftID, totalMeals)
}
