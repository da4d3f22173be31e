package groundcontrol

import (
	"context"

	"github.com/google/uuid"

	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/infra/logger"
)

// Canned answers of the offline client.
const (
	OfflineGarage       = "garage_catering_1"
	OfflineIntermediate = "mock_intermediate"
	OfflineDistance     = 50.0
)

// OfflineClient answers every ground-control call locally so the service
// keeps working without the external services.
type OfflineClient struct {
	log logger.Logger
}

func NewOfflineClient(log logger.Logger) *OfflineClient {
	if log == nil {
		log = logger.New("ground-control-offline")
	}
	return &OfflineClient{log: log}
}

func (c *OfflineClient) RegisterVehicle(_ context.Context, vehicleType string) (model.Registration, error) {
	id := "catering_" + uuid.NewString()[:8]
	c.log.Infof("offline: registering %s vehicle %s", vehicleType, id)
	return model.Registration{
		VehicleID:    id,
		GarageNodeID: OfflineGarage,
		ServiceSpots: map[string]string{
			"parking_1": "parking_1_catering_1",
			"parking_2": "parking_2_catering_1",
		},
	}, nil
}

func (c *OfflineClient) GetRoute(_ context.Context, from, to, _ string) ([]string, error) {
	c.log.Debugf("offline: route %s -> %s", from, to)
	return []string{from, OfflineIntermediate, to}, nil
}

func (c *OfflineClient) RequestMove(_ context.Context, vehicleID, _, from, to string) (float64, error) {
	c.log.Debugf("offline: move %s %s -> %s", vehicleID, from, to)
	return OfflineDistance, nil
}

func (c *OfflineClient) NotifyArrival(_ context.Context, vehicleID, _, node string) error {
	c.log.Debugf("offline: %s arrived at %s", vehicleID, node)
	return nil
}

func (c *OfflineClient) NotifyStart(_ context.Context, aircraftID string) error {
	c.log.Infof("offline: catering started for %s", aircraftID)
	return nil
}

func (c *OfflineClient) NotifyFinish(_ context.Context, aircraftID string, totalMeals int) error {
	c.log.Infof("offline: catering finished for %s with %d meals", aircraftID, totalMeals)
	return nil
}
