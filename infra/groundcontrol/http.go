// Package groundcontrol provides the ground-control adapters used by the
// dispatch orchestrator: an HTTP client, an offline stand-in and a switch
// selecting between them at runtime.
package groundcontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/catering/auth"
	"github.com/kilianp07/catering/core/groundcontrol"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/infra/logger"
)

// HTTPClient talks JSON to the ground-control service. Start and finish
// notifications go to the orchestrator service, which may share the base URL.
type HTTPClient struct {
	base         string
	orchestrator string
	client       *http.Client
	creds        *auth.ClientCred
	log          logger.Logger
}

// NewHTTPClient creates a client from cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	cfg.SetDefaults()
	c := &HTTPClient{
		base:         strings.TrimSuffix(cfg.BaseURL, "/"),
		orchestrator: strings.TrimSuffix(cfg.OrchestratorURL, "/"),
		client:       &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:          logger.New("ground-control"),
	}
	if cfg.Auth.Enabled() {
		c.creds = auth.NewClientCred(cfg.Auth)
	}
	return c
}

type routeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

type moveRequest struct {
	VehicleID   string `json:"vehicleId"`
	VehicleType string `json:"vehicleType"`
	From        string `json:"from"`
	To          string `json:"to"`
}

type moveResponse struct {
	Distance float64 `json:"distance"`
}

type arrivalRequest struct {
	VehicleID   string `json:"vehicleId"`
	VehicleType string `json:"vehicleType"`
	NodeID      string `json:"nodeId"`
}

type startRequest struct {
	AircraftID string `json:"aircraft_id"`
}

type finishRequest struct {
	AircraftID string `json:"aircraft_id"`
	MealCount  int    `json:"meal_count"`
}

func (c *HTTPClient) RegisterVehicle(ctx context.Context, vehicleType string) (model.Registration, error) {
	var reg model.Registration
	if err := c.post(ctx, c.base+"/register-vehicle/"+url.PathEscape(vehicleType), nil, &reg); err != nil {
		return model.Registration{}, err
	}
	if reg.VehicleID == "" || reg.GarageNodeID == "" {
		return model.Registration{}, fmt.Errorf("%w: incomplete registration %+v", groundcontrol.ErrUnavailable, reg)
	}
	return reg, nil
}

func (c *HTTPClient) GetRoute(ctx context.Context, from, to, vehicleType string) ([]string, error) {
	var route []string
	if err := c.post(ctx, c.base+"/route", routeRequest{From: from, To: to, Type: vehicleType}, &route); err != nil {
		return nil, err
	}
	return route, nil
}

func (c *HTTPClient) RequestMove(ctx context.Context, vehicleID, vehicleType, from, to string) (float64, error) {
	var res moveResponse
	req := moveRequest{VehicleID: vehicleID, VehicleType: vehicleType, From: from, To: to}
	if err := c.post(ctx, c.base+"/move", req, &res); err != nil {
		return 0, err
	}
	return res.Distance, nil
}

func (c *HTTPClient) NotifyArrival(ctx context.Context, vehicleID, vehicleType, node string) error {
	return c.post(ctx, c.base+"/arrived", arrivalRequest{VehicleID: vehicleID, VehicleType: vehicleType, NodeID: node}, nil)
}

func (c *HTTPClient) NotifyStart(ctx context.Context, aircraftID string) error {
	return c.post(ctx, c.orchestrator+"/catering/start", startRequest{AircraftID: aircraftID}, nil)
}

func (c *HTTPClient) NotifyFinish(ctx context.Context, aircraftID string, totalMeals int) error {
	return c.post(ctx, c.orchestrator+"/catering/finish", finishRequest{AircraftID: aircraftID, MealCount: totalMeals}, nil)
}

// post sends body as JSON and decodes the response into out when non-nil.
// 409 maps to ErrConflict; every other failure wraps ErrUnavailable.
func (c *HTTPClient) post(ctx context.Context, endpoint string, body, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", groundcontrol.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		if err := c.creds.SetAuthHeader(req); err != nil {
			return fmt.Errorf("%w: %v", groundcontrol.ErrUnavailable, err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", groundcontrol.ErrUnavailable, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusConflict:
		_, _ = io.Copy(io.Discard, resp.Body)
		return groundcontrol.ErrConflict
	case resp.StatusCode == http.StatusUnauthorized && c.creds != nil:
		c.creds.Invalidate()
		return fmt.Errorf("%w: POST %s: token rejected", groundcontrol.ErrUnavailable, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Debugf("POST %s returned %d: %s", endpoint, resp.StatusCode, msg)
		return fmt.Errorf("%w: POST %s: status %d", groundcontrol.ErrUnavailable, endpoint, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", groundcontrol.ErrUnavailable, endpoint, err)
	}
	return nil
}
