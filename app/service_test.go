package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/catering/config"
	coremetrics "github.com/kilianp07/catering/core/metrics"
)

func offlineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.GroundControl.Offline = true
	cfg.Dispatch.GlobalFleetLimit = 3
	cfg.Dispatch.ConflictBackoffMS = 1
	cfg.Dispatch.PollIntervalMS = 1
	cfg.Dispatch.TransitUnitMS = 1
	cfg.Dispatch.ServiceDwellMS = 1
	cfg.Logging.Path = filepath.Join(t.TempDir(), "trips.log")
	cfg.HTTP.Address = "127.0.0.1:0"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestService_OfflineEndToEnd(t *testing.T) {
	svc, err := New(offlineConfig(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()
	assert.True(t, svc.Mode.Offline())
	assert.IsType(t, coremetrics.NopSink{}, svc.sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	assert.Eventually(t, func() bool { return len(svc.Orchestrator.Fleet()) == 3 }, 2*time.Second, 10*time.Millisecond)

	rr := httptest.NewRecorder()
	body := `{"aircraft_id":"AF123","meals":[{"meal_type":"Standard","count":250}]}`
	svc.Handler.ServeHTTP(rr, httptest.NewRequest("POST", "/request", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	svc.Orchestrator.Wait()

	rr = httptest.NewRecorder()
	svc.Handler.ServeHTTP(rr, httptest.NewRequest("GET", "/trips?aircraft_id=AF123", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, strings.Count(rr.Body.String(), `"outcome":"completed"`))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestService_MQTTConnectFailure(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.MQTT.Broker = "tcp://127.0.0.1:1"
	cfg.MQTT.SetDefaults()
	_, err := New(cfg)
	assert.ErrorContains(t, err, "mqtt client")
}
