package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `dispatch:
  global_fleet_limit: 4
  per_flight_limit: 2
  conflict_backoff_ms: 500
catalog:
  meal_types: ["Standard", "Kosher"]
  capacity: 80
ground_control:
  base_url: "http://ground:8081"
  orchestrator_url: "http://orchestrator:8082"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  qos:
    status: 1
nats:
  url: "nats://localhost:4222"
metrics:
  prometheus_enabled: true
logging:
  backend: "sqlite"
  path: "trips.db"
http:
  address: ":9000"
  admin_token: "tok"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"global_fleet_limit", cfg.Dispatch.GlobalFleetLimit, 4},
		{"initial_vehicles", cfg.Dispatch.InitialVehicles, 4},
		{"conflict_backoff_ms", cfg.Dispatch.ConflictBackoffMS, 500},
		{"conflict_retry_count", cfg.Dispatch.ConflictRetryCount, 30},
		{"vehicle_type", cfg.Dispatch.VehicleType, "catering"},
		{"capacity", cfg.Catalog.Capacity, 80},
		{"meal_types", len(cfg.Catalog.MealTypes), 2},
		{"base_url", cfg.GroundControl.BaseURL, "http://ground:8081"},
		{"orchestrator_url", cfg.GroundControl.OrchestratorURL, "http://orchestrator:8082"},
		{"timeout_seconds", cfg.GroundControl.TimeoutSeconds, 10},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"status_topic", cfg.MQTT.StatusTopic, "catering/vehicles/status"},
		{"qos", cfg.MQTT.QoS["status"], byte(1)},
		{"nats.subject", cfg.NATS.Subject, "catering.vehicles.status"},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9102"},
		{"logging.backend", cfg.Logging.Backend, "sqlite"},
		{"http.address", cfg.HTTP.Address, ":9000"},
		{"http.admin_token", cfg.HTTP.AdminToken, "tok"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("K_DISPATCH__GLOBAL_FLEET_LIMIT", "3")
	t.Setenv("K_GROUND_CONTROL__OFFLINE", "true")
	t.Setenv("K_LOGGING__MAX_SIZE_MB", "10")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.GlobalFleetLimit != 3 {
		t.Fatalf("env override not applied: %d", cfg.Dispatch.GlobalFleetLimit)
	}
	if !cfg.GroundControl.Offline {
		t.Fatalf("offline not applied")
	}
	opts := cfg.Logging.Options()
	if opts.Backend != "jsonl" || opts.Path != "trips.log" || opts.MaxSizeMB != 10 {
		t.Fatalf("unexpected logging options %+v", opts)
	}
	if cfg.MQTT.StatusTopic != "" {
		t.Fatalf("mqtt defaults applied without a broker")
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("http default not applied: %s", cfg.HTTP.Address)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(bad, []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	online := filepath.Join(dir, "online.yaml")
	if err := os.WriteFile(online, []byte("logging:\n  backend: csv\nground_control:\n  offline: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(online); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	noGround := filepath.Join(dir, "noground.yaml")
	if err := os.WriteFile(noGround, []byte("http:\n  address: \":1\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(noGround); err == nil {
		t.Fatalf("expected ground_control error without base_url")
	}
}
