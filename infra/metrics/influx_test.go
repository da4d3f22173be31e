package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/catering/core/metrics"
)

func newLineServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordTripResult(t *testing.T) {
	srv, bodies := newLineServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	rec := coremetrics.TripResult{
		TripID:     "trip-1",
		AircraftID: "AC1",
		VehicleID:  "cat-1",
		Meals:      100,
		Outcome:    coremetrics.OutcomeCompleted,
		Phase:      "completed",
		Conflicts:  2,
		Start:      now.Add(-1500 * time.Millisecond),
		End:        now,
	}
	if err := sink.RecordTripResult(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("trip_result").
		AddTag("aircraft_id", "AC1").
		AddTag("outcome", "completed").
		AddTag("phase", "completed").
		AddTag("component", "catering_dispatch").
		AddTag("vehicle_id", "cat-1").
		AddField("trip_id", "trip-1").
		AddField("meals", 100).
		AddField("conflicts", 2).
		AddField("duration_s", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %#v", got)
	}
}

func TestInfluxSink_RecordDelivery(t *testing.T) {
	srv, bodies := newLineServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	rec := coremetrics.DeliveryRecord{AircraftID: "AC1", TotalMeals: 150, Trips: 2, Failed: 1, Start: now.Add(-2 * time.Second), End: now}
	if err := sink.RecordDelivery(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("catering_delivery").
		AddTag("aircraft_id", "AC1").
		AddTag("component", "catering_dispatch").
		AddField("total_meals", 150).
		AddField("trips", 2).
		AddField("failed", 1).
		AddField("duration_s", 2.0).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestInfluxSink_RecordFleetSize(t *testing.T) {
	srv, bodies := newLineServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	if err := sink.RecordFleetSize(5, 3); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := bodies()
	if len(got) != 1 {
		t.Fatalf("bodies: %#v", got)
	}
	for _, part := range []string{"fleet_size,component=fleet_registry ", "busy=3i", "total=5i"} {
		if !strings.Contains(got[0], part) {
			t.Errorf("body %q lacks %q", got[0], part)
		}
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	cfg := coremetrics.Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
