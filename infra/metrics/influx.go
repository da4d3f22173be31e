package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/infra/logger"
)

// InfluxSink writes catering events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTripResult writes one trip as a trip_result point.
func (s *InfluxSink) RecordTripResult(r coremetrics.TripResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_result").
		AddTag("aircraft_id", r.AircraftID).
		AddTag("outcome", r.Outcome).
		AddTag("phase", r.Phase).
		AddTag("component", "catering_dispatch")
	if r.VehicleID != "" {
		p = p.AddTag("vehicle_id", r.VehicleID)
	}
	p = p.AddField("trip_id", r.TripID).
		AddField("meals", r.Meals).
		AddField("conflicts", r.Conflicts).
		AddField("duration_s", round3(r.Duration().Seconds())).
		SetTime(r.End)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetSize writes the fleet occupancy.
func (s *InfluxSink) RecordFleetSize(total, busy int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_size").
		AddTag("component", "fleet_registry").
		AddField("total", total).
		AddField("busy", busy).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDelivery writes a finished catering request.
func (s *InfluxSink) RecordDelivery(rec coremetrics.DeliveryRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("catering_delivery").
		AddTag("aircraft_id", rec.AircraftID).
		AddTag("component", "catering_dispatch").
		AddField("total_meals", rec.TotalMeals).
		AddField("trips", rec.Trips).
		AddField("failed", rec.Failed).
		AddField("duration_s", round3(rec.End.Sub(rec.Start).Seconds())).
		SetTime(rec.End)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
