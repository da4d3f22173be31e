package logging

import (
	"context"
	"testing"
	"time"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:trips.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now()
	recs := []TripRecord{
		{Timestamp: now, TripID: "t1", AircraftID: "AC1", VehicleID: "v1", Meals: 100, Outcome: "completed"},
		{Timestamp: now.Add(time.Second), TripID: "t2", AircraftID: "AC1", VehicleID: "v2", Meals: 50, Outcome: "failed"},
		{Timestamp: now.Add(2 * time.Second), TripID: "t3", AircraftID: "AC2", VehicleID: "v1", Meals: 20, Outcome: "completed"},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), TripQuery{VehicleID: "v1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].TripID != "t1" || out[1].TripID != "t3" {
		t.Fatalf("unexpected vehicle records: %+v", out)
	}
	out, err = store.Query(context.Background(), TripQuery{AircraftID: "AC1", Outcome: "failed"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].Meals != 50 {
		t.Fatalf("unexpected aircraft records: %+v", out)
	}
}
