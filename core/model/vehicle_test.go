package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestVehicleStateTags(t *testing.T) {
	var st VehicleState = Available{At: "garage_1"}
	if st.Status() != StatusAvailable || st.Node() != "garage_1" {
		t.Fatalf("unexpected available state %#v", st)
	}
	st = Busy{At: "node_7", Since: time.Now()}
	if st.Status() != StatusBusy || st.Node() != "node_7" {
		t.Fatalf("unexpected busy state %#v", st)
	}
}

func TestVehicleStatusJSON(t *testing.T) {
	b, err := json.Marshal(VehicleSnapshot{VehicleID: "v1", Status: StatusBusy})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out VehicleSnapshot
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status != StatusBusy {
		t.Fatalf("expected Busy got %v", out.Status)
	}
	var s VehicleStatus
	if err := json.Unmarshal([]byte(`"Parked"`), &s); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestDeliveryRequestTotalMeals(t *testing.T) {
	r := DeliveryRequest{Meals: []MealOrder{{MealType: "Standard", Count: 120}, {MealType: "Vegan", Count: 30}}}
	if got := r.TotalMeals(); got != 150 {
		t.Fatalf("expected 150 got %d", got)
	}
}

func TestCopySpotsIndependent(t *testing.T) {
	in := map[string]string{"parking_1": "parking_1_catering_1"}
	out := CopySpots(in)
	out["parking_1"] = "changed"
	if in["parking_1"] != "parking_1_catering_1" {
		t.Fatalf("copy aliases input")
	}
}
