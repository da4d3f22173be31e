package vehicles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kilianp07/catering/core/model"
)

type staticFleet []model.VehicleSnapshot

func (s staticFleet) Fleet() []model.VehicleSnapshot { return s }

func TestFleetHandler_Basic(t *testing.T) {
	src := staticFleet{{VehicleID: "v1", Status: model.StatusBusy, BaseNode: "garage", CurrentNode: "taxi_1"}}
	h := NewFleetHandler(src)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/vehicles", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []model.VehicleSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].VehicleID != "v1" || out[0].Status != model.StatusBusy {
		t.Fatalf("unexpected output %#v", out)
	}
}

func TestFleetHandler_Empty(t *testing.T) {
	h := NewFleetHandler(staticFleet(nil))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/vehicles", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
}
