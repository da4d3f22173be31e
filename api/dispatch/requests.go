// Package dispatch exposes catering requests, the trip log and the admin
// endpoints over HTTP.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	coredispatch "github.com/kilianp07/catering/core/dispatch"
	"github.com/kilianp07/catering/core/model"
)

// Submitter accepts catering requests.
type Submitter interface {
	Submit(ctx context.Context, req model.DeliveryRequest) (model.DeliveryResult, error)
}

// MealTypes lists the meal types that may be ordered.
type MealTypes interface {
	MealTypes() []string
}

// NewRequestHandler serves POST /request. The request is processed in the
// background; the response only tells whether it was accepted and whether
// it has to wait for a free vehicle.
func NewRequestHandler(d Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.DeliveryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		res, err := d.Submit(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

// NewMealTypesHandler serves GET /mealtypes.
func NewMealTypesHandler(c MealTypes) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"meal_types": c.MealTypes()})
	})
}

func statusFor(err error) int {
	if errors.Is(err, coredispatch.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
