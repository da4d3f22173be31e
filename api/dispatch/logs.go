package dispatch

import (
	"net/http"
	"time"

	"github.com/kilianp07/catering/core/dispatch/logging"
)

// NewTripLogHandler returns an HTTP handler exposing the trip log via GET /trips.
// Supported filters are start, end (RFC3339), aircraft_id, vehicle_id and outcome.
func NewTripLogHandler(store logging.LogStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := logging.TripQuery{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.AircraftID = r.URL.Query().Get("aircraft_id")
		q.VehicleID = r.URL.Query().Get("vehicle_id")
		q.Outcome = r.URL.Query().Get("outcome")
		records, err := store.Query(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if records == nil {
			records = []logging.TripRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	})
}

// RequireToken rejects requests without "Authorization: Bearer <token>".
// An empty token disables the check.
func RequireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
