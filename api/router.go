// Package api assembles the HTTP routes of the catering service.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kilianp07/catering/api/dispatch"
	"github.com/kilianp07/catering/api/vehicles"
	"github.com/kilianp07/catering/core/dispatch/logging"
	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/internal/eventbus"
)

// Orchestrator is what the routes need from the dispatch core.
type Orchestrator interface {
	dispatch.Submitter
	dispatch.Fleet
	vehicles.FleetSource
}

// Deps are the collaborators behind the routes. Trips and Bus are optional;
// their routes are only mounted when set.
type Deps struct {
	Orchestrator Orchestrator
	Catalog      dispatch.Catalog
	Mode         dispatch.ModeSwitch
	Trips        logging.LogStore
	Bus          *eventbus.Bus[events.Event]
	// AdminToken protects /admin and /trips when non-empty.
	AdminToken string
}

// NewRouter returns the service router.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/request", dispatch.NewRequestHandler(d.Orchestrator)).Methods(http.MethodPost)
	r.Handle("/mealtypes", dispatch.NewMealTypesHandler(d.Catalog)).Methods(http.MethodGet)
	r.Handle("/vehicles", vehicles.NewFleetHandler(d.Orchestrator)).Methods(http.MethodGet)
	if d.Bus != nil {
		r.Handle("/vehiclestatus", vehicles.NewStreamHandler(d.Bus, d.Orchestrator)).Methods(http.MethodGet)
	}
	if d.Trips != nil {
		r.Handle("/trips", dispatch.RequireToken(d.AdminToken, dispatch.NewTripLogHandler(d.Trips))).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	admin := dispatch.Admin{Fleet: d.Orchestrator, Catalog: d.Catalog, Mode: d.Mode}
	ar := r.PathPrefix("/admin").Subrouter()
	ar.Use(func(next http.Handler) http.Handler { return dispatch.RequireToken(d.AdminToken, next) })
	ar.HandleFunc("/capacity", admin.Capacity).Methods(http.MethodGet, http.MethodPut)
	ar.HandleFunc("/mealtypes", admin.MealTypes).Methods(http.MethodPut)
	if d.Mode != nil {
		ar.HandleFunc("/mode", admin.Mode).Methods(http.MethodGet, http.MethodPut)
	}
	ar.HandleFunc("/config", admin.Config).Methods(http.MethodGet, http.MethodPut)
	ar.HandleFunc("/vehicles", admin.Vehicles).Methods(http.MethodPost)
	ar.HandleFunc("/reload", admin.Reload).Methods(http.MethodPost)
	return r
}
