package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/middleware"
	"github.com/mkamau/fleet-ledger/internal/service"
)

// StartTrip handles POST /api/trips/start. Multipart form: trip fields plus
// the mandatory start_photo.
func (s *Server) StartTrip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		requestError(w, "multipart form required")
		return
	}

	vehicleReg := r.FormValue("vehicle_reg")
	if !callerMayOperate(r, vehicleReg) {
		writeForbidden(w)
		return
	}

	startOdo, _, err := formFloat(r, "start_odometer")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	photo, err := formPhoto(r, "start_photo")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	trip, err := s.trips.Start(r.Context(), service.StartTripInput{
		VehicleReg:      vehicleReg,
		Driver:          r.FormValue("driver"),
		DriverContact:   r.FormValue("driver_contact"),
		VehicleType:     domain.VehicleType(r.FormValue("vehicle_type")),
		Origin:          r.FormValue("origin"),
		Destination:     r.FormValue("destination"),
		Purpose:         r.FormValue("purpose"),
		PurposeCategory: domain.PurposeCategory(r.FormValue("purpose_category")),
		GatePass:        r.FormValue("gate_pass_number"),
		StartOdometer:   startOdo,
		StartPhoto:      photo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// EndTrip handles POST /api/trips/{id}/end. Multipart form: end_odometer,
// the mandatory end_photo, and the six optional allowance fields.
func (s *Server) EndTrip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		requestError(w, "multipart form required")
		return
	}
	tripID := chi.URLParam(r, "id")

	// Drivers may only close trips on their own vehicle, so the trip has to
	// be resolved before the mutation to know which vehicle it belongs to.
	trip, err := s.trips.Get(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !callerMayOperate(r, trip.VehicleReg) {
		writeForbidden(w)
		return
	}

	endOdo, ok, err := formFloat(r, "end_odometer")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if !ok {
		requestError(w, "end_odometer is required")
		return
	}
	photo, err := formPhoto(r, "end_photo")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	allowances, err := formAllowances(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	closed, err := s.trips.End(r.Context(), service.EndTripInput{
		TripID:      tripID,
		EndOdometer: endOdo,
		EndPhoto:    photo,
		Allowances:  allowances,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

// FindOpenTrip handles GET /api/trips/open?driver=&vehicle=. Drivers are
// always scoped to their assigned vehicle regardless of the query.
func (s *Server) FindOpenTrip(w http.ResponseWriter, r *http.Request) {
	driver := r.URL.Query().Get("driver")
	vehicleReg := r.URL.Query().Get("vehicle")
	if user, ok := caller(r); ok && user.Role == domain.RoleDriver {
		vehicleReg = user.VehicleReg
	}
	if driver == "" {
		requestError(w, "driver query parameter is required")
		return
	}

	trip, err := s.trips.FindOpen(r.Context(), driver, vehicleReg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// ListTrips handles GET /api/trips with the standard filter query params.
// Drivers only see trips on their assigned vehicle.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	scopeFilterToCaller(r, &filter)

	trips, err := s.trips.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": trips})
}

// caller returns the authenticated account from the request context.
func caller(r *http.Request) (domain.User, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return domain.User{}, false
	}
	return claims.User(), true
}

// callerMayOperate reports whether the authenticated account may submit
// mutations for the given vehicle.
func callerMayOperate(r *http.Request, vehicleReg string) bool {
	user, ok := caller(r)
	return ok && user.MayOperate(vehicleReg)
}

// scopeFilterToCaller narrows a report filter to the caller's assigned
// vehicle when the caller is a driver.
func scopeFilterToCaller(r *http.Request, filter *domain.ReportFilter) {
	if user, ok := caller(r); ok && user.Role == domain.RoleDriver {
		filter.Vehicles = []string{user.VehicleReg}
	}
}

func writeForbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, errorResponse{errorDetail{"forbidden", "not allowed for this vehicle"}})
}
