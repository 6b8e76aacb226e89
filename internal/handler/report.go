package handler

import (
	"net/http"
	"strconv"
)

// TripsReport handles GET /api/reports/trips.
func (s *Server) TripsReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	report, err := s.reports.Trips(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// FuelReport handles GET /api/reports/fuel.
func (s *Server) FuelReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	report, err := s.reports.Fuel(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AllowancesReport handles GET /api/reports/allowances.
func (s *Server) AllowancesReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	report, err := s.reports.Allowances(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SummaryReport handles GET /api/reports/summary. The optional top query
// param bounds the top-vehicles list (default 10).
func (s *Server) SummaryReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	topN := 10
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			requestError(w, "top must be a positive integer")
			return
		}
		topN = n
	}
	summary, err := s.reports.Summary(r.Context(), filter, topN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
