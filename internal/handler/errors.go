package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

// errorDetail is the body of every error response:
// {"error":{"code":"...","message":"..."}}.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures are not
// recoverable at this point (headers are already written), so they are
// ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to an HTTP status and the error envelope.
// Business-rule rejections get distinct codes so clients can branch without
// parsing messages; anything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{errorDetail{"not_found", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrDuplicateGatePass):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"duplicate_gate_pass", domain.ErrDuplicateGatePass.Error()}})
	case errors.Is(err, domain.ErrOpenTripExists):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"open_trip_exists", domain.ErrOpenTripExists.Error()}})
	case errors.Is(err, domain.ErrInvalidOdometer):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"invalid_odometer", domain.ErrInvalidOdometer.Error()}})
	case errors.Is(err, domain.ErrStorage):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{errorDetail{"storage_unavailable", "ledger storage unavailable"}})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{"internal_error", "internal server error"}})
	}
}

// requestError reports a bad request rejected before reaching the service
// layer (e.g. missing or malformed form field).
func requestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", message}})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error, e.g. "service.TripService.Start: validation error: driver name is
// required" becomes "driver name is required". Everything after the first
// sentinel marker is kept verbatim, so detail text may itself contain
// colons. An error carrying no detail reports just the sentinel text.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotFound} {
		if !errors.Is(err, sentinel) {
			continue
		}
		marker := sentinel.Error() + ": "
		if i := strings.Index(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
		return sentinel.Error()
	}
	return msg
}
