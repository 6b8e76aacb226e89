package handler

import (
	"net/http"

	"github.com/mkamau/fleet-ledger/internal/service"
)

// LogRefuel handles POST /api/fuel. Multipart form: vehicle_reg, driver,
// litres, optional cost, optional mileage_photo, mandatory receipt_photo.
func (s *Server) LogRefuel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		requestError(w, "multipart form required")
		return
	}

	vehicleReg := r.FormValue("vehicle_reg")
	if !callerMayOperate(r, vehicleReg) {
		writeForbidden(w)
		return
	}

	litres, _, err := formFloat(r, "litres")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var cost *float64
	if v, ok, err := formFloat(r, "cost"); err != nil {
		requestError(w, err.Error())
		return
	} else if ok {
		cost = &v
	}
	mileagePhoto, err := formPhoto(r, "mileage_photo")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	receiptPhoto, err := formPhoto(r, "receipt_photo")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	entry, err := s.fuel.Log(r.Context(), service.LogRefuelInput{
		VehicleReg:   vehicleReg,
		Driver:       r.FormValue("driver"),
		Litres:       litres,
		Cost:         cost,
		MileagePhoto: mileagePhoto,
		ReceiptPhoto: receiptPhoto,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListFuel handles GET /api/fuel with the standard filter query params.
// Drivers only see entries for their assigned vehicle.
func (s *Server) ListFuel(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	scopeFilterToCaller(r, &filter)

	entries, err := s.fuel.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}
