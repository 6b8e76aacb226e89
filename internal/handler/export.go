package handler

import "net/http"

// ExportTripsCSV handles GET /api/export/trips.csv: the filtered trip table
// in the stored CSV layout, as a download.
func (s *Server) ExportTripsCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	data, err := s.exports.TripsCSV(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	serveDownload(w, "trips.csv", "text/csv", data)
}

// ExportFuelCSV handles GET /api/export/fuel.csv.
func (s *Server) ExportFuelCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	data, err := s.exports.FuelCSV(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	serveDownload(w, "fuel_logs.csv", "text/csv", data)
}

// ExportWorkbook handles GET /api/export/report.xlsx: the full report
// workbook (Trips, Fuel, Allowances, Summary sheets) over the filtered
// snapshot.
func (s *Server) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	data, err := s.exports.Workbook(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	serveDownload(w, "fleet_report.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func serveDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
