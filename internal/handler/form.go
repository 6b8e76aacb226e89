package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/service"
)

// maxMultipartMemory caps the in-memory portion of multipart parsing; larger
// parts spill to temp files. The overall body size is limited upstream by the
// max-body-size middleware.
const maxMultipartMemory = 8 << 20

// allowedPhotoExt is the accepted photo extension set; anything else is
// rejected before the service layer sees it.
var allowedPhotoExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// sniffedExt maps detected content types to a canonical extension, used when
// the uploaded filename carries no usable extension.
var sniffedExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// formPhoto extracts an uploaded photo from the multipart form. A missing
// file is not an error; it returns a zero Photo so the service layer can
// apply its own required/optional rules.
func formPhoto(r *http.Request, field string) (service.Photo, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return service.Photo{}, nil
		}
		return service.Photo{}, fmt.Errorf("invalid %s upload", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Photo{}, fmt.Errorf("failed to read %s upload", field)
	}
	if len(data) == 0 {
		return service.Photo{}, nil
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedPhotoExt[ext] {
		// Fall back to sniffing the first bytes.
		detected := http.DetectContentType(data)
		sniffed, ok := sniffedExt[detected]
		if !ok {
			return service.Photo{}, fmt.Errorf("%s must be a JPEG or PNG image", field)
		}
		ext = sniffed
	}
	return service.Photo{Data: data, Ext: ext}, nil
}

// formFloat parses an optional numeric form field. Returns ok=false when the
// field is absent or empty.
func formFloat(r *http.Request, field string) (float64, bool, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a number", field)
	}
	return v, true, nil
}

// formAllowances reads the six optional allowance fields. Absent fields stay
// nil; the service defaults them to zero on the closed trip.
func formAllowances(r *http.Request) (domain.Allowances, error) {
	read := func(field string) (*float64, error) {
		v, ok, err := formFloat(r, field)
		if err != nil || !ok {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("%s must not be negative", field)
		}
		return &v, nil
	}

	var a domain.Allowances
	var err error
	if a.Daily, err = read("daily_allowance"); err != nil {
		return domain.Allowances{}, err
	}
	if a.Offloading, err = read("offloading_pay"); err != nil {
		return domain.Allowances{}, err
	}
	if a.Loader, err = read("loader_allowance"); err != nil {
		return domain.Allowances{}, err
	}
	if a.Security, err = read("security_fee"); err != nil {
		return domain.Allowances{}, err
	}
	if a.Parking, err = read("parking_fee"); err != nil {
		return domain.Allowances{}, err
	}
	if a.NightOut, err = read("night_out_allowance"); err != nil {
		return domain.Allowances{}, err
	}
	return a, nil
}

// parseFilter builds a report filter from query parameters: from/to as
// "2006-01-02" dates, plus repeatable vehicle, driver, and vehicle_type
// params.
func parseFilter(r *http.Request) (domain.ReportFilter, error) {
	q := r.URL.Query()
	var filter domain.ReportFilter

	parseDate := func(name string) (*time.Time, error) {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a date formatted 2006-01-02", name)
		}
		return &t, nil
	}

	var err error
	if filter.From, err = parseDate("from"); err != nil {
		return domain.ReportFilter{}, err
	}
	if filter.To, err = parseDate("to"); err != nil {
		return domain.ReportFilter{}, err
	}
	filter.Vehicles = q["vehicle"]
	filter.Drivers = q["driver"]
	for _, vt := range q["vehicle_type"] {
		filter.VehicleTypes = append(filter.VehicleTypes, domain.VehicleType(vt))
	}
	return filter, nil
}
