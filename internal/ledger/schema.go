package ledger

import (
	"strconv"
	"time"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

// timeLayout is the timestamp format used in the CSV tables.
const timeLayout = "2006-01-02 15:04:05"

// tripColumns is the canonical column set of the trips table, in order.
// Load adds any column missing from a stored file, so the set can grow
// across versions without a migration step.
var tripColumns = []string{
	"TripID", "VehicleReg", "Driver", "DriverContact", "VehicleType",
	"StartDateTime", "EndDateTime",
	"Origin", "Destination", "Purpose", "PurposeCategory",
	"GatePassNumber",
	"StartMileage", "StartMileagePhoto", "EndMileage", "EndMileagePhoto",
	"DistanceKM",
	"DailyAllowance", "OffloadingPay", "LoaderAllowance",
	"SecurityFee", "ParkingFee", "NightOutAllowance",
	"Status",
}

// fuelColumns is the canonical column set of the fuel log table, in order.
var fuelColumns = []string{
	"FuelID", "VehicleReg", "Driver", "DateTime", "Litres", "Cost",
	"MileagePhoto", "ReceiptPhoto", "DistanceSinceLastRefuelKM", "EfficiencyKMperL",
}

// parseFloat leniently parses a numeric cell. Empty or malformed cells become
// nil, never an error: historical files may carry junk and the load must
// tolerate it.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseTime leniently parses a timestamp cell; empty or malformed cells
// become nil. Stored timestamps are UTC wall clocks (see formatTime), so the
// parsed value is the original instant.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatTime writes the instant as a UTC wall clock. parseTime reads the cell
// back as UTC, so the round trip preserves the instant no matter which zone
// the value carried when it was stored.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	u := t.UTC()
	return u.Format(timeLayout)
}

// decodeTrip maps one CSV row (keyed by column name) into a domain.Trip.
func decodeTrip(row map[string]string) domain.Trip {
	t := domain.Trip{
		ID:              row["TripID"],
		VehicleReg:      row["VehicleReg"],
		Driver:          row["Driver"],
		DriverContact:   row["DriverContact"],
		VehicleType:     domain.VehicleType(row["VehicleType"]),
		Origin:          row["Origin"],
		Destination:     row["Destination"],
		Purpose:         row["Purpose"],
		PurposeCategory: domain.PurposeCategory(row["PurposeCategory"]),
		GatePass:        row["GatePassNumber"],
		StartOdometer:   parseFloat(row["StartMileage"]),
		StartPhoto:      row["StartMileagePhoto"],
		EndOdometer:     parseFloat(row["EndMileage"]),
		EndPhoto:        row["EndMileagePhoto"],
		DistanceKM:      parseFloat(row["DistanceKM"]),
		Allowances: domain.Allowances{
			Daily:      parseFloat(row["DailyAllowance"]),
			Offloading: parseFloat(row["OffloadingPay"]),
			Loader:     parseFloat(row["LoaderAllowance"]),
			Security:   parseFloat(row["SecurityFee"]),
			Parking:    parseFloat(row["ParkingFee"]),
			NightOut:   parseFloat(row["NightOutAllowance"]),
		},
		Status: domain.TripStatus(row["Status"]),
	}
	if st := parseTime(row["StartDateTime"]); st != nil {
		t.StartTime = *st
	}
	t.EndTime = parseTime(row["EndDateTime"])
	return t
}

// encodeTrip serializes a domain.Trip into a CSV row in canonical column order.
func encodeTrip(t domain.Trip) []string {
	start := t.StartTime
	return []string{
		t.ID,
		t.VehicleReg,
		t.Driver,
		t.DriverContact,
		string(t.VehicleType),
		formatTime(&start),
		formatTime(t.EndTime),
		t.Origin,
		t.Destination,
		t.Purpose,
		string(t.PurposeCategory),
		t.GatePass,
		formatFloat(t.StartOdometer),
		t.StartPhoto,
		formatFloat(t.EndOdometer),
		t.EndPhoto,
		formatFloat(t.DistanceKM),
		formatFloat(t.Allowances.Daily),
		formatFloat(t.Allowances.Offloading),
		formatFloat(t.Allowances.Loader),
		formatFloat(t.Allowances.Security),
		formatFloat(t.Allowances.Parking),
		formatFloat(t.Allowances.NightOut),
		string(t.Status),
	}
}

// decodeFuel maps one CSV row into a domain.FuelLogEntry.
func decodeFuel(row map[string]string) domain.FuelLogEntry {
	e := domain.FuelLogEntry{
		ID:           row["FuelID"],
		VehicleReg:   row["VehicleReg"],
		Driver:       row["Driver"],
		Litres:       parseFloat(row["Litres"]),
		Cost:         parseFloat(row["Cost"]),
		MileagePhoto: row["MileagePhoto"],
		ReceiptPhoto: row["ReceiptPhoto"],
		DistanceKM:   parseFloat(row["DistanceSinceLastRefuelKM"]),
		Efficiency:   parseFloat(row["EfficiencyKMperL"]),
	}
	if at := parseTime(row["DateTime"]); at != nil {
		e.LoggedAt = *at
	}
	return e
}

// encodeFuel serializes a domain.FuelLogEntry into a CSV row.
func encodeFuel(e domain.FuelLogEntry) []string {
	at := e.LoggedAt
	return []string{
		e.ID,
		e.VehicleReg,
		e.Driver,
		formatTime(&at),
		formatFloat(e.Litres),
		formatFloat(e.Cost),
		e.MileagePhoto,
		e.ReceiptPhoto,
		formatFloat(e.DistanceKM),
		formatFloat(e.Efficiency),
	}
}
