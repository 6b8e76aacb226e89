package domain

import "time"

// ReportFilter narrows the trip and fuel tables for reporting and export.
// All fields are optional; a zero filter matches everything.
//
// The date range is compared at day precision, mirroring how the dashboards
// slice data: a trip matches when its start OR end date falls in range, a fuel
// entry when its own date does. VehicleTypes applies to trips only.
type ReportFilter struct {
	From         *time.Time
	To           *time.Time
	Vehicles     []string
	Drivers      []string
	VehicleTypes []VehicleType
}

// MatchTrip reports whether the trip passes every set filter field.
func (f ReportFilter) MatchTrip(t Trip) bool {
	if f.From != nil || f.To != nil {
		if !f.dateInRange(&t.StartTime) && !f.dateInRange(t.EndTime) {
			return false
		}
	}
	if len(f.Vehicles) > 0 && !containsString(f.Vehicles, t.VehicleReg) {
		return false
	}
	if len(f.Drivers) > 0 && !containsString(f.Drivers, t.Driver) {
		return false
	}
	if len(f.VehicleTypes) > 0 {
		found := false
		for _, vt := range f.VehicleTypes {
			if vt == t.VehicleType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchFuel reports whether the fuel entry passes every set filter field.
func (f ReportFilter) MatchFuel(e FuelLogEntry) bool {
	if (f.From != nil || f.To != nil) && !f.dateInRange(&e.LoggedAt) {
		return false
	}
	if len(f.Vehicles) > 0 && !containsString(f.Vehicles, e.VehicleReg) {
		return false
	}
	if len(f.Drivers) > 0 && !containsString(f.Drivers, e.Driver) {
		return false
	}
	return true
}

// dateInRange compares at day precision, inclusive at both ends.
func (f ReportFilter) dateInRange(t *time.Time) bool {
	if t == nil {
		return false
	}
	day := t.Truncate(24 * time.Hour)
	if f.From != nil && day.Before(f.From.Truncate(24*time.Hour)) {
		return false
	}
	if f.To != nil && day.After(f.To.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// VehicleDayCount is the number of closed trips one vehicle completed on one
// day (day formatted "2006-01-02").
type VehicleDayCount struct {
	VehicleReg string `json:"vehicle_reg"`
	Day        string `json:"day"`
	Trips      int    `json:"trips"`
}

// TripsReport is the filtered trip listing plus per-(vehicle, day) counts of
// closed trips.
type TripsReport struct {
	Trips         []Trip            `json:"trips"`
	PerVehicleDay []VehicleDayCount `json:"per_vehicle_day"`
}

// SeriesPoint is one observation in a time-ordered series.
type SeriesPoint struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// FuelReport is the filtered fuel listing plus efficiency and litres series
// ordered by time ascending. Entries with an unparseable efficiency are
// omitted from the efficiency series; unparseable litres chart as zero.
type FuelReport struct {
	Entries    []FuelLogEntry `json:"entries"`
	Efficiency []SeriesPoint  `json:"efficiency"`
	Litres     []SeriesPoint  `json:"litres"`
}

// TripAllowance is one row of the allowances report: a trip's six allowance
// amounts plus their total (nil amounts count as zero).
type TripAllowance struct {
	TripID     string     `json:"trip_id"`
	VehicleReg string     `json:"vehicle_reg"`
	Driver     string     `json:"driver"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Status     TripStatus `json:"status"`
	Allowances Allowances `json:"allowances"`
	Total      float64    `json:"total"`
}

// GroupTotal is an aggregated amount keyed by vehicle registration, driver
// name, or similar.
type GroupTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// AllowancesReport lists per-trip allowance totals and their grouped sums,
// each group sorted by total descending.
type AllowancesReport struct {
	Trips     []TripAllowance `json:"trips"`
	ByVehicle []GroupTotal    `json:"by_vehicle"`
	ByDriver  []GroupTotal    `json:"by_driver"`
}

// Summary is the KPI rollup over the filtered tables. FuelCostPerKM is nil
// when no closed-trip distance exists to divide by.
type Summary struct {
	ClosedTrips     int          `json:"closed_trips"`
	TotalDistanceKM float64      `json:"total_distance_km"`
	TotalLitres     float64      `json:"total_litres"`
	TotalFuelCost   float64      `json:"total_fuel_cost"`
	FuelCostPerKM   *float64     `json:"fuel_cost_per_km,omitempty"`
	TopVehicles     []GroupTotal `json:"top_vehicles"`
}
