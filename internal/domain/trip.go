// Package domain contains the core data types for the fleet ledger.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (ledger, service, handler).
package domain

import "time"

// TripStatus is the lifecycle state of a trip.
// A trip is created open and transitions exactly once to closed.
type TripStatus string

const (
	TripOpen   TripStatus = "open"
	TripClosed TripStatus = "closed"
)

// VehicleType classifies the vehicle used on a trip.
type VehicleType string

const (
	VehicleTruck   VehicleType = "Truck"
	VehicleTrailer VehicleType = "Trailer"
	VehiclePickup  VehicleType = "Pickup"
	VehicleVan     VehicleType = "Van"
	VehicleOther   VehicleType = "Other"
)

// ValidVehicleType reports whether v is one of the known vehicle types.
func ValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleTruck, VehicleTrailer, VehiclePickup, VehicleVan, VehicleOther:
		return true
	}
	return false
}

// PurposeCategory classifies why a trip was made.
type PurposeCategory string

const (
	PurposeDelivery    PurposeCategory = "Delivery"
	PurposePickup      PurposeCategory = "Pickup"
	PurposeMaintenance PurposeCategory = "Maintenance"
	PurposeTransfer    PurposeCategory = "Transfer"
	PurposeOther       PurposeCategory = "Other"
)

// ValidPurposeCategory reports whether p is one of the known categories.
func ValidPurposeCategory(p PurposeCategory) bool {
	switch p {
	case PurposeDelivery, PurposePickup, PurposeMaintenance, PurposeTransfer, PurposeOther:
		return true
	}
	return false
}

// Allowances holds the six per-trip allowance and fee amounts requested when a
// trip is closed. Fields are pointers because historical rows may carry
// unparseable cells, which load as nil rather than failing; Total treats nil
// as zero.
type Allowances struct {
	Daily      *float64 `json:"daily_allowance"`
	Offloading *float64 `json:"offloading_pay"`
	Loader     *float64 `json:"loader_allowance"`
	Security   *float64 `json:"security_fee"`
	Parking    *float64 `json:"parking_fee"`
	NightOut   *float64 `json:"night_out_allowance"`
}

// Total sums the six allowance amounts, treating nil as zero.
func (a Allowances) Total() float64 {
	var sum float64
	for _, v := range []*float64{a.Daily, a.Offloading, a.Loader, a.Security, a.Parking, a.NightOut} {
		if v != nil {
			sum += *v
		}
	}
	return sum
}

// Trip represents a single vehicle movement from gate-out to gate-in.
// End fields and DistanceKM are nil while the trip is open; a closed trip is
// immutable.
//
// Numeric fields are pointers: the CSV loader keeps unparseable historical
// cells as nil instead of rejecting the row.
type Trip struct {
	ID              string          `json:"id"`
	VehicleReg      string          `json:"vehicle_reg"`
	Driver          string          `json:"driver"`
	DriverContact   string          `json:"driver_contact,omitempty"`
	VehicleType     VehicleType     `json:"vehicle_type"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         *time.Time      `json:"end_time,omitempty"` // nil while the trip is open
	Origin          string          `json:"origin,omitempty"`
	Destination     string          `json:"destination,omitempty"`
	Purpose         string          `json:"purpose,omitempty"`
	PurposeCategory PurposeCategory `json:"purpose_category"`
	GatePass        string          `json:"gate_pass_number"`
	StartOdometer   *float64        `json:"start_odometer"`
	StartPhoto      string          `json:"start_photo,omitempty"`
	EndOdometer     *float64        `json:"end_odometer,omitempty"`
	EndPhoto        string          `json:"end_photo,omitempty"`
	DistanceKM      *float64        `json:"distance_km,omitempty"`
	Allowances      Allowances      `json:"allowances"`
	Status          TripStatus      `json:"status"`
}

// Open reports whether the trip has started but not yet ended.
func (t Trip) Open() bool { return t.Status == TripOpen }
