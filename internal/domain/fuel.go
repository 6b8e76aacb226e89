package domain

import "time"

// FuelLogEntry represents a single refuel event. Entries are append-only:
// DistanceKM and Efficiency are computed once, at creation time, from the trip
// ledger and are never recomputed even if earlier trips are later deleted.
// Efficiency attribution is causal: a refuel covers only the closed trips
// between the previous refuel and this one.
type FuelLogEntry struct {
	ID           string    `json:"id"`
	VehicleReg   string    `json:"vehicle_reg"`
	Driver       string    `json:"driver"`
	LoggedAt     time.Time `json:"logged_at"`
	Litres       *float64  `json:"litres"`
	Cost         *float64  `json:"cost,omitempty"`
	MileagePhoto string    `json:"mileage_photo,omitempty"`
	ReceiptPhoto string    `json:"receipt_photo"`
	DistanceKM   *float64  `json:"distance_km"`         // distance since last refuel
	Efficiency   *float64  `json:"efficiency_km_per_l"` // DistanceKM / Litres
}
