package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mkamau/fleet-ledger/internal/blob"
	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
)

// LogRefuelInput is the validated scalar input for FuelService.Log.
type LogRefuelInput struct {
	VehicleReg   string
	Driver       string
	Litres       float64
	Cost         *float64 // nil when not recorded
	MileagePhoto Photo    // optional
	ReceiptPhoto Photo    // mandatory
}

// FuelService implements refuel logging and the distance/efficiency
// derivation behind it.
type FuelService struct {
	ledger ledger.Ledger
	blobs  blob.Putter
	now    func() time.Time
}

// NewFuelService constructs a FuelService. now is the clock used for refuel
// timestamps; production wires a UTC clock.
func NewFuelService(l ledger.Ledger, b blob.Putter, now func() time.Time) *FuelService {
	return &FuelService{ledger: l, blobs: b, now: now}
}

// Log validates the input, persists the photo evidence, computes the distance
// covered since the previous refuel and the resulting efficiency, and appends
// an immutable fuel log entry. The derived values are fixed at this moment:
// trips added or removed later never change them.
func (s *FuelService) Log(ctx context.Context, in LogRefuelInput) (domain.FuelLogEntry, error) {
	in.VehicleReg = strings.TrimSpace(in.VehicleReg)
	in.Driver = strings.TrimSpace(in.Driver)

	if in.VehicleReg == "" {
		return domain.FuelLogEntry{}, fmt.Errorf("%w: vehicle registration is required", domain.ErrValidation)
	}
	if in.Driver == "" {
		return domain.FuelLogEntry{}, fmt.Errorf("%w: driver name is required", domain.ErrValidation)
	}
	if in.Litres <= 0 {
		return domain.FuelLogEntry{}, fmt.Errorf("%w: litres must be greater than zero", domain.ErrValidation)
	}
	if in.Cost != nil && *in.Cost < 0 {
		return domain.FuelLogEntry{}, fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
	}
	if !in.ReceiptPhoto.Present() {
		return domain.FuelLogEntry{}, fmt.Errorf("%w: receipt photo is required", domain.ErrValidation)
	}

	var created domain.FuelLogEntry
	err := s.ledger.MutateFuel(func(t ledger.Tables) ([]domain.FuelLogEntry, error) {
		now := s.now()

		var mileageRef string
		if in.MileagePhoto.Present() {
			ref, err := s.blobs.Put(blob.KindMileage, "refuel_mileage", in.MileagePhoto.Ext, now, in.MileagePhoto.Data)
			if err != nil {
				return nil, fmt.Errorf("service.FuelService.Log: %w", err)
			}
			mileageRef = ref
		}
		receiptRef, err := s.blobs.Put(blob.KindReceipts, "receipt", in.ReceiptPhoto.Ext, now, in.ReceiptPhoto.Data)
		if err != nil {
			return nil, fmt.Errorf("service.FuelService.Log: %w", err)
		}

		distance := round2(distanceSinceLastRefuel(t, in.Driver, in.VehicleReg, now))
		efficiency := round2(distance / in.Litres)
		litres := in.Litres

		created = domain.FuelLogEntry{
			ID:           domain.NewFuelID(now),
			VehicleReg:   in.VehicleReg,
			Driver:       in.Driver,
			LoggedAt:     now,
			Litres:       &litres,
			Cost:         in.Cost,
			MileagePhoto: mileageRef,
			ReceiptPhoto: receiptRef,
			DistanceKM:   &distance,
			Efficiency:   &efficiency,
		}
		return append(t.Fuel, created), nil
	})
	if err != nil {
		return domain.FuelLogEntry{}, err
	}
	return created, nil
}

// DistanceSinceLastRefuel returns the distance the (driver, vehicle) pair
// covered on closed trips since its previous refuel, as of asOf. Repeated
// calls against an unchanged ledger return the same value.
func (s *FuelService) DistanceSinceLastRefuel(ctx context.Context, driver, vehicleReg string, asOf time.Time) (float64, error) {
	var distance float64
	err := s.ledger.View(func(t ledger.Tables) error {
		distance = distanceSinceLastRefuel(t, strings.TrimSpace(driver), strings.TrimSpace(vehicleReg), asOf)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("service.FuelService.DistanceSinceLastRefuel: %w", err)
	}
	return round2(distance), nil
}

// List returns fuel entries matching the filter, most recent first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *FuelService) List(ctx context.Context, filter domain.ReportFilter) ([]domain.FuelLogEntry, error) {
	entries := []domain.FuelLogEntry{}
	err := s.ledger.View(func(t ledger.Tables) error {
		for _, e := range t.Fuel {
			if filter.MatchFuel(e) {
				entries = append(entries, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.FuelService.List: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].LoggedAt.After(entries[j].LoggedAt) })
	return entries, nil
}

// distanceSinceLastRefuel sums DistanceKM over closed trips of the exact
// (driver, vehicle) pair whose end time falls after the pair's most recent
// refuel (or any time, when no refuel exists) and at or before asOf.
// Trips with a missing or unparseable distance contribute zero.
func distanceSinceLastRefuel(t ledger.Tables, driver, vehicleReg string, asOf time.Time) float64 {
	var lastRefuel *time.Time
	for _, e := range t.Fuel {
		if e.Driver != driver || e.VehicleReg != vehicleReg || e.LoggedAt.IsZero() {
			continue
		}
		if lastRefuel == nil || e.LoggedAt.After(*lastRefuel) {
			at := e.LoggedAt
			lastRefuel = &at
		}
	}

	var sum float64
	for _, trip := range t.Trips {
		if trip.Status != domain.TripClosed || trip.Driver != driver || trip.VehicleReg != vehicleReg {
			continue
		}
		if trip.EndTime == nil || trip.EndTime.After(asOf) {
			continue
		}
		if lastRefuel != nil && !trip.EndTime.After(*lastRefuel) {
			continue
		}
		if trip.DistanceKM != nil {
			sum += *trip.DistanceKM
		}
	}
	return sum
}
