// Package service contains the business logic for the fleet ledger API.
// Services validate inputs, enforce the ledger invariants, and orchestrate
// store and blob calls. No CSV handling lives here; services depend on the
// ledger.Ledger and blob.Putter interfaces, not the file-backed
// implementations.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mkamau/fleet-ledger/internal/blob"
	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
)

// Photo carries uploaded photo evidence through the service layer.
// A zero Photo means no photo was supplied.
type Photo struct {
	Data []byte
	Ext  string // original extension including the dot, e.g. ".jpg"
}

// Present reports whether photo evidence was supplied.
func (p Photo) Present() bool { return len(p.Data) > 0 }

// StartTripInput is the validated scalar input for TripService.Start.
type StartTripInput struct {
	VehicleReg      string
	Driver          string
	DriverContact   string
	VehicleType     domain.VehicleType
	Origin          string
	Destination     string
	Purpose         string
	PurposeCategory domain.PurposeCategory
	GatePass        string
	StartOdometer   float64
	StartPhoto      Photo
}

// EndTripInput is the validated scalar input for TripService.End.
// Allowance amounts left nil default to zero on the closed trip.
type EndTripInput struct {
	TripID      string
	EndOdometer float64
	EndPhoto    Photo
	Allowances  domain.Allowances
}

// TripService implements the trip lifecycle: start, end, open-trip lookup.
type TripService struct {
	ledger ledger.Ledger
	blobs  blob.Putter
	now    func() time.Time
}

// NewTripService constructs a TripService. now is the clock used for start
// and end timestamps; production wires a UTC clock.
func NewTripService(l ledger.Ledger, b blob.Putter, now func() time.Time) *TripService {
	return &TripService{ledger: l, blobs: b, now: now}
}

// Start validates the input, enforces gate pass uniqueness and the
// one-open-trip-per-driver-and-vehicle rule, persists the start photo, and
// appends a new open trip. Both invariant checks and the append run under the
// store write lock, so two concurrent starts cannot both pass against a stale
// snapshot.
func (s *TripService) Start(ctx context.Context, in StartTripInput) (domain.Trip, error) {
	in.VehicleReg = strings.TrimSpace(in.VehicleReg)
	in.Driver = strings.TrimSpace(in.Driver)
	in.GatePass = strings.TrimSpace(in.GatePass)

	if in.VehicleReg == "" {
		return domain.Trip{}, fmt.Errorf("%w: vehicle registration is required", domain.ErrValidation)
	}
	if in.Driver == "" {
		return domain.Trip{}, fmt.Errorf("%w: driver name is required", domain.ErrValidation)
	}
	if in.GatePass == "" {
		return domain.Trip{}, fmt.Errorf("%w: gate pass number is required", domain.ErrValidation)
	}
	if !in.StartPhoto.Present() {
		return domain.Trip{}, fmt.Errorf("%w: start odometer photo is required", domain.ErrValidation)
	}
	if in.StartOdometer < 0 {
		return domain.Trip{}, fmt.Errorf("%w: start odometer must not be negative", domain.ErrValidation)
	}
	if in.VehicleType == "" {
		in.VehicleType = domain.VehicleOther
	} else if !domain.ValidVehicleType(in.VehicleType) {
		return domain.Trip{}, fmt.Errorf("%w: unknown vehicle type %q", domain.ErrValidation, in.VehicleType)
	}
	if in.PurposeCategory == "" {
		in.PurposeCategory = domain.PurposeOther
	} else if !domain.ValidPurposeCategory(in.PurposeCategory) {
		return domain.Trip{}, fmt.Errorf("%w: unknown purpose category %q", domain.ErrValidation, in.PurposeCategory)
	}

	var created domain.Trip
	err := s.ledger.MutateTrips(func(t ledger.Tables) ([]domain.Trip, error) {
		for _, existing := range t.Trips {
			if strings.TrimSpace(existing.GatePass) == in.GatePass {
				return nil, fmt.Errorf("service.TripService.Start: %w", domain.ErrDuplicateGatePass)
			}
		}
		if _, ok := findOpenTrip(t.Trips, in.Driver, in.VehicleReg); ok {
			return nil, fmt.Errorf("service.TripService.Start: %w", domain.ErrOpenTripExists)
		}

		now := s.now()
		photoRef, err := s.blobs.Put(blob.KindMileage, "start", in.StartPhoto.Ext, now, in.StartPhoto.Data)
		if err != nil {
			return nil, fmt.Errorf("service.TripService.Start: %w", err)
		}

		startOdo := in.StartOdometer
		created = domain.Trip{
			ID:              domain.NewTripID(now),
			VehicleReg:      in.VehicleReg,
			Driver:          in.Driver,
			DriverContact:   strings.TrimSpace(in.DriverContact),
			VehicleType:     in.VehicleType,
			StartTime:       now,
			Origin:          in.Origin,
			Destination:     in.Destination,
			Purpose:         in.Purpose,
			PurposeCategory: in.PurposeCategory,
			GatePass:        in.GatePass,
			StartOdometer:   &startOdo,
			StartPhoto:      photoRef,
			Status:          domain.TripOpen,
		}
		return append(t.Trips, created), nil
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return created, nil
}

// End closes an open trip: it persists the end photo, stamps the end time,
// records the end odometer and distance, and fills the allowance amounts
// (absent amounts become zero). Closed trips are immutable; ending a closed
// or unknown trip returns domain.ErrNotFound.
func (s *TripService) End(ctx context.Context, in EndTripInput) (domain.Trip, error) {
	if !in.EndPhoto.Present() {
		return domain.Trip{}, fmt.Errorf("%w: end odometer photo is required", domain.ErrValidation)
	}

	var closed domain.Trip
	err := s.ledger.MutateTrips(func(t ledger.Tables) ([]domain.Trip, error) {
		idx := -1
		for i, existing := range t.Trips {
			if existing.ID == in.TripID {
				if idx >= 0 {
					// Duplicate ids mean a corrupted table; refuse to guess.
					return nil, fmt.Errorf("service.TripService.End: %w", domain.ErrNotFound)
				}
				idx = i
			}
		}
		if idx < 0 || t.Trips[idx].Status != domain.TripOpen {
			return nil, fmt.Errorf("service.TripService.End: %w", domain.ErrNotFound)
		}

		trip := t.Trips[idx]
		var startOdo float64
		if trip.StartOdometer != nil {
			startOdo = *trip.StartOdometer
		}
		if in.EndOdometer < startOdo {
			return nil, fmt.Errorf("service.TripService.End: %w", domain.ErrInvalidOdometer)
		}

		now := s.now()
		photoRef, err := s.blobs.Put(blob.KindMileage, "end", in.EndPhoto.Ext, now, in.EndPhoto.Data)
		if err != nil {
			return nil, fmt.Errorf("service.TripService.End: %w", err)
		}

		endOdo := in.EndOdometer
		distance := round2(endOdo - startOdo)
		trip.EndTime = &now
		trip.EndOdometer = &endOdo
		trip.EndPhoto = photoRef
		trip.DistanceKM = &distance
		trip.Allowances = fillAllowances(in.Allowances)
		trip.Status = domain.TripClosed

		t.Trips[idx] = trip
		closed = trip
		return t.Trips, nil
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return closed, nil
}

// Get returns a single trip by id. Returns domain.ErrNotFound when no trip
// with that id exists.
func (s *TripService) Get(ctx context.Context, id string) (domain.Trip, error) {
	var found domain.Trip
	var ok bool
	err := s.ledger.View(func(t ledger.Tables) error {
		for _, trip := range t.Trips {
			if trip.ID == id {
				found, ok = trip, true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	if !ok {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", domain.ErrNotFound)
	}
	return found, nil
}

// FindOpen returns the open trip for the driver (and vehicle, when given).
// If the one-open-trip invariant has ever been violated the most recently
// started trip wins. Returns domain.ErrNotFound when there is none.
func (s *TripService) FindOpen(ctx context.Context, driver, vehicleReg string) (domain.Trip, error) {
	var found domain.Trip
	var ok bool
	err := s.ledger.View(func(t ledger.Tables) error {
		found, ok = findOpenTrip(t.Trips, strings.TrimSpace(driver), strings.TrimSpace(vehicleReg))
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.FindOpen: %w", err)
	}
	if !ok {
		return domain.Trip{}, fmt.Errorf("service.TripService.FindOpen: %w", domain.ErrNotFound)
	}
	return found, nil
}

// List returns trips matching the filter, most recently started first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Trip, error) {
	trips := []domain.Trip{}
	err := s.ledger.View(func(t ledger.Tables) error {
		for _, trip := range t.Trips {
			if filter.MatchTrip(trip) {
				trips = append(trips, trip)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].StartTime.After(trips[j].StartTime) })
	return trips, nil
}

// findOpenTrip scans for open trips belonging to driver, narrowed to
// vehicleReg when non-empty. The most recent start time wins.
func findOpenTrip(trips []domain.Trip, driver, vehicleReg string) (domain.Trip, bool) {
	var best domain.Trip
	found := false
	for _, t := range trips {
		if t.Status != domain.TripOpen || t.Driver != driver {
			continue
		}
		if vehicleReg != "" && t.VehicleReg != vehicleReg {
			continue
		}
		if !found || t.StartTime.After(best.StartTime) {
			best = t
			found = true
		}
	}
	return best, found
}

// fillAllowances replaces nil amounts with explicit zeros so closed trips
// always carry all six values.
func fillAllowances(a domain.Allowances) domain.Allowances {
	zero := func(v *float64) *float64 {
		if v == nil {
			z := 0.0
			return &z
		}
		return v
	}
	return domain.Allowances{
		Daily:      zero(a.Daily),
		Offloading: zero(a.Offloading),
		Loader:     zero(a.Loader),
		Security:   zero(a.Security),
		Parking:    zero(a.Parking),
		NightOut:   zero(a.NightOut),
	}
}

// round2 rounds to two decimal places, the precision all derived distances
// and efficiencies are stored at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
