package ledger_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
)

// ---- helpers ---------------------------------------------------------------

func ptr(v float64) *float64 { return &v }

func closedTrip(id string) domain.Trip {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	return domain.Trip{
		ID:              id,
		VehicleReg:      "KAA 123A",
		Driver:          "Alice",
		VehicleType:     domain.VehicleTruck,
		StartTime:       start,
		EndTime:         &end,
		Origin:          "Depot",
		Destination:     "Site 4",
		PurposeCategory: domain.PurposeDelivery,
		GatePass:        "GP-" + id,
		StartOdometer:   ptr(100),
		StartPhoto:      "mileage/start_x.jpg",
		EndOdometer:     ptr(150),
		EndPhoto:        "mileage/end_x.jpg",
		DistanceKM:      ptr(50),
		Allowances:      domain.Allowances{Daily: ptr(500), Offloading: ptr(0), Loader: ptr(0), Security: ptr(0), Parking: ptr(0), NightOut: ptr(0)},
		Status:          domain.TripClosed,
	}
}

// ---- Open ------------------------------------------------------------------

func TestOpen_CreatesEmptyTables(t *testing.T) {
	dir := t.TempDir()

	store, err := ledger.Open(dir)
	require.NoError(t, err)

	// Both files exist with a header row.
	for _, name := range []string{"trips.csv", "fuel_logs.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, data, "%s should have a header row", name)
	}

	err = store.View(func(tables ledger.Tables) error {
		assert.Empty(t, tables.Trips)
		assert.Empty(t, tables.Fuel)
		return nil
	})
	require.NoError(t, err)
}

func TestOpen_KeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	store, err := ledger.Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.MutateTrips(func(tables ledger.Tables) ([]domain.Trip, error) {
		return append(tables.Trips, closedTrip("TRIP-1")), nil
	}))

	// Re-opening must not truncate.
	reopened, err := ledger.Open(dir)
	require.NoError(t, err)
	err = reopened.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Trips, 1)
		assert.Equal(t, "TRIP-1", tables.Trips[0].ID)
		return nil
	})
	require.NoError(t, err)
}

// ---- roundtrip -------------------------------------------------------------

func TestStore_TripRoundtrip(t *testing.T) {
	store, err := ledger.Open(t.TempDir())
	require.NoError(t, err)

	want := closedTrip("TRIP-rt")
	require.NoError(t, store.MutateTrips(func(tables ledger.Tables) ([]domain.Trip, error) {
		return append(tables.Trips, want), nil
	}))

	err = store.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Trips, 1)
		got := tables.Trips[0]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.VehicleReg, got.VehicleReg)
		assert.Equal(t, want.StartTime, got.StartTime)
		require.NotNil(t, got.EndTime)
		assert.Equal(t, *want.EndTime, *got.EndTime)
		require.NotNil(t, got.DistanceKM)
		assert.Equal(t, 50.0, *got.DistanceKM)
		require.NotNil(t, got.Allowances.Daily)
		assert.Equal(t, 500.0, *got.Allowances.Daily)
		assert.Equal(t, domain.TripClosed, got.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_TimestampsKeepInstantAcrossZones(t *testing.T) {
	store, err := ledger.Open(t.TempDir())
	require.NoError(t, err)

	// A trip recorded on a host three hours east of UTC.
	zone := time.FixedZone("UTC+3", 3*60*60)
	trip := closedTrip("TRIP-tz")
	trip.StartTime = time.Date(2025, 3, 10, 12, 0, 0, 0, zone)
	end := trip.StartTime.Add(3 * time.Hour)
	trip.EndTime = &end

	require.NoError(t, store.MutateTrips(func(tables ledger.Tables) ([]domain.Trip, error) {
		return append(tables.Trips, trip), nil
	}))

	err = store.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Trips, 1)
		got := tables.Trips[0]
		// Same instant back, stored as a UTC wall clock.
		assert.True(t, got.StartTime.Equal(trip.StartTime), "start instant changed: %v", got.StartTime)
		require.NotNil(t, got.EndTime)
		assert.True(t, got.EndTime.Equal(end), "end instant changed: %v", got.EndTime)
		assert.Equal(t, "2025-03-10 09:00:00", got.StartTime.Format("2006-01-02 15:04:05"))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_FuelRoundtrip(t *testing.T) {
	store, err := ledger.Open(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)
	entry := domain.FuelLogEntry{
		ID:           "FUEL-rt",
		VehicleReg:   "KAA 123A",
		Driver:       "Alice",
		LoggedAt:     at,
		Litres:       ptr(10),
		Cost:         ptr(1800),
		ReceiptPhoto: "receipts/receipt_x.jpg",
		DistanceKM:   ptr(50),
		Efficiency:   ptr(5),
	}
	require.NoError(t, store.MutateFuel(func(tables ledger.Tables) ([]domain.FuelLogEntry, error) {
		return append(tables.Fuel, entry), nil
	}))

	err = store.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Fuel, 1)
		got := tables.Fuel[0]
		assert.Equal(t, entry.ID, got.ID)
		assert.Equal(t, at, got.LoggedAt)
		require.NotNil(t, got.Efficiency)
		assert.Equal(t, 5.0, *got.Efficiency)
		assert.Empty(t, got.MileagePhoto, "no mileage photo stored")
		return nil
	})
	require.NoError(t, err)
}

// ---- lenient schema load ---------------------------------------------------

func TestStore_LoadAddsMissingColumns(t *testing.T) {
	// A file written by an older version: no allowance columns at all.
	dir := t.TempDir()
	old := "TripID,VehicleReg,Driver,StartDateTime,Status\n" +
		"TRIP-old,KBB 456B,Bob,2025-01-05 07:00:00,open\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trips.csv"), []byte(old), 0o644))

	store, err := ledger.Open(dir)
	require.NoError(t, err)

	err = store.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Trips, 1)
		got := tables.Trips[0]
		assert.Equal(t, "TRIP-old", got.ID)
		assert.Equal(t, "Bob", got.Driver)
		assert.Equal(t, domain.TripOpen, got.Status)
		// Absent columns load as empty/nil, not as an error.
		assert.Nil(t, got.StartOdometer)
		assert.Nil(t, got.Allowances.Daily)
		assert.Empty(t, got.GatePass)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_LoadCoercesMalformedNumbersToNil(t *testing.T) {
	dir := t.TempDir()
	bad := "TripID,VehicleReg,Driver,StartDateTime,StartMileage,DistanceKM,Status\n" +
		"TRIP-bad,KCC 789C,Cara,2025-02-01 10:00:00,not-a-number,12.5,closed\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trips.csv"), []byte(bad), 0o644))

	store, err := ledger.Open(dir)
	require.NoError(t, err)

	err = store.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Trips, 1)
		got := tables.Trips[0]
		assert.Nil(t, got.StartOdometer, "malformed numeric cell must load as nil")
		require.NotNil(t, got.DistanceKM)
		assert.Equal(t, 12.5, *got.DistanceKM)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_MutateAbortsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	store, err := ledger.Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.MutateTrips(func(tables ledger.Tables) ([]domain.Trip, error) {
		return append(tables.Trips, closedTrip("TRIP-keep")), nil
	}))

	// A failing mutation must leave the file untouched.
	wantErr := assert.AnError
	err = store.MutateTrips(func(tables ledger.Tables) ([]domain.Trip, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	err = store.View(func(tables ledger.Tables) error {
		require.Len(t, tables.Trips, 1)
		assert.Equal(t, "TRIP-keep", tables.Trips[0].ID)
		return nil
	})
	require.NoError(t, err)
}
