package ledger

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

// TripColumns returns the canonical trip column set, in order. Export code
// uses it for spreadsheet headers so downloads match the stored layout.
func TripColumns() []string {
	out := make([]string, len(tripColumns))
	copy(out, tripColumns)
	return out
}

// FuelColumns returns the canonical fuel column set, in order.
func FuelColumns() []string {
	out := make([]string, len(fuelColumns))
	copy(out, fuelColumns)
	return out
}

// WriteTripsCSV writes trips to w in the stored CSV layout: canonical header
// row followed by one row per trip.
func WriteTripsCSV(w io.Writer, trips []domain.Trip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tripColumns); err != nil {
		return fmt.Errorf("ledger.WriteTripsCSV: %w", err)
	}
	for _, t := range trips {
		if err := cw.Write(encodeTrip(t)); err != nil {
			return fmt.Errorf("ledger.WriteTripsCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("ledger.WriteTripsCSV: %w", err)
	}
	return nil
}

// WriteFuelCSV writes fuel entries to w in the stored CSV layout.
func WriteFuelCSV(w io.Writer, entries []domain.FuelLogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fuelColumns); err != nil {
		return fmt.Errorf("ledger.WriteFuelCSV: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(encodeFuel(e)); err != nil {
			return fmt.Errorf("ledger.WriteFuelCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("ledger.WriteFuelCSV: %w", err)
	}
	return nil
}

// TripRow exposes a trip encoded in canonical column order for export code
// that writes formats other than CSV.
func TripRow(t domain.Trip) []string { return encodeTrip(t) }

// FuelRow exposes a fuel entry encoded in canonical column order.
func FuelRow(e domain.FuelLogEntry) []string { return encodeFuel(e) }
