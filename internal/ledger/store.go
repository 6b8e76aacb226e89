// Package ledger persists the trip and fuel tables as two flat CSV files.
// Every mutation reads the whole table, rewrites it in memory, and writes the
// whole file back under a single store-wide mutex. That serialization point is
// what upholds the cross-record invariants (gate pass uniqueness, one open
// trip per driver and vehicle): two concurrent writers can never both validate
// against a stale snapshot.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

// Tables is a point-in-time copy of both ledger tables. Mutation callbacks
// receive it fresh from disk; report code may hold it after the lock is
// released because it shares no memory with the store.
type Tables struct {
	Trips []domain.Trip
	Fuel  []domain.FuelLogEntry
}

// Ledger is the store interface the service layer depends on. Defining it
// here lets services be unit-tested with an in-memory fake instead of a
// real data directory.
type Ledger interface {
	// View runs fn with a snapshot of both tables. fn must not retain
	// writes; the snapshot is discarded afterwards.
	View(fn func(Tables) error) error

	// MutateTrips runs fn with a fresh snapshot under the write lock and
	// persists the trip table fn returns. Returning an error aborts the
	// mutation with nothing written.
	MutateTrips(fn func(Tables) ([]domain.Trip, error)) error

	// MutateFuel is MutateTrips for the fuel table. fn still sees both
	// tables because fuel derivations join against trips.
	MutateFuel(fn func(Tables) ([]domain.FuelLogEntry, error)) error
}

// Store is the CSV-backed Ledger implementation.
type Store struct {
	mu        sync.Mutex
	tripsPath string
	fuelPath  string
}

var _ Ledger = (*Store)(nil)

// Open prepares a Store rooted at dataDir, creating the directory and empty
// header-only tables for any file that does not exist yet. A missing file is
// not an error; a file that exists but cannot be parsed is.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ledger.Open: %w: %v", domain.ErrStorage, err)
	}
	s := &Store{
		tripsPath: filepath.Join(dataDir, "trips.csv"),
		fuelPath:  filepath.Join(dataDir, "fuel_logs.csv"),
	}
	for path, cols := range map[string][]string{
		s.tripsPath: tripColumns,
		s.fuelPath:  fuelColumns,
	} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := writeTable(path, cols, nil); err != nil {
				return nil, fmt.Errorf("ledger.Open: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("ledger.Open: %w: %v", domain.ErrStorage, err)
		}
	}
	return s, nil
}

// View runs fn with a snapshot of both tables read under the lock.
func (s *Store) View(fn func(Tables) error) error {
	s.mu.Lock()
	tables, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("ledger.Store.View: %w", err)
	}
	return fn(tables)
}

// MutateTrips applies fn to a fresh snapshot and rewrites the trip table.
func (s *Store) MutateTrips(fn func(Tables) ([]domain.Trip, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load()
	if err != nil {
		return fmt.Errorf("ledger.Store.MutateTrips: %w", err)
	}
	trips, err := fn(tables)
	if err != nil {
		return err
	}
	rows := make([][]string, len(trips))
	for i, t := range trips {
		rows[i] = encodeTrip(t)
	}
	if err := writeTable(s.tripsPath, tripColumns, rows); err != nil {
		return fmt.Errorf("ledger.Store.MutateTrips: %w", err)
	}
	return nil
}

// MutateFuel applies fn to a fresh snapshot and rewrites the fuel table.
func (s *Store) MutateFuel(fn func(Tables) ([]domain.FuelLogEntry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load()
	if err != nil {
		return fmt.Errorf("ledger.Store.MutateFuel: %w", err)
	}
	fuel, err := fn(tables)
	if err != nil {
		return err
	}
	rows := make([][]string, len(fuel))
	for i, e := range fuel {
		rows[i] = encodeFuel(e)
	}
	if err := writeTable(s.fuelPath, fuelColumns, rows); err != nil {
		return fmt.Errorf("ledger.Store.MutateFuel: %w", err)
	}
	return nil
}

// load reads both tables. Callers must hold s.mu.
func (s *Store) load() (Tables, error) {
	tripRows, err := readTable(s.tripsPath, tripColumns)
	if err != nil {
		return Tables{}, err
	}
	fuelRows, err := readTable(s.fuelPath, fuelColumns)
	if err != nil {
		return Tables{}, err
	}

	t := Tables{
		Trips: make([]domain.Trip, len(tripRows)),
		Fuel:  make([]domain.FuelLogEntry, len(fuelRows)),
	}
	for i, row := range tripRows {
		t.Trips[i] = decodeTrip(row)
	}
	for i, row := range fuelRows {
		t.Fuel[i] = decodeFuel(row)
	}
	return t, nil
}

// readTable reads a CSV file into one map per row, keyed by column name.
// Columns absent from the stored header are present in every map with an
// empty value, so a file written by an older version loads cleanly. Extra
// stored columns are ignored. A missing file reads as an empty table.
func readTable(path string, columns []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be shorter or longer than the header
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			row[col] = ""
		}
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeTable rewrites the whole file: header plus rows go to a temp file in
// the same directory, which then replaces the target via rename. A failed
// write leaves the previous file intact.
func writeTable(path string, columns []string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(columns)
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(row)
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, path)
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, filepath.Base(path), writeErr)
	}
	return nil
}
