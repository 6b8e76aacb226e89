package service_test

import (
	"fmt"
	"time"

	"github.com/mkamau/fleet-ledger/internal/blob"
	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
	"github.com/mkamau/fleet-ledger/internal/service"
)

// fakeLedger is an in-memory ledger.Ledger. Mutations apply to the held
// tables exactly like the file-backed store applies them to disk.
type fakeLedger struct {
	tables ledger.Tables
	err    error // returned from every call when set
}

var _ ledger.Ledger = (*fakeLedger)(nil)

func (f *fakeLedger) View(fn func(ledger.Tables) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(f.tables)
}

func (f *fakeLedger) MutateTrips(fn func(ledger.Tables) ([]domain.Trip, error)) error {
	if f.err != nil {
		return f.err
	}
	trips, err := fn(f.tables)
	if err != nil {
		return err
	}
	f.tables.Trips = trips
	return nil
}

func (f *fakeLedger) MutateFuel(fn func(ledger.Tables) ([]domain.FuelLogEntry, error)) error {
	if f.err != nil {
		return f.err
	}
	fuel, err := fn(f.tables)
	if err != nil {
		return err
	}
	f.tables.Fuel = fuel
	return nil
}

// fakeBlobs records puts and hands out deterministic references.
type fakeBlobs struct {
	refs []string
	err  error
}

var _ blob.Putter = (*fakeBlobs)(nil)

func (f *fakeBlobs) Put(kind blob.Kind, prefix, ext string, now time.Time, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	ref := fmt.Sprintf("%s/%s_%d%s", kind, prefix, len(f.refs), ext)
	f.refs = append(f.refs, ref)
	return ref, nil
}

func clockAt(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func jpeg() service.Photo {
	return service.Photo{Data: []byte("not really a jpeg"), Ext: ".jpg"}
}

func ptr(v float64) *float64 { return &v }
