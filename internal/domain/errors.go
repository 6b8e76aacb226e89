package domain

import "errors"

// ErrNotFound is returned by store and service functions when the requested
// record does not exist in the ledger.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, non-positive litres).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicateGatePass is returned by StartTrip when the supplied gate pass
// number already exists on any trip, open or closed. Gate pass numbers are a
// site-issued uniqueness key and may never be reused.
// Handlers should map this to HTTP 409 Conflict.
var ErrDuplicateGatePass = errors.New("gate pass number already used")

// ErrOpenTripExists is returned by StartTrip when the driver already has an
// open trip on the same vehicle. The open trip must be ended first.
// Handlers should map this to HTTP 409 Conflict.
var ErrOpenTripExists = errors.New("open trip already exists for driver and vehicle")

// ErrInvalidOdometer is returned by EndTrip when the end odometer reading is
// below the trip's start reading.
// Handlers should map this to HTTP 409 Conflict.
var ErrInvalidOdometer = errors.New("end odometer below start odometer")

// ErrStorage is returned when the backing CSV files cannot be read or
// written. The operation performed no partial write.
// Handlers should map this to HTTP 503 Service Unavailable.
var ErrStorage = errors.New("ledger storage unavailable")
