package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTripID mints a trip identifier of the form TRIP-20060102150405-a1b2c3.
// The timestamp prefix keeps ids roughly sortable by creation time; the random
// suffix guarantees uniqueness within the same second. Identifiers are opaque
// to the rest of the system.
func NewTripID(now time.Time) string {
	return newID("TRIP", now)
}

// NewFuelID mints a fuel log identifier of the form FUEL-20060102150405-a1b2c3.
func NewFuelID(now time.Time) string {
	return newID("FUEL", now)
}

func newID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102150405"), suffix)
}
