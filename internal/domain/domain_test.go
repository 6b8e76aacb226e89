package domain_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestAllowances_Total(t *testing.T) {
	assert.Equal(t, 0.0, domain.Allowances{}.Total(), "all nil counts as zero")

	a := domain.Allowances{
		Daily:    ptr(500),
		Loader:   ptr(200),
		NightOut: ptr(1000),
	}
	assert.Equal(t, 1700.0, a.Total())
}

func TestNewTripID_Format(t *testing.T) {
	at := time.Date(2025, 3, 10, 14, 30, 45, 0, time.UTC)

	id := domain.NewTripID(at)
	assert.Regexp(t, regexp.MustCompile(`^TRIP-20250310143045-[0-9a-f]{6}$`), id)

	other := domain.NewTripID(at)
	assert.NotEqual(t, id, other, "same-second ids must differ")

	assert.Regexp(t, regexp.MustCompile(`^FUEL-20250310143045-[0-9a-f]{6}$`), domain.NewFuelID(at))
}

func TestUser_MayOperate(t *testing.T) {
	admin := domain.User{Username: "boss", Role: domain.RoleAdmin}
	assert.True(t, admin.MayOperate("KAA 123A"))
	assert.True(t, admin.MayOperate("anything"))

	driver := domain.User{Username: "alice", Role: domain.RoleDriver, VehicleReg: "KAA 123A"}
	assert.True(t, driver.MayOperate("KAA 123A"))
	assert.False(t, driver.MayOperate("KBB 456B"))
}

func TestReportFilter_MatchTrip_DayPrecision(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	filter := domain.ReportFilter{From: &from, To: &to}

	late := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.True(t, filter.MatchTrip(domain.Trip{StartTime: late}), "same day matches regardless of time")

	before := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	assert.False(t, filter.MatchTrip(domain.Trip{StartTime: before}))

	// A trip started before the range but ended inside it matches.
	endInRange := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	assert.True(t, filter.MatchTrip(domain.Trip{StartTime: before, EndTime: &endInRange}))
}

func TestReportFilter_MatchFuel(t *testing.T) {
	entry := domain.FuelLogEntry{
		VehicleReg: "KAA 123A",
		Driver:     "Alice",
		LoggedAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	assert.True(t, domain.ReportFilter{}.MatchFuel(entry), "zero filter matches everything")
	assert.True(t, domain.ReportFilter{Vehicles: []string{"KAA 123A"}}.MatchFuel(entry))
	assert.False(t, domain.ReportFilter{Vehicles: []string{"KBB 456B"}}.MatchFuel(entry))
	assert.False(t, domain.ReportFilter{Drivers: []string{"Bob"}}.MatchFuel(entry))

	to := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.False(t, domain.ReportFilter{To: &to}.MatchFuel(entry))
}

func TestValidEnums(t *testing.T) {
	assert.True(t, domain.ValidVehicleType(domain.VehicleTruck))
	assert.False(t, domain.ValidVehicleType("Hovercraft"))

	assert.True(t, domain.ValidPurposeCategory(domain.PurposeDelivery))
	assert.False(t, domain.ValidPurposeCategory("Joyride"))

	assert.True(t, domain.ValidRole(domain.RoleDriver))
	assert.True(t, domain.ValidRole(domain.RoleAdmin))
	assert.False(t, domain.ValidRole("root"))
}

func TestTrip_Open(t *testing.T) {
	assert.True(t, domain.Trip{Status: domain.TripOpen}.Open())
	assert.False(t, domain.Trip{Status: domain.TripClosed}.Open())
}
