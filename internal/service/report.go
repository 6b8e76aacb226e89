package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
)

// ReportService builds the read-only dashboard reports. Each report runs
// against a single consistent snapshot of both tables; no coordination with
// other readers is needed.
type ReportService struct {
	ledger ledger.Ledger
}

// NewReportService constructs a ReportService backed by the provided ledger.
func NewReportService(l ledger.Ledger) *ReportService {
	return &ReportService{ledger: l}
}

// Trips returns the filtered trip listing (newest first) and the number of
// closed trips per vehicle per day.
func (s *ReportService) Trips(ctx context.Context, filter domain.ReportFilter) (domain.TripsReport, error) {
	report := domain.TripsReport{Trips: []domain.Trip{}, PerVehicleDay: []domain.VehicleDayCount{}}

	err := s.ledger.View(func(t ledger.Tables) error {
		counts := map[domain.VehicleDayCount]int{}
		for _, trip := range t.Trips {
			if !filter.MatchTrip(trip) {
				continue
			}
			report.Trips = append(report.Trips, trip)
			if trip.Status == domain.TripClosed && !trip.StartTime.IsZero() {
				key := domain.VehicleDayCount{
					VehicleReg: trip.VehicleReg,
					Day:        trip.StartTime.Format("2006-01-02"),
				}
				counts[key]++
			}
		}
		for key, n := range counts {
			key.Trips = n
			report.PerVehicleDay = append(report.PerVehicleDay, key)
		}
		return nil
	})
	if err != nil {
		return domain.TripsReport{}, fmt.Errorf("service.ReportService.Trips: %w", err)
	}

	sort.Slice(report.Trips, func(i, j int) bool {
		return report.Trips[i].StartTime.After(report.Trips[j].StartTime)
	})
	sort.Slice(report.PerVehicleDay, func(i, j int) bool {
		a, b := report.PerVehicleDay[i], report.PerVehicleDay[j]
		if a.VehicleReg != b.VehicleReg {
			return a.VehicleReg < b.VehicleReg
		}
		return a.Day < b.Day
	})
	return report, nil
}

// Fuel returns the filtered fuel listing (newest first) plus time-ascending
// efficiency and litres series. Entries without a usable efficiency are left
// out of the efficiency series; missing litres chart as zero.
func (s *ReportService) Fuel(ctx context.Context, filter domain.ReportFilter) (domain.FuelReport, error) {
	report := domain.FuelReport{
		Entries:    []domain.FuelLogEntry{},
		Efficiency: []domain.SeriesPoint{},
		Litres:     []domain.SeriesPoint{},
	}

	err := s.ledger.View(func(t ledger.Tables) error {
		for _, e := range t.Fuel {
			if filter.MatchFuel(e) {
				report.Entries = append(report.Entries, e)
			}
		}
		return nil
	})
	if err != nil {
		return domain.FuelReport{}, fmt.Errorf("service.ReportService.Fuel: %w", err)
	}

	ordered := make([]domain.FuelLogEntry, len(report.Entries))
	copy(ordered, report.Entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].LoggedAt.Before(ordered[j].LoggedAt) })
	for _, e := range ordered {
		if e.LoggedAt.IsZero() {
			continue
		}
		if e.Efficiency != nil {
			report.Efficiency = append(report.Efficiency, domain.SeriesPoint{At: e.LoggedAt, Value: *e.Efficiency})
		}
		var litres float64
		if e.Litres != nil {
			litres = *e.Litres
		}
		report.Litres = append(report.Litres, domain.SeriesPoint{At: e.LoggedAt, Value: litres})
	}

	sort.Slice(report.Entries, func(i, j int) bool {
		return report.Entries[i].LoggedAt.After(report.Entries[j].LoggedAt)
	})
	return report, nil
}

// Allowances returns per-trip allowance totals (newest first) plus totals
// grouped by vehicle and by driver, each sorted descending.
func (s *ReportService) Allowances(ctx context.Context, filter domain.ReportFilter) (domain.AllowancesReport, error) {
	report := domain.AllowancesReport{
		Trips:     []domain.TripAllowance{},
		ByVehicle: []domain.GroupTotal{},
		ByDriver:  []domain.GroupTotal{},
	}

	err := s.ledger.View(func(t ledger.Tables) error {
		byVehicle := map[string]float64{}
		byDriver := map[string]float64{}
		for _, trip := range t.Trips {
			if !filter.MatchTrip(trip) {
				continue
			}
			total := trip.Allowances.Total()
			report.Trips = append(report.Trips, domain.TripAllowance{
				TripID:     trip.ID,
				VehicleReg: trip.VehicleReg,
				Driver:     trip.Driver,
				StartTime:  trip.StartTime,
				EndTime:    trip.EndTime,
				Status:     trip.Status,
				Allowances: trip.Allowances,
				Total:      total,
			})
			byVehicle[trip.VehicleReg] += total
			byDriver[trip.Driver] += total
		}
		report.ByVehicle = groupTotalsDesc(byVehicle)
		report.ByDriver = groupTotalsDesc(byDriver)
		return nil
	})
	if err != nil {
		return domain.AllowancesReport{}, fmt.Errorf("service.ReportService.Allowances: %w", err)
	}

	sort.Slice(report.Trips, func(i, j int) bool {
		return report.Trips[i].StartTime.After(report.Trips[j].StartTime)
	})
	return report, nil
}

// Summary returns the KPI rollup: closed-trip count, total distance, total
// litres and cost, fleet-wide fuel cost per km (nil when no distance), and
// the topN vehicles by closed-trip distance.
func (s *ReportService) Summary(ctx context.Context, filter domain.ReportFilter, topN int) (domain.Summary, error) {
	if topN <= 0 {
		topN = 10
	}
	summary := domain.Summary{TopVehicles: []domain.GroupTotal{}}

	err := s.ledger.View(func(t ledger.Tables) error {
		distanceByVehicle := map[string]float64{}
		for _, trip := range t.Trips {
			if !filter.MatchTrip(trip) || trip.Status != domain.TripClosed {
				continue
			}
			summary.ClosedTrips++
			if trip.DistanceKM != nil {
				summary.TotalDistanceKM += *trip.DistanceKM
				distanceByVehicle[trip.VehicleReg] += *trip.DistanceKM
			}
		}
		for _, e := range t.Fuel {
			if !filter.MatchFuel(e) {
				continue
			}
			if e.Litres != nil {
				summary.TotalLitres += *e.Litres
			}
			if e.Cost != nil {
				summary.TotalFuelCost += *e.Cost
			}
		}
		summary.TopVehicles = groupTotalsDesc(distanceByVehicle)
		if len(summary.TopVehicles) > topN {
			summary.TopVehicles = summary.TopVehicles[:topN]
		}
		return nil
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("service.ReportService.Summary: %w", err)
	}

	if summary.TotalDistanceKM > 0 {
		perKM := summary.TotalFuelCost / summary.TotalDistanceKM
		summary.FuelCostPerKM = &perKM
	}
	return summary, nil
}

// groupTotalsDesc flattens a key→total map into a slice sorted by total
// descending, with the key as tie-break for stable output.
func groupTotalsDesc(totals map[string]float64) []domain.GroupTotal {
	out := make([]domain.GroupTotal, 0, len(totals))
	for key, total := range totals {
		out = append(out, domain.GroupTotal{Key: key, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}
