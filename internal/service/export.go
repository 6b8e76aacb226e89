package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
)

// ExportService assembles downloadable snapshots of the filtered ledger:
// the raw tables as CSV and a multi-sheet XLSX workbook for the monthly
// reconciliation the admin runs.
type ExportService struct {
	reports *ReportService
}

// NewExportService constructs an ExportService on top of the report service.
func NewExportService(reports *ReportService) *ExportService {
	return &ExportService{reports: reports}
}

// TripsCSV returns the filtered trip table in the stored CSV layout.
func (s *ExportService) TripsCSV(ctx context.Context, filter domain.ReportFilter) ([]byte, error) {
	report, err := s.reports.Trips(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.TripsCSV: %w", err)
	}
	var buf bytes.Buffer
	if err := ledger.WriteTripsCSV(&buf, report.Trips); err != nil {
		return nil, fmt.Errorf("service.ExportService.TripsCSV: %w", err)
	}
	return buf.Bytes(), nil
}

// FuelCSV returns the filtered fuel table in the stored CSV layout.
func (s *ExportService) FuelCSV(ctx context.Context, filter domain.ReportFilter) ([]byte, error) {
	report, err := s.reports.Fuel(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.FuelCSV: %w", err)
	}
	var buf bytes.Buffer
	if err := ledger.WriteFuelCSV(&buf, report.Entries); err != nil {
		return nil, fmt.Errorf("service.ExportService.FuelCSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Workbook builds an XLSX workbook with Trips, Fuel, Allowances, and Summary
// sheets over the filtered snapshot.
func (s *ExportService) Workbook(ctx context.Context, filter domain.ReportFilter) ([]byte, error) {
	trips, err := s.reports.Trips(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Workbook: %w", err)
	}
	fuel, err := s.reports.Fuel(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Workbook: %w", err)
	}
	allowances, err := s.reports.Allowances(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Workbook: %w", err)
	}
	summary, err := s.reports.Summary(ctx, filter, 10)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Workbook: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	tripRows := [][]string{ledger.TripColumns()}
	for _, t := range trips.Trips {
		tripRows = append(tripRows, ledger.TripRow(t))
	}
	if err := writeSheet(wb, "Trips", tripRows); err != nil {
		return nil, err
	}

	fuelRows := [][]string{ledger.FuelColumns()}
	for _, e := range fuel.Entries {
		fuelRows = append(fuelRows, ledger.FuelRow(e))
	}
	if err := writeSheet(wb, "Fuel", fuelRows); err != nil {
		return nil, err
	}

	allowanceRows := [][]string{{"TripID", "VehicleReg", "Driver", "Status", "TotalAllowance"}}
	for _, row := range allowances.Trips {
		allowanceRows = append(allowanceRows, []string{
			row.TripID, row.VehicleReg, row.Driver, string(row.Status), money(row.Total),
		})
	}
	allowanceRows = append(allowanceRows, []string{}, []string{"Vehicle", "Total"})
	for _, g := range allowances.ByVehicle {
		allowanceRows = append(allowanceRows, []string{g.Key, money(g.Total)})
	}
	allowanceRows = append(allowanceRows, []string{}, []string{"Driver", "Total"})
	for _, g := range allowances.ByDriver {
		allowanceRows = append(allowanceRows, []string{g.Key, money(g.Total)})
	}
	if err := writeSheet(wb, "Allowances", allowanceRows); err != nil {
		return nil, err
	}

	costPerKM := "N/A"
	if summary.FuelCostPerKM != nil {
		costPerKM = strconv.FormatFloat(*summary.FuelCostPerKM, 'f', 3, 64)
	}
	summaryRows := [][]string{
		{"Closed trips", strconv.Itoa(summary.ClosedTrips)},
		{"Total distance (KM)", money(summary.TotalDistanceKM)},
		{"Total fuel (L)", money(summary.TotalLitres)},
		{"Total fuel cost", money(summary.TotalFuelCost)},
		{"Fuel cost per KM", costPerKM},
		{},
		{"Top vehicles by distance", ""},
	}
	for _, g := range summary.TopVehicles {
		summaryRows = append(summaryRows, []string{g.Key, money(g.Total)})
	}
	if err := writeSheet(wb, "Summary", summaryRows); err != nil {
		return nil, err
	}

	// excelize creates "Sheet1" by default; drop it once the real sheets exist.
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("service.ExportService.Workbook: %w", err)
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("service.ExportService.Workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet creates a sheet and fills it row by row starting at A1.
func writeSheet(wb *excelize.File, name string, rows [][]string) error {
	if _, err := wb.NewSheet(name); err != nil {
		return fmt.Errorf("service.ExportService.Workbook: sheet %s: %w", name, err)
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("service.ExportService.Workbook: sheet %s: %w", name, err)
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := wb.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("service.ExportService.Workbook: sheet %s: %w", name, err)
		}
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
