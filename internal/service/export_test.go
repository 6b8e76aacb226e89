package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/ledger"
	"github.com/mkamau/fleet-ledger/internal/service"
)

func newExportService(tables ledger.Tables) *service.ExportService {
	return service.NewExportService(service.NewReportService(&fakeLedger{tables: tables}))
}

func TestExportService_TripsCSV(t *testing.T) {
	svc := newExportService(reportFixture())

	data, err := svc.TripsCSV(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5, "header plus four trips")
	assert.Equal(t, ledger.TripColumns(), records[0])
	assert.Equal(t, "TRIP-4", records[1][0], "rows follow report order, newest first")
}

func TestExportService_FuelCSV_AppliesFilter(t *testing.T) {
	svc := newExportService(reportFixture())

	data, err := svc.FuelCSV(context.Background(), domain.ReportFilter{Drivers: []string{"Bob"}})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ledger.FuelColumns(), records[0])
	assert.Equal(t, "FUEL-2", records[1][0])
}

func TestExportService_Workbook(t *testing.T) {
	svc := newExportService(reportFixture())

	data, err := svc.Workbook(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	assert.ElementsMatch(t, []string{"Trips", "Fuel", "Allowances", "Summary"}, wb.GetSheetList())

	rows, err := wb.GetRows("Trips")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "TripID", rows[0][0])

	rows, err = wb.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Closed trips", rows[0][0])
	assert.Equal(t, "3", rows[0][1])
}
