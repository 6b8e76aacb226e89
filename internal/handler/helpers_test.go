package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkamau/fleet-ledger/internal/auth"
	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/handler"
	"github.com/mkamau/fleet-ledger/internal/middleware"
	"github.com/mkamau/fleet-ledger/internal/service"
)

// ---- function-field mocks --------------------------------------------------

type mockTrips struct {
	startFn    func(ctx context.Context, in service.StartTripInput) (domain.Trip, error)
	endFn      func(ctx context.Context, in service.EndTripInput) (domain.Trip, error)
	getFn      func(ctx context.Context, id string) (domain.Trip, error)
	findOpenFn func(ctx context.Context, driver, vehicleReg string) (domain.Trip, error)
	listFn     func(ctx context.Context, filter domain.ReportFilter) ([]domain.Trip, error)
}

var _ handler.TripServicer = (*mockTrips)(nil)

func (m *mockTrips) Start(ctx context.Context, in service.StartTripInput) (domain.Trip, error) {
	return m.startFn(ctx, in)
}
func (m *mockTrips) End(ctx context.Context, in service.EndTripInput) (domain.Trip, error) {
	return m.endFn(ctx, in)
}
func (m *mockTrips) Get(ctx context.Context, id string) (domain.Trip, error) {
	return m.getFn(ctx, id)
}
func (m *mockTrips) FindOpen(ctx context.Context, driver, vehicleReg string) (domain.Trip, error) {
	return m.findOpenFn(ctx, driver, vehicleReg)
}
func (m *mockTrips) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Trip, error) {
	return m.listFn(ctx, filter)
}

type mockFuel struct {
	logFn  func(ctx context.Context, in service.LogRefuelInput) (domain.FuelLogEntry, error)
	listFn func(ctx context.Context, filter domain.ReportFilter) ([]domain.FuelLogEntry, error)
}

var _ handler.FuelServicer = (*mockFuel)(nil)

func (m *mockFuel) Log(ctx context.Context, in service.LogRefuelInput) (domain.FuelLogEntry, error) {
	return m.logFn(ctx, in)
}
func (m *mockFuel) List(ctx context.Context, filter domain.ReportFilter) ([]domain.FuelLogEntry, error) {
	return m.listFn(ctx, filter)
}

type mockReports struct {
	tripsFn      func(ctx context.Context, filter domain.ReportFilter) (domain.TripsReport, error)
	fuelFn       func(ctx context.Context, filter domain.ReportFilter) (domain.FuelReport, error)
	allowancesFn func(ctx context.Context, filter domain.ReportFilter) (domain.AllowancesReport, error)
	summaryFn    func(ctx context.Context, filter domain.ReportFilter, topN int) (domain.Summary, error)
}

var _ handler.ReportServicer = (*mockReports)(nil)

func (m *mockReports) Trips(ctx context.Context, filter domain.ReportFilter) (domain.TripsReport, error) {
	return m.tripsFn(ctx, filter)
}
func (m *mockReports) Fuel(ctx context.Context, filter domain.ReportFilter) (domain.FuelReport, error) {
	return m.fuelFn(ctx, filter)
}
func (m *mockReports) Allowances(ctx context.Context, filter domain.ReportFilter) (domain.AllowancesReport, error) {
	return m.allowancesFn(ctx, filter)
}
func (m *mockReports) Summary(ctx context.Context, filter domain.ReportFilter, topN int) (domain.Summary, error) {
	return m.summaryFn(ctx, filter, topN)
}

type mockExports struct {
	tripsCSVFn func(ctx context.Context, filter domain.ReportFilter) ([]byte, error)
	fuelCSVFn  func(ctx context.Context, filter domain.ReportFilter) ([]byte, error)
	workbookFn func(ctx context.Context, filter domain.ReportFilter) ([]byte, error)
}

var _ handler.ExportServicer = (*mockExports)(nil)

func (m *mockExports) TripsCSV(ctx context.Context, filter domain.ReportFilter) ([]byte, error) {
	return m.tripsCSVFn(ctx, filter)
}
func (m *mockExports) FuelCSV(ctx context.Context, filter domain.ReportFilter) ([]byte, error) {
	return m.fuelCSVFn(ctx, filter)
}
func (m *mockExports) Workbook(ctx context.Context, filter domain.ReportFilter) ([]byte, error) {
	return m.workbookFn(ctx, filter)
}

type mockUsers struct {
	getFn    func(username string) (domain.User, error)
	createFn func(user domain.User) error
}

var _ handler.UserStorer = (*mockUsers)(nil)

func (m *mockUsers) Get(username string) (domain.User, error) { return m.getFn(username) }
func (m *mockUsers) Create(user domain.User) error            { return m.createFn(user) }

type mockBlobs struct {
	pathFn func(ref string) (string, error)
}

var _ handler.BlobResolver = (*mockBlobs)(nil)

func (m *mockBlobs) Path(ref string) (string, error) { return m.pathFn(ref) }

// ---- server fixture --------------------------------------------------------

// deps bundles one mock per Server dependency. Tests override the calls they
// expect; an unexpected call panics on the nil function field, which is the
// failure we want.
type deps struct {
	trips   *mockTrips
	fuel    *mockFuel
	reports *mockReports
	exports *mockExports
	users   *mockUsers
	blobs   *mockBlobs
}

func newDeps() *deps {
	return &deps{
		trips:   &mockTrips{},
		fuel:    &mockFuel{},
		reports: &mockReports{},
		exports: &mockExports{},
		users:   &mockUsers{},
		blobs:   &mockBlobs{},
	}
}

var testTokens = auth.NewService("handler-test-secret", time.Hour)

// newTestServer mounts the full route tree, including the real token
// middleware, so tests exercise authentication the way production does.
func newTestServer(d *deps) http.Handler {
	srv := handler.NewServer(d.trips, d.fuel, d.reports, d.exports, d.users, testTokens, d.blobs, time.Now)
	return srv.Routes(middleware.NewAuthenticator(testTokens))
}

func tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := testTokens.GenerateToken(user, time.Now())
	require.NoError(t, err)
	return token
}

func adminToken(t *testing.T) string {
	return tokenFor(t, domain.User{Username: "boss", Role: domain.RoleAdmin})
}

func driverToken(t *testing.T, vehicleReg string) string {
	return tokenFor(t, domain.User{Username: "alice", Role: domain.RoleDriver, VehicleReg: vehicleReg})
}

// do runs a request against the route tree and returns the recorder.
func do(handler http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// multipartBody builds a multipart form with string fields and JPEG file
// parts. File values are the raw bytes; the part filename carries a .jpg
// extension so the photo extension check passes.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".jpg")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// errorCode extracts error.code from the standard error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, jsonDecode(rec, &body))
	return body.Error.Code
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, jsonDecode(rec, &body))
	return body.Error.Message
}

func jsonDecode(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
