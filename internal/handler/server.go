// Package handler implements the HTTP handlers for the fleet ledger API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, fuel.go, report.go, ...) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/middleware"
	"github.com/mkamau/fleet-ledger/internal/service"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the store or service layer.
type TripServicer interface {
	Start(ctx context.Context, in service.StartTripInput) (domain.Trip, error)
	End(ctx context.Context, in service.EndTripInput) (domain.Trip, error)
	Get(ctx context.Context, id string) (domain.Trip, error)
	FindOpen(ctx context.Context, driver, vehicleReg string) (domain.Trip, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Trip, error)
}

// FuelServicer defines the refuel operations the handlers depend on.
type FuelServicer interface {
	Log(ctx context.Context, in service.LogRefuelInput) (domain.FuelLogEntry, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.FuelLogEntry, error)
}

// ReportServicer defines the read-only reporting operations.
type ReportServicer interface {
	Trips(ctx context.Context, filter domain.ReportFilter) (domain.TripsReport, error)
	Fuel(ctx context.Context, filter domain.ReportFilter) (domain.FuelReport, error)
	Allowances(ctx context.Context, filter domain.ReportFilter) (domain.AllowancesReport, error)
	Summary(ctx context.Context, filter domain.ReportFilter, topN int) (domain.Summary, error)
}

// ExportServicer defines the download operations.
type ExportServicer interface {
	TripsCSV(ctx context.Context, filter domain.ReportFilter) ([]byte, error)
	FuelCSV(ctx context.Context, filter domain.ReportFilter) ([]byte, error)
	Workbook(ctx context.Context, filter domain.ReportFilter) ([]byte, error)
}

// UserStorer defines the account operations the auth handlers depend on.
type UserStorer interface {
	Get(username string) (domain.User, error)
	Create(user domain.User) error
}

// TokenService signs and validates session tokens and checks passwords.
// Satisfied by *auth.Service.
type TokenService interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
	GenerateToken(user domain.User, now time.Time) (string, error)
}

// BlobResolver resolves stored photo references to filesystem paths for
// serving. Satisfied by *blob.Store.
type BlobResolver interface {
	Path(ref string) (string, error)
}

// Server holds every handler dependency. Methods live in domain-specific
// files but all operate on this struct.
type Server struct {
	trips   TripServicer
	fuel    FuelServicer
	reports ReportServicer
	exports ExportServicer
	users   UserStorer
	tokens  TokenService
	blobs   BlobResolver
	now     func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(
	trips TripServicer,
	fuel FuelServicer,
	reports ReportServicer,
	exports ExportServicer,
	users UserStorer,
	tokens TokenService,
	blobs BlobResolver,
	now func() time.Time,
) *Server {
	return &Server{
		trips:   trips,
		fuel:    fuel,
		reports: reports,
		exports: exports,
		users:   users,
		tokens:  tokens,
		blobs:   blobs,
		now:     now,
	}
}

// Routes builds the full route tree. Login and health are open; everything
// under /api requires a valid token, and reports/exports additionally
// require the admin role. authn is the token-validation middleware from
// middleware.NewAuthenticator.
func (s *Server) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Post("/api/login", s.Login)

	r.Route("/api", func(r chi.Router) {
		r.Use(authn)

		r.Post("/trips/start", s.StartTrip)
		r.Post("/trips/{id}/end", s.EndTrip)
		r.Get("/trips/open", s.FindOpenTrip)
		r.Get("/trips", s.ListTrips)
		r.Post("/fuel", s.LogRefuel)
		r.Get("/fuel", s.ListFuel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/register", s.Register)
			r.Get("/reports/trips", s.TripsReport)
			r.Get("/reports/fuel", s.FuelReport)
			r.Get("/reports/allowances", s.AllowancesReport)
			r.Get("/reports/summary", s.SummaryReport)
			r.Get("/export/trips.csv", s.ExportTripsCSV)
			r.Get("/export/fuel.csv", s.ExportFuelCSV)
			r.Get("/export/report.xlsx", s.ExportWorkbook)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/uploads/{kind}/{file}", s.ServePhoto)
	})

	return r
}
