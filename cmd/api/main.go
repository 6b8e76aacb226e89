// Package main is the entry point for the fleet ledger API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkamau/fleet-ledger/internal/auth"
	"github.com/mkamau/fleet-ledger/internal/blob"
	"github.com/mkamau/fleet-ledger/internal/config"
	"github.com/mkamau/fleet-ledger/internal/domain"
	"github.com/mkamau/fleet-ledger/internal/handler"
	"github.com/mkamau/fleet-ledger/internal/ledger"
	"github.com/mkamau/fleet-ledger/internal/middleware"
	"github.com/mkamau/fleet-ledger/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Stores -----------------------------------------------------------
	// Open creates the data directory and empty header-only tables on first
	// run, so a fresh checkout starts with no manual setup.
	store, err := ledger.Open(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open ledger store", "error", err)
		os.Exit(1)
	}
	blobs, err := blob.Open(cfg.UploadsDir)
	if err != nil {
		slog.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}
	users, err := auth.OpenUserStore(filepath.Join(cfg.DataDir, "users.csv"))
	if err != nil {
		slog.Error("failed to open user store", "error", err)
		os.Exit(1)
	}

	// --- Auth -------------------------------------------------------------
	tokens := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err := seedAdmin(users, tokens, cfg); err != nil {
		slog.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	// Services run on a UTC clock so in-memory timestamps match what the
	// ledger files store.
	now := func() time.Time { return time.Now().UTC() }
	trips := service.NewTripService(store, blobs, now)
	fuel := service.NewFuelService(store, blobs, now)
	reports := service.NewReportService(store)
	exports := service.NewExportService(reports)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadBytes))

	srv := handler.NewServer(trips, fuel, reports, exports, users, tokens, blobs, now)
	r.Mount("/", srv.Routes(middleware.NewAuthenticator(tokens)))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// seedAdmin creates the bootstrap admin account when the user table is
// empty, so a fresh deployment can log in and register driver accounts.
func seedAdmin(users *auth.UserStore, tokens *auth.Service, cfg config.Config) error {
	count, err := users.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := tokens.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	slog.Info("seeding bootstrap admin account", "username", cfg.AdminUser)
	return users.Create(domain.User{
		Username:     cfg.AdminUser,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
}
