// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/campusconnect/event-portal/internal/config"
	"github.com/campusconnect/event-portal/internal/database"
	"github.com/campusconnect/event-portal/internal/handler"
	"github.com/campusconnect/event-portal/internal/repository"
	"github.com/campusconnect/event-portal/internal/service"
)

func main() {
	ctx := context.Background()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL and bring the schema up to date.
	pool, err := database.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error("database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, cfg.DatabaseDSN); err != nil {
		log.Error("migrations", "err", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	// Wire up layers.
	catalog := repository.NewPostgresEventCatalog(pool)
	ledger := repository.NewPostgresLedger(pool)
	admission := service.NewAdmissionService(catalog, ledger)
	attendance := service.NewAttendanceService(catalog, ledger)
	api := handler.NewRegistrationHandler(admission, attendance, cfg.ConflictRetries)

	// Build the router.
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS)            // permissive CORS for the frontend

	api.Routes(r, []byte(cfg.TokenSecret))

	// Start server with graceful shutdown.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
