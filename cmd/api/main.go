// Package main is the entry point for the TripSync gateway.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/pkordes/tripsync/internal/config"
	"github.com/pkordes/tripsync/internal/handler"
	"github.com/pkordes/tripsync/internal/metrics"
	"github.com/pkordes/tripsync/internal/middleware"
	"github.com/pkordes/tripsync/internal/realtime"
	"github.com/pkordes/tripsync/internal/repo"
	"github.com/pkordes/tripsync/internal/service"
	"github.com/pkordes/tripsync/migrations"
)

const maxBodyBytes = 1 << 20 // 1 MiB request body cap

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	// DATABASE_URL selects Postgres; without it the gateway keeps everything
	// in memory, which is the single-process reference configuration.
	var repos repo.Repos
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		if err := migrate(context.Background(), cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established")

		repos = repo.NewPostgres(pool)
	} else {
		slog.Info("no DATABASE_URL set, using in-memory storage")
		repos = repo.NewMemory()
	}

	// --- Services ---------------------------------------------------------
	hub := realtime.NewHub()
	trips := service.NewTripService(repos.Trips, hub)
	members := service.NewMemberService(repos.Trips, repos.Members, hub)
	events := service.NewEventService(repos.Trips, repos.Events, hub)
	tasks := service.NewTaskService(repos.Trips, repos.Tasks, repos.Checks, hub)
	notes := service.NewNoteService(repos.Trips, repos.Notes, hub)
	invites := service.NewInviteService(repos.Trips, repos.Members, repos.Invites, hub)

	srv := handler.NewServer(trips, members, events, tasks, notes, invites, hub, cfg.AppPassHash)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	srv.SetWatchMetrics(collector)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → SlogLogger → Recoverer first,
	// then CORS, identity minting, body cap, rate limit, metrics.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewIdentity())
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))
	r.Use(middleware.NewRateLimiter(rate.Limit(20), 40).Middleware())
	r.Use(collector.Middleware())

	r.Handle("/metrics", metrics.Handler(reg))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion. The watch
	// websocket hijacks its connection and manages its own deadlines.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending migrations. goose needs database/sql, so it
// gets its own short-lived connection rather than the pgx pool.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return err
	}
	return nil
}
