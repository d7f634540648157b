// SHSH Lessons - interactive shell lesson server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/shsh-lessons/internal/api"
	"github.com/ashureev/shsh-lessons/internal/catalog"
	"github.com/ashureev/shsh-lessons/internal/config"
	"github.com/ashureev/shsh-lessons/internal/identity"
	"github.com/ashureev/shsh-lessons/internal/metrics"
	"github.com/ashureev/shsh-lessons/internal/middleware"
	"github.com/ashureev/shsh-lessons/internal/playground"
	"github.com/ashureev/shsh-lessons/internal/store"
	"github.com/ashureev/shsh-lessons/internal/terminal"
	"github.com/ashureev/shsh-lessons/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	cat, err := catalog.Open(cfg.CatalogDir)
	if err != nil {
		slog.Error("Failed to load lesson catalog", "error", err, "dir", cfg.CatalogDir)
		os.Exit(1)
	}
	stats := cat.Stats()
	slog.Info("Lesson catalog loaded", "name", cat.Name, "lessons", stats.Lessons, "exercises", stats.Exercises)

	// Initialize services.
	var observer playground.Observer
	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder(prometheus.DefaultRegisterer)
		observer = recorder
	}
	sessions := playground.NewManager(observer)
	sm := terminal.NewSessionManager()

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, cat, sessions, sm, cfg)
	healthHandler := api.NewHealthHandler(repo, cat)
	wsHandler := terminal.NewWebSocketHandler(repo, cat, sessions, sm, cfg.AllowedOrigins, cfg.MaxCommandLength, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	if recorder != nil {
		r.Use(recorder.Middleware)
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	if recorder != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	// Learner routes carry the anonymous identity.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		baseHandler.RegisterRoutes(r)
		r.Get("/ws/playground", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WebSocket connections are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start TTL worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	playground.StartTTLWorker(ctx, sessions, repo, playground.TTLConfig{
		Interval:      cfg.SweepInterval,
		SessionTTL:    cfg.SessionTTL,
		UserRetention: cfg.UserRetention,
	}, func(userID, tabID string) {
		sm.CloseTab(userID, tabID, "lesson session expired")
	})
	slog.Info("TTL worker started", "session_ttl", cfg.SessionTTL, "sweep_interval", cfg.SweepInterval)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
