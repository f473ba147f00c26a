package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	appconfig "pagekit/internal/config"
	"pagekit/internal/engine"
	hhttp "pagekit/internal/handler/http"
	"pagekit/internal/handler/http/records"
	"pagekit/internal/handler/http/requestid"
	"pagekit/internal/infra/db"
	"pagekit/internal/observability/logging"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg := appconfig.Load()

	database := initDatabase(logger, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	eng := engine.NewWithDB(database, cfg, engine.WithLogger(logger))
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Error("failed to close engine", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, eng, version)

	scheduler := startScheduler(logger, eng)
	defer scheduler.Stop()

	runServer(logger, handler, version)
}

// initDatabase opens the connection pool or exits.
func initDatabase(logger *slog.Logger, cfg appconfig.Config) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer registers all routes and wraps them in the middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, eng *engine.Engine, version string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Cache: eng, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	records.Register(mux, eng, logger)

	// Outermost first: request ID, panic recovery, access log, body cap.
	var handler http.Handler = mux
	handler = hhttp.LimitRequestBody(1 << 20)(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = hhttp.Recover(logger)(handler)
	handler = requestid.Middleware(handler)
	return handler
}

// startScheduler runs periodic maintenance: a performance-report snapshot
// every five minutes.
func startScheduler(logger *slog.Logger, eng *engine.Engine) *cron.Cron {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", eng.PerformanceReport); err != nil {
		logger.Error("failed to schedule performance report", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	return scheduler
}

// runServer starts the HTTP server and blocks until shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
