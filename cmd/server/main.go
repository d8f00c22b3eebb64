package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-reporting/internal/config"
	"finance-reporting/internal/handlers"
	"finance-reporting/internal/middleware"
	"finance-reporting/internal/repositories"
	"finance-reporting/internal/services"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment")
	}

	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repositories.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}()

	metrics := services.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	reportingLogger := services.NewReportingLogger(logger)

	transactions := services.GuardTransactionRepository(store.Transactions, services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig()))

	tokenService := services.NewTokenService(&cfg.JWT)
	passwordService := services.NewPasswordService(cfg.Security.BCryptCost)
	authService := services.NewAuthService(store.Users, passwordService, tokenService, metrics, reportingLogger)
	queryService := services.NewTransactionQueryService(transactions, metrics, reportingLogger)
	analyticsService := services.NewAnalyticsService(transactions, metrics, reportingLogger)
	exportService := services.NewExportService(transactions, metrics, reportingLogger, cfg.Reporting.ExportTempDir)

	h := routeHandlers{
		auth:         handlers.NewAuthHandler(authService),
		transactions: handlers.NewTransactionHandler(queryService, analyticsService, exportService),
		health:       handlers.NewHealthCheckHandler(store),
		tokenService: tokenService,
	}
	if !cfg.IsProduction() {
		h.dev = handlers.NewDevHandler(transactions, services.NewTransactionGenerator(uint64(time.Now().UnixNano())))
	}

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)
	go limiter.Run(ctx)

	e := newEcho(cfg, limiter)
	registerRoutes(e, cfg, h)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("Starting finance reporting server",
			"address", addr,
			"environment", cfg.Server.Environment,
			"driver", cfg.Database.Driver,
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped gracefully")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
