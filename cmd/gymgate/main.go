package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fitstack/gymgate/internal/config"
	httpserver "github.com/fitstack/gymgate/internal/http"
	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/auth"
	"github.com/fitstack/gymgate/pkg/billing"
	"github.com/fitstack/gymgate/pkg/gate"
	"github.com/fitstack/gymgate/pkg/repository"
	"github.com/fitstack/gymgate/pkg/tenant"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database", "environment", cfg.Environment)

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	sessionsRepo := repository.NewSessionsRepository(db)
	profilesRepo := repository.NewProfilesRepository(db)

	// Initialize services
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
	}, sessionsRepo, usersRepo)

	cookieConfig := httputil.DefaultCookieConfig(cfg.Environment, cfg.CookieDomain, cfg.CookieSecure)

	resolver := auth.NewResolver(sessionService, cookieConfig, cfg.BackendTimeout, logger)
	loader := tenant.NewLoader(profilesRepo, cfg.BackendTimeout, logger)

	// Initialize billing oracle if configured
	var oracle gate.SubscriptionOracle
	if cfg.HasBilling() {
		oracle = billing.NewOracle(cfg.BillingBaseURL, cfg.BillingTimeout, logger)
		logger.Info("subscription checks enabled", "billing_url", cfg.BillingBaseURL)
	} else {
		logger.Warn("no billing service configured, all gyms treated as subscribed")
	}

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Assemble the gate
	g := gate.New(gate.Config{
		Resolver: resolver,
		Loader:   loader,
		Oracle:   oracle,
		Cache:    gate.NewDecisionCache(cfg.GateCacheTTL, cfg.GateCacheCapacity),
		Codec:    cookieConfig.Codec,
		Logger:   logger,
		Metrics:  gate.NewMetrics(registry),
	})

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Gate:            g,
		SessionService:  sessionService,
		CookieConfig:    cookieConfig,
		RateLimit:       cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		Metrics:         registry,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
