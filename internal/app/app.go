package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/RafatAiub/AmarBin-Backend/internal/http"
	"github.com/RafatAiub/AmarBin-Backend/internal/revocation"
	"github.com/RafatAiub/AmarBin-Backend/internal/service"
	"github.com/RafatAiub/AmarBin-Backend/internal/store"
	"github.com/RafatAiub/AmarBin-Backend/internal/store/drivers/sqlite"
	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
	"github.com/RafatAiub/AmarBin-Backend/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	redis *redis.Client // nil when running without a revocation cache
	cache revocation.Cache

	// Services
	tokenService        *service.TokenService
	sessionService      *service.SessionService
	userService         *service.UserService
	pickupService       *service.PickupService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "amarbin-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initRevocation()

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.seedAdmin(); err != nil {
		return err
	}

	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("api service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close the revocation cache connection
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing revocation cache", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRevocation wires the access-token blacklist. Running without one is
// allowed: revoked tokens then stay valid until their natural expiry, which
// the service logs loudly on every degraded check.
func (app *Application) initRevocation() {
	if app.cfg.RedisAddr == "" {
		app.cache = revocation.Disabled()
		app.logger.Warn("no REDIS_ADDR configured, running without a token blacklist")
		return
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
	app.cache = revocation.NewRedis(app.redis)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !app.cache.Available(ctx) {
		app.logger.Warn("revocation cache unreachable at startup, continuing degraded", "addr", app.cfg.RedisAddr)
	} else {
		app.logger.Info("revocation cache connected", "addr", app.cfg.RedisAddr)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	accessSigner, err := jwtx.NewSignerHS256([]byte(app.cfg.AccessSecret))
	if err != nil {
		return fmt.Errorf("access token signer: %w", err)
	}
	accessVerifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.AccessSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("access token verifier: %w", err)
	}
	refreshSigner, err := jwtx.NewSignerHS256([]byte(app.cfg.RefreshSecret))
	if err != nil {
		return fmt.Errorf("refresh token signer: %w", err)
	}
	refreshVerifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.RefreshSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("refresh token verifier: %w", err)
	}

	app.tokenService = &service.TokenService{
		AccessSigner:    accessSigner,
		AccessVerifier:  accessVerifier,
		RefreshSigner:   refreshSigner,
		RefreshVerifier: refreshVerifier,
		Cache:           app.cache,
		Issuer:          app.cfg.Issuer,
		AccessTTL:       app.cfg.AccessTTL,
		RefreshTTL:      app.cfg.RefreshTTL,
	}

	app.sessionService = &service.SessionService{
		Store:  app.db,
		Tokens: app.tokenService,
		Guard: &service.LoginGuard{
			Store:        app.db,
			MaxAttempts:  app.cfg.MaxLoginAttempts,
			LockDuration: app.cfg.LockoutDuration,
			HistoryLimit: app.cfg.LoginHistoryLimit,
		},
		MaxSessions: app.cfg.MaxSessions,
	}

	app.userService = &service.UserService{Store: app.db}
	app.pickupService = &service.PickupService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
	)

	// Wire services to router
	router.Sessions = app.sessionService
	router.Pickups = app.pickupService
	router.Users = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// seedAdmin provisions the first admin account when configured. Repeat runs
// are no-ops, so the variables can stay set across restarts.
func (app *Application) seedAdmin() error {
	if app.cfg.AdminEmail == "" {
		return nil
	}

	created, err := app.userService.EnsureAdmin(
		context.Background(),
		app.cfg.AdminEmail,
		app.cfg.AdminName,
		app.cfg.AdminPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	if created {
		app.logger.Info("admin account seeded", "email", app.cfg.AdminEmail)
	}
	return nil
}
