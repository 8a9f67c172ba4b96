package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	httpapi "github.com/aussiebroadwan/fedauth/internal/emulator/http"
	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store/drivers/sqlite"
	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application owns the emulator's database, signing keys, services and
// HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager

	tokenService        *service.TokenService
	phoneService        *service.PhoneService
	accountService      *service.AccountService
	exchangeService     *service.ExchangeService
	keyRotationService  *service.KeyRotationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application logging the way cfg asks.
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "fedauth-emulator",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{cfg: cfg, logger: logger}

	if app.cfg.PepperFile != "" {
		if err := cryptox.UsePepperFile(app.cfg.PepperFile); err != nil {
			return nil, fmt.Errorf("password pepper: %w", err)
		}
	}

	// Database first: persistent keys live in it.
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitKeys(context.Background(), app.cfg, app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the emulator's root handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves until ctx ends or the server fails, then shuts down. The
// listener is bound before Run returns control to the server goroutine, so
// a taken port fails fast.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		_ = app.db.Close()
		return fmt.Errorf("listen: %w", err)
	}

	app.housekeepingService.Start(ctx)
	app.logger.Info("emulator listening",
		"addr", ln.Addr().String(),
		"version", BuildVersion,
		"project_id", app.cfg.ProjectID,
		"key_storage", app.cfg.KeyStorageMode,
	)

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.server.Serve(ln) }()

	select {
	case err := <-serveErr:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
	}
	return app.Shutdown()
}

// Shutdown drains in-flight requests for up to ShutdownGracePeriod, then
// stops housekeeping and closes the database.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Warn("graceful shutdown timed out, closing connections", "err", err)
		_ = app.server.Close()
	}
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	app.logger.Info("emulator stopped")
	return nil
}

// Close releases the database without touching the server. For callers
// that never called Run.
func (app *Application) Close() error {
	return app.db.Close()
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	version, _ := db.SchemaVersion()
	app.logger.Info("database ready", "file", app.cfg.DatabaseFile, "schema_version", version)
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		KeyManager:      app.keyManager,
		Store:           app.db,
		Issuer:          app.cfg.Issuer,
		ProjectID:       app.cfg.ProjectID,
		BackendAudience: app.cfg.BackendAudience,
		IDTokenTTL:      app.cfg.IDTokenTTL,
		AccessTTL:       app.cfg.AccessTokenTTL,
		RefreshTTL:      app.cfg.RefreshTokenTTL,
	}
	app.phoneService = &service.PhoneService{
		Store:   app.db,
		Logger:  app.logger,
		CodeTTL: app.cfg.CodeTTL,
	}
	app.accountService = &service.AccountService{
		Store:  app.db,
		Tokens: app.tokenService,
		Phone:  app.phoneService,
	}
	app.exchangeService = &service.ExchangeService{
		Tokens:   app.tokenService,
		Accounts: app.accountService,
		Phone:    app.phoneService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	// Ephemeral managers still rotate at runtime, they just persist nothing.
	app.keyRotationService = &service.KeyRotationService{
		KeyManager:  app.keyManager,
		GracePeriod: app.cfg.KeyGracePeriod,
	}
	if app.keyManager.Persistent() {
		app.keyRotationService.Store = app.db
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.APIKey = app.cfg.APIKey
	if app.cfg.RateLimits != (httpx.Limits{}) {
		router.Limits = app.cfg.RateLimits
	}
	router.AccountService = app.accountService
	router.TokenService = app.tokenService
	router.PhoneService = app.phoneService
	router.ExchangeService = app.exchangeService
	router.KeyRotationService = app.keyRotationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
