package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/tunecrate/tunecrate/internal/api/http"
	"github.com/tunecrate/tunecrate/internal/api/service"
	redisstore "github.com/tunecrate/tunecrate/internal/api/store/drivers/redis"
	"github.com/tunecrate/tunecrate/internal/api/store/drivers/sqlite"
	"github.com/tunecrate/tunecrate/pkg/cryptox"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
	"github.com/tunecrate/tunecrate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the stores, services and HTTP server together and owns
// their lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    *sqlite.Store
	cache *redisstore.Store
	codec *jwtx.Codec

	authService         *service.AuthService
	userService         *service.UserService
	verificationService *service.VerificationService
	musicService        *service.MusicService
	housekeepingService *service.HousekeepingService
	gate                *service.TokenGate

	server *http.Server
	router *httpapi.Router
}

// Collaborators are the externally provided integrations the core only
// knows as interfaces.
type Collaborators struct {
	Mailer     service.Mailer
	Downloader service.Downloader
	Objects    service.ObjectStore
}

// New creates an Application with all dependencies initialized.
func New(cfg Config, collab Collaborators) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("app: API_JWT_SECRET is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tunecrate-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initStores(); err != nil {
		return nil, err
	}

	app.codec = jwtx.NewCodec([]byte(cfg.JWTSecret), cfg.Issuer)
	app.initServices(collab)
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the server, the housekeeping worker and both
// stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing redis", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api stopped")
	return nil
}

func (app *Application) initStores() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	app.cache = redisstore.NewStore(redisstore.Config{
		Addr:         app.cfg.RedisAddr,
		Password:     app.cfg.RedisPassword,
		DB:           app.cfg.RedisDB,
		SessionLimit: app.cfg.SessionLimit,
	})
	return nil
}

func (app *Application) initServices(collab Collaborators) {
	app.authService = &service.AuthService{
		Users:                app.db.Users(),
		Sessions:             app.cache.Sessions(),
		Codec:                app.codec,
		AccessTTL:            app.cfg.AccessTokenTTL,
		RefreshTTL:           app.cfg.RefreshTokenTTL,
		RequireVerifiedEmail: app.cfg.RequireVerifiedEmail,
	}

	app.userService = &service.UserService{
		Users:    app.db.Users(),
		Sessions: app.cache.Sessions(),
	}

	app.verificationService = &service.VerificationService{
		Users:  app.db.Users(),
		Codes:  app.cache.Codes(),
		Mailer: collab.Mailer,
	}

	app.musicService = &service.MusicService{
		Operations:      app.cache.Operations(),
		Downloader:      collab.Downloader,
		Objects:         collab.Objects,
		MaxTrackMinutes: app.cfg.MaxTrackMinutes,
	}

	app.gate = &service.TokenGate{
		Users:    app.db.Users(),
		Sessions: app.cache.Sessions(),
		Codec:    app.codec,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.authService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.db, app.cache, app.logger)
	app.router.AuthService = app.authService
	app.router.UserService = app.userService
	app.router.VerificationService = app.verificationService
	app.router.MusicService = app.musicService
	app.router.Gate = app.gate
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
