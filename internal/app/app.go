// Package app initializes and runs the application: it wires the
// configuration, logger, storage backend, session store,
// authentication service, URL service, and router, and handles
// graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/tinyapp/internal/auth"
	"github.com/patric-chuzhbe/tinyapp/internal/config"
	"github.com/patric-chuzhbe/tinyapp/internal/db/jsondb"
	"github.com/patric-chuzhbe/tinyapp/internal/db/memorystorage"
	"github.com/patric-chuzhbe/tinyapp/internal/db/postgresdb"
	"github.com/patric-chuzhbe/tinyapp/internal/logger"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
	"github.com/patric-chuzhbe/tinyapp/internal/router"
	"github.com/patric-chuzhbe/tinyapp/internal/service"
	"github.com/patric-chuzhbe/tinyapp/internal/session"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, bool, error)
}

type urlsKeeper interface {
	SaveURL(ctx context.Context, url *models.URL) error
	FindURLByCode(ctx context.Context, shortCode string) (*models.URL, bool, error)
	FindURLsByOwner(ctx context.Context, ownerID string) (models.URLs, error)
	UpdateLongURL(ctx context.Context, shortCode, longURL string) error
	DeleteURL(ctx context.Context, shortCode string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	urlsKeeper
	IsKeyTaken(ctx context.Context, key string) (bool, error)
	pinger
	Close() error
}

// App encapsulates everything needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage
	httpHandler http.Handler
}

// New builds a fully wired App: configuration, logging, the storage
// backend selected by that configuration, the session store, and the
// HTTP handler stack.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	sessionSigningKey, err := base64.URLEncoding.DecodeString(app.cfg.SessionSigningKey)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(
		app.cfg.SessionCookieName,
		sessionSigningKey,
		app.cfg.SessionTTL,
	)

	app.httpHandler = router.New(
		service.New(app.db, app.cfg.BaseURL),
		auth.New(app.db, sessions),
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support. It
// listens for system signals and cleans up resources upon
// termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		if closeErr := a.db.Close(); closeErr != nil {
			logger.Log.Errorln("storage close error:", closeErr)
		}

		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
