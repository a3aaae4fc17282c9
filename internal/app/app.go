// Package app initializes and runs the vault daemon: it opens the catalog
// database, configures the blob backend, wires the engine, handles graceful
// shutdown, and drives the periodic maintenance sweep.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vantavault/vantavault/internal/blob"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
	"github.com/vantavault/vantavault/internal/services"
	"github.com/vantavault/vantavault/internal/webauthn"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	engine *services.Engine
}

func NewApp(ctx context.Context, cfg *config.Config, verifier webauthn.Verifier) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, manager, err := repomanager.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	engine, err := services.NewEngine(db, manager, store, verifier, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{config: cfg, logger: logger, db: db, engine: engine}, nil
}

// newBlobStore picks the payload backend from config.
func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "", "fs":
		return blob.NewFSStore(cfg.StorageDir)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// Engine exposes the façade for the route layer.
func (app *App) Engine() *services.Engine {
	return app.engine
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runSweeper loops the maintenance pass until the context is cancelled:
// purge expired recycle entries, drop expired share links, lock idle
// sessions.
func (app *App) runSweeper(ctx context.Context) {
	interval := app.config.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, shares, sessions := app.engine.Sweep(ctx)
			if purged > 0 || shares > 0 || sessions > 0 {
				app.logger.Info(ctx, "sweep finished",
					"purged", purged, "shares", shares, "sessions", sessions)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting vault daemon",
		"db", app.config.DatabasePath, "backend", app.config.BlobBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSweeper(ctx)
	}()

	wg.Wait()

	app.engine.LockAll()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "vault daemon stopped")
}
