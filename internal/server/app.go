// Package server initializes and runs the application server. It opens the
// database, runs migrations, wires the services behind the HTTP API, and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/logging"
	"github.com/dmitrijs2005/photoglow/internal/server/blob"
	"github.com/dmitrijs2005/photoglow/internal/server/checkout"
	"github.com/dmitrijs2005/photoglow/internal/server/config"
	"github.com/dmitrijs2005/photoglow/internal/server/download"
	"github.com/dmitrijs2005/photoglow/internal/server/enhance"
	"github.com/dmitrijs2005/photoglow/internal/server/httpapi"
	"github.com/dmitrijs2005/photoglow/internal/server/identity"
	"github.com/dmitrijs2005/photoglow/internal/server/ledger"
	"github.com/dmitrijs2005/photoglow/internal/server/reconcile"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
	"github.com/stripe/stripe-go/v82"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	stripe.Key = cfg.StripeSecretKey

	ledgerSvc := ledger.NewService(db, rm)
	storage := blob.NewStorage(cfg)

	handler := httpapi.NewHandler(httpapi.HandlerOptions{
		Logger:        logger,
		Identity:      identity.NewService(ledgerSvc, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration),
		Ledger:        ledgerSvc,
		Checkout:      checkout.NewService(cfg.BaseURL),
		Reconciler:    reconcile.NewService(db, rm, logger),
		Downloads:     download.NewService(ledgerSvc, storage),
		Enhancer:      enhance.NewGeminiEnhancer(cfg),
		Blobs:         storage,
		BaseURL:       cfg.BaseURL,
		WebhookSecret: cfg.StripeWebhookSecret,
	}).Router()

	return &App{config: cfg, logger: logger, db: db, handler: handler}, nil
}

// openDB opens the pool and waits for the database to come up, backing off
// exponentially. Container orchestration often starts the server before
// the database accepts connections.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
