// Package server initializes and runs the main application server.
// It opens the database, runs migrations, wires the tool services, and
// starts the expiration sweeper and the HTTP server with graceful shutdown.
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

	"github.com/dmitrijs2005/sharebin/internal/logging"
	"github.com/dmitrijs2005/sharebin/internal/server/blob"
	"github.com/dmitrijs2005/sharebin/internal/server/config"
	"github.com/dmitrijs2005/sharebin/internal/server/httpapi"
	"github.com/dmitrijs2005/sharebin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sharebin/internal/server/services"
	"github.com/dmitrijs2005/sharebin/internal/server/sweeper"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	sweeper *sweeper.Sweeper
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	repo := rm.Objects(db)
	blobs := blob.NewS3Store(blob.S3Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})

	h := httpapi.NewHandler(
		services.NewNoteService(repo),
		services.NewSecretService(repo, c.SecretKey),
		services.NewPollService(repo),
		services.NewExpenseService(repo),
		services.NewFileShareService(repo, blobs),
		services.NewBringListService(repo),
		c.DefaultTTL, c.MaxTTL,
		logger,
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		handler: httpapi.NewServeMux(h, logger),
		sweeper: sweeper.New(repo, blobs, c.SweepInterval, logger),
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{Addr: app.config.EndpointAddrHTTP, Handler: app.handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

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
