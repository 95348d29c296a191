// Package server initializes and runs the two application binaries: the
// HTTP API server and the thumbnail worker. It wires configuration,
// PostgreSQL, the Redis session store, the blob backend and the RabbitMQ
// queue, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dvolkovs/filevault/internal/logging"
	"github.com/dvolkovs/filevault/internal/server/blob"
	"github.com/dvolkovs/filevault/internal/server/config"
	"github.com/dvolkovs/filevault/internal/server/files"
	"github.com/dvolkovs/filevault/internal/server/httpapi"
	"github.com/dvolkovs/filevault/internal/server/queue"
	"github.com/dvolkovs/filevault/internal/server/repositories/repomanager"
	"github.com/dvolkovs/filevault/internal/server/sessions"
	"github.com/dvolkovs/filevault/internal/server/thumbnails"
	"github.com/dvolkovs/filevault/internal/server/users"
)

const (
	// Retry policy for thumbnail jobs: 3 deliveries, with 1s and 2s
	// backoff between them, then the dead-letter queue.
	thumbnailMaxAttempts = 3
	thumbnailBackoffBase = time.Second

	// Bootstrap waits briefly for the database to accept connections
	// before giving up, so container start order does not matter.
	dbPingAttempts = 5
	dbPingDelay    = time.Second

	shutdownTimeout = 5 * time.Second
)

func waitForDB(ctx context.Context, db *sql.DB) error {
	var err error
	for i := 0; i < dbPingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-time.After(dbPingDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("database unreachable: %w", err)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repos       repomanager.RepositoryManager
	kv          *sessions.RedisKV
	queue       *queue.RabbitQueue
	blobs       blob.Store
	sessions    *sessions.Manager
	userService *users.Service
	fileService *files.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		return nil, err
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	kv := sessions.NewRedisKV(cfg.RedisAddr)
	sess := sessions.NewManager(kv, cfg.SessionTTL)

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	q, err := queue.NewRabbitQueue(cfg.AMQPURL, cfg.QueueName, thumbnailMaxAttempts, thumbnailBackoffBase, logger)
	if err != nil {
		return nil, fmt.Errorf("queue init error: %w", err)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		repos:       repos,
		kv:          kv,
		queue:       q,
		blobs:       blobs,
		sessions:    sess,
		userService: users.NewService(db, repos),
		fileService: files.NewService(db, repos, blobs, q, logger),
	}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendDisk:
		return blob.NewDiskStore(cfg.FolderPath)
	case config.BlobBackendS3:
		return blob.NewS3Store(ctx, blob.S3Config{
			User:         cfg.S3RootUser,
			Password:     cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// Close releases the broker, session store and database connections.
func (app *App) Close() {
	if app.queue != nil {
		_ = app.queue.Close()
	}
	if app.kv != nil {
		_ = app.kv.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
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
	api := httpapi.NewServer(
		app.userService,
		app.fileService,
		app.sessions,
		httpapi.SQLPinger(app.db),
		app.kv,
		app.logger,
	)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: api.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// RunServer serves the HTTP API until the context is cancelled or a
// termination signal arrives.
func (app *App) RunServer(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}

// RunWorker consumes thumbnail jobs until the context is cancelled or a
// termination signal arrives.
func (app *App) RunWorker(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting worker...")

	app.initSignalHandler(cancelFunc)

	processor := thumbnails.NewProcessor(app.db, app.repos, app.blobs, app.logger)

	if err := app.queue.Consume(ctx, processor.Process); err != nil {
		app.logger.Error(ctx, "consumer stopped", "error", err.Error())
	}
}
