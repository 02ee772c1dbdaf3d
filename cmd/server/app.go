package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/phrazzld/filetrack/internal/config"
	"github.com/phrazzld/filetrack/internal/events"
	"github.com/phrazzld/filetrack/internal/platform/badgerdb"
	"github.com/phrazzld/filetrack/internal/platform/memory"
	"github.com/phrazzld/filetrack/internal/platform/postgres"
	"github.com/phrazzld/filetrack/internal/platform/sentryconnect"
	"github.com/phrazzld/filetrack/internal/service"
	"github.com/phrazzld/filetrack/internal/store"
	"github.com/phrazzld/filetrack/internal/task"
)

// storeOpenTimeout bounds connecting to and migrating a remote store.
const storeOpenTimeout = 30 * time.Second

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	hub    *sentry.Hub

	taskStore    store.TaskStore
	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner

	uploadService service.UploadService
	statusService service.StatusService
}

// newApplication wires every dependency and starts the task runner.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.hub, err = sentryconnect.Init(cfg.Sentry, "filetrack-server")
	if err != nil {
		return nil, err
	}
	if app.hub != nil {
		logger.Info("sentry error reporting enabled", "environment", cfg.Sentry.Environment)
	}

	app.taskStore, err = openTaskStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	factory := task.NewProcessingTaskFactory(task.ProcessingConfig{
		LatencyMin:   cfg.Processing.LatencyMin,
		LatencyMax:   cfg.Processing.LatencyMax,
		SuccessRatio: cfg.Processing.SuccessRatio,
	}, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())))

	app.taskRunner = task.NewTaskRunner(app.taskStore, factory, task.TaskRunnerConfig{
		WorkerCount: cfg.Processing.WorkerCount,
		QueueSize:   cfg.Processing.QueueSize,
	}, logger)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		logger.Error("task execution failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		sentryconnect.CaptureError(app.hub, err, map[string]string{
			"task_id":   t.ID(),
			"task_type": t.Type(),
		})
	})

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.TypeUploadReceived,
		task.NewUploadEventHandler(factory, app.taskRunner, logger))

	app.uploadService, err = service.NewUploadService(app.taskStore, app.eventEmitter, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create upload service: %w", err)
	}
	app.statusService, err = service.NewStatusService(app.taskStore, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create status service: %w", err)
	}

	if err := app.taskRunner.Start(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("application initialized", "store_driver", cfg.Store.Driver)
	return app, nil
}

// openTaskStore opens the store selected by cfg.Driver.
func openTaskStore(cfg config.StoreConfig, logger *slog.Logger) (store.TaskStore, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewTaskStore(logger), nil
	case "badger":
		s, err := badgerdb.Open(badgerdb.Config{Path: cfg.Path, TTL: cfg.TTL}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return s, nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
		defer cancel()
		s, err := postgres.Open(ctx, postgres.Config{DSN: cfg.DSN, MaxOpenConns: cfg.MaxOpenConns}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the runner and releases the store. Pending records stay
// pending and are recovered on the next start when the store persists.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.taskStore != nil {
		if err := app.taskStore.Close(); err != nil {
			app.logger.Error("error closing task store", "error", err)
		}
	}

	sentryconnect.Flush(app.hub, app.logger)
	app.logger.Info("application shutdown completed")
}
