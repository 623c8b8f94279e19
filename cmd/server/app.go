package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/memory"
	"github.com/phrazzld/tasks-api/internal/platform/mongo"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore   store.TaskStore
	jwtService  auth.JWTService
	taskService service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
// The task store backend is chosen by cfg.Database.Driver.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.taskStore, err = openTaskStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("task store initialized", slog.String("driver", cfg.Database.Driver))

	app.taskService, err = service.NewTaskService(app.taskStore, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// openTaskStore connects the configured backend.
func openTaskStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.TaskStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.URL, cfg.Timeout())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %s", redact.Error(err))
		}
		return postgres.NewPostgresTaskStore(db, cfg.Timeout(), logger), nil

	case config.DriverMongo:
		s, err := mongo.Connect(ctx, cfg.URL, cfg.Name, cfg.Timeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %s", redact.Error(err))
		}
		return s, nil

	case config.DriverMemory:
		logger.Warn("using the in-memory task store; tasks are lost on restart")
		return memory.NewTaskStore(logger), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
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

// cleanup releases the task store.
func (app *application) cleanup(ctx context.Context) {
	if app.taskStore != nil {
		if err := app.taskStore.Close(ctx); err != nil {
			app.logger.Error("error closing task store", slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("application shutdown completed")
}
