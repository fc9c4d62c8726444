package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/paramstore/internal/config"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/events"
	"github.com/phrazzld/paramstore/internal/platform/logger"
	"github.com/phrazzld/paramstore/internal/platform/metrics"
	"github.com/phrazzld/paramstore/internal/platform/sqlstore"
	"github.com/phrazzld/paramstore/internal/redact"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/validators"

	// Registers the bundled custom validators in validators.DefaultLibrary.
	_ "github.com/phrazzld/paramstore/internal/validators/extra"
)

// application holds the collaborators shared by the commands.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	keyring *envelope.Keyring
	metrics *metrics.Metrics
	service *service.ParameterService
}

// loadConfig reads configuration from path, or from the default locations
// when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// newLogger writes JSON logs to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	l, err := logger.SetupWithWriter(cfg.Server, w)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, nil
}

// openDatabase connects to the configured database without building the
// service. It serves migrate, which must work before the schema exists.
func openDatabase(ctx context.Context, configPath string, logOut io.Writer) (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, errors.New(redact.Error(err))
	}
	log.Debug("database connection established", "driver", cfg.Database.Driver)
	return cfg, log, db, nil
}

// newApplication loads configuration and wires the parameter service.
func newApplication(ctx context.Context, configPath string, logOut io.Writer) (*application, error) {
	cfg, log, db, err := openDatabase(ctx, configPath, logOut)
	if err != nil {
		return nil, err
	}

	keyring, err := envelope.NewKeyring(cfg.Parameter.EncryptionKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("parameter.encryption_key: %w", err)
	}

	m := metrics.New()
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(m)
	emitter.RegisterHandler(events.HandlerFunc(func(ctx context.Context, e *events.ParameterEvent) error {
		logger.FromContextOrDefault(ctx, log).Debug("parameter event",
			"event_id", e.ID,
			"event_type", e.Type,
			"slug", e.Slug)
		return nil
	}))

	registry := validators.NewRegistry(validators.DefaultLibrary, cfg.Parameter.Validators)
	svc, err := service.NewParameterService(sqlstore.NewParameterStore(db, log), registry, keyring, emitter, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &application{
		config:  cfg,
		logger:  log,
		db:      db,
		keyring: keyring,
		metrics: m,
		service: svc,
	}, nil
}

func (app *application) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
