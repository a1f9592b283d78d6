package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ingesthandler "github.com/vloginova/finledger/internal/domain/ingest/handler"
	ingestservice "github.com/vloginova/finledger/internal/domain/ingest/service"
	"github.com/vloginova/finledger/internal/domain/ledger/repository"
	"github.com/vloginova/finledger/pkg/config"
	"github.com/vloginova/finledger/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	LedgerRepo repository.LedgerRepository

	// Services
	IngestService *ingestservice.IngestService

	// Handlers
	IngestHandler *ingesthandler.IngestHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase connects the pool and runs migrations. With persistence
// disabled the service runs as an in-memory session.
func (d *Dependencies) initDatabase() error {
	if !d.Config.Database.Enabled {
		d.Logger.Info("persistence disabled, running in-memory session")
		return nil
	}

	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	d.LedgerRepo = repository.NewPostgresLedgerRepository(d.DB.Pool)

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices builds the ingestion session and restores persisted sources.
func (d *Dependencies) initServices() error {
	d.IngestService = ingestservice.NewIngestService(d.LedgerRepo, d.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.IngestService.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initHandlers() {
	d.IngestHandler = ingesthandler.NewIngestHandler(d.IngestService, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
