// Package app wires configuration, stores and services for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/cache"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/drive"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/ingest"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/repository"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/repository/jsonfile"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/repository/postgres"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/service"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/similarity"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config   *config.Config
	Settings config.ForecastSettings

	Forecasts *service.ForecastService
	Mappings  *service.MappingService
	// Storage is nil unless object storage is enabled.
	Storage storage.ObjectStorage

	deps service.ForecastDeps
	db   *postgres.DB
}

// New builds the application and restores the saved state. Optional
// backends that fail to start are logged and left out.
func New(ctx context.Context, cfg *config.Config) *App {
	settings, err := config.LoadSettings(cfg.App.SettingsFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.App.SettingsFile).Msg("using default forecast settings")
	}

	a := &App{Config: cfg, Settings: settings}

	mappingStore := jsonfile.NewMappingStore(cfg.App.MappingFile, cfg.App.MappingDBFile)
	deps := service.ForecastDeps{
		Source:       ingest.NewExcelIngester(),
		Scorer:       similarity.Levenshtein{},
		Forecasts:    jsonfile.NewForecastStore(cfg.App.ForecastsFile),
		Mappings:     mappingStore,
		ExportPrefix: cfg.Storage.ExportPrefix,
	}

	var groupMirror repository.GroupRepository
	if cfg.Database.Enabled {
		db, err := openDatabase(ctx, &cfg.Database)
		if err != nil {
			log.Error().Err(err).Msg("postgres mirror disabled")
		} else {
			a.db = db
			deps.Mirror = postgres.NewForecastRepository(db)
			groupMirror = postgres.NewMappingRepository(db)
		}
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("forecast cache disabled")
		forecastCache = cache.NewNoopForecastCache()
	}
	deps.Cache = forecastCache

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			log.Error().Err(err).Msg("object storage disabled")
		} else {
			a.Storage = client
			deps.Storage = client
		}
	}

	a.deps = deps
	a.Forecasts = service.NewForecastService(settings, deps)
	a.Mappings = service.NewMappingService(mappingStore, groupMirror)

	a.Forecasts.LoadSaved(ctx)
	a.Mappings.Load(ctx)

	return a
}

func openDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WithSource returns a forecast service sharing every store of the app but
// reading orders from src.
func (a *App) WithSource(src service.OrderSource) *service.ForecastService {
	deps := a.deps
	deps.Source = src
	return service.NewForecastService(a.Settings, deps)
}

// Drive connects to Google Drive with the configured credentials.
func (a *App) Drive(ctx context.Context) (*drive.Service, error) {
	if a.Config.Drive.CredentialsFile == "" {
		return nil, fmt.Errorf("DRIVE_CREDENTIALS_FILE is not set")
	}
	return drive.NewServiceFromFile(ctx, a.Config.Drive.CredentialsFile)
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
