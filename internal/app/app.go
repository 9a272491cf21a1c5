// Package app assembles the prediction service from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/cache"
	"github.com/yourusername/gamepredict/internal/config"
	"github.com/yourusername/gamepredict/internal/database"
	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/logger"
	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/repository"
	"github.com/yourusername/gamepredict/internal/service"
)

// App holds every long-lived component of the service
type App struct {
	Config      *config.Config
	Logger      *logrus.Logger
	DB          *database.DB
	Repos       *repository.Repositories
	Providers   *datasource.Providers
	Fixtures    *datasource.FixtureCollector
	H2H         *datasource.H2HCollector
	Profiles    map[h2h.Sport]h2h.SportProfile
	Predictor   *service.Predictor
	Daily       *service.DailyService
	Sync        *service.H2HSync
	Cache       *cache.PredictionCache
	Predictions *cache.CachedPredictions
}

// LoadConfig reads .env, the YAML configuration and the optional AWS secrets overlay,
// then validates the result
func LoadConfig(ctx context.Context, configPath string) (*config.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return nil, err
	}

	secretsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := config.LoadSecretsFromAWS(secretsCtx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// New builds the service graph. A database failure is fatal only when the database
// is enabled; a predictor failure is returned so the API can still answer 503.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	a := &App{Config: cfg, Logger: log}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	var store datasource.MatchStore
	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		a.DB = db
		a.Repos = repos
		store = repos.Match
	}

	factory := datasource.NewFactory(cfg, log)
	a.Providers = factory.NewProviders()
	a.Fixtures, a.H2H = factory.NewCollectors(a.Providers, store)

	profiles, err := cfg.SportProfiles()
	if err != nil {
		return a, fmt.Errorf("failed to build sport profiles: %w", err)
	}
	a.Profiles = profiles

	sports := cfg.EnabledSports()
	a.Sync = service.NewH2HSync(a.Fixtures, a.H2H, sports, log)

	predictor, err := service.NewPredictor(a.H2H, nil, profiles, cfg.Prediction.ConfidenceThreshold, log)
	if err != nil {
		return a, fmt.Errorf("failed to initialize predictor: %w", err)
	}
	a.Predictor = predictor

	a.Daily = service.NewDailyService(a.Fixtures, predictor, sports, profiles, log)
	if a.Repos != nil {
		a.Daily.WithSink(a.Repos.Recommendation)
	}

	a.Cache = cache.NewPredictionCache(cfg.CacheTTL(),
		time.Duration(cfg.Cache.CleanupSeconds)*time.Second, cfg.Cache.MaxItems)
	a.Predictions = cache.NewCachedPredictions(a.Daily, predictor, a.Cache, log)

	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"sports":      sports,
		"schedules":   len(a.Providers.Schedules),
		"results":     len(a.Providers.Results),
		"odds":        len(a.Providers.Odds),
		"database":    a.DB != nil,
	}).Info("Prediction service initialized")

	return a, nil
}

// Close releases the HTTP client and the database pool
func (a *App) Close() {
	if a.Providers != nil {
		if err := a.Providers.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close HTTP client")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
