// Package config provides configuration management for the GamePredict service.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Sports     []SportConfig    `mapstructure:"sports" validate:"required,min=1,dive"`
	Providers  ProvidersConfig  `mapstructure:"providers" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API listener configuration
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// PredictionConfig represents pipeline-wide prediction settings
type PredictionConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"required,gt=0,lte=1"`
	SyntheticFallback   bool    `mapstructure:"synthetic_fallback"`
	SyntheticSeed       int64   `mapstructure:"synthetic_seed"`
}

// SportConfig enables a sport and optionally overrides its built-in profile
type SportConfig struct {
	Name               string   `mapstructure:"name" validate:"required,sport"`
	Enabled            bool     `mapstructure:"enabled"`
	FixtureLimit       int      `mapstructure:"fixture_limit" validate:"gte=0"`
	OverThreshold      *float64 `mapstructure:"over_threshold" validate:"omitempty,gt=0"`
	HistoricalWeight   *float64 `mapstructure:"historical_weight" validate:"omitempty,gte=0,lte=1"`
	ModelWeight        *float64 `mapstructure:"model_weight" validate:"omitempty,gte=0,lte=1"`
	ExtremityThreshold *float64 `mapstructure:"extremity_threshold" validate:"omitempty,gte=0,lte=0.5"`
	DefaultOdds        *float64 `mapstructure:"default_odds" validate:"omitempty,gt=1"`
}

// ProvidersConfig groups the external data providers
type ProvidersConfig struct {
	HTTP      HTTPConfig      `mapstructure:"http" validate:"required"`
	ESPN      ESPNConfig      `mapstructure:"espn"`
	LiveScore LiveScoreConfig `mapstructure:"livescore"`
	OddsAPI   OddsAPIConfig   `mapstructure:"odds_api"`
}

// HTTPConfig represents the shared outbound HTTP client settings
type HTTPConfig struct {
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RequestDelayMillis int     `mapstructure:"request_delay_millis" validate:"gte=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0,lte=5"`
	RequestsPerSecond  float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	UserAgent          string  `mapstructure:"user_agent"`
}

// ESPNConfig represents the ESPN public API provider
type ESPNConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	BaseURL       string   `mapstructure:"base_url" validate:"omitempty,url"`
	SoccerLeagues []string `mapstructure:"soccer_leagues"`
	Seasons       int      `mapstructure:"seasons" validate:"gte=0,lte=10"`
	MaxH2HGames   int      `mapstructure:"max_h2h_games" validate:"gte=0"`
}

// LiveScoreConfig represents the LiveScore API provider
type LiveScoreConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// OddsAPIConfig represents The Odds API provider
type OddsAPIConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	BaseURL    string   `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey     string   `mapstructure:"api_key"`
	Regions    string   `mapstructure:"regions"`
	Bookmakers []string `mapstructure:"bookmakers"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// CacheConfig represents the prediction cache settings
type CacheConfig struct {
	TTLSeconds     int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	CleanupSeconds int `mapstructure:"cleanup_seconds" validate:"gte=0"`
	MaxItems       int `mapstructure:"max_items" validate:"gte=0"`
}

// SchedulerConfig represents scheduled job settings
type SchedulerConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	DailyPredictionsCron string `mapstructure:"daily_predictions_cron" validate:"omitempty,cron"`
	H2HSyncCron          string `mapstructure:"h2h_sync_cron" validate:"omitempty,cron"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SecretsConfig controls the optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ListenAddress returns host:port for the API server
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CacheTTL returns the prediction cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// EnabledSports returns the enabled sports in configuration order
func (c *Config) EnabledSports() []h2h.Sport {
	var out []h2h.Sport
	for _, s := range c.Sports {
		if !s.Enabled {
			continue
		}
		if sport, err := h2h.ParseSport(s.Name); err == nil {
			out = append(out, sport)
		}
	}
	return out
}

// SportProfiles returns the built-in profile of every enabled sport with configured
// overrides applied
func (c *Config) SportProfiles() (map[h2h.Sport]h2h.SportProfile, error) {
	out := make(map[h2h.Sport]h2h.SportProfile)
	for _, s := range c.Sports {
		if !s.Enabled {
			continue
		}
		sport, err := h2h.ParseSport(s.Name)
		if err != nil {
			return nil, err
		}
		profile, err := h2h.Profile(sport)
		if err != nil {
			return nil, err
		}
		profile, err = s.apply(profile)
		if err != nil {
			return nil, fmt.Errorf("sport %s: %w", s.Name, err)
		}
		out[sport] = profile
	}
	return out, nil
}

// apply overlays the configured values on a profile
func (s SportConfig) apply(p h2h.SportProfile) (h2h.SportProfile, error) {
	if s.FixtureLimit > 0 {
		p.FixtureLimit = s.FixtureLimit
	}
	if s.OverThreshold != nil {
		p.OverThreshold = *s.OverThreshold
	}
	if s.HistoricalWeight != nil {
		p.HistoricalWeight = *s.HistoricalWeight
		if s.ModelWeight == nil {
			p.ModelWeight = 1 - p.HistoricalWeight
		}
	}
	if s.ModelWeight != nil {
		p.ModelWeight = *s.ModelWeight
		if s.HistoricalWeight == nil {
			p.HistoricalWeight = 1 - p.ModelWeight
		}
	}
	if s.ExtremityThreshold != nil {
		p.Confidence.ExtremityThreshold = *s.ExtremityThreshold
	}
	if s.DefaultOdds != nil {
		p.DefaultOdds = *s.DefaultOdds
	}
	if err := h2h.ValidateWeights(p.HistoricalWeight, p.ModelWeight); err != nil {
		return h2h.SportProfile{}, err
	}
	return p, nil
}
