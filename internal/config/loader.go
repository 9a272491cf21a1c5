package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of every environment variable override
	EnvPrefix = "GAMEPREDICT"

	// DefaultConfigPath is used when no path is supplied
	DefaultConfigPath = "config/config.yaml"

	configPathEnv = EnvPrefix + "_CONFIG_PATH"
)

// ResolvePath picks the config path from the flag value, then GAMEPREDICT_CONFIG_PATH,
// then the default
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv(configPathEnv); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables are used.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gamepredict")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 5)

	v.SetDefault("prediction.confidence_threshold", 0.75)
	v.SetDefault("prediction.synthetic_fallback", true)

	v.SetDefault("sports", []map[string]interface{}{
		{"name": "nfl", "enabled": true},
		{"name": "ncaa", "enabled": true},
		{"name": "nba", "enabled": true},
		{"name": "soccer", "enabled": true},
	})

	v.SetDefault("providers.http.timeout_seconds", 10)
	v.SetDefault("providers.http.request_delay_millis", 500)
	v.SetDefault("providers.http.retry_attempts", 0)
	v.SetDefault("providers.http.requests_per_second", 2)
	v.SetDefault("providers.http.user_agent", "gamepredict/1.0")

	v.SetDefault("providers.espn.enabled", true)
	v.SetDefault("providers.espn.base_url", "https://site.api.espn.com/apis/site/v2/sports")
	v.SetDefault("providers.espn.soccer_leagues", []string{"eng.1", "esp.1", "ger.1", "ita.1", "fra.1"})
	v.SetDefault("providers.espn.seasons", 5)
	v.SetDefault("providers.espn.max_h2h_games", 8)

	v.SetDefault("providers.livescore.enabled", false)
	v.SetDefault("providers.livescore.base_url", "https://livescore-api.com/api-client")

	v.SetDefault("providers.odds_api.enabled", false)
	v.SetDefault("providers.odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("providers.odds_api.regions", "us")
	v.SetDefault("providers.odds_api.bookmakers", []string{"draftkings", "fanduel", "betmgm"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("cache.ttl_seconds", 1800)
	v.SetDefault("cache.cleanup_seconds", 600)
	v.SetDefault("cache.max_items", 500)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.daily_predictions_cron", "0 8 * * *")
	v.SetDefault("scheduler.h2h_sync_cron", "0 4 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
