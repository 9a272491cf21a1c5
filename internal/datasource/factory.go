package datasource

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/config"
)

// Providers holds every provider built from configuration, in priority order
type Providers struct {
	HTTPClient *RateLimitedHTTPClient
	Schedules  []ScheduleProvider
	Results    []ResultsProvider
	Odds       []OddsProvider
}

// Close releases the shared HTTP client
func (p *Providers) Close() error {
	if p.HTTPClient == nil {
		return nil
	}
	return p.HTTPClient.Close()
}

// Factory creates provider implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewProviders creates all enabled providers sharing one rate-limited HTTP client.
// LiveScore is preferred over ESPN for soccer when it is configured.
func (f *Factory) NewProviders() *Providers {
	pc := f.config.Providers
	httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFrom(pc.HTTP), f.logger)
	out := &Providers{HTTPClient: httpClient}

	if pc.LiveScore.Enabled {
		ls := NewLiveScoreClient(httpClient, pc.LiveScore, f.logger)
		if ls.IsEnabled() {
			out.Schedules = append(out.Schedules, ls)
			out.Results = append(out.Results, ls)
			f.logger.WithField("provider", ls.Name()).Info("Created data source")
		} else {
			f.logger.Warn("LiveScore enabled without key and secret, skipping")
		}
	}

	if pc.ESPN.Enabled {
		espn := NewESPNClient(httpClient, pc.ESPN, f.logger)
		out.Schedules = append(out.Schedules, espn)
		out.Results = append(out.Results, espn)
		f.logger.WithField("provider", espn.Name()).Info("Created data source")
	} else {
		f.logger.WithField("provider", espnSourceName).Info("Skipping disabled data source")
	}

	if pc.OddsAPI.Enabled {
		odds := NewOddsAPIClient(httpClient, pc.OddsAPI, f.logger)
		out.Odds = append(out.Odds, odds)
		f.logger.WithField("provider", odds.Name()).Info("Created data source")
	}

	return out
}

// NewGenerator returns the synthetic generator configured for the prediction pipeline
func (f *Factory) NewGenerator() SyntheticGenerator {
	return NewRandomGenerator(f.config.Prediction.SyntheticSeed)
}

// NewCollectors wires the fixture and H2H collectors over the providers
func (f *Factory) NewCollectors(p *Providers, store MatchStore) (*FixtureCollector, *H2HCollector) {
	fallback := f.config.Prediction.SyntheticFallback
	fixtures := NewFixtureCollector(p.Schedules, p.Odds, fallback, f.logger)
	results := NewH2HCollector(p.Results, f.NewGenerator(), fallback, f.logger)
	if store != nil {
		results.WithStore(store)
	}
	return fixtures, results
}
