package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/config"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

const (
	liveScoreSourceName     = "livescore"
	defaultLiveScoreBaseURL = "https://livescore-api.com/api-client"
)

// LiveScoreClient implements ScheduleProvider and ResultsProvider for soccer using the
// livescore-api.com service
type LiveScoreClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	apiSecret  string
	enabled    bool
	logger     *logrus.Entry
}

// liveScoreID accepts ids delivered as either strings or numbers
type liveScoreID string

func (id *liveScoreID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = liveScoreID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = liveScoreID(s)
	return nil
}

type liveScoreFixture struct {
	ID       liveScoreID `json:"id"`
	Date     string      `json:"date"`
	Time     string      `json:"time"`
	HomeID   liveScoreID `json:"home_id"`
	AwayID   liveScoreID `json:"away_id"`
	HomeName string      `json:"home_name"`
	AwayName string      `json:"away_name"`
	Location string      `json:"location"`
}

type liveScoreMatch struct {
	ID       liveScoreID `json:"id"`
	Date     string      `json:"date"`
	HomeID   liveScoreID `json:"home_id"`
	AwayID   liveScoreID `json:"away_id"`
	HomeName string      `json:"home_name"`
	AwayName string      `json:"away_name"`
	Score    string      `json:"score"`
}

type liveScoreEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Fixtures []liveScoreFixture `json:"fixtures"`
		Matches  []liveScoreMatch   `json:"matches"`
	} `json:"data"`
	Error string `json:"error"`
}

// NewLiveScoreClient creates a new LiveScore API client. The client stays disabled
// unless both key and secret are set.
func NewLiveScoreClient(httpClient *RateLimitedHTTPClient, cfg config.LiveScoreConfig, logger *logrus.Logger) *LiveScoreClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultLiveScoreBaseURL
	}
	return &LiveScoreClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		enabled:    cfg.Enabled && cfg.APIKey != "" && cfg.APISecret != "",
		logger:     logger.WithField("provider", liveScoreSourceName),
	}
}

// Name returns the data source name
func (c *LiveScoreClient) Name() string {
	return liveScoreSourceName
}

// Supports reports soccer only
func (c *LiveScoreClient) Supports(sport h2h.Sport) bool {
	return sport == h2h.SportSoccer
}

// IsEnabled returns whether this data source is enabled
func (c *LiveScoreClient) IsEnabled() bool {
	return c.enabled
}

func (c *LiveScoreClient) endpoint(path string, params url.Values) string {
	params.Set("key", c.apiKey)
	params.Set("secret", c.apiSecret)
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
}

func (c *LiveScoreClient) get(ctx context.Context, path string, params url.Values) (*liveScoreEnvelope, error) {
	var env liveScoreEnvelope
	if err := c.httpClient.getJSON(ctx, liveScoreSourceName, c.endpoint(path, params), &env); err != nil {
		return nil, err
	}
	if !env.Success && env.Error != "" {
		return nil, NewDataSourceError(liveScoreSourceName, ErrCodeServerError, env.Error, nil)
	}
	return &env, nil
}

// FetchFixtures retrieves the soccer fixtures scheduled on date
func (c *LiveScoreClient) FetchFixtures(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error) {
	if !c.enabled {
		return nil, NewDataSourceError(liveScoreSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	if !c.Supports(sport) {
		return nil, NewDataSourceError(liveScoreSourceName, ErrCodeInvalidData, "unsupported sport "+string(sport), nil)
	}

	env, err := c.get(ctx, "fixtures/matches.json", url.Values{"date": {date.Format("2006-01-02")}})
	if err != nil {
		return nil, err
	}

	fixtures := make([]models.Fixture, 0, len(env.Data.Fixtures))
	for _, f := range env.Data.Fixtures {
		start, _ := time.Parse("2006-01-02 15:04:05", f.Date+" "+f.Time)
		fixture, err := models.NewFixture(sport, f.HomeName, f.AwayName, start)
		if err != nil {
			c.logger.WithError(err).WithField("fixture_id", f.ID).Debug("Skipping fixture")
			continue
		}
		fixture.HomeTeamID = string(f.HomeID)
		fixture.AwayTeamID = string(f.AwayID)
		fixture.Source = liveScoreSourceName
		fixtures = append(fixtures, *fixture)
	}
	return fixtures, nil
}

// FetchH2H retrieves the head-to-head list. Team ids are required, so fixtures from
// other providers are reported as not found.
func (c *LiveScoreClient) FetchH2H(ctx context.Context, fixture *models.Fixture) ([]h2h.RawResult, error) {
	if !c.enabled {
		return nil, NewDataSourceError(liveScoreSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	if !fixture.HasTeamIDs() || fixture.Source != liveScoreSourceName {
		return nil, NewDataSourceError(liveScoreSourceName, ErrCodeNotFound, "fixture has no livescore team ids", ErrTeamNotFound)
	}

	env, err := c.get(ctx, "teams/head2head.json", url.Values{
		"team1_id": {fixture.HomeTeamID},
		"team2_id": {fixture.AwayTeamID},
	})
	if err != nil {
		return nil, err
	}

	results := make([]h2h.RawResult, 0, len(env.Data.Matches))
	for _, m := range env.Data.Matches {
		date, _ := time.Parse("2006-01-02", m.Date)
		score := m.Score
		if string(m.HomeID) == fixture.AwayTeamID {
			score = reverseScore(score)
		}
		results = append(results, h2h.RawResult{
			HomeTeam:   fixture.HomeTeam,
			AwayTeam:   fixture.AwayTeam,
			Date:       date,
			Score:      score,
			Source:     liveScoreSourceName,
			Provenance: h2h.ProvenanceReal,
		})
	}
	return results, nil
}

// reverseScore swaps the sides of a "2 - 1" style score. Unparseable strings are
// returned unchanged so the normalizer can reject them.
func reverseScore(score string) string {
	home, away, err := h2h.ParseScore(score)
	if err != nil {
		return score
	}
	return fmt.Sprintf("%d - %d", away, home)
}
