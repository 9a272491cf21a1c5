package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/config"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

const (
	espnSourceName     = "espn"
	defaultESPNBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
)

// ESPNClient implements ScheduleProvider and ResultsProvider over the public ESPN site API
type ESPNClient struct {
	httpClient    *RateLimitedHTTPClient
	baseURL       string
	soccerLeagues []string
	seasons       int
	maxGames      int
	enabled       bool
	logger        *logrus.Entry
	now           func() time.Time

	mu    sync.Mutex
	teams map[string][]espnTeam
}

type espnTeam struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
	Abbreviation     string `json:"abbreviation"`
}

func (t espnTeam) label() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}

// espnScore accepts the score shapes ESPN uses across endpoints: "24", 24 and
// {"value": 24.0, "displayValue": "24"}.
type espnScore struct {
	Value float64
	Valid bool
}

func (s *espnScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str == "" {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("score %q: %w", str, err)
		}
		s.Value, s.Valid = v, true
	case '{':
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Value != nil {
			s.Value, s.Valid = *obj.Value, true
			return nil
		}
		if v, err := strconv.ParseFloat(obj.DisplayValue, 64); err == nil {
			s.Value, s.Valid = v, true
		}
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Value, s.Valid = v, true
	}
	return nil
}

type espnStatus struct {
	Type struct {
		Completed   bool   `json:"completed"`
		State       string `json:"state"`
		Description string `json:"description"`
	} `json:"type"`
}

type espnCompetitor struct {
	HomeAway string    `json:"homeAway"`
	Team     espnTeam  `json:"team"`
	Score    espnScore `json:"score"`
}

type espnCompetition struct {
	Competitors []espnCompetitor `json:"competitors"`
	Status      *espnStatus      `json:"status"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Name         string            `json:"name"`
	Status       *espnStatus       `json:"status"`
	Competitions []espnCompetition `json:"competitions"`
}

func (e espnEvent) completed() bool {
	if e.Status != nil && e.Status.Type.Completed {
		return true
	}
	return len(e.Competitions) > 0 && e.Competitions[0].Status != nil && e.Competitions[0].Status.Type.Completed
}

// sides returns the home and away competitors of the first competition
func (e espnEvent) sides() (home, away *espnCompetitor, ok bool) {
	if len(e.Competitions) == 0 || len(e.Competitions[0].Competitors) < 2 {
		return nil, nil, false
	}
	comps := e.Competitions[0].Competitors
	for i := range comps {
		switch comps[i].HomeAway {
		case "home":
			home = &comps[i]
		case "away":
			away = &comps[i]
		}
	}
	return home, away, home != nil && away != nil
}

type espnEventList struct {
	Events []espnEvent `json:"events"`
}

type espnTeamsResponse struct {
	Sports []struct {
		Leagues []struct {
			Teams []struct {
				Team espnTeam `json:"team"`
			} `json:"teams"`
		} `json:"leagues"`
	} `json:"sports"`
}

// NewESPNClient creates a new ESPN API client
func NewESPNClient(httpClient *RateLimitedHTTPClient, cfg config.ESPNConfig, logger *logrus.Logger) *ESPNClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultESPNBaseURL
	}
	seasons := cfg.Seasons
	if seasons <= 0 {
		seasons = 5
	}
	maxGames := cfg.MaxH2HGames
	if maxGames <= 0 {
		maxGames = 8
	}
	leagues := cfg.SoccerLeagues
	if len(leagues) == 0 {
		leagues = []string{"eng.1", "esp.1", "ger.1", "ita.1", "fra.1"}
	}

	return &ESPNClient{
		httpClient:    httpClient,
		baseURL:       baseURL,
		soccerLeagues: leagues,
		seasons:       seasons,
		maxGames:      maxGames,
		enabled:       cfg.Enabled,
		logger:        logger.WithField("provider", espnSourceName),
		now:           time.Now,
		teams:         make(map[string][]espnTeam),
	}
}

// Name returns the data source name
func (c *ESPNClient) Name() string {
	return espnSourceName
}

// Supports reports whether the sport has an ESPN path
func (c *ESPNClient) Supports(sport h2h.Sport) bool {
	switch sport {
	case h2h.SportNFL, h2h.SportNCAA, h2h.SportNBA, h2h.SportSoccer:
		return true
	}
	return false
}

func sportPath(sport h2h.Sport, league string) (string, error) {
	switch sport {
	case h2h.SportNFL:
		return "football/nfl", nil
	case h2h.SportNCAA:
		return "football/college-football", nil
	case h2h.SportNBA:
		return "basketball/nba", nil
	case h2h.SportSoccer:
		if league == "" {
			return "", fmt.Errorf("soccer requires a league code")
		}
		return "soccer/" + league, nil
	}
	return "", fmt.Errorf("%w: %s", h2h.ErrUnknownSport, sport)
}

// FetchFixtures retrieves the scoreboard for date. Soccer walks every configured
// league and only fails when all of them do.
func (c *ESPNClient) FetchFixtures(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error) {
	if !c.enabled {
		return nil, NewDataSourceError(espnSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	leagues := []string{""}
	if sport == h2h.SportSoccer {
		leagues = c.soccerLeagues
	}

	var (
		fixtures []models.Fixture
		lastErr  error
		failures int
	)
	for _, league := range leagues {
		path, err := sportPath(sport, league)
		if err != nil {
			return nil, NewDataSourceError(espnSourceName, ErrCodeInvalidData, "unsupported sport", err)
		}

		url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, path, date.Format("20060102"))
		var board espnEventList
		if err := c.httpClient.getJSON(ctx, espnSourceName, url, &board); err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{"sport": sport, "league": league}).Warn("Scoreboard fetch failed")
			lastErr = err
			failures++
			continue
		}

		for _, event := range board.Events {
			fixture, ok := c.toFixture(sport, league, event)
			if ok {
				fixtures = append(fixtures, fixture)
			}
		}
	}

	if failures == len(leagues) {
		return nil, lastErr
	}
	return fixtures, nil
}

func (c *ESPNClient) toFixture(sport h2h.Sport, league string, event espnEvent) (models.Fixture, bool) {
	home, away, ok := event.sides()
	if !ok {
		return models.Fixture{}, false
	}

	start, _ := parseESPNTime(event.Date)
	fixture, err := models.NewFixture(sport, home.Team.label(), away.Team.label(), start)
	if err != nil {
		c.logger.WithError(err).WithField("event_id", event.ID).Debug("Skipping event")
		return models.Fixture{}, false
	}
	fixture.HomeTeamID = home.Team.ID
	fixture.AwayTeamID = away.Team.ID
	fixture.League = league
	fixture.Source = espnSourceName
	return *fixture, true
}

// FetchH2H walks the home side's schedule back through the configured seasons and
// keeps completed games against the away side, newest first.
func (c *ESPNClient) FetchH2H(ctx context.Context, fixture *models.Fixture) ([]h2h.RawResult, error) {
	if !c.enabled {
		return nil, NewDataSourceError(espnSourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	path, homeID, awayID, err := c.resolveFixture(ctx, fixture)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var (
		results  []h2h.RawResult
		lastErr  error
		failures int
	)
	year := c.now().Year()
	for season := year; season > year-c.seasons; season-- {
		url := fmt.Sprintf("%s/%s/teams/%s/schedule?season=%d", c.baseURL, path, homeID, season)
		var schedule espnEventList
		if err := c.httpClient.getJSON(ctx, espnSourceName, url, &schedule); err != nil {
			if ctx.Err() != nil {
				return nil, NewDataSourceError(espnSourceName, ErrCodeNetworkError, "request cancelled", ctx.Err())
			}
			c.logger.WithError(err).WithField("season", season).Debug("Schedule fetch failed")
			lastErr = err
			failures++
			continue
		}

		for _, event := range schedule.Events {
			raw, ok := c.toResult(event, fixture, homeID, awayID)
			if !ok {
				continue
			}
			key := raw.Date.Format("2006-01-02")
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, raw)
		}
	}

	if failures == c.seasons {
		return nil, lastErr
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})
	if len(results) > c.maxGames {
		results = results[:c.maxGames]
	}
	return results, nil
}

// toResult converts a completed meeting into a RawResult oriented to the fixture
func (c *ESPNClient) toResult(event espnEvent, fixture *models.Fixture, homeID, awayID string) (h2h.RawResult, bool) {
	if !event.completed() {
		return h2h.RawResult{}, false
	}
	home, away, ok := event.sides()
	if !ok {
		return h2h.RawResult{}, false
	}

	var ours, theirs *espnCompetitor
	switch {
	case home.Team.ID == homeID && away.Team.ID == awayID:
		ours, theirs = home, away
	case home.Team.ID == awayID && away.Team.ID == homeID:
		ours, theirs = away, home
	default:
		return h2h.RawResult{}, false
	}
	if !ours.Score.Valid || !theirs.Score.Valid {
		return h2h.RawResult{}, false
	}

	date, err := parseESPNTime(event.Date)
	if err != nil {
		return h2h.RawResult{}, false
	}

	hs, as := int(ours.Score.Value), int(theirs.Score.Value)
	return h2h.RawResult{
		HomeTeam:   fixture.HomeTeam,
		AwayTeam:   fixture.AwayTeam,
		Date:       date,
		HomeScore:  &hs,
		AwayScore:  &as,
		Source:     espnSourceName,
		Provenance: h2h.ProvenanceReal,
	}, true
}

// resolveFixture returns the API path and team ids for the fixture, looking names up
// when the fixture did not come from ESPN.
func (c *ESPNClient) resolveFixture(ctx context.Context, fixture *models.Fixture) (string, string, string, error) {
	leagues := []string{fixture.League}
	if fixture.Sport == h2h.SportSoccer && fixture.League == "" {
		leagues = c.soccerLeagues
	}

	var lastErr error
	for _, league := range leagues {
		path, err := sportPath(fixture.Sport, league)
		if err != nil {
			return "", "", "", NewDataSourceError(espnSourceName, ErrCodeInvalidData, "unsupported sport", err)
		}
		if fixture.HasTeamIDs() && fixture.Source == espnSourceName {
			return path, fixture.HomeTeamID, fixture.AwayTeamID, nil
		}

		homeID, err := c.lookupTeam(ctx, path, fixture.HomeTeam)
		if err != nil {
			lastErr = err
			continue
		}
		awayID, err := c.lookupTeam(ctx, path, fixture.AwayTeam)
		if err != nil {
			lastErr = err
			continue
		}
		return path, homeID, awayID, nil
	}
	return "", "", "", lastErr
}

func (c *ESPNClient) lookupTeam(ctx context.Context, path, name string) (string, error) {
	teams, err := c.listTeams(ctx, path)
	if err != nil {
		return "", err
	}

	want := NormalizeTeamName(name)
	for _, t := range teams {
		if NormalizeTeamName(t.DisplayName) == want || strings.EqualFold(t.Abbreviation, name) {
			return t.ID, nil
		}
	}
	for _, t := range teams {
		if TeamsMatch(t.DisplayName, name) || TeamsMatch(t.ShortDisplayName, name) {
			return t.ID, nil
		}
	}
	return "", NewDataSourceError(espnSourceName, ErrCodeNotFound, "team "+name+" not found", ErrTeamNotFound)
}

func (c *ESPNClient) listTeams(ctx context.Context, path string) ([]espnTeam, error) {
	c.mu.Lock()
	cached, ok := c.teams[path]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var resp espnTeamsResponse
	url := fmt.Sprintf("%s/%s/teams?limit=1000", c.baseURL, path)
	if err := c.httpClient.getJSON(ctx, espnSourceName, url, &resp); err != nil {
		return nil, err
	}

	var teams []espnTeam
	for _, sport := range resp.Sports {
		for _, league := range sport.Leagues {
			for _, entry := range league.Teams {
				teams = append(teams, entry.Team)
			}
		}
	}
	if len(teams) == 0 {
		return nil, NewDataSourceError(espnSourceName, ErrCodeInvalidData, "empty team list", errors.New(path))
	}

	c.mu.Lock()
	c.teams[path] = teams
	c.mu.Unlock()
	return teams, nil
}

var espnTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02"}

func parseESPNTime(s string) (time.Time, error) {
	for _, layout := range espnTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
