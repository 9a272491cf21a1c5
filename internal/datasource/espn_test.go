package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gamepredict/internal/config"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

const espnTeamsJSON = `{"sports":[{"leagues":[{"teams":[
	{"team":{"id":"12","displayName":"Kansas City Chiefs","shortDisplayName":"Chiefs","abbreviation":"KC"}},
	{"team":{"id":"2","displayName":"Buffalo Bills","shortDisplayName":"Bills","abbreviation":"BUF"}},
	{"team":{"id":"13","displayName":"Las Vegas Raiders","shortDisplayName":"Raiders","abbreviation":"LV"}}
]}]}]}`

const espnSchedule2024JSON = `{"events":[
	{"id":"1","date":"2024-01-21T20:00Z","competitions":[{"status":{"type":{"completed":true}},"competitors":[
		{"homeAway":"home","team":{"id":"12","displayName":"Kansas City Chiefs"},"score":"27"},
		{"homeAway":"away","team":{"id":"2","displayName":"Buffalo Bills"},"score":"24"}]}]},
	{"id":"2","date":"2023-11-12T18:00Z","competitions":[{"status":{"type":{"completed":true}},"competitors":[
		{"homeAway":"home","team":{"id":"2","displayName":"Buffalo Bills"},"score":{"value":20.0,"displayValue":"20"}},
		{"homeAway":"away","team":{"id":"12","displayName":"Kansas City Chiefs"},"score":{"value":17.0,"displayValue":"17"}}]}]},
	{"id":"3","date":"2023-10-01T17:00Z","competitions":[{"status":{"type":{"completed":true}},"competitors":[
		{"homeAway":"home","team":{"id":"12"},"score":"30"},
		{"homeAway":"away","team":{"id":"13"},"score":"10"}]}]},
	{"id":"4","date":"2024-02-11T23:30Z","competitions":[{"status":{"type":{"completed":false}},"competitors":[
		{"homeAway":"home","team":{"id":"12"}},
		{"homeAway":"away","team":{"id":"2"}}]}]},
	{"id":"5","date":"2024-01-21T23:00Z","competitions":[{"status":{"type":{"completed":true}},"competitors":[
		{"homeAway":"home","team":{"id":"12"},"score":"3"},
		{"homeAway":"away","team":{"id":"2"},"score":"0"}]}]}
]}`

const espnSchedule2023JSON = `{"events":[
	{"id":"6","date":"2022-12-10T18:00Z","status":{"type":{"completed":true}},"competitions":[{"competitors":[
		{"homeAway":"home","team":{"id":"12"},"score":31},
		{"homeAway":"away","team":{"id":"2"},"score":30}]}]}
]}`

const espnScoreboardJSON = `{"events":[
	{"id":"401","date":"2024-06-01T20:15Z","competitions":[{"competitors":[
		{"homeAway":"home","team":{"id":"12","displayName":"Kansas City Chiefs"}},
		{"homeAway":"away","team":{"id":"2","displayName":"Buffalo Bills"}}]}]},
	{"id":"402","date":"2024-06-01T17:00Z","competitions":[{"competitors":[
		{"homeAway":"home","team":{"id":"13","displayName":"Las Vegas Raiders"}}]}]}
]}`

func newTestHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{Timeout: 2 * time.Second, CircuitBreakerMax: 50}, nil)
}

func newESPNServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/football/nfl/teams":
			w.Write([]byte(espnTeamsJSON))
		case "/football/nfl/teams/12/schedule":
			switch r.URL.Query().Get("season") {
			case "2024":
				w.Write([]byte(espnSchedule2024JSON))
			case "2023":
				w.Write([]byte(espnSchedule2023JSON))
			default:
				w.Write([]byte(`{"events":[]}`))
			}
		case "/football/nfl/scoreboard":
			assert.Equal(t, "20240601", r.URL.Query().Get("dates"))
			w.Write([]byte(espnScoreboardJSON))
		case "/soccer/eng.1/scoreboard":
			w.Write([]byte(`{"events":[{"id":"9","date":"2024-06-01T15:00Z","competitions":[{"competitors":[
				{"homeAway":"home","team":{"id":"359","displayName":"Arsenal"}},
				{"homeAway":"away","team":{"id":"363","displayName":"Chelsea"}}]}]}]}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestESPNClient(baseURL string, maxGames int, leagues ...string) *ESPNClient {
	c := NewESPNClient(newTestHTTPClient(), config.ESPNConfig{
		Enabled:       true,
		BaseURL:       baseURL,
		Seasons:       2,
		MaxH2HGames:   maxGames,
		SoccerLeagues: leagues,
	}, nil)
	c.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

// TestESPNFetchH2H tests season walking, orientation, de-duplication and ordering
func TestESPNFetchH2H(t *testing.T) {
	srv := newESPNServer(t)
	client := newTestESPNClient(srv.URL, 8)

	fixture, err := models.NewFixture(h2h.SportNFL, "Kansas City Chiefs", "Buffalo Bills", time.Time{})
	require.NoError(t, err)

	results, err := client.FetchH2H(context.Background(), fixture)
	require.NoError(t, err)
	require.Len(t, results, 3)

	want := [][2]int{{27, 24}, {17, 20}, {31, 30}}
	for i, r := range results {
		require.NotNil(t, r.HomeScore)
		assert.Equal(t, want[i][0], *r.HomeScore, "record %d", i)
		assert.Equal(t, want[i][1], *r.AwayScore, "record %d", i)
		assert.Equal(t, h2h.ProvenanceReal, r.Provenance)
		assert.Equal(t, "Kansas City Chiefs", r.HomeTeam)
		if i > 0 {
			assert.True(t, results[i-1].Date.After(r.Date))
		}
	}
}

// TestESPNFetchH2HMaxGames tests truncation to the newest meetings
func TestESPNFetchH2HMaxGames(t *testing.T) {
	srv := newESPNServer(t)
	client := newTestESPNClient(srv.URL, 2)

	fixture, err := models.NewFixture(h2h.SportNFL, "KC", "Bills", time.Time{})
	require.NoError(t, err)

	results, err := client.FetchH2H(context.Background(), fixture)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2024, results[0].Date.Year())
}

// TestESPNFetchH2HUnknownTeam tests the team lookup failure
func TestESPNFetchH2HUnknownTeam(t *testing.T) {
	srv := newESPNServer(t)
	client := newTestESPNClient(srv.URL, 8)

	fixture, err := models.NewFixture(h2h.SportNFL, "Kansas City Chiefs", "London Monarchs", time.Time{})
	require.NoError(t, err)

	_, err = client.FetchH2H(context.Background(), fixture)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
}

// TestESPNFetchFixtures tests scoreboard parsing
func TestESPNFetchFixtures(t *testing.T) {
	srv := newESPNServer(t)
	client := newTestESPNClient(srv.URL, 8)

	fixtures, err := client.FetchFixtures(context.Background(), h2h.SportNFL, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, fixtures, 1, "event with one competitor is skipped")

	f := fixtures[0]
	assert.Equal(t, "Kansas City Chiefs", f.HomeTeam)
	assert.Equal(t, "Buffalo Bills", f.AwayTeam)
	assert.Equal(t, "12", f.HomeTeamID)
	assert.Equal(t, "2", f.AwayTeamID)
	assert.Equal(t, espnSourceName, f.Source)
	assert.Equal(t, 20, f.StartTime.Hour())
}

// TestESPNFetchFixturesSoccerLeagues tests partial and total league failure
func TestESPNFetchFixturesSoccerLeagues(t *testing.T) {
	srv := newESPNServer(t)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	client := newTestESPNClient(srv.URL, 8, "eng.1", "esp.1")
	fixtures, err := client.FetchFixtures(context.Background(), h2h.SportSoccer, date)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, "eng.1", fixtures[0].League)
	assert.Equal(t, "Arsenal vs Chelsea", fixtures[0].MatchName())

	client = newTestESPNClient(srv.URL, 8, "esp.1", "ger.1")
	_, err = client.FetchFixtures(context.Background(), h2h.SportSoccer, date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

// TestESPNDisabled tests the disabled client
func TestESPNDisabled(t *testing.T) {
	client := NewESPNClient(newTestHTTPClient(), config.ESPNConfig{Enabled: false}, nil)
	_, err := client.FetchFixtures(context.Background(), h2h.SportNBA, time.Now())

	var dsErr DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, ErrCodeDisabled, dsErr.Code)
}

// TestESPNScoreShapes tests the tolerant score decoder
func TestESPNScoreShapes(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{`"24"`, 24, true},
		{`17`, 17, true},
		{`{"value":3.0,"displayValue":"3"}`, 3, true},
		{`{"displayValue":"5"}`, 5, true},
		{`null`, 0, false},
		{`""`, 0, false},
	}
	for _, tt := range tests {
		var s espnScore
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &s), tt.raw)
		assert.Equal(t, tt.valid, s.Valid, tt.raw)
		assert.Equal(t, tt.want, s.Value, tt.raw)
	}

	var s espnScore
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &s))
}
