package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

type mockPredictions struct {
	mock.Mock
}

func (m *mockPredictions) DailyPredictions(ctx context.Context) (*models.DailyReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyReport), args.Error(1)
}

func (m *mockPredictions) SportPredictions(ctx context.Context, sport h2h.Sport) (*models.DailyReport, error) {
	args := m.Called(ctx, sport)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyReport), args.Error(1)
}

func (m *mockPredictions) PredictMatch(ctx context.Context, sport h2h.Sport, home, away string) (*models.Prediction, error) {
	args := m.Called(ctx, sport, home, away)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func newTestServer(predictions Predictions, db DatabasePinger) *Server {
	cfg := Config{
		ServiceName: "gamepredict",
		Version:     "test",
		Sports:      []h2h.Sport{h2h.SportNFL, h2h.SportNBA},
	}
	if predictions != nil {
		cfg.Predictions = predictions
	}
	if db != nil {
		cfg.DB = db
	}
	return NewServer(cfg)
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// TestHealth tests the health states
func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		preds      Predictions
		db         DatabasePinger
		wantCode   int
		wantStatus string
	}{
		{name: "healthy", preds: new(mockPredictions), db: stubPinger{}, wantCode: http.StatusOK, wantStatus: StatusHealthy},
		{name: "database down", preds: new(mockPredictions), db: stubPinger{err: errors.New("refused")}, wantCode: http.StatusOK, wantStatus: StatusDegraded},
		{name: "no predictor", wantCode: http.StatusServiceUnavailable, wantStatus: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(tt.preds, tt.db), http.MethodGet, "/health", "")
			require.Equal(t, tt.wantCode, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Sports, 4)
			assert.Equal(t, tt.preds != nil, resp.Sports["nfl"])
			assert.False(t, resp.Sports["soccer"])
		})
	}

	rec := serve(newTestServer(new(mockPredictions), nil), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestReadyAndLive tests the probes
func TestReadyAndLive(t *testing.T) {
	s := newTestServer(new(mockPredictions), stubPinger{})
	assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/ready", "").Code)

	s.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/live", "").Code)

	down := newTestServer(new(mockPredictions), stubPinger{err: errors.New("refused")})
	down.SetReady(true)
	rec := serve(down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "refused")
}

// TestDailyPredictions tests the report routes and error mapping
func TestDailyPredictions(t *testing.T) {
	report := &models.DailyReport{Date: "2024-06-01", RecommendationsFound: 1, Strategy: "Single bet only"}
	preds := new(mockPredictions)
	preds.On("DailyPredictions", mock.Anything).Return(report, nil).Once()
	preds.On("DailyPredictions", mock.Anything).Return(nil, errors.New("boom")).Once()
	preds.On("SportPredictions", mock.Anything, h2h.SportNBA).Return(report, nil)
	preds.On("SportPredictions", mock.Anything, h2h.SportSoccer).Return(nil, h2h.ErrUnknownSport)
	s := newTestServer(preds, nil)

	rec := serve(s, http.MethodGet, "/daily-predictions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.DailyReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, 1, got.RecommendationsFound)

	assert.Equal(t, http.StatusInternalServerError, serve(s, http.MethodGet, "/daily-predictions", "").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/daily-predictions/basketball", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/daily-predictions/football", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/daily-predictions/cricket", "").Code)
	preds.AssertExpectations(t)

	unavailable := newTestServer(nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, serve(unavailable, http.MethodGet, "/daily-predictions", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(unavailable, http.MethodPost, "/predict", "{}").Code)
}

// TestDailyPredictionsUpstreamDown tests that exhausted providers answer 503
func TestDailyPredictionsUpstreamDown(t *testing.T) {
	down := datasource.NewDataSourceError("espn", datasource.ErrCodeServerError, "down", nil)
	preds := new(mockPredictions)
	preds.On("DailyPredictions", mock.Anything).Return(nil, down)

	rec := serve(newTestServer(preds, nil), http.MethodGet, "/daily-predictions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestPredict tests request validation and the single match route
func TestPredict(t *testing.T) {
	skipped := &models.Prediction{Status: models.PredictionSkipped, Reason: models.ReasonInsufficientData, SampleSize: 2}
	preds := new(mockPredictions)
	preds.On("PredictMatch", mock.Anything, h2h.SportNFL, "Chiefs", "Bills").Return(skipped, nil)
	preds.On("PredictMatch", mock.Anything, h2h.SportNFL, "Chiefs", "chiefs").
		Return(nil, fmt.Errorf("build fixture: %w", models.ErrIdenticalTeams))
	preds.On("PredictMatch", mock.Anything, h2h.SportNFL, "Chiefs", "Chiefs ").
		Return(nil, fmt.Errorf("build fixture: %w", models.ErrIdenticalTeams))
	preds.On("PredictMatch", mock.Anything, h2h.SportNFL, "   ", "Bills").
		Return(nil, fmt.Errorf("build fixture: %w", models.ErrTeamNameRequired))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "skip is not an error", body: `{"home_team":"Chiefs","away_team":"Bills","sport":"american_football"}`, wantCode: http.StatusOK},
		{name: "malformed json", body: `{"home_team":`, wantCode: http.StatusBadRequest},
		{name: "missing away team", body: `{"home_team":"Chiefs","sport":"nfl"}`, wantCode: http.StatusBadRequest},
		{name: "same teams", body: `{"home_team":"Chiefs","away_team":"Chiefs","sport":"nfl"}`, wantCode: http.StatusBadRequest},
		{name: "unknown sport", body: `{"home_team":"Chiefs","away_team":"Bills","sport":"curling"}`, wantCode: http.StatusBadRequest},
		{name: "same teams differing in case", body: `{"home_team":"Chiefs","away_team":"chiefs","sport":"nfl"}`, wantCode: http.StatusBadRequest},
		{name: "same teams with trailing space", body: `{"home_team":"Chiefs","away_team":"Chiefs ","sport":"nfl"}`, wantCode: http.StatusBadRequest},
		{name: "blank home team", body: `{"home_team":"   ","away_team":"Bills","sport":"nfl"}`, wantCode: http.StatusBadRequest},
		{name: "disabled sport", body: `{"home_team":"Arsenal","away_team":"Chelsea","sport":"soccer"}`, wantCode: http.StatusBadRequest},
	}

	s := newTestServer(preds, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, http.MethodPost, "/predict", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	rec := serve(s, http.MethodPost, "/predict", `{"home_team":"Chiefs","away_team":"Bills","sport":"nfl"}`)
	var got models.Prediction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, models.PredictionSkipped, got.Status)
	assert.Equal(t, 2, got.SampleSize)
}

// TestSports tests the sport listing
func TestSports(t *testing.T) {
	rec := serve(newTestServer(new(mockPredictions), nil), http.MethodGet, "/sports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sports []SportInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sports))
	require.Len(t, sports, 4)
	assert.Equal(t, h2h.SportNFL, sports[0].Sport)
	assert.True(t, sports[0].Enabled)
	assert.Contains(t, sports[0].Aliases, "american_football")
	assert.Equal(t, h2h.SportSoccer, sports[3].Sport)
	assert.False(t, sports[3].Enabled)
	assert.Contains(t, sports[3].Aliases, "football")
}

// TestMetricsRoute tests the prometheus endpoint is mounted
func TestMetricsRoute(t *testing.T) {
	rec := serve(newTestServer(new(mockPredictions), nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestStream tests that broadcast reports reach websocket subscribers
func TestStream(t *testing.T) {
	s := newTestServer(new(mockPredictions), nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Hub().Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/predictions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.Hub().Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Hub().BroadcastReport(&models.DailyReport{Date: "2024-06-01", RecommendationsFound: 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "daily_report", msg.Type)
	require.NotNil(t, msg.Report)
	assert.Equal(t, 3, msg.Report.RecommendationsFound)

	conn.Close()
	assert.Eventually(t, func() bool { return s.Hub().Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
