package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

// MockFixtureSource mocks the fixture collector
type MockFixtureSource struct {
	mock.Mock
}

func (m *MockFixtureSource) Collect(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error) {
	args := m.Called(ctx, sport, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Fixture), args.Error(1)
}

// MockFixturePredictor mocks the single-fixture predictor
type MockFixturePredictor struct {
	mock.Mock
}

func (m *MockFixturePredictor) PredictFixture(ctx context.Context, fixture *models.Fixture) (*models.Prediction, error) {
	args := m.Called(ctx, fixture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

// MockRecommendationSink mocks recommendation persistence
type MockRecommendationSink struct {
	mock.Mock
}

func (m *MockRecommendationSink) InsertBatch(ctx context.Context, recs []models.Recommendation) error {
	args := m.Called(ctx, recs)
	return args.Error(0)
}

var runDate = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func slate(t *testing.T, sport h2h.Sport, n int) []models.Fixture {
	t.Helper()
	out := make([]models.Fixture, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, *newFixture(t, sport, fmt.Sprintf("Home %d", i), fmt.Sprintf("Away %d", i)))
	}
	return out
}

func recommended(fixture *models.Fixture, confidence float64) *models.Prediction {
	pred := &models.Prediction{
		ID:             uuid.New(),
		Fixture:        *fixture,
		Status:         models.PredictionRecommended,
		SampleSize:     6,
		DataProvenance: h2h.ProvenanceReal,
	}
	pred.Recommendations = []models.Recommendation{models.NewRecommendation(pred, h2h.Recommendation{
		BetType: h2h.BetOverUnder, Selection: "OVER 47.5", Probability: confidence, Confidence: confidence,
	}, decimal.RequireFromString("1.9"))}
	return pred
}

func skipped(fixture *models.Fixture) *models.Prediction {
	return &models.Prediction{
		ID:              uuid.New(),
		Fixture:         *fixture,
		Status:          models.PredictionSkipped,
		Reason:          models.ReasonInsufficientData,
		Recommendations: []models.Recommendation{},
	}
}

func newDailyService(t *testing.T, fixtures FixtureSource, predictor FixturePredictor, sports ...h2h.Sport) *DailyService {
	t.Helper()
	s := NewDailyService(fixtures, predictor, sports, testProfiles(t, sports...), nil)
	s.now = func() time.Time { return runDate }
	return s
}

// TestDailyPredictions tests limits, error isolation and the report totals
func TestDailyPredictions(t *testing.T) {
	nfl := slate(t, h2h.SportNFL, 7)
	nba := slate(t, h2h.SportNBA, 2)

	fixtures := new(MockFixtureSource)
	fixtures.On("Collect", mock.Anything, h2h.SportNFL, runDate).Return(nfl, nil)
	fixtures.On("Collect", mock.Anything, h2h.SportNBA, runDate).Return(nba, nil)

	predictor := new(MockFixturePredictor)
	predictor.On("PredictFixture", mock.Anything, &nfl[0]).Return(recommended(&nfl[0], 0.82), nil)
	predictor.On("PredictFixture", mock.Anything, &nfl[1]).Return(nil, errors.New("boom"))
	predictor.On("PredictFixture", mock.Anything, &nfl[2]).Return(skipped(&nfl[2]), nil)
	predictor.On("PredictFixture", mock.Anything, &nfl[3]).Return(skipped(&nfl[3]), nil)
	predictor.On("PredictFixture", mock.Anything, &nfl[4]).Return(recommended(&nfl[4], 0.9), nil)
	predictor.On("PredictFixture", mock.Anything, &nba[0]).Return(recommended(&nba[0], 0.77), nil)
	predictor.On("PredictFixture", mock.Anything, &nba[1]).Return(skipped(&nba[1]), nil)

	s := newDailyService(t, fixtures, predictor, h2h.SportNFL, h2h.SportNBA)
	report, run, err := s.Run(context.Background(), runDate, s.Sports())
	require.NoError(t, err)

	predictor.AssertNumberOfCalls(t, "PredictFixture", 7)
	assert.Equal(t, 7, run.Fixtures, "nfl slate is cut to five")
	assert.Equal(t, 1, run.Errors)
	assert.Equal(t, 6, run.Analysed)

	assert.Equal(t, "2024-06-01", report.Date)
	assert.Equal(t, 6, report.TotalAnalyzed)
	assert.Equal(t, 3, report.RecommendationsFound)
	assert.Equal(t, 3, report.Skipped)
	require.NotNil(t, report.BestBet)
	assert.InDelta(t, 0.9, report.BestBet.Confidence, 1e-9)
	require.NotNil(t, report.AccumulatorOdds)
	assert.Equal(t, 2, report.Sports[h2h.SportNBA].Analyzed)
}

// TestDailyPredictionsSportFailures tests partial and total slate failures
func TestDailyPredictionsSportFailures(t *testing.T) {
	down := datasource.NewDataSourceError("espn", datasource.ErrCodeServerError, "down", nil)
	nba := slate(t, h2h.SportNBA, 1)

	fixtures := new(MockFixtureSource)
	fixtures.On("Collect", mock.Anything, h2h.SportNFL, runDate).Return(nil, down)
	fixtures.On("Collect", mock.Anything, h2h.SportNBA, runDate).Return(nba, nil)
	predictor := new(MockFixturePredictor)
	predictor.On("PredictFixture", mock.Anything, &nba[0]).Return(recommended(&nba[0], 0.8), nil)

	s := newDailyService(t, fixtures, predictor, h2h.SportNFL, h2h.SportNBA)
	report, err := s.DailyPredictions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalAnalyzed)
	assert.Nil(t, report.AccumulatorOdds, "a single leg is not an accumulator")

	only := newDailyService(t, fixtures, predictor, h2h.SportNFL)
	_, err = only.DailyPredictions(context.Background())
	assert.ErrorIs(t, err, datasource.ErrUpstreamUnavailable)
}

// TestSportPredictions tests the sport filter
func TestSportPredictions(t *testing.T) {
	fixtures := new(MockFixtureSource)
	fixtures.On("Collect", mock.Anything, h2h.SportSoccer, runDate).Return([]models.Fixture{}, nil)
	s := newDailyService(t, fixtures, new(MockFixturePredictor), h2h.SportSoccer)

	report, err := s.SportPredictions(context.Background(), h2h.SportSoccer)
	require.NoError(t, err)
	assert.Zero(t, report.TotalAnalyzed)
	assert.Empty(t, report.Recommendations)
	assert.Equal(t, "No qualifying bets today", report.Strategy)

	_, err = s.SportPredictions(context.Background(), h2h.SportNBA)
	assert.ErrorIs(t, err, h2h.ErrUnknownSport)
	fixtures.AssertNotCalled(t, "Collect", mock.Anything, h2h.SportNBA, mock.Anything)
}

// TestDailyPredictionsPersist tests that emitted recommendations reach the sink
func TestDailyPredictionsPersist(t *testing.T) {
	nfl := slate(t, h2h.SportNFL, 2)
	fixtures := new(MockFixtureSource)
	fixtures.On("Collect", mock.Anything, h2h.SportNFL, runDate).Return(nfl, nil)
	predictor := new(MockFixturePredictor)
	predictor.On("PredictFixture", mock.Anything, &nfl[0]).Return(recommended(&nfl[0], 0.8), nil)
	predictor.On("PredictFixture", mock.Anything, &nfl[1]).Return(recommended(&nfl[1], 0.85), nil)

	sink := new(MockRecommendationSink)
	sink.On("InsertBatch", mock.Anything, mock.MatchedBy(func(recs []models.Recommendation) bool {
		return len(recs) == 2 && recs[0].Confidence > recs[1].Confidence
	})).Return(errors.New("db down"))

	s := newDailyService(t, fixtures, predictor, h2h.SportNFL).WithSink(sink)
	report, err := s.DailyPredictions(context.Background())
	require.NoError(t, err, "persistence failures do not fail the run")
	assert.Equal(t, 2, report.RecommendationsFound)
	sink.AssertExpectations(t)
}

// TestRunMetricsString tests the run summary
func TestRunMetricsString(t *testing.T) {
	m := NewRunMetrics(runDate)
	m.RecordFixtures(4)
	m.RecordPrediction(true, false, false)
	m.RecordPrediction(false, true, true)
	m.RecordError()
	m.Finish(runDate.Add(2 * time.Second))

	assert.Equal(t, 2, m.Analysed)
	assert.Equal(t, 1, m.Synthetic)
	assert.Contains(t, m.String(), "Recommended=1 (50.0%)")
	assert.Contains(t, m.String(), "Duration=2s")
}

// TestH2HSync tests the sync counters
func TestH2HSync(t *testing.T) {
	nfl := slate(t, h2h.SportNFL, 3)
	fixtures := new(MockFixtureSource)
	fixtures.On("Collect", mock.Anything, h2h.SportNFL, runDate).Return(nfl, nil)
	fixtures.On("Collect", mock.Anything, h2h.SportNBA, runDate).Return(nil, errors.New("down"))

	source := new(MockH2HSource)
	source.On("Collect", mock.Anything, &nfl[0]).Return(realResult(result(20, 17, 1)), nil)
	source.On("Collect", mock.Anything, &nfl[1]).Return(&datasource.H2HResult{Provenance: h2h.ProvenanceSynthetic}, nil)
	source.On("Collect", mock.Anything, &nfl[2]).Return(nil, errors.New("boom"))

	res, err := NewH2HSync(fixtures, source, []h2h.Sport{h2h.SportNFL, h2h.SportNBA}, nil).SyncH2H(context.Background(), runDate)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Fixtures: 3, Real: 1, Synthetic: 1, Failed: 1}, res)
}
