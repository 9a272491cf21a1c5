package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

var today = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// TestReportKeyString tests cache key string representation
func TestReportKeyString(t *testing.T) {
	assert.Equal(t, "report:2024-06-01:all", NewReportKey(today, "").String())
	assert.Equal(t, "report:2024-06-01:nba", NewReportKey(today, h2h.SportNBA).String())
	assert.Equal(t,
		MatchKey{Sport: h2h.SportNFL, Home: "KC", Away: "Bills"}.String(),
		MatchKey{Sport: h2h.SportNFL, Home: "Kansas City Chiefs", Away: "bills"}.String(),
	)
}

// TestPredictionCacheGetSet tests cache Get and Set operations
func TestPredictionCacheGetSet(t *testing.T) {
	c := NewPredictionCache(time.Hour, 0, 100)
	defer c.Clear()

	key := NewReportKey(today, "")
	assert.Nil(t, c.GetReport(key))

	report := &models.DailyReport{Date: "2024-06-01"}
	c.SetReport(key, report)
	assert.Same(t, report, c.GetReport(key))

	mk := MatchKey{Sport: h2h.SportNBA, Home: "Lakers", Away: "Celtics"}
	assert.Nil(t, c.GetPrediction(mk))
	pred := &models.Prediction{Status: models.PredictionSkipped}
	c.SetPrediction(mk, pred)
	assert.Same(t, pred, c.GetPrediction(mk))

	hits, misses, ratio := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(2), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

// TestPredictionCacheMaxSize tests that a full cache keeps existing entries
func TestPredictionCacheMaxSize(t *testing.T) {
	c := NewPredictionCache(time.Hour, time.Hour, 1)
	first := NewReportKey(today, h2h.SportNFL)
	second := NewReportKey(today, h2h.SportNBA)

	c.SetReport(first, &models.DailyReport{})
	c.SetReport(second, &models.DailyReport{})
	assert.Equal(t, 1, c.ItemCount())
	assert.NotNil(t, c.GetReport(first))

	replacement := &models.DailyReport{Date: "x"}
	c.SetReport(first, replacement)
	assert.Same(t, replacement, c.GetReport(first))
}

// TestPredictionCacheInvalidateDate tests invalidation of one day's reports
func TestPredictionCacheInvalidateDate(t *testing.T) {
	c := NewPredictionCache(time.Hour, 0, 0)
	c.SetReport(NewReportKey(today, ""), &models.DailyReport{})
	c.SetReport(NewReportKey(today, h2h.SportNFL), &models.DailyReport{})
	c.SetReport(NewReportKey(today.AddDate(0, 0, -1), ""), &models.DailyReport{})
	c.SetPrediction(MatchKey{Sport: h2h.SportNFL, Home: "a", Away: "b"}, &models.Prediction{})

	assert.Equal(t, 2, c.InvalidateDate(today))
	assert.Equal(t, 2, c.ItemCount())
}

// TestPredictionCacheExpiry tests TTL expiry
func TestPredictionCacheExpiry(t *testing.T) {
	c := NewPredictionCache(20*time.Millisecond, 0, 0)
	key := NewReportKey(today, "")
	c.SetReport(key, &models.DailyReport{})
	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, c.GetReport(key))
}

type mockReports struct {
	mock.Mock
}

func (m *mockReports) DailyPredictions(ctx context.Context) (*models.DailyReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyReport), args.Error(1)
}

func (m *mockReports) SportPredictions(ctx context.Context, sport h2h.Sport) (*models.DailyReport, error) {
	args := m.Called(ctx, sport)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyReport), args.Error(1)
}

func (m *mockReports) PredictMatch(ctx context.Context, sport h2h.Sport, home, away string) (*models.Prediction, error) {
	args := m.Called(ctx, sport, home, away)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

// TestCachedPredictions tests that the wrapped services are called once per key
func TestCachedPredictions(t *testing.T) {
	svc := new(mockReports)
	report := &models.DailyReport{Date: "2024-06-01"}
	svc.On("DailyPredictions", mock.Anything).Return(report, nil)
	svc.On("SportPredictions", mock.Anything, h2h.SportNBA).Return(nil, errors.New("down"))
	svc.On("PredictMatch", mock.Anything, h2h.SportNFL, "KC", "Bills").Return(&models.Prediction{}, nil)

	c := NewCachedPredictions(svc, svc, NewPredictionCache(time.Hour, 0, 0), nil)
	c.now = func() time.Time { return today }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.DailyPredictions(ctx)
		require.NoError(t, err)
		assert.Same(t, report, got)
	}
	svc.AssertNumberOfCalls(t, "DailyPredictions", 1)

	_, err := c.SportPredictions(ctx, h2h.SportNBA)
	assert.Error(t, err)
	_, err = c.SportPredictions(ctx, h2h.SportNBA)
	assert.Error(t, err)
	svc.AssertNumberOfCalls(t, "SportPredictions", 2)

	_, err = c.PredictMatch(ctx, h2h.SportNFL, "KC", "Bills")
	require.NoError(t, err)
	_, err = c.PredictMatch(ctx, h2h.SportNFL, "KC", "Bills")
	require.NoError(t, err)
	svc.AssertNumberOfCalls(t, "PredictMatch", 1)

	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	svc.AssertNumberOfCalls(t, "DailyPredictions", 2)
}
