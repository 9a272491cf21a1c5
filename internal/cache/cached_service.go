package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

// ReportService computes daily reports
type ReportService interface {
	DailyPredictions(ctx context.Context) (*models.DailyReport, error)
	SportPredictions(ctx context.Context, sport h2h.Sport) (*models.DailyReport, error)
}

// MatchService computes ad-hoc predictions
type MatchService interface {
	PredictMatch(ctx context.Context, sport h2h.Sport, home, away string) (*models.Prediction, error)
}

// CachedPredictions wraps the prediction services with report and match caching
type CachedPredictions struct {
	reports ReportService
	matches MatchService
	cache   *PredictionCache
	logger  *logrus.Entry
	now     func() time.Time
}

// NewCachedPredictions creates a cached front for the prediction services
func NewCachedPredictions(reports ReportService, matches MatchService, cache *PredictionCache, logger *logrus.Logger) *CachedPredictions {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedPredictions{
		reports: reports,
		matches: matches,
		cache:   cache,
		logger:  logger.WithField("component", "prediction_cache"),
		now:     time.Now,
	}
}

// DailyPredictions returns today's report across every sport, computing it on a miss
func (c *CachedPredictions) DailyPredictions(ctx context.Context) (*models.DailyReport, error) {
	key := NewReportKey(c.now(), "")
	if cached := c.cache.GetReport(key); cached != nil {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for daily report")
		return cached, nil
	}

	report, err := c.reports.DailyPredictions(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetReport(key, report)
	return report, nil
}

// SportPredictions returns today's report for one sport, computing it on a miss
func (c *CachedPredictions) SportPredictions(ctx context.Context, sport h2h.Sport) (*models.DailyReport, error) {
	key := NewReportKey(c.now(), sport)
	if cached := c.cache.GetReport(key); cached != nil {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for sport report")
		return cached, nil
	}

	report, err := c.reports.SportPredictions(ctx, sport)
	if err != nil {
		return nil, err
	}
	c.cache.SetReport(key, report)
	return report, nil
}

// PredictMatch returns the prediction for a pairing, computing it on a miss
func (c *CachedPredictions) PredictMatch(ctx context.Context, sport h2h.Sport, home, away string) (*models.Prediction, error) {
	key := MatchKey{Sport: sport, Home: home, Away: away}
	if cached := c.cache.GetPrediction(key); cached != nil {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for prediction")
		return cached, nil
	}

	pred, err := c.matches.PredictMatch(ctx, sport, home, away)
	if err != nil {
		return nil, err
	}
	c.cache.SetPrediction(key, pred)
	return pred, nil
}

// Refresh drops today's cached reports and recomputes the full report
func (c *CachedPredictions) Refresh(ctx context.Context) (*models.DailyReport, error) {
	removed := c.cache.InvalidateDate(c.now())
	c.logger.WithField("removed", removed).Debug("Invalidated cached reports")
	return c.DailyPredictions(ctx)
}
