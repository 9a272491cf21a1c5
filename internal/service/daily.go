package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/logger"
	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/models"
)

// FixtureSource supplies the day's fixtures for a sport
type FixtureSource interface {
	Collect(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error)
}

// FixturePredictor analyses a single fixture
type FixturePredictor interface {
	PredictFixture(ctx context.Context, fixture *models.Fixture) (*models.Prediction, error)
}

// RecommendationSink persists emitted recommendations
type RecommendationSink interface {
	InsertBatch(ctx context.Context, recs []models.Recommendation) error
}

// DailyService produces the daily report across every enabled sport
type DailyService struct {
	fixtures  FixtureSource
	predictor FixturePredictor
	sports    []h2h.Sport
	limits    map[h2h.Sport]int
	sink      RecommendationSink
	predLog   *logger.PredictionLogger
	logger    *logrus.Entry
	now       func() time.Time
}

// NewDailyService creates a daily service. Fixture limits come from the profiles.
func NewDailyService(fixtures FixtureSource, predictor FixturePredictor, sports []h2h.Sport, profiles map[h2h.Sport]h2h.SportProfile, log *logrus.Logger) *DailyService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	limits := make(map[h2h.Sport]int, len(profiles))
	for sport, p := range profiles {
		limits[sport] = p.FixtureLimit
	}
	return &DailyService{
		fixtures:  fixtures,
		predictor: predictor,
		sports:    sports,
		limits:    limits,
		predLog:   logger.NewPredictionLogger(log),
		logger:    log.WithField("component", "daily"),
		now:       time.Now,
	}
}

// WithSink persists recommendations of every run
func (s *DailyService) WithSink(sink RecommendationSink) *DailyService {
	s.sink = sink
	return s
}

// Sports returns the enabled sports in run order
func (s *DailyService) Sports() []h2h.Sport {
	out := make([]h2h.Sport, len(s.sports))
	copy(out, s.sports)
	return out
}

// DailyPredictions analyses today's fixtures for every enabled sport
func (s *DailyService) DailyPredictions(ctx context.Context) (*models.DailyReport, error) {
	report, _, err := s.Run(ctx, s.now(), s.sports)
	return report, err
}

// SportPredictions analyses today's fixtures for one enabled sport
func (s *DailyService) SportPredictions(ctx context.Context, sport h2h.Sport) (*models.DailyReport, error) {
	if !s.enabled(sport) {
		return nil, fmt.Errorf("%w: %s is not enabled", h2h.ErrUnknownSport, sport)
	}
	report, _, err := s.Run(ctx, s.now(), []h2h.Sport{sport})
	return report, err
}

// Run analyses the fixtures of the given date sequentially. A fixture that fails is
// logged and skipped; the run fails only when every sport's slate is unavailable.
func (s *DailyService) Run(ctx context.Context, date time.Time, sports []h2h.Sport) (*models.DailyReport, *RunMetrics, error) {
	start := s.now()
	run := NewRunMetrics(start)

	var (
		predictions []*models.Prediction
		lastErr     error
	)

	for _, sport := range sports {
		fixtures, err := s.fixtures.Collect(ctx, sport, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, run, ctx.Err()
			}
			lastErr = err
			run.RecordFailedSport()
			s.logger.WithError(err).WithField("sport", sport).Error("Failed to fetch fixtures")
			continue
		}

		if limit := s.limits[sport]; limit > 0 && len(fixtures) > limit {
			fixtures = fixtures[:limit]
		}
		run.RecordFixtures(len(fixtures))

		for i := range fixtures {
			pred, err := s.predictor.PredictFixture(ctx, &fixtures[i])
			if err != nil {
				if ctx.Err() != nil {
					return nil, run, ctx.Err()
				}
				run.RecordError()
				s.logger.WithError(err).WithFields(logrus.Fields{
					"sport": sport,
					"match": fixtures[i].MatchName(),
				}).Warn("Failed to analyse fixture")
				continue
			}
			run.RecordPrediction(pred.HasRecommendations(), pred.Status == models.PredictionSkipped, pred.IsSynthetic())
			predictions = append(predictions, pred)
		}
	}

	if len(sports) > 0 && run.FailedSports == len(sports) {
		return nil, run, fmt.Errorf("no fixtures available for %s: %w", date.Format("2006-01-02"), lastErr)
	}

	report := models.NewDailyReport(date, predictions)
	s.persist(ctx, report)

	run.Finish(s.now())
	metrics.RecordDailyRun(report.RecommendationsFound, run.Duration.Seconds(), s.now().Unix())
	s.predLog.LogDailyReport(report.Date, report.TotalAnalyzed, report.RecommendationsFound, report.Skipped,
		float64(run.Duration.Milliseconds()))
	s.logger.Debug(run.String())

	return report, run, nil
}

func (s *DailyService) persist(ctx context.Context, report *models.DailyReport) {
	if s.sink == nil || len(report.Recommendations) == 0 {
		return
	}
	if err := s.sink.InsertBatch(ctx, report.Recommendations); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithError(err).Warn("Failed to persist recommendations")
	}
}

func (s *DailyService) enabled(sport h2h.Sport) bool {
	for _, sp := range s.sports {
		if sp == sport {
			return true
		}
	}
	return false
}
