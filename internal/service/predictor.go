package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/logger"
	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/models"
)

// ReasonUpstreamUnavailable marks a prediction skipped because no H2H source answered
// and synthetic fallback is disabled
const ReasonUpstreamUnavailable = "upstream_unavailable"

// H2HSource supplies raw head-to-head results for a fixture
type H2HSource interface {
	Collect(ctx context.Context, fixture *models.Fixture) (*datasource.H2HResult, error)
}

// Predictor runs the H2H pipeline for single fixtures
type Predictor struct {
	h2hSource H2HSource
	estimator ModelEstimator
	profiles  map[h2h.Sport]h2h.SportProfile
	blenders  map[h2h.Sport]*h2h.Blender
	selector  *h2h.Selector
	audit     *logger.AuditLogger
	predLog   *logger.PredictionLogger
	logger    *logrus.Entry
	now       func() time.Time
}

// NewPredictor creates a predictor over the given sport profiles. Every profile must
// carry valid blend weights.
func NewPredictor(source H2HSource, estimator ModelEstimator, profiles map[h2h.Sport]h2h.SportProfile, threshold float64, log *logrus.Logger) (*Predictor, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if estimator == nil {
		estimator = NewHeuristicEstimator()
	}

	blenders := make(map[h2h.Sport]*h2h.Blender, len(profiles))
	for sport, profile := range profiles {
		b, err := h2h.NewProfileBlender(profile)
		if err != nil {
			return nil, fmt.Errorf("sport %s: %w", sport, err)
		}
		blenders[sport] = b
	}

	selector, err := h2h.NewSelector(threshold)
	if err != nil {
		return nil, fmt.Errorf("confidence threshold: %w", err)
	}

	return &Predictor{
		h2hSource: source,
		estimator: estimator,
		profiles:  profiles,
		blenders:  blenders,
		selector:  selector,
		audit:     logger.NewAuditLogger(log),
		predLog:   logger.NewPredictionLogger(log),
		logger:    log.WithField("component", "predictor"),
		now:       time.Now,
	}, nil
}

// Threshold returns the confidence threshold applied to candidates
func (p *Predictor) Threshold() float64 {
	return p.selector.Threshold()
}

// Profile returns the configured profile of a sport
func (p *Predictor) Profile(sport h2h.Sport) (h2h.SportProfile, bool) {
	profile, ok := p.profiles[sport]
	return profile, ok
}

// PredictFixture analyses one fixture. Insufficient history is reported through the
// prediction status, never as an error.
func (p *Predictor) PredictFixture(ctx context.Context, fixture *models.Fixture) (*models.Prediction, error) {
	start := p.now()

	profile, ok := p.profiles[fixture.Sport]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not enabled", h2h.ErrUnknownSport, fixture.Sport)
	}

	pred := &models.Prediction{
		ID:              uuid.New(),
		Fixture:         *fixture,
		Recommendations: []models.Recommendation{},
		DataProvenance:  h2h.ProvenanceNone,
		PredictedAt:     start.UTC(),
	}

	collected, err := p.h2hSource.Collect(ctx, fixture)
	if err != nil {
		if errors.Is(err, datasource.ErrUpstreamUnavailable) && ctx.Err() == nil {
			p.logger.WithError(err).WithField("match", fixture.MatchName()).Warn("No H2H source available")
			return p.skip(pred, ReasonUpstreamUnavailable, start), nil
		}
		return nil, fmt.Errorf("collect h2h for %s: %w", fixture.MatchName(), err)
	}

	records, dropped := h2h.NormalizeAll(collected.Raw, profile)
	if len(dropped) > 0 {
		pred.DroppedRecords = len(dropped)
		p.audit.LogDroppedRecords(string(fixture.Sport), fixture.MatchName(), len(dropped), dropped[0])
		metrics.RecordDroppedRecords(string(fixture.Sport), len(dropped))
	}

	agg := h2h.Aggregate(records, profile)
	pred.Aggregate = agg
	pred.SampleSize = agg.SampleSize
	pred.DataProvenance = agg.Provenance
	pred.SyntheticRecords = agg.SyntheticCount

	if !agg.Sufficient() {
		return p.skip(pred, models.ReasonInsufficientData, start), nil
	}

	pred.Factors = h2h.Factors(agg, profile)

	line, marketLine := fixture.Line.TotalPoints()
	if !marketLine {
		line = profile.OverThreshold
	}
	est, err := p.estimator.Estimate(ctx, fixture, profile, line)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", fixture.MatchName(), err)
	}

	blended := p.blend(profile, agg, est)
	if marketLine {
		blended.Line = line
	} else {
		blended.Line = blended.PredictedTotal
	}
	pred.Blended = &blended

	candidates, odds := buildCandidates(fixture, profile, agg, pred.Factors, blended)
	selected := p.selector.Select(candidates)

	pred.Status = models.PredictionNoQualifyingBet
	if len(selected) > 0 {
		pred.Status = models.PredictionRecommended
	}
	for _, rec := range selected {
		r := models.NewRecommendation(pred, rec, odds[candidateKey(rec.BetType, rec.Selection)])
		pred.Recommendations = append(pred.Recommendations, r)

		p.audit.LogRecommendation(pred.ID.String(), string(fixture.Sport), fixture.MatchName(),
			string(r.BetType), r.Selection, r.Confidence, string(r.DataProvenance))
		metrics.RecordRecommendation(string(fixture.Sport), string(r.BetType), r.Confidence)
	}

	p.finish(pred, start)
	return pred, nil
}

// PredictMatch analyses an ad-hoc fixture built from team names
func (p *Predictor) PredictMatch(ctx context.Context, sport h2h.Sport, home, away string) (*models.Prediction, error) {
	fixture, err := models.NewFixture(sport, home, away, time.Time{})
	if err != nil {
		return nil, err
	}
	return p.PredictFixture(ctx, fixture)
}

func (p *Predictor) blend(profile h2h.SportProfile, agg h2h.H2HAggregate, est ModelEstimate) models.BlendedEstimate {
	b := p.blenders[profile.Sport]
	out := models.BlendedEstimate{
		HomeWin:        b.Blend(agg.HomeWinRate, est.HomeWin),
		AwayWin:        b.Blend(agg.AwayWinRate, est.AwayWin),
		Over:           b.Blend(agg.OverRate, est.Over),
		FirstHalfOver:  b.Blend(agg.FirstHalfOverRate, est.FirstHalfOver),
		PredictedTotal: b.BlendValue(agg.AverageTotal, est.ExpectedTotal),
	}
	if profile.TiePermitted {
		out.Draw = b.Blend(agg.TieRate, est.Draw)
		out.BothTeamsScore = b.Blend(agg.BothScoredRate, est.BothTeamsScore)
	}
	return out
}

func (p *Predictor) skip(pred *models.Prediction, reason string, start time.Time) *models.Prediction {
	pred.Status = models.PredictionSkipped
	pred.Reason = reason
	p.audit.LogSkipped(pred.ID.String(), string(pred.Fixture.Sport), pred.Fixture.MatchName(), reason, pred.SampleSize)
	p.finish(pred, start)
	return pred
}

func (p *Predictor) finish(pred *models.Prediction, start time.Time) {
	elapsed := p.now().Sub(start)
	metrics.RecordPrediction(string(pred.Fixture.Sport), string(pred.Status), elapsed.Seconds())
	p.predLog.LogPrediction(string(pred.Fixture.Sport), pred.Fixture.MatchName(), string(pred.Status),
		pred.SampleSize, len(pred.Recommendations), float64(elapsed.Microseconds())/1000)
}

func candidateKey(betType h2h.BetType, selection string) string {
	return string(betType) + "|" + selection
}

// candidateSet accumulates candidates together with the price of each selection
type candidateSet struct {
	fixture     *models.Fixture
	defaultOdds decimal.Decimal
	candidates  []h2h.Candidate
	odds        map[string]decimal.Decimal
}

func (s *candidateSet) add(c h2h.Candidate, price *decimal.Decimal) {
	s.candidates = append(s.candidates, c)
	if price != nil && price.GreaterThan(decimal.NewFromInt(1)) {
		s.odds[candidateKey(c.BetType, c.Selection)] = *price
		return
	}
	s.odds[candidateKey(c.BetType, c.Selection)] = s.defaultOdds
}

func (s *candidateSet) line() *models.BettingLine {
	if s.fixture.Line == nil {
		return &models.BettingLine{}
	}
	return s.fixture.Line
}

// buildCandidates turns the blended estimate into one candidate per bet type of the
// sport. Confidence is the lower of the chosen side's probability and the scorer output.
func buildCandidates(fixture *models.Fixture, profile h2h.SportProfile, agg h2h.H2HAggregate, factors h2h.ConfidenceFactors, blended models.BlendedEstimate) ([]h2h.Candidate, map[string]decimal.Decimal) {
	set := &candidateSet{
		fixture:     fixture,
		defaultOdds: decimal.NewFromFloat(profile.DefaultOdds),
		odds:        make(map[string]decimal.Decimal),
	}
	line := set.line()
	n := agg.SampleSize

	for _, bt := range profile.BetTypes() {
		switch bt {
		case h2h.BetOverUnder:
			side, prob, price := "OVER", blended.Over, line.OverOdds
			if blended.Over < 0.5 {
				side, prob, price = "UNDER", 1-blended.Over, line.UnderOdds
			}
			reasoning := fmt.Sprintf("%d/%d H2H meetings went over %s; predicted total %.1f",
				agg.OverCount, n, formatLine(agg.OverThreshold), blended.PredictedTotal)
			if _, posted := fixture.Line.TotalPoints(); !posted {
				// the label shows the predicted total but the probability is against the sport threshold
				reasoning += fmt.Sprintf("; no market line; probability measured against %s", formatLine(profile.OverThreshold))
			}
			set.add(h2h.Candidate{
				BetType:     bt,
				Selection:   fmt.Sprintf("%s %s", side, formatLine(blended.Line)),
				Probability: prob,
				Confidence:  minConfidence(prob, factors.OverConfidence),
				Reasoning:   reasoning,
			}, price)

		case h2h.BetMoneyline:
			team, side, prob, price := fixture.HomeTeam, "HOME WIN", blended.HomeWin, line.HomeOdds
			if blended.HomeWin < 0.5 {
				team, side, prob, price = fixture.AwayTeam, "AWAY WIN", 1-blended.HomeWin, line.AwayOdds
			}
			set.add(h2h.Candidate{
				BetType:     bt,
				Selection:   fmt.Sprintf("%s (%s)", team, side),
				Probability: prob,
				Confidence:  minConfidence(prob, factors.WinConfidence),
				Reasoning:   fmt.Sprintf("%s won %d of %d H2H meetings", fixture.HomeTeam, agg.HomeWins, n),
			}, price)

		case h2h.BetFirstHalfOver:
			fhLine := blended.Line * profile.FirstHalfFraction
			side, prob := "FIRST HALF OVER", blended.FirstHalfOver
			if blended.FirstHalfOver < 0.5 {
				side, prob = "FIRST HALF UNDER", 1-blended.FirstHalfOver
			}
			set.add(h2h.Candidate{
				BetType:     bt,
				Selection:   fmt.Sprintf("%s %s", side, formatLine(fhLine)),
				Probability: prob,
				Confidence:  minConfidence(prob, factors.FirstHalfConfidence),
				Reasoning: fmt.Sprintf("%d/%d H2H first halves went over %s",
					agg.FirstHalfOverCount, n, formatLine(profile.FirstHalfThreshold())),
			}, nil)

		case h2h.BetMatchResult:
			sel, prob, price := "HOME WIN", blended.HomeWin, line.HomeOdds
			if blended.Draw > prob {
				sel, prob, price = "DRAW", blended.Draw, line.DrawOdds
			}
			if blended.AwayWin > prob {
				sel, prob, price = "AWAY WIN", blended.AwayWin, line.AwayOdds
			}
			set.add(h2h.Candidate{
				BetType:     bt,
				Selection:   sel,
				Probability: prob,
				Confidence:  minConfidence(prob, factors.WinConfidence),
				Reasoning: fmt.Sprintf("H2H record %d-%d-%d (home-draw-away)",
					agg.HomeWins, agg.Ties, agg.AwayWins),
			}, price)

		case h2h.BetBothTeamsScore:
			sel, prob := "BTTS YES", blended.BothTeamsScore
			if blended.BothTeamsScore < 0.5 {
				sel, prob = "BTTS NO", 1-blended.BothTeamsScore
			}
			set.add(h2h.Candidate{
				BetType:     bt,
				Selection:   sel,
				Probability: prob,
				Confidence:  minConfidence(prob, h2h.Score(n, agg.BothScoredRate, profile.Confidence)),
				Reasoning:   fmt.Sprintf("Both sides scored in %.0f%% of H2H meetings", agg.BothScoredRate*100),
			}, nil)
		}
	}

	return set.candidates, set.odds
}

func minConfidence(probability, scorer float64) float64 {
	if probability < scorer {
		return probability
	}
	return scorer
}

func formatLine(v float64) string {
	return decimal.NewFromFloat(v).Round(1).String()
}
