package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// Recommendation represents an emitted bet suggestion for a fixture
type Recommendation struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	PredictionID   uuid.UUID       `db:"prediction_id" json:"prediction_id"`
	Sport          h2h.Sport       `db:"sport" json:"sport"`
	Match          string          `db:"match" json:"match"`
	HomeTeam       string          `db:"home_team" json:"home_team"`
	AwayTeam       string          `db:"away_team" json:"away_team"`
	StartTime      time.Time       `db:"start_time" json:"start_time"`
	BetType        h2h.BetType     `db:"bet_type" json:"bet_type"`
	Selection      string          `db:"selection" json:"selection"`
	Probability    float64         `db:"probability" json:"probability"`
	Confidence     float64         `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	Odds           decimal.Decimal `db:"odds" json:"odds"`
	Quality        string          `db:"quality" json:"quality"`
	StakeAdvice    string          `db:"stake_advice" json:"stake_advice"`
	Reasoning      string          `db:"reasoning" json:"reasoning"`
	H2HMatches     int             `db:"h2h_matches" json:"h2h_matches"`
	DataProvenance h2h.Provenance  `db:"data_provenance" json:"data_provenance"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// NewRecommendation attaches fixture context and odds to a selected bet
func NewRecommendation(pred *Prediction, rec h2h.Recommendation, odds decimal.Decimal) Recommendation {
	return Recommendation{
		ID:             uuid.New(),
		PredictionID:   pred.ID,
		Sport:          pred.Fixture.Sport,
		Match:          pred.Fixture.MatchName(),
		HomeTeam:       pred.Fixture.HomeTeam,
		AwayTeam:       pred.Fixture.AwayTeam,
		StartTime:      pred.Fixture.StartTime,
		BetType:        rec.BetType,
		Selection:      rec.Selection,
		Probability:    rec.Probability,
		Confidence:     rec.Confidence,
		Odds:           odds,
		Quality:        QualityFor(rec.Confidence),
		StakeAdvice:    StakeAdviceFor(rec.Confidence),
		Reasoning:      rec.Reasoning,
		H2HMatches:     pred.SampleSize,
		DataProvenance: pred.DataProvenance,
		CreatedAt:      pred.PredictedAt,
	}
}

// MeetsThreshold checks if the confidence meets the given threshold
func (r *Recommendation) MeetsThreshold(threshold float64) bool {
	return r.Confidence >= threshold
}

// ExpectedValue returns probability * odds - 1 per unit staked
func (r *Recommendation) ExpectedValue() float64 {
	if r.Odds.IsZero() {
		return 0
	}
	return r.Probability*r.Odds.InexactFloat64() - 1
}

// QualityFor labels a confidence level
func QualityFor(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return "EXCELLENT - Strong bet"
	case confidence >= 0.80:
		return "VERY GOOD - Confident bet"
	case confidence >= h2h.DefaultConfidenceThreshold:
		return "GOOD - Solid bet"
	default:
		return "LOW - Not recommended"
	}
}

// StakeAdviceFor suggests a bankroll fraction for a confidence level
func StakeAdviceFor(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return "Medium-high stake (3-4% of bankroll)"
	case confidence >= 0.80:
		return "Medium stake (2-3% of bankroll)"
	case confidence >= h2h.DefaultConfidenceThreshold:
		return "Small stake (1-2% of bankroll)"
	default:
		return "No stake"
	}
}
