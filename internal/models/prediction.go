package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// PredictionStatus is the terminal state of one prediction request
type PredictionStatus string

const (
	PredictionSkipped         PredictionStatus = "SKIPPED"
	PredictionRecommended     PredictionStatus = "RECOMMENDED"
	PredictionNoQualifyingBet PredictionStatus = "NO_QUALIFYING_BET"
)

// ReasonInsufficientData marks a prediction skipped for lack of H2H history
const ReasonInsufficientData = "insufficient_data"

// BlendedEstimate holds the final probabilities after blending H2H and model estimates
type BlendedEstimate struct {
	HomeWin        float64 `json:"home_win"`
	AwayWin        float64 `json:"away_win"`
	Draw           float64 `json:"draw,omitempty"`
	Over           float64 `json:"over"`
	FirstHalfOver  float64 `json:"first_half_over"`
	BothTeamsScore float64 `json:"both_teams_score,omitempty"`
	PredictedTotal float64 `json:"predicted_total"`
	Line           float64 `json:"line"`
}

// Prediction represents the outcome of analysing one fixture
type Prediction struct {
	ID               uuid.UUID             `json:"id"`
	Fixture          Fixture               `json:"fixture"`
	Status           PredictionStatus      `json:"status"`
	Reason           string                `json:"reason,omitempty"`
	SampleSize       int                   `json:"sample_size"`
	Aggregate        h2h.H2HAggregate      `json:"aggregate"`
	Factors          h2h.ConfidenceFactors `json:"confidence_factors"`
	Blended          *BlendedEstimate      `json:"blended,omitempty"`
	Recommendations  []Recommendation      `json:"recommendations"`
	DataProvenance   h2h.Provenance        `json:"data_provenance"`
	SyntheticRecords int                   `json:"synthetic_records"`
	DroppedRecords   int                   `json:"dropped_records"`
	PredictedAt      time.Time             `json:"predicted_at"`
}

// HasRecommendations reports whether at least one bet qualified
func (p *Prediction) HasRecommendations() bool {
	return len(p.Recommendations) > 0
}

// Best returns the highest-confidence recommendation, or nil
func (p *Prediction) Best() *Recommendation {
	if len(p.Recommendations) == 0 {
		return nil
	}
	return &p.Recommendations[0]
}

// IsSynthetic reports whether any of the H2H records behind the prediction were generated
func (p *Prediction) IsSynthetic() bool {
	return p.SyntheticRecords > 0
}
