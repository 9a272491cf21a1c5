package service

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

// ModelEstimate is the model side of the blend for one fixture
type ModelEstimate struct {
	HomeWin        float64 `json:"home_win"`
	AwayWin        float64 `json:"away_win"`
	Draw           float64 `json:"draw"`
	Over           float64 `json:"over"`
	FirstHalfOver  float64 `json:"first_half_over"`
	BothTeamsScore float64 `json:"both_teams_score"`
	ExpectedTotal  float64 `json:"expected_total"`
}

// ModelEstimator supplies model probabilities for a fixture. line is the total the
// over probability is measured against.
type ModelEstimator interface {
	Estimate(ctx context.Context, fixture *models.Fixture, profile h2h.SportProfile, line float64) (ModelEstimate, error)
}

const (
	minStrength     = 0.45
	maxStrength     = 0.65
	maxStrengthDiff = 0.15
	minHomeWin      = 0.25
	maxHomeWin      = 0.85
	soccerDrawRate  = 0.26
	overEdgeRatio   = 0.06
	overLean        = 0.58
	underLean       = 0.45
	maxBothScore    = 0.8
)

// HeuristicEstimator derives model probabilities from team strength ratings, the
// sport's home advantage and scoring baseline. Ratings are stable per team name.
type HeuristicEstimator struct {
	strength func(team string) float64
}

// NewHeuristicEstimator creates an estimator with name-derived team ratings
func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{strength: nameStrength}
}

// NewHeuristicEstimatorWithRatings creates an estimator over a custom rating function
func NewHeuristicEstimatorWithRatings(strength func(team string) float64) *HeuristicEstimator {
	return &HeuristicEstimator{strength: strength}
}

// Estimate implements ModelEstimator
func (e *HeuristicEstimator) Estimate(ctx context.Context, fixture *models.Fixture, profile h2h.SportProfile, line float64) (ModelEstimate, error) {
	if err := ctx.Err(); err != nil {
		return ModelEstimate{}, err
	}

	hs := e.strength(fixture.HomeTeam)
	as := e.strength(fixture.AwayTeam)

	diff := math.Max(-maxStrengthDiff, math.Min(maxStrengthDiff, hs-as))
	home := math.Max(minHomeWin, math.Min(maxHomeWin, 0.5+profile.HomeAdvantage+diff))

	est := ModelEstimate{
		ExpectedTotal: profile.BaseTotal + (hs+as)*profile.TotalSpread,
	}

	if profile.TiePermitted {
		est.Draw = soccerDrawRate
		est.HomeWin = home * (1 - soccerDrawRate)
		est.AwayWin = 1 - soccerDrawRate - est.HomeWin
		est.BothTeamsScore = math.Min(est.ExpectedTotal/3.5, maxBothScore)
	} else {
		est.HomeWin = home
		est.AwayWin = 1 - home
	}

	if line <= 0 {
		line = profile.OverThreshold
	}
	est.Over = overProbability(est.ExpectedTotal, line)
	est.FirstHalfOver = overProbability(est.ExpectedTotal*profile.FirstHalfFraction, line*profile.FirstHalfFraction)

	return est, nil
}

// overProbability leans over only when the expected total clears the line by a margin
func overProbability(expected, line float64) float64 {
	if line <= 0 {
		return 0.5
	}
	if (expected-line)/line > overEdgeRatio {
		return overLean
	}
	return underLean
}

// nameStrength maps a team name onto [minStrength, maxStrength]
func nameStrength(team string) float64 {
	h := fnv.New32a()
	h.Write([]byte(datasource.NormalizeTeamName(team)))
	frac := float64(h.Sum32()%1000) / 999
	return minStrength + frac*(maxStrength-minStrength)
}
