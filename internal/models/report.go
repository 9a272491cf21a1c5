package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// maxAccumulatorLegs caps the number of selections combined into the accumulator
const maxAccumulatorLegs = 3

// SportSummary counts prediction outcomes for one sport
type SportSummary struct {
	Analyzed    int `json:"analyzed"`
	Recommended int `json:"recommended"`
	Skipped     int `json:"skipped"`
	Synthetic   int `json:"synthetic"`
}

// DailyReport aggregates every prediction computed for one day
type DailyReport struct {
	Date                 string                     `json:"date"`
	GeneratedAt          time.Time                  `json:"generated_at"`
	TotalAnalyzed        int                        `json:"total_matches_analyzed"`
	RecommendationsFound int                        `json:"high_confidence_bets_found"`
	Skipped              int                        `json:"skipped"`
	SyntheticPredictions int                        `json:"synthetic_predictions"`
	Recommendations      []Recommendation           `json:"recommendations"`
	BestBet              *Recommendation            `json:"best_single_bet"`
	AccumulatorOdds      *decimal.Decimal           `json:"accumulator_odds"`
	Strategy             string                     `json:"strategy_recommendation"`
	Sports               map[h2h.Sport]SportSummary `json:"sports"`
	Predictions          []*Prediction              `json:"predictions,omitempty"`
}

// NewDailyReport builds the report for a day from its predictions
func NewDailyReport(date time.Time, predictions []*Prediction) *DailyReport {
	report := &DailyReport{
		Date:            date.Format("2006-01-02"),
		GeneratedAt:     time.Now().UTC(),
		Recommendations: []Recommendation{},
		Sports:          make(map[h2h.Sport]SportSummary),
		Predictions:     predictions,
	}

	var legs []Recommendation
	for _, p := range predictions {
		if p == nil {
			continue
		}
		summary := report.Sports[p.Fixture.Sport]
		summary.Analyzed++
		report.TotalAnalyzed++

		if p.IsSynthetic() {
			summary.Synthetic++
			report.SyntheticPredictions++
		}

		switch p.Status {
		case PredictionSkipped:
			summary.Skipped++
			report.Skipped++
		case PredictionRecommended:
			summary.Recommended++
			report.Recommendations = append(report.Recommendations, p.Recommendations...)
			if best := p.Best(); best != nil {
				legs = append(legs, *best)
			}
		}
		report.Sports[p.Fixture.Sport] = summary
	}

	sortByConfidence(report.Recommendations)
	report.RecommendationsFound = len(report.Recommendations)
	if len(report.Recommendations) > 0 {
		best := report.Recommendations[0]
		report.BestBet = &best
	}

	sortByConfidence(legs)
	if len(legs) > maxAccumulatorLegs {
		legs = legs[:maxAccumulatorLegs]
	}
	if len(legs) >= 2 {
		odds := make([]decimal.Decimal, 0, len(legs))
		for _, l := range legs {
			odds = append(odds, l.Odds)
		}
		acc := AccumulatorOdds(odds)
		report.AccumulatorOdds = &acc
	}

	report.Strategy = strategyFor(len(report.Recommendations), len(legs))
	return report
}

func sortByConfidence(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
}

func strategyFor(recommendations, legs int) string {
	switch {
	case recommendations == 0:
		return "No qualifying bets today"
	case legs >= 2:
		return fmt.Sprintf("Singles on high-confidence bets or a %d-leg accumulator", legs)
	default:
		return "Single bet only - high confidence H2H pattern"
	}
}
