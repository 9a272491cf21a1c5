package h2h

import (
	"fmt"
	"sort"
)

// trendWindow is the number of most recent records used for the scoring trend
const trendWindow = 5

// H2HAggregate summarizes a set of match records for one pairing
type H2HAggregate struct {
	SampleSize            int        `json:"sample_size"`
	HomeWins              int        `json:"home_wins"`
	AwayWins              int        `json:"away_wins"`
	Ties                  int        `json:"ties"`
	Anomalies             int        `json:"anomalies"`
	HomeWinRate           float64    `json:"home_win_rate"`
	AwayWinRate           float64    `json:"away_win_rate"`
	TieRate               float64    `json:"tie_rate"`
	OverCount             int        `json:"over_count"`
	OverRate              float64    `json:"over_rate"`
	FirstHalfOverCount    int        `json:"first_half_over_count"`
	FirstHalfOverRate     float64    `json:"first_half_over_rate"`
	BothScoredRate        float64    `json:"both_scored_rate"`
	AverageTotal          float64    `json:"average_total"`
	AverageFirstHalfTotal float64    `json:"average_first_half_total"`
	OverThreshold         float64    `json:"over_threshold"`
	Provenance            Provenance `json:"provenance"`
	SyntheticCount        int        `json:"synthetic_count"`
	Trend                 string     `json:"trend"`
	Pattern               string     `json:"pattern"`
}

// Sufficient reports whether the aggregate has enough records to predict from
func (a H2HAggregate) Sufficient() bool {
	return a.SampleSize >= MinSampleSize
}

// Aggregate reduces match records into an H2HAggregate. Ties in a sport that
// does not permit them are counted as anomalies and excluded from the win rates.
func Aggregate(records []MatchRecord, profile SportProfile) H2HAggregate {
	agg := H2HAggregate{
		OverThreshold: profile.OverThreshold,
		Provenance:    ProvenanceNone,
		Trend:         TrendInsufficient,
	}
	if len(records) == 0 {
		return agg
	}

	n := len(records)
	agg.SampleSize = n

	var totalSum, firstHalfSum float64
	var bothScored, realCount int
	firstHalfLine := profile.FirstHalfThreshold()

	for _, rec := range records {
		switch rec.Winner {
		case WinnerHome:
			agg.HomeWins++
		case WinnerAway:
			agg.AwayWins++
		default:
			if profile.TiePermitted {
				agg.Ties++
			} else {
				agg.Anomalies++
			}
		}

		if float64(rec.TotalPoints) > profile.OverThreshold {
			agg.OverCount++
		}
		if rec.FirstHalfTotal > firstHalfLine {
			agg.FirstHalfOverCount++
		}
		if rec.BothScored() {
			bothScored++
		}

		totalSum += float64(rec.TotalPoints)
		firstHalfSum += rec.FirstHalfTotal

		if rec.Provenance == ProvenanceSynthetic {
			agg.SyntheticCount++
		} else {
			realCount++
		}
	}

	size := float64(n)
	if profile.TiePermitted {
		agg.HomeWinRate = float64(agg.HomeWins) / size
		agg.AwayWinRate = float64(agg.AwayWins) / size
		agg.TieRate = float64(agg.Ties) / size
	} else {
		decided := agg.HomeWins + agg.AwayWins
		if decided > 0 {
			agg.HomeWinRate = float64(agg.HomeWins) / float64(decided)
			agg.AwayWinRate = 1 - agg.HomeWinRate
		} else {
			agg.HomeWinRate, agg.AwayWinRate = 0.5, 0.5
		}
	}

	agg.OverRate = float64(agg.OverCount) / size
	agg.FirstHalfOverRate = float64(agg.FirstHalfOverCount) / size
	agg.BothScoredRate = float64(bothScored) / size
	agg.AverageTotal = totalSum / size
	agg.AverageFirstHalfTotal = firstHalfSum / size

	switch {
	case agg.SyntheticCount == 0:
		agg.Provenance = ProvenanceReal
	case realCount == 0:
		agg.Provenance = ProvenanceSynthetic
	default:
		agg.Provenance = ProvenanceMixed
	}

	agg.Trend = scoringTrend(records, profile)
	agg.Pattern = describePattern(agg, profile)

	return agg
}

// Scoring trend labels
const (
	TrendHigh         = "high_scoring"
	TrendModerate     = "moderate_scoring"
	TrendLow          = "low_scoring"
	TrendInsufficient = "insufficient_data"
)

// scoringTrend classifies the average total of the most recent records
// relative to the over line
func scoringTrend(records []MatchRecord, profile SportProfile) string {
	if len(records) < MinSampleSize {
		return TrendInsufficient
	}

	recent := make([]MatchRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > trendWindow {
		recent = recent[:trendWindow]
	}

	var sum float64
	for _, rec := range recent {
		sum += float64(rec.TotalPoints)
	}
	avg := sum / float64(len(recent))

	// Soccer uses 3.0 / 2.0 around a 2.5 line; the same +/-20% band is applied everywhere.
	switch {
	case avg > profile.OverThreshold*1.2:
		return TrendHigh
	case avg > profile.OverThreshold*0.8:
		return TrendModerate
	default:
		return TrendLow
	}
}

func describePattern(agg H2HAggregate, profile SportProfile) string {
	var winner string
	switch {
	case agg.HomeWinRate >= 0.7:
		winner = fmt.Sprintf("Home side dominates this %s matchup", profile.DisplayName)
	case agg.AwayWinRate >= 0.7:
		winner = fmt.Sprintf("Away side historically strong in this %s matchup", profile.DisplayName)
	case profile.TiePermitted && agg.TieRate >= 0.5:
		winner = fmt.Sprintf("Draw-heavy %s series", profile.DisplayName)
	default:
		winner = fmt.Sprintf("Competitive %s series, no clear dominant side", profile.DisplayName)
	}

	var totals string
	switch {
	case agg.OverRate >= 0.7:
		totals = "High-scoring history, OVER pattern"
	case agg.OverRate <= 0.3:
		totals = "Low-scoring history, UNDER pattern"
	default:
		totals = "Mixed scoring pattern"
	}

	return winner + ". " + totals
}
