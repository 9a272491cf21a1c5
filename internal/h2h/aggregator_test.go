package h2h

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(t *testing.T, profile SportProfile, scores ...[2]int) []MatchRecord {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]MatchRecord, 0, len(scores))
	for i, s := range scores {
		rec, err := NewMatchRecord(s[0], s[1], base.AddDate(0, 0, -30*i), profile)
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

// TestAggregateSoccerScenario tests the five-match soccer example
func TestAggregateSoccerScenario(t *testing.T) {
	soccer := mustProfile(t, SportSoccer)
	recs := records(t, soccer, [2]int{3, 1}, [2]int{2, 1}, [2]int{1, 1}, [2]int{4, 1}, [2]int{1, 2})

	agg := Aggregate(recs, soccer)

	assert.Equal(t, 5, agg.SampleSize)
	assert.Equal(t, 4, agg.OverCount)
	assert.InDelta(t, 0.8, agg.OverRate, 1e-9)
	assert.InDelta(t, 3.4, agg.AverageTotal, 1e-9)
	assert.InDelta(t, 1.7, agg.AverageFirstHalfTotal, 1e-9)
	assert.True(t, agg.Sufficient())

	assert.Equal(t, 3, agg.HomeWins)
	assert.Equal(t, 1, agg.AwayWins)
	assert.Equal(t, 1, agg.Ties)
	assert.InDelta(t, 1.0, agg.HomeWinRate+agg.AwayWinRate+agg.TieRate, 1e-9)
	assert.Equal(t, ProvenanceReal, agg.Provenance)

	conf := Score(agg.SampleSize, agg.OverRate, soccer.Confidence)
	// 0.5 + 5*0.05 = 0.75 with no extremity penalty
	assert.InDelta(t, 0.75, conf, 1e-9)
}

// TestAggregateEmpty tests the zero aggregate
func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil, mustProfile(t, SportNBA))
	assert.Equal(t, 0, agg.SampleSize)
	assert.False(t, agg.Sufficient())
	assert.Equal(t, ProvenanceNone, agg.Provenance)
	assert.Equal(t, TrendInsufficient, agg.Trend)
	assert.Zero(t, agg.OverRate)
}

// TestAggregateSufficiencyBoundary tests the two versus three record boundary
func TestAggregateSufficiencyBoundary(t *testing.T) {
	nfl := mustProfile(t, SportNFL)

	two := Aggregate(records(t, nfl, [2]int{24, 17}, [2]int{31, 28}), nfl)
	assert.Equal(t, 2, two.SampleSize)
	assert.False(t, two.Sufficient())
	assert.Equal(t, TrendInsufficient, two.Trend)

	three := Aggregate(records(t, nfl, [2]int{24, 17}, [2]int{31, 28}, [2]int{10, 13}), nfl)
	assert.Equal(t, 3, three.SampleSize)
	assert.True(t, three.Sufficient())
	assert.InDelta(t, 2.0/3.0, three.HomeWinRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, three.OverRate, 1e-9)
}

// TestAggregateTieAnomaly tests ties in a sport that does not permit them
func TestAggregateTieAnomaly(t *testing.T) {
	nfl := mustProfile(t, SportNFL)
	agg := Aggregate(records(t, nfl, [2]int{20, 20}, [2]int{27, 10}, [2]int{14, 21}, [2]int{30, 3}), nfl)

	assert.Equal(t, 1, agg.Anomalies)
	assert.Equal(t, 0, agg.Ties)
	assert.Zero(t, agg.TieRate)
	assert.InDelta(t, 2.0/3.0, agg.HomeWinRate, 1e-9)
	assert.InDelta(t, 1.0, agg.HomeWinRate+agg.AwayWinRate, 1e-9)

	allTies := Aggregate(records(t, nfl, [2]int{7, 7}, [2]int{3, 3}, [2]int{10, 10}), nfl)
	assert.Equal(t, 3, allTies.Anomalies)
	assert.InDelta(t, 0.5, allTies.HomeWinRate, 1e-9)
	assert.InDelta(t, 0.5, allTies.AwayWinRate, 1e-9)
}

// TestAggregateRatesSumToOne tests the win-rate invariant over random inputs
func TestAggregateRatesSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, sport := range Sports() {
		profile := mustProfile(t, sport)
		for i := 0; i < 200; i++ {
			n := rng.Intn(10)
			scores := make([][2]int, n)
			for j := range scores {
				scores[j] = [2]int{rng.Intn(5), rng.Intn(5)}
			}
			agg := Aggregate(records(t, profile, scores...), profile)
			if n == 0 {
				continue
			}
			sum := agg.HomeWinRate + agg.AwayWinRate
			if profile.TiePermitted {
				sum += agg.TieRate
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
			for _, r := range []float64{agg.HomeWinRate, agg.AwayWinRate, agg.TieRate, agg.OverRate, agg.FirstHalfOverRate, agg.BothScoredRate} {
				assert.GreaterOrEqual(t, r, 0.0)
				assert.LessOrEqual(t, r, 1.0)
			}
		}
	}
}

// TestAggregateIdempotent tests that aggregation is pure
func TestAggregateIdempotent(t *testing.T) {
	nba := mustProfile(t, SportNBA)
	recs := records(t, nba, [2]int{112, 108}, [2]int{99, 120}, [2]int{118, 115}, [2]int{101, 97}, [2]int{125, 110}, [2]int{104, 106})
	snapshot := make([]MatchRecord, len(recs))
	copy(snapshot, recs)

	first := Aggregate(recs, nba)
	second := Aggregate(recs, nba)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, recs)
}

// TestAggregateProvenance tests real, synthetic and mixed tagging
func TestAggregateProvenance(t *testing.T) {
	soccer := mustProfile(t, SportSoccer)
	recs := records(t, soccer, [2]int{1, 0}, [2]int{2, 2}, [2]int{0, 1})

	assert.Equal(t, ProvenanceReal, Aggregate(recs, soccer).Provenance)

	recs[1].Provenance = ProvenanceSynthetic
	mixed := Aggregate(recs, soccer)
	assert.Equal(t, ProvenanceMixed, mixed.Provenance)
	assert.Equal(t, 1, mixed.SyntheticCount)

	for i := range recs {
		recs[i].Provenance = ProvenanceSynthetic
	}
	assert.Equal(t, ProvenanceSynthetic, Aggregate(recs, soccer).Provenance)
}

// TestAggregateTrendUsesMostRecent tests the trend over the latest five records
func TestAggregateTrendUsesMostRecent(t *testing.T) {
	soccer := mustProfile(t, SportSoccer)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	var recs []MatchRecord
	// six old goalless games followed by five recent high-scoring ones, oldest first
	for i := 0; i < 6; i++ {
		rec, err := NewMatchRecord(0, 0, base.AddDate(-2, 0, i), soccer)
		require.NoError(t, err)
		recs = append(recs, rec)
	}
	for i := 0; i < 5; i++ {
		rec, err := NewMatchRecord(3, 2, base.AddDate(0, 0, i), soccer)
		require.NoError(t, err)
		recs = append(recs, rec)
	}

	agg := Aggregate(recs, soccer)
	assert.Equal(t, TrendHigh, agg.Trend)
	assert.Equal(t, 0, recs[0].TotalPoints, "input order must be preserved")

	low := Aggregate(records(t, soccer, [2]int{0, 0}, [2]int{1, 0}, [2]int{0, 1}), soccer)
	assert.Equal(t, TrendLow, low.Trend)
}

// TestAggregatePattern tests the descriptive matchup pattern
func TestAggregatePattern(t *testing.T) {
	nfl := mustProfile(t, SportNFL)
	agg := Aggregate(records(t, nfl, [2]int{35, 24}, [2]int{31, 27}, [2]int{28, 30}, [2]int{38, 21}), nfl)
	assert.Contains(t, agg.Pattern, "Home side dominates")
	assert.Contains(t, agg.Pattern, "OVER pattern")

	agg = Aggregate(records(t, nfl, [2]int{20, 17}, [2]int{10, 13}, [2]int{14, 21}, [2]int{17, 6}), nfl)
	assert.Contains(t, agg.Pattern, "Competitive")
	assert.Contains(t, agg.Pattern, "UNDER pattern")
}
