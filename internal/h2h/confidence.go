package h2h

import "math"

// ConfidenceFactors reports the scorer output for each H2H statistic
type ConfidenceFactors struct {
	DataQuality         float64 `json:"data_quality"`
	WinConfidence       float64 `json:"win_confidence"`
	OverConfidence      float64 `json:"over_confidence"`
	FirstHalfConfidence float64 `json:"first_half_confidence"`
}

// DataConfidence grows linearly with the sample size up to the cap
func DataConfidence(sampleSize int, params ConfidenceParams) float64 {
	if sampleSize < 0 {
		sampleSize = 0
	}
	return clamp01(math.Min(params.Cap, params.Base+float64(sampleSize)*params.K))
}

// Score maps sample size and pattern extremity to a confidence in [0,1].
// Rates within ExtremityThreshold of a coin flip are penalized.
func Score(sampleSize int, rate float64, params ConfidenceParams) float64 {
	penalty := params.Penalty
	if penalty == 0 {
		penalty = 0.7
	}
	if math.Abs(clamp01(rate)-0.5) > params.ExtremityThreshold {
		penalty = 1.0
	}
	return clamp01(DataConfidence(sampleSize, params) * penalty)
}

// Factors scores every rate of the aggregate with the sport's parameters
func Factors(agg H2HAggregate, profile SportProfile) ConfidenceFactors {
	winRate := agg.HomeWinRate
	if profile.TiePermitted {
		winRate = math.Max(agg.HomeWinRate, math.Max(agg.AwayWinRate, agg.TieRate))
	}
	return ConfidenceFactors{
		DataQuality:         DataConfidence(agg.SampleSize, profile.Confidence),
		WinConfidence:       Score(agg.SampleSize, winRate, profile.Confidence),
		OverConfidence:      Score(agg.SampleSize, agg.OverRate, profile.Confidence),
		FirstHalfConfidence: Score(agg.SampleSize, agg.FirstHalfOverRate, profile.Confidence),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
