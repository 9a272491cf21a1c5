package h2h

import (
	"fmt"
	"math"
	"sort"
)

// BetType is a recommendation market
type BetType string

const (
	BetOverUnder      BetType = "OVER_UNDER"
	BetMoneyline      BetType = "MONEYLINE"
	BetFirstHalfOver  BetType = "FIRST_HALF_OVER"
	BetMatchResult    BetType = "MATCH_RESULT"
	BetBothTeamsScore BetType = "BOTH_TEAMS_SCORE"
)

// betOrder is the declaration order used to break confidence ties
var betOrder = map[BetType]int{
	BetOverUnder:      0,
	BetMoneyline:      1,
	BetFirstHalfOver:  2,
	BetMatchResult:    3,
	BetBothTeamsScore: 4,
}

func (b BetType) rank() int {
	if r, ok := betOrder[b]; ok {
		return r
	}
	return len(betOrder)
}

// Candidate is a potential bet produced by the pipeline before thresholding
type Candidate struct {
	BetType     BetType `json:"bet_type"`
	Selection   string  `json:"selection"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Recommendation is an emitted bet suggestion
type Recommendation struct {
	BetType     BetType `json:"bet_type"`
	Selection   string  `json:"selection"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Selector keeps the candidates whose confidence clears a threshold
type Selector struct {
	threshold float64
}

// NewSelector creates a Selector. The threshold must lie in (0, 1].
func NewSelector(threshold float64) (*Selector, error) {
	if math.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return &Selector{threshold: threshold}, nil
}

// Threshold returns the minimum emitted confidence
func (s *Selector) Threshold() float64 {
	return s.threshold
}

// Select returns the qualifying candidates ordered by confidence, highest first.
// Equal confidences keep bet type declaration order, then input order. An empty,
// non-nil slice means no bet qualifies.
func (s *Selector) Select(candidates []Candidate) []Recommendation {
	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence < s.threshold {
			continue
		}
		out = append(out, Recommendation(c))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].BetType.rank() < out[j].BetType.rank()
	})

	return out
}
