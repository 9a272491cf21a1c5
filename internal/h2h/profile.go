// Package h2h reduces head-to-head match history into statistics, confidence
// scores and betting recommendations.
package h2h

import (
	"fmt"
	"strings"
)

// Sport identifies a supported competition profile
type Sport string

const (
	SportNFL    Sport = "nfl"
	SportNCAA   Sport = "ncaa"
	SportNBA    Sport = "nba"
	SportSoccer Sport = "soccer"
)

// MinSampleSize is the minimum number of H2H records required for a prediction
const MinSampleSize = 3

// DefaultConfidenceThreshold is the minimum confidence for an emitted recommendation
const DefaultConfidenceThreshold = 0.75

// ConfidenceParams holds the sample-size and extremity knobs of the confidence scorer
type ConfidenceParams struct {
	Base               float64 `mapstructure:"base" json:"base"`
	Cap                float64 `mapstructure:"cap" json:"cap"`
	K                  float64 `mapstructure:"k" json:"k"`
	ExtremityThreshold float64 `mapstructure:"extremity_threshold" json:"extremity_threshold"`
	Penalty            float64 `mapstructure:"penalty" json:"penalty"`
}

// SportProfile carries every per-sport constant used by the pipeline
type SportProfile struct {
	Sport             Sport            `json:"sport"`
	DisplayName       string           `json:"display_name"`
	OverThreshold     float64          `json:"over_threshold"`
	FirstHalfFraction float64          `json:"first_half_fraction"`
	TiePermitted      bool             `json:"tie_permitted"`
	Confidence        ConfidenceParams `json:"confidence"`
	HistoricalWeight  float64          `json:"historical_weight"`
	ModelWeight       float64          `json:"model_weight"`
	HomeAdvantage     float64          `json:"home_advantage"`
	BaseTotal         float64          `json:"base_total"`
	TotalSpread       float64          `json:"total_spread"`
	DefaultOdds       float64          `json:"default_odds"`
	FixtureLimit      int              `json:"fixture_limit"`
}

// FirstHalfThreshold returns the over line applied to first-half totals
func (p SportProfile) FirstHalfThreshold() float64 {
	return p.OverThreshold * p.FirstHalfFraction
}

// BetTypes returns the candidate bet types evaluated for the sport, in declaration order
func (p SportProfile) BetTypes() []BetType {
	if p.TiePermitted {
		return []BetType{BetOverUnder, BetFirstHalfOver, BetMatchResult, BetBothTeamsScore}
	}
	return []BetType{BetOverUnder, BetMoneyline, BetFirstHalfOver}
}

var profiles = map[Sport]SportProfile{
	SportNFL: {
		Sport:             SportNFL,
		DisplayName:       "NFL",
		OverThreshold:     50,
		FirstHalfFraction: 0.47,
		Confidence:        ConfidenceParams{Base: 0.5, Cap: 0.9, K: 0.07, ExtremityThreshold: 0.25, Penalty: 0.7},
		HistoricalWeight:  0.6,
		ModelWeight:       0.4,
		HomeAdvantage:     0.07,
		BaseTotal:         47,
		TotalSpread:       15,
		DefaultOdds:       1.90,
		FixtureLimit:      5,
	},
	SportNCAA: {
		Sport:             SportNCAA,
		DisplayName:       "NCAA",
		OverThreshold:     60,
		FirstHalfFraction: 0.47,
		Confidence:        ConfidenceParams{Base: 0.5, Cap: 0.9, K: 0.07, ExtremityThreshold: 0.25, Penalty: 0.7},
		HistoricalWeight:  0.6,
		ModelWeight:       0.4,
		HomeAdvantage:     0.09,
		BaseTotal:         55,
		TotalSpread:       20,
		DefaultOdds:       1.90,
		FixtureLimit:      5,
	},
	SportNBA: {
		Sport:             SportNBA,
		DisplayName:       "NBA",
		OverThreshold:     220,
		FirstHalfFraction: 0.48,
		Confidence:        ConfidenceParams{Base: 0.5, Cap: 0.9, K: 0.06, ExtremityThreshold: 0.20, Penalty: 0.7},
		HistoricalWeight:  0.6,
		ModelWeight:       0.4,
		HomeAdvantage:     0.05,
		BaseTotal:         205,
		TotalSpread:       20,
		DefaultOdds:       1.85,
		FixtureLimit:      8,
	},
	SportSoccer: {
		Sport:             SportSoccer,
		DisplayName:       "Soccer",
		OverThreshold:     2.5,
		FirstHalfFraction: 0.50,
		TiePermitted:      true,
		Confidence:        ConfidenceParams{Base: 0.5, Cap: 0.9, K: 0.05, ExtremityThreshold: 0.25, Penalty: 0.7},
		HistoricalWeight:  0.8,
		ModelWeight:       0.2,
		HomeAdvantage:     0.05,
		BaseTotal:         2.0,
		TotalSpread:       1.0,
		DefaultOdds:       1.88,
		FixtureLimit:      6,
	},
}

// Sports returns every supported sport in a stable order
func Sports() []Sport {
	return []Sport{SportNFL, SportNCAA, SportNBA, SportSoccer}
}

// Profile returns the built-in profile for a sport
func Profile(sport Sport) (SportProfile, error) {
	p, ok := profiles[sport]
	if !ok {
		return SportProfile{}, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
	return p, nil
}

var sportAliases = map[string]Sport{
	"nfl":               SportNFL,
	"football":          SportSoccer,
	"american_football": SportNFL,
	"ncaa":              SportNCAA,
	"ncaaf":             SportNCAA,
	"college-football":  SportNCAA,
	"nba":               SportNBA,
	"basketball":        SportNBA,
	"soccer":            SportSoccer,
	"football_soccer":   SportSoccer,
}

// ParseSport resolves a user-supplied sport name or alias
func ParseSport(name string) (Sport, error) {
	if s, ok := sportAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSport, name)
}

// Aliases returns the accepted alias table
func Aliases() map[string]Sport {
	out := make(map[string]Sport, len(sportAliases))
	for k, v := range sportAliases {
		out[k] = v
	}
	return out
}
