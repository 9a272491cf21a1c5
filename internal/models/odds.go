package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/gamepredict/internal/h2h"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// BettingLine represents the bookmaker prices for one fixture
type BettingLine struct {
	Sport     h2h.Sport        `json:"sport"`
	HomeTeam  string           `json:"home_team"`
	AwayTeam  string           `json:"away_team"`
	Bookmaker string           `json:"bookmaker"`
	HomeOdds  *decimal.Decimal `json:"home_odds,omitempty"`
	AwayOdds  *decimal.Decimal `json:"away_odds,omitempty"`
	DrawOdds  *decimal.Decimal `json:"draw_odds,omitempty"`
	TotalLine *decimal.Decimal `json:"total_line,omitempty"`
	OverOdds  *decimal.Decimal `json:"over_odds,omitempty"`
	UnderOdds *decimal.Decimal `json:"under_odds,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TotalPoints returns the posted total line as a float, if any
func (l *BettingLine) TotalPoints() (float64, bool) {
	if l == nil || l.TotalLine == nil {
		return 0, false
	}
	return l.TotalLine.InexactFloat64(), true
}

// AmericanToDecimal converts American odds (+150, -110) to decimal odds
func AmericanToDecimal(american int64) (decimal.Decimal, error) {
	if american > -100 && american < 100 {
		return decimal.Zero, ErrInvalidAmerican
	}
	a := decimal.NewFromInt(american)
	if american > 0 {
		return a.Div(oneHundred).Add(one).Round(3), nil
	}
	return oneHundred.Div(a.Abs()).Add(one).Round(3), nil
}

// ImpliedProbability returns 1/odds for decimal odds
func ImpliedProbability(odds decimal.Decimal) (float64, error) {
	if odds.LessThanOrEqual(one) {
		return 0, ErrInvalidOdds
	}
	return one.Div(odds).InexactFloat64(), nil
}

// AccumulatorOdds multiplies decimal odds of independent selections
func AccumulatorOdds(odds []decimal.Decimal) decimal.Decimal {
	if len(odds) == 0 {
		return decimal.Zero
	}
	total := one
	for _, o := range odds {
		total = total.Mul(o)
	}
	return total.Round(2)
}
