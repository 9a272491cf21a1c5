package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAmericanToDecimal tests American to decimal odds conversion
func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		american int64
		want     string
		wantErr  bool
	}{
		{american: 150, want: "2.5"},
		{american: -110, want: "1.909"},
		{american: -200, want: "1.5"},
		{american: 100, want: "2"},
		{american: 50, wantErr: true},
		{american: -99, wantErr: true},
	}

	for _, tt := range tests {
		got, err := AmericanToDecimal(tt.american)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmerican)
			continue
		}
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%d -> %s", tt.american, got)
	}
}

// TestImpliedProbability tests implied probability from decimal odds
func TestImpliedProbability(t *testing.T) {
	p, err := ImpliedProbability(decimal.NewFromFloat(2.0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	_, err = ImpliedProbability(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

// TestAccumulatorOdds tests the accumulator product
func TestAccumulatorOdds(t *testing.T) {
	acc := AccumulatorOdds([]decimal.Decimal{
		decimal.RequireFromString("1.90"),
		decimal.RequireFromString("1.85"),
	})
	assert.Equal(t, "3.52", acc.StringFixed(2))
	assert.True(t, AccumulatorOdds(nil).IsZero())
}

// TestBettingLineTotalPoints tests total line access
func TestBettingLineTotalPoints(t *testing.T) {
	var nilLine *BettingLine
	_, ok := nilLine.TotalPoints()
	assert.False(t, ok)

	total := decimal.RequireFromString("47.5")
	line := &BettingLine{TotalLine: &total}
	v, ok := line.TotalPoints()
	assert.True(t, ok)
	assert.Equal(t, 47.5, v)
}
