package h2h

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NewMatchRecord builds a canonical record from two scores
func NewMatchRecord(homeScore, awayScore int, date time.Time, profile SportProfile) (MatchRecord, error) {
	if homeScore < 0 || awayScore < 0 {
		return MatchRecord{}, fmt.Errorf("%w: %d-%d", ErrInvalidScore, homeScore, awayScore)
	}

	total := homeScore + awayScore
	winner := WinnerTie
	switch {
	case homeScore > awayScore:
		winner = WinnerHome
	case awayScore > homeScore:
		winner = WinnerAway
	}

	return MatchRecord{
		HomeScore:      homeScore,
		AwayScore:      awayScore,
		TotalPoints:    total,
		Winner:         winner,
		Date:           date,
		FirstHalfTotal: float64(total) * profile.FirstHalfFraction,
		Provenance:     ProvenanceReal,
	}, nil
}

// ParseScore splits a "24:17" or "24-17" score string into its two sides.
// Whitespace is allowed around the delimiter but not inside a number.
func ParseScore(raw string) (int, int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty score", ErrMalformedScore)
	}

	var parts []string
	switch {
	case strings.Contains(s, ":"):
		parts = strings.Split(s, ":")
	case strings.Count(s, "-") == 1 && !strings.HasPrefix(s, "-"):
		parts = strings.Split(s, "-")
	case strings.Contains(s, "-"):
		return splitSigned(s)
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedScore, raw)
	}

	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedScore, raw)
	}
	return parseSides(parts[0], parts[1], raw)
}

// splitSigned handles dash-delimited strings that also carry minus signs, e.g. "-1-2"
func splitSigned(s string) (int, int, error) {
	idx := strings.Index(s[1:], "-")
	if idx < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedScore, s)
	}
	idx++
	return parseSides(s[:idx], s[idx+1:], s)
}

func parseSides(home, away, raw string) (int, int, error) {
	home, away = strings.TrimSpace(home), strings.TrimSpace(away)
	h, err := strconv.Atoi(home)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedScore, raw)
	}
	a, err := strconv.Atoi(away)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedScore, raw)
	}
	if h < 0 || a < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return h, a, nil
}

// NormalizeRaw converts a provider record into a MatchRecord
func NormalizeRaw(raw RawResult, profile SportProfile) (MatchRecord, error) {
	var home, away int
	switch {
	case raw.HomeScore != nil && raw.AwayScore != nil:
		home, away = *raw.HomeScore, *raw.AwayScore
	case raw.Score != "":
		h, a, err := ParseScore(raw.Score)
		if err != nil {
			return MatchRecord{}, err
		}
		home, away = h, a
	default:
		return MatchRecord{}, fmt.Errorf("%w: no score present", ErrMalformedScore)
	}

	rec, err := NewMatchRecord(home, away, raw.Date, profile)
	if err != nil {
		return MatchRecord{}, err
	}
	if raw.Provenance != "" {
		rec.Provenance = raw.Provenance
	}
	return rec, nil
}

// NormalizeAll converts every parseable record and returns the per-record errors
// of the ones it dropped
func NormalizeAll(raws []RawResult, profile SportProfile) ([]MatchRecord, []error) {
	records := make([]MatchRecord, 0, len(raws))
	var errs []error

	for i, raw := range raws {
		rec, err := NormalizeRaw(raw, profile)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}
