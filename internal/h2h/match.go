package h2h

import "time"

// Winner is the derived outcome of a match record
type Winner string

const (
	WinnerHome Winner = "HOME"
	WinnerAway Winner = "AWAY"
	WinnerTie  Winner = "TIE"
)

// Provenance records whether data came from a live provider or the fallback generator
type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSynthetic Provenance = "synthetic"
	ProvenanceMixed     Provenance = "mixed"
	ProvenanceNone      Provenance = "none"
)

// RawResult is a loosely typed historical result as delivered by a provider.
// Either Score is set (e.g. "24:17") or both HomeScore and AwayScore are.
type RawResult struct {
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	Date       time.Time  `json:"date"`
	Score      string     `json:"score,omitempty"`
	HomeScore  *int       `json:"home_score,omitempty"`
	AwayScore  *int       `json:"away_score,omitempty"`
	Source     string     `json:"source"`
	Provenance Provenance `json:"provenance"`
}

// MatchRecord is one normalized historical contest between two sides
type MatchRecord struct {
	HomeScore      int        `json:"home_score"`
	AwayScore      int        `json:"away_score"`
	TotalPoints    int        `json:"total_points"`
	Winner         Winner     `json:"winner"`
	Date           time.Time  `json:"date"`
	FirstHalfTotal float64    `json:"first_half_total"`
	Provenance     Provenance `json:"provenance"`
}

// BothScored reports whether each side scored at least once
func (m MatchRecord) BothScored() bool {
	return m.HomeScore > 0 && m.AwayScore > 0
}
