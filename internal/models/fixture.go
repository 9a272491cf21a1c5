package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// Fixture represents a scheduled contest between two sides
type Fixture struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	Sport      h2h.Sport      `db:"sport" json:"sport" validate:"required"`
	League     string         `db:"league" json:"league"`
	HomeTeam   string         `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string         `db:"away_team" json:"away_team" validate:"required,nefield=HomeTeam"`
	HomeTeamID string         `db:"home_team_id" json:"home_team_id,omitempty"`
	AwayTeamID string         `db:"away_team_id" json:"away_team_id,omitempty"`
	StartTime  time.Time      `db:"start_time" json:"start_time"`
	Source     string         `db:"source" json:"source"`
	Provenance h2h.Provenance `db:"provenance" json:"provenance"`
	Line       *BettingLine   `json:"line,omitempty"`
}

// NewFixture creates a fixture with a fresh ID
func NewFixture(sport h2h.Sport, home, away string, start time.Time) (*Fixture, error) {
	home, away = strings.TrimSpace(home), strings.TrimSpace(away)
	if home == "" || away == "" {
		return nil, ErrTeamNameRequired
	}
	if strings.EqualFold(home, away) {
		return nil, ErrIdenticalTeams
	}
	return &Fixture{
		ID:         uuid.New(),
		Sport:      sport,
		HomeTeam:   home,
		AwayTeam:   away,
		StartTime:  start,
		Provenance: h2h.ProvenanceReal,
	}, nil
}

// HasTeamIDs reports whether both provider team identifiers are known
func (f *Fixture) HasTeamIDs() bool {
	return f.HomeTeamID != "" && f.AwayTeamID != ""
}

// MatchName renders the fixture as "Away @ Home", or "Home vs Away" for sports with draws
func (f *Fixture) MatchName() string {
	if p, err := h2h.Profile(f.Sport); err == nil && p.TiePermitted {
		return fmt.Sprintf("%s vs %s", f.HomeTeam, f.AwayTeam)
	}
	return fmt.Sprintf("%s @ %s", f.AwayTeam, f.HomeTeam)
}

// Key identifies the pairing independently of the fixture ID
func (f *Fixture) Key() string {
	return fmt.Sprintf("%s:%s:%s", f.Sport, strings.ToLower(f.HomeTeam), strings.ToLower(f.AwayTeam))
}

// StartLabel returns the kick-off time or TBD
func (f *Fixture) StartLabel() string {
	if f.StartTime.IsZero() {
		return "TBD"
	}
	return f.StartTime.UTC().Format("15:04 MST")
}
