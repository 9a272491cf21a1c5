package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// StoredMatch represents a persisted historical result between two teams
type StoredMatch struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	Sport      h2h.Sport      `db:"sport" json:"sport"`
	HomeTeam   string         `db:"home_team" json:"home_team"`
	AwayTeam   string         `db:"away_team" json:"away_team"`
	PlayedAt   time.Time      `db:"played_at" json:"played_at"`
	HomeScore  int            `db:"home_score" json:"home_score"`
	AwayScore  int            `db:"away_score" json:"away_score"`
	Source     string         `db:"source" json:"source"`
	Provenance h2h.Provenance `db:"provenance" json:"provenance"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// ToRaw converts the stored row back into a provider record
func (m *StoredMatch) ToRaw() h2h.RawResult {
	home, away := m.HomeScore, m.AwayScore
	return h2h.RawResult{
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		Date:       m.PlayedAt,
		HomeScore:  &home,
		AwayScore:  &away,
		Source:     m.Source,
		Provenance: m.Provenance,
	}
}
