package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gamepredict/internal/database"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

// InsertBatch stores results, skipping meetings already recorded. It returns the
// number of new rows.
func (r *PostgresMatchRepository) InsertBatch(ctx context.Context, matches []models.StoredMatch) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO h2h_matches (id, sport, home_team, away_team, played_at, home_score, away_score, source, provenance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sport, home_team, away_team, played_at) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(query,
			m.ID, string(m.Sport), m.HomeTeam, m.AwayTeam, m.PlayedAt,
			m.HomeScore, m.AwayScore, m.Source, string(m.Provenance),
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range matches {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert h2h match: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// GetH2H retrieves stored meetings of the pairing in either orientation, newest first,
// oriented so HomeTeam is the given home side
func (r *PostgresMatchRepository) GetH2H(ctx context.Context, sport h2h.Sport, home, away string, limit int) ([]models.StoredMatch, error) {
	if limit <= 0 {
		limit = defaultH2HLimit
	}

	query := `
		SELECT id, sport, home_team, away_team, played_at, home_score, away_score, source, provenance, created_at
		FROM h2h_matches
		WHERE sport = $1
		  AND ((LOWER(home_team) = LOWER($2) AND LOWER(away_team) = LOWER($3))
		    OR (LOWER(home_team) = LOWER($3) AND LOWER(away_team) = LOWER($2)))
		ORDER BY played_at DESC
		LIMIT $4
	`

	rows, err := r.db.GetPool().Query(ctx, query, string(sport), home, away, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query h2h matches: %w", err)
	}
	defer rows.Close()

	var out []models.StoredMatch
	for rows.Next() {
		var (
			m                 models.StoredMatch
			sportStr, provStr string
		)
		if err := rows.Scan(
			&m.ID, &sportStr, &m.HomeTeam, &m.AwayTeam, &m.PlayedAt,
			&m.HomeScore, &m.AwayScore, &m.Source, &provStr, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan h2h match: %w", err)
		}
		m.Sport = h2h.Sport(sportStr)
		m.Provenance = h2h.Provenance(provStr)
		out = append(out, orient(m, home))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating h2h matches: %w", err)
	}

	return out, nil
}

// CountBySport returns the number of stored meetings for a sport
func (r *PostgresMatchRepository) CountBySport(ctx context.Context, sport h2h.Sport) (int, error) {
	var n int
	err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM h2h_matches WHERE sport = $1", string(sport)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count h2h matches: %w", err)
	}
	return n, nil
}

// orient swaps sides so the stored row reads from the given home team's perspective
func orient(m models.StoredMatch, home string) models.StoredMatch {
	if strings.EqualFold(m.HomeTeam, home) {
		return m
	}
	m.HomeTeam, m.AwayTeam = m.AwayTeam, m.HomeTeam
	m.HomeScore, m.AwayScore = m.AwayScore, m.HomeScore
	return m
}
