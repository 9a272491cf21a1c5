package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/gamepredict/internal/database"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

var recommendationColumns = []string{
	"id", "prediction_id", "sport", "match", "home_team", "away_team", "start_time",
	"bet_type", "selection", "probability", "confidence", "odds", "quality",
	"stake_advice", "reasoning", "h2h_matches", "data_provenance", "created_at",
}

// PostgresRecommendationRepository implements RecommendationRepository for PostgreSQL
type PostgresRecommendationRepository struct {
	db *database.DB
}

// NewPostgresRecommendationRepository creates a new recommendation repository
func NewPostgresRecommendationRepository(db *database.DB) *PostgresRecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

// InsertBatch inserts recommendations using COPY
func (r *PostgresRecommendationRepository) InsertBatch(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(recs))
	for i, rec := range recs {
		rows[i] = recommendationRow(rec)
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"recommendations"}, recommendationColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert recommendations: %w", err)
	}
	if count != int64(len(recs)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(recs))
	}

	return nil
}

// GetByDate retrieves the recommendations created on a UTC day, highest confidence first
func (r *PostgresRecommendationRepository) GetByDate(ctx context.Context, date time.Time) ([]models.Recommendation, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	query := `
		SELECT id, prediction_id, sport, match, home_team, away_team, start_time,
		       bet_type, selection, probability, confidence, odds, quality,
		       stake_advice, reasoning, h2h_matches, data_provenance, created_at
		FROM recommendations
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY confidence DESC, created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var out []models.Recommendation
	for rows.Next() {
		var (
			rec                        models.Recommendation
			sport, betType, provenance string
			odds                       float64
			startTime                  *time.Time
		)
		if err := rows.Scan(
			&rec.ID, &rec.PredictionID, &sport, &rec.Match, &rec.HomeTeam, &rec.AwayTeam, &startTime,
			&betType, &rec.Selection, &rec.Probability, &rec.Confidence, &odds, &rec.Quality,
			&rec.StakeAdvice, &rec.Reasoning, &rec.H2HMatches, &provenance, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.Sport = h2h.Sport(sport)
		rec.BetType = h2h.BetType(betType)
		rec.DataProvenance = h2h.Provenance(provenance)
		rec.Odds = decimal.NewFromFloat(odds)
		if startTime != nil {
			rec.StartTime = *startTime
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}

	return out, nil
}

// recommendationRow flattens a recommendation in recommendationColumns order
func recommendationRow(rec models.Recommendation) []interface{} {
	var start *time.Time
	if !rec.StartTime.IsZero() {
		s := rec.StartTime
		start = &s
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return []interface{}{
		rec.ID, rec.PredictionID, string(rec.Sport), rec.Match, rec.HomeTeam, rec.AwayTeam, start,
		string(rec.BetType), rec.Selection, rec.Probability, rec.Confidence, rec.Odds.InexactFloat64(), rec.Quality,
		rec.StakeAdvice, rec.Reasoning, rec.H2HMatches, string(rec.DataProvenance), created,
	}
}
