package repository

import (
	"context"
	"time"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

// MatchRepository defines the interface for stored H2H results
type MatchRepository interface {
	InsertBatch(ctx context.Context, matches []models.StoredMatch) (int, error)
	GetH2H(ctx context.Context, sport h2h.Sport, home, away string, limit int) ([]models.StoredMatch, error)
	CountBySport(ctx context.Context, sport h2h.Sport) (int, error)
}

// RecommendationRepository defines the interface for emitted recommendations
type RecommendationRepository interface {
	InsertBatch(ctx context.Context, recs []models.Recommendation) error
	GetByDate(ctx context.Context, date time.Time) ([]models.Recommendation, error)
}
