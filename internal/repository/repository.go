// Package repository provides PostgreSQL data access for stored results and recommendations.
package repository

import (
	"fmt"

	"github.com/yourusername/gamepredict/internal/database"
)

// defaultH2HLimit caps stored meetings returned when the caller passes no limit
const defaultH2HLimit = 20

// Repositories holds all repository instances
type Repositories struct {
	Match          MatchRepository
	Recommendation RecommendationRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:          NewPostgresMatchRepository(db),
		Recommendation: NewPostgresRecommendationRepository(db),
	}, nil
}
