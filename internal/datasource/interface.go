// Package datasource fetches fixtures, head-to-head history and betting lines from
// external sports data providers.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

// ScheduleProvider lists the fixtures of one sport on a given day
type ScheduleProvider interface {
	// FetchFixtures retrieves the fixtures scheduled on date
	FetchFixtures(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error)

	// Name returns the name of the data source
	Name() string

	// Supports reports whether the provider covers the sport
	Supports(sport h2h.Sport) bool
}

// ResultsProvider returns the historical meetings between the two sides of a fixture.
// Results are oriented to the fixture: HomeScore always belongs to fixture.HomeTeam.
type ResultsProvider interface {
	FetchH2H(ctx context.Context, fixture *models.Fixture) ([]h2h.RawResult, error)
	Name() string
	Supports(sport h2h.Sport) bool
}

// OddsProvider returns the current bookmaker lines for a sport
type OddsProvider interface {
	FetchLines(ctx context.Context, sport h2h.Sport) ([]models.BettingLine, error)
	Name() string
	Supports(sport h2h.Sport) bool
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches ErrUpstreamUnavailable for every code except not_found and invalid_data,
// which describe the data rather than the provider.
func (e DataSourceError) Is(target error) bool {
	if target != ErrUpstreamUnavailable {
		return false
	}
	return e.Code != ErrCodeNotFound && e.Code != ErrCodeInvalidData
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
	ErrCodeUnknown              = "unknown"
)

var (
	// ErrUpstreamUnavailable indicates a provider could not be reached or refused the request
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrTeamNotFound indicates a team name could not be resolved to a provider id
	ErrTeamNotFound = errors.New("team not found")

	// ErrNoProviders indicates no provider covers the requested sport
	ErrNoProviders = errors.New("no provider available for sport")
)

const dataSourceDisabledMsg = "data source is disabled"

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
