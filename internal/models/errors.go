package models

import "errors"

// Custom errors
var (
	ErrTeamNameRequired = errors.New("team name is required")
	ErrIdenticalTeams   = errors.New("home and away team must differ")
	ErrInvalidOdds      = errors.New("odds must be greater than 1")
	ErrInvalidAmerican  = errors.New("american odds must be <= -100 or >= 100")
)
