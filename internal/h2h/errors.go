package h2h

import "errors"

var (
	// ErrMalformedScore indicates a raw score could not be parsed
	ErrMalformedScore = errors.New("malformed score")

	// ErrInvalidScore indicates a parsed score is out of range
	ErrInvalidScore = errors.New("invalid score")

	// ErrWeightConfiguration indicates blend weights that do not sum to 1.0
	ErrWeightConfiguration = errors.New("blend weights must sum to 1.0")

	// ErrUnknownSport indicates no profile exists for the requested sport
	ErrUnknownSport = errors.New("unknown sport")

	// ErrInvalidThreshold indicates a confidence threshold outside (0, 1]
	ErrInvalidThreshold = errors.New("confidence threshold must be in (0, 1]")
)
