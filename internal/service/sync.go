package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/h2h"
)

// SyncResult summarizes an H2H sync run
type SyncResult struct {
	Fixtures  int
	Real      int
	Synthetic int
	Failed    int
}

// H2HSync walks the day's fixtures through the H2H collector so real results are
// stored ahead of prediction time
type H2HSync struct {
	fixtures FixtureSource
	source   H2HSource
	sports   []h2h.Sport
	logger   *logrus.Entry
}

// NewH2HSync creates a sync job over the enabled sports
func NewH2HSync(fixtures FixtureSource, source H2HSource, sports []h2h.Sport, log *logrus.Logger) *H2HSync {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &H2HSync{
		fixtures: fixtures,
		source:   source,
		sports:   sports,
		logger:   log.WithField("component", "h2h_sync"),
	}
}

// SyncH2H collects H2H history for every fixture of the date
func (s *H2HSync) SyncH2H(ctx context.Context, date time.Time) (SyncResult, error) {
	var res SyncResult
	for _, sport := range s.sports {
		fixtures, err := s.fixtures.Collect(ctx, sport, date)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.logger.WithError(err).WithField("sport", sport).Warn("Skipping sport, fixtures unavailable")
			continue
		}

		for i := range fixtures {
			res.Fixtures++
			collected, err := s.source.Collect(ctx, &fixtures[i])
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				res.Failed++
			case collected.Provenance == h2h.ProvenanceReal:
				res.Real++
			default:
				res.Synthetic++
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"date":      date.Format("2006-01-02"),
		"fixtures":  res.Fixtures,
		"real":      res.Real,
		"synthetic": res.Synthetic,
		"failed":    res.Failed,
	}).Info("H2H sync completed")
	return res, nil
}
