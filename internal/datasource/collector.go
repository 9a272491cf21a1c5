package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/logger"
	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/models"
)

// Fallback reasons recorded in logs, metrics and audit entries
const (
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonMissingTeamIDs      = "missing_team_ids"
	ReasonInsufficientRecords = "insufficient_records"
	ReasonNoProvider          = "no_provider"
)

const storeSourceName = "database"

// MatchStore persists real H2H results between runs
type MatchStore interface {
	GetH2H(ctx context.Context, sport h2h.Sport, homeTeam, awayTeam string, limit int) ([]models.StoredMatch, error)
	InsertBatch(ctx context.Context, matches []models.StoredMatch) (int, error)
}

// H2HResult is the history gathered for one fixture
type H2HResult struct {
	Raw            []h2h.RawResult
	Source         string
	Provenance     h2h.Provenance
	RealRecords    int
	FallbackReason string
}

// H2HCollector gathers head-to-head history from the configured providers in order,
// then the match store, then the synthetic generator.
type H2HCollector struct {
	providers []ResultsProvider
	store     MatchStore
	generator SyntheticGenerator
	fallback  bool
	maxStored int
	audit     *logger.AuditLogger
	logger    *logrus.Entry
	now       func() time.Time
}

// NewH2HCollector creates a collector. A nil generator disables the synthetic fallback.
func NewH2HCollector(providers []ResultsProvider, generator SyntheticGenerator, fallback bool, log *logrus.Logger) *H2HCollector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &H2HCollector{
		providers: providers,
		generator: generator,
		fallback:  fallback && generator != nil,
		maxStored: 8,
		audit:     logger.NewAuditLogger(log),
		logger:    log.WithField("component", "h2h_collector"),
		now:       time.Now,
	}
}

// WithStore attaches a match store used as a secondary source and as a sink for real results
func (c *H2HCollector) WithStore(store MatchStore) *H2HCollector {
	c.store = store
	return c
}

// Collect returns the H2H history for fixture. Synthetic records replace the real
// ones whenever fewer than MinSampleSize valid real records were found and the
// fallback is enabled. With the fallback disabled an unreachable upstream is
// returned as ErrUpstreamUnavailable.
func (c *H2HCollector) Collect(ctx context.Context, fixture *models.Fixture) (*H2HResult, error) {
	profile, err := h2h.Profile(fixture.Sport)
	if err != nil {
		return nil, err
	}

	reason := ReasonNoProvider
	var (
		best     []h2h.RawResult
		bestFrom string
		lastErr  error
	)

	for _, p := range c.providers {
		if !p.Supports(fixture.Sport) {
			continue
		}

		raws, err := p.FetchH2H(ctx, fixture)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			reason = classifyFailure(err)
			c.logger.WithError(err).WithFields(logrus.Fields{
				"provider": p.Name(),
				"match":    fixture.MatchName(),
			}).Warn("H2H provider failed")
			continue
		}

		if valid := countValid(raws, profile); valid >= h2h.MinSampleSize {
			c.persist(ctx, fixture, raws)
			return &H2HResult{Raw: raws, Source: p.Name(), Provenance: h2h.ProvenanceReal, RealRecords: valid}, nil
		}
		reason = ReasonInsufficientRecords
		if len(raws) > len(best) {
			best, bestFrom = raws, p.Name()
		}
	}

	if stored := c.fromStore(ctx, fixture); countValid(stored, profile) >= h2h.MinSampleSize {
		return &H2HResult{Raw: stored, Source: storeSourceName, Provenance: h2h.ProvenanceReal, RealRecords: countValid(stored, profile)}, nil
	}

	realCount := countValid(best, profile)
	if !c.fallback {
		if best == nil && lastErr != nil && errors.Is(lastErr, ErrUpstreamUnavailable) {
			return nil, fmt.Errorf("collect h2h for %s: %w", fixture.MatchName(), lastErr)
		}
		provenance := h2h.ProvenanceNone
		if len(best) > 0 {
			provenance = h2h.ProvenanceReal
		}
		return &H2HResult{Raw: best, Source: bestFrom, Provenance: provenance, RealRecords: realCount, FallbackReason: reason}, nil
	}

	synthetic := c.generator.Generate(fixture, c.now())
	c.audit.LogSyntheticFallback(string(fixture.Sport), fixture.MatchName(), reason, realCount, len(synthetic))
	metrics.RecordSyntheticFallback(string(fixture.Sport), reason)

	return &H2HResult{
		Raw:            synthetic,
		Source:         syntheticSourceName,
		Provenance:     h2h.ProvenanceSynthetic,
		RealRecords:    realCount,
		FallbackReason: reason,
	}, nil
}

func (c *H2HCollector) fromStore(ctx context.Context, fixture *models.Fixture) []h2h.RawResult {
	if c.store == nil {
		return nil
	}
	stored, err := c.store.GetH2H(ctx, fixture.Sport, fixture.HomeTeam, fixture.AwayTeam, c.maxStored)
	if err != nil {
		c.logger.WithError(err).WithField("match", fixture.MatchName()).Warn("Stored H2H lookup failed")
		return nil
	}
	raws := make([]h2h.RawResult, 0, len(stored))
	for i := range stored {
		raws = append(raws, stored[i].ToRaw())
	}
	return raws
}

// persist stores real results; failures are logged and never surface to the caller
func (c *H2HCollector) persist(ctx context.Context, fixture *models.Fixture, raws []h2h.RawResult) {
	if c.store == nil {
		return
	}
	profile, _ := h2h.Profile(fixture.Sport)

	matches := make([]models.StoredMatch, 0, len(raws))
	for _, r := range raws {
		rec, err := h2h.NormalizeRaw(r, profile)
		if err != nil || rec.Provenance != h2h.ProvenanceReal {
			continue
		}
		matches = append(matches, models.StoredMatch{
			ID:         uuid.New(),
			Sport:      fixture.Sport,
			HomeTeam:   fixture.HomeTeam,
			AwayTeam:   fixture.AwayTeam,
			PlayedAt:   rec.Date,
			HomeScore:  rec.HomeScore,
			AwayScore:  rec.AwayScore,
			Source:     r.Source,
			Provenance: h2h.ProvenanceReal,
		})
	}
	if len(matches) == 0 {
		return
	}
	if _, err := c.store.InsertBatch(ctx, matches); err != nil {
		c.logger.WithError(err).WithField("match", fixture.MatchName()).Warn("Failed to store H2H results")
	}
}

func classifyFailure(err error) string {
	if errors.Is(err, ErrTeamNotFound) {
		return ReasonMissingTeamIDs
	}
	return ReasonUpstreamUnavailable
}

func countValid(raws []h2h.RawResult, profile h2h.SportProfile) int {
	n := 0
	for _, r := range raws {
		if _, err := h2h.NormalizeRaw(r, profile); err == nil {
			n++
		}
	}
	return n
}

// FixtureCollector gathers the day's fixtures and attaches betting lines
type FixtureCollector struct {
	schedules []ScheduleProvider
	odds      []OddsProvider
	fallback  bool
	audit     *logger.AuditLogger
	logger    *logrus.Entry
}

// NewFixtureCollector creates a fixture collector. With fallback enabled a failed
// schedule is replaced by SampleFixtures.
func NewFixtureCollector(schedules []ScheduleProvider, odds []OddsProvider, fallback bool, log *logrus.Logger) *FixtureCollector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FixtureCollector{
		schedules: schedules,
		odds:      odds,
		fallback:  fallback,
		audit:     logger.NewAuditLogger(log),
		logger:    log.WithField("component", "fixture_collector"),
	}
}

// Collect returns the fixtures of sport on date from the first schedule provider
// that answers, with betting lines attached where a match is found.
func (c *FixtureCollector) Collect(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error) {
	var (
		fixtures []models.Fixture
		answered bool
		lastErr  error = ErrNoProviders
	)

	for _, p := range c.schedules {
		if !p.Supports(sport) {
			continue
		}
		found, err := p.FetchFixtures(ctx, sport, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.logger.WithError(err).WithFields(logrus.Fields{"provider": p.Name(), "sport": sport}).Warn("Schedule provider failed")
			continue
		}
		fixtures, answered = found, true
		break
	}

	if !answered {
		if !c.fallback {
			return nil, fmt.Errorf("fetch %s fixtures: %w", sport, lastErr)
		}
		fixtures = SampleFixtures(sport, date)
		c.audit.LogSampleFixtures(string(sport), ReasonUpstreamUnavailable, len(fixtures))
		metrics.RecordSyntheticFallback(string(sport), "sample_fixtures")
	}

	c.attachLines(ctx, sport, fixtures)
	return fixtures, nil
}

func (c *FixtureCollector) attachLines(ctx context.Context, sport h2h.Sport, fixtures []models.Fixture) {
	if len(fixtures) == 0 {
		return
	}
	for _, p := range c.odds {
		if !p.Supports(sport) {
			continue
		}
		lines, err := p.FetchLines(ctx, sport)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{"provider": p.Name(), "sport": sport}).Info("Betting lines unavailable")
			continue
		}
		for i := range fixtures {
			if fixtures[i].Line != nil {
				continue
			}
			for j := range lines {
				if TeamsMatch(fixtures[i].HomeTeam, lines[j].HomeTeam) && TeamsMatch(fixtures[i].AwayTeam, lines[j].AwayTeam) {
					line := lines[j]
					fixtures[i].Line = &line
					break
				}
			}
		}
	}
}
