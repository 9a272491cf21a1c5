package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

type fakeResults struct {
	name    string
	results []h2h.RawResult
	err     error
	calls   int
}

func (f *fakeResults) FetchH2H(ctx context.Context, fixture *models.Fixture) ([]h2h.RawResult, error) {
	f.calls++
	return f.results, f.err
}
func (f *fakeResults) Name() string                  { return f.name }
func (f *fakeResults) Supports(sport h2h.Sport) bool { return true }

type fakeSchedule struct {
	fixtures []models.Fixture
	err      error
}

func (f *fakeSchedule) FetchFixtures(ctx context.Context, sport h2h.Sport, date time.Time) ([]models.Fixture, error) {
	return f.fixtures, f.err
}
func (f *fakeSchedule) Name() string                  { return "fake_schedule" }
func (f *fakeSchedule) Supports(sport h2h.Sport) bool { return true }

type fakeOdds struct {
	lines []models.BettingLine
}

func (f *fakeOdds) FetchLines(ctx context.Context, sport h2h.Sport) ([]models.BettingLine, error) {
	return f.lines, nil
}
func (f *fakeOdds) Name() string                  { return "fake_odds" }
func (f *fakeOdds) Supports(sport h2h.Sport) bool { return true }

type memoryStore struct {
	stored []models.StoredMatch
	err    error
}

func (m *memoryStore) GetH2H(ctx context.Context, sport h2h.Sport, home, away string, limit int) ([]models.StoredMatch, error) {
	return m.stored, m.err
}

func (m *memoryStore) InsertBatch(ctx context.Context, matches []models.StoredMatch) (int, error) {
	m.stored = append(m.stored, matches...)
	return len(matches), m.err
}

func scored(home, away int, daysAgo int) h2h.RawResult {
	return h2h.RawResult{
		HomeScore:  &home,
		AwayScore:  &away,
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
		Source:     "fake",
		Provenance: h2h.ProvenanceReal,
	}
}

func nflFixture(t *testing.T) *models.Fixture {
	t.Helper()
	f, err := models.NewFixture(h2h.SportNFL, "Kansas City Chiefs", "Buffalo Bills", time.Time{})
	require.NoError(t, err)
	return f
}

var fixedSynthetic = FixedGenerator{Results: []h2h.RawResult{scored(30, 20, 10), scored(27, 24, 40), scored(21, 17, 80), scored(35, 31, 120)}}

// TestH2HCollectorRealData tests that sufficient real data is returned as-is
func TestH2HCollectorRealData(t *testing.T) {
	first := &fakeResults{name: "first", err: NewDataSourceError("first", ErrCodeServerError, "down", nil)}
	second := &fakeResults{name: "second", results: []h2h.RawResult{scored(24, 17, 1), scored(31, 28, 2), scored(10, 13, 3)}}
	store := &memoryStore{}

	c := NewH2HCollector([]ResultsProvider{first, second}, fixedSynthetic, true, nil).WithStore(store)
	res, err := c.Collect(context.Background(), nflFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "second", res.Source)
	assert.Equal(t, h2h.ProvenanceReal, res.Provenance)
	assert.Equal(t, 3, res.RealRecords)
	assert.Empty(t, res.FallbackReason)
	assert.Len(t, store.stored, 3, "real results are persisted")
	assert.Equal(t, 1, first.calls)
}

// TestH2HCollectorSyntheticFallback tests the fallback reasons
func TestH2HCollectorSyntheticFallback(t *testing.T) {
	tests := []struct {
		name       string
		provider   *fakeResults
		wantReason string
		wantReal   int
	}{
		{
			name:       "upstream down",
			provider:   &fakeResults{name: "p", err: NewDataSourceError("p", ErrCodeNetworkError, "refused", errors.New("dial"))},
			wantReason: ReasonUpstreamUnavailable,
		},
		{
			name:       "team unknown",
			provider:   &fakeResults{name: "p", err: NewDataSourceError("p", ErrCodeNotFound, "team", ErrTeamNotFound)},
			wantReason: ReasonMissingTeamIDs,
		},
		{
			name:       "too few valid records",
			provider:   &fakeResults{name: "p", results: []h2h.RawResult{scored(20, 10, 1), scored(14, 7, 2), {Score: "n/a"}}},
			wantReason: ReasonInsufficientRecords,
			wantReal:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewH2HCollector([]ResultsProvider{tt.provider}, fixedSynthetic, true, nil)
			fixture := nflFixture(t)
			res, err := c.Collect(context.Background(), fixture)
			require.NoError(t, err)

			assert.Equal(t, h2h.ProvenanceSynthetic, res.Provenance)
			assert.Equal(t, tt.wantReason, res.FallbackReason)
			assert.Equal(t, tt.wantReal, res.RealRecords)
			require.Len(t, res.Raw, 4)
			for _, r := range res.Raw {
				assert.Equal(t, h2h.ProvenanceSynthetic, r.Provenance)
				assert.Equal(t, fixture.HomeTeam, r.HomeTeam)
			}
		})
	}
}

// TestH2HCollectorFallbackDisabled tests behaviour without a generator
func TestH2HCollectorFallbackDisabled(t *testing.T) {
	down := &fakeResults{name: "p", err: NewDataSourceError("p", ErrCodeServerError, "down", nil)}
	c := NewH2HCollector([]ResultsProvider{down}, nil, true, nil)
	_, err := c.Collect(context.Background(), nflFixture(t))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	sparse := &fakeResults{name: "p", results: []h2h.RawResult{scored(20, 10, 1)}}
	c = NewH2HCollector([]ResultsProvider{sparse}, fixedSynthetic, false, nil)
	res, err := c.Collect(context.Background(), nflFixture(t))
	require.NoError(t, err)
	assert.Equal(t, h2h.ProvenanceReal, res.Provenance)
	assert.Len(t, res.Raw, 1)
	assert.Equal(t, ReasonInsufficientRecords, res.FallbackReason)
}

// TestH2HCollectorStoreFallback tests that stored history is used before synthetic data
func TestH2HCollectorStoreFallback(t *testing.T) {
	store := &memoryStore{}
	for i, s := range [][2]int{{20, 17}, {24, 21}, {13, 10}} {
		store.stored = append(store.stored, models.StoredMatch{
			Sport: h2h.SportNFL, HomeScore: s[0], AwayScore: s[1],
			PlayedAt: time.Date(2023, 1, 1+i, 0, 0, 0, 0, time.UTC), Provenance: h2h.ProvenanceReal,
		})
	}
	down := &fakeResults{name: "p", err: NewDataSourceError("p", ErrCodeServerError, "down", nil)}

	c := NewH2HCollector([]ResultsProvider{down}, fixedSynthetic, true, nil).WithStore(store)
	res, err := c.Collect(context.Background(), nflFixture(t))
	require.NoError(t, err)
	assert.Equal(t, storeSourceName, res.Source)
	assert.Equal(t, h2h.ProvenanceReal, res.Provenance)
	assert.Len(t, res.Raw, 3)
}

// TestFixtureCollector tests schedule fallback and line attachment
func TestFixtureCollector(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	odds := decimal.RequireFromString("1.9")
	lines := &fakeOdds{lines: []models.BettingLine{{HomeTeam: "Los Angeles Lakers", AwayTeam: "Golden State Warriors", HomeOdds: &odds}}}

	down := &fakeSchedule{err: NewDataSourceError("s", ErrCodeServerError, "down", nil)}
	c := NewFixtureCollector([]ScheduleProvider{down}, []OddsProvider{lines}, true, nil)
	fixtures, err := c.Collect(context.Background(), h2h.SportNBA, date)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	for _, f := range fixtures {
		assert.Equal(t, h2h.ProvenanceSynthetic, f.Provenance)
	}
	require.NotNil(t, fixtures[0].Line, "Lakers line is attached")
	assert.Nil(t, fixtures[1].Line)

	c = NewFixtureCollector([]ScheduleProvider{down}, nil, false, nil)
	_, err = c.Collect(context.Background(), h2h.SportNBA, date)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	empty := &fakeSchedule{fixtures: []models.Fixture{}}
	c = NewFixtureCollector([]ScheduleProvider{empty}, nil, true, nil)
	fixtures, err = c.Collect(context.Background(), h2h.SportNBA, date)
	require.NoError(t, err)
	assert.Empty(t, fixtures, "an empty slate is not a failure")
}

// TestRandomGeneratorRanges tests sport-specific shapes and reproducibility
func TestRandomGeneratorRanges(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, sport := range h2h.Sports() {
		f, err := models.NewFixture(sport, "Home", "Away", now)
		require.NoError(t, err)

		g := NewRandomGenerator(11)
		for i := 0; i < 50; i++ {
			out := g.Generate(f, now)
			records, errs := h2h.NormalizeAll(out, mustProfile(t, sport))
			require.Empty(t, errs)
			require.GreaterOrEqual(t, len(records), 4)
			require.LessOrEqual(t, len(records), 10)

			for j, r := range out {
				assert.Equal(t, h2h.ProvenanceSynthetic, r.Provenance)
				assert.True(t, r.Date.Before(now.AddDate(0, 0, -29)))
				if j > 0 {
					assert.False(t, r.Date.After(out[j-1].Date))
				}
			}
			if sport == h2h.SportSoccer {
				for _, rec := range records {
					assert.LessOrEqual(t, rec.HomeScore, 4)
					assert.LessOrEqual(t, rec.AwayScore, 4)
				}
			}
		}
	}

	f, err := models.NewFixture(h2h.SportNBA, "Home", "Away", now)
	require.NoError(t, err)
	assert.Equal(t, NewRandomGenerator(5).Generate(f, now), NewRandomGenerator(5).Generate(f, now))
}

// TestSampleFixtures tests the built-in slate
func TestSampleFixtures(t *testing.T) {
	date := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for _, sport := range h2h.Sports() {
		fixtures := SampleFixtures(sport, date)
		require.NotEmpty(t, fixtures, sport)
		for _, f := range fixtures {
			assert.Equal(t, sport, f.Sport)
			assert.True(t, f.HasTeamIDs())
			assert.Equal(t, h2h.ProvenanceSynthetic, f.Provenance)
			assert.Equal(t, 1, f.StartTime.Day())
		}
	}
}
