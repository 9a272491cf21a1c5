// Package cache provides in-memory caching of daily reports and fixture predictions.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/gamepredict/internal/datasource"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/models"
)

const allSports = "all"

// ReportKey identifies a cached daily report
type ReportKey struct {
	Date  string
	Sport string
}

// NewReportKey builds the key of a day's report; an empty sport means every sport
func NewReportKey(date time.Time, sport h2h.Sport) ReportKey {
	s := string(sport)
	if s == "" {
		s = allSports
	}
	return ReportKey{Date: date.Format("2006-01-02"), Sport: s}
}

// String returns string representation of cache key
func (k ReportKey) String() string {
	return fmt.Sprintf("report:%s:%s", k.Date, k.Sport)
}

// MatchKey identifies a cached ad-hoc prediction
type MatchKey struct {
	Sport h2h.Sport
	Home  string
	Away  string
}

// String returns string representation of cache key. Team names are normalized so
// aliases share an entry.
func (k MatchKey) String() string {
	return fmt.Sprintf("match:%s:%s:%s", k.Sport,
		datasource.NormalizeTeamName(k.Home), datasource.NormalizeTeamName(k.Away))
}

// PredictionCache provides in-memory caching for prediction results
type PredictionCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache. A zero cleanup interval uses
// twice the TTL; a zero maxSize disables the size check.
func NewPredictionCache(ttl, cleanup time.Duration, maxSize int) *PredictionCache {
	if cleanup <= 0 {
		cleanup = ttl * 2
	}
	return &PredictionCache{
		cache:   gocache.New(ttl, cleanup),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// GetReport retrieves a cached daily report
func (pc *PredictionCache) GetReport(key ReportKey) *models.DailyReport {
	if v, ok := pc.get(key.String()); ok {
		if report, ok := v.(*models.DailyReport); ok {
			return report
		}
	}
	return nil
}

// SetReport stores a daily report
func (pc *PredictionCache) SetReport(key ReportKey, report *models.DailyReport) {
	pc.set(key.String(), report)
}

// GetPrediction retrieves a cached fixture prediction
func (pc *PredictionCache) GetPrediction(key MatchKey) *models.Prediction {
	if v, ok := pc.get(key.String()); ok {
		if pred, ok := v.(*models.Prediction); ok {
			return pred
		}
	}
	return nil
}

// SetPrediction stores a fixture prediction
func (pc *PredictionCache) SetPrediction(key MatchKey, pred *models.Prediction) {
	pc.set(key.String(), pred)
}

// InvalidateDate removes every report cached for the given day
func (pc *PredictionCache) InvalidateDate(date time.Time) int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	prefix := fmt.Sprintf("report:%s:", date.Format("2006-01-02"))
	removed := 0
	for k := range pc.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			pc.cache.Delete(k)
			removed++
		}
	}
	return removed
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	hits = pc.hitCount
	misses = pc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}

func (pc *PredictionCache) get(key string) (interface{}, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if v, found := pc.cache.Get(key); found {
		pc.hitCount++
		metrics.RecordCacheHit()
		return v, true
	}
	pc.missCount++
	metrics.RecordCacheMiss()
	return nil, false
}

func (pc *PredictionCache) set(key string, v interface{}) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if _, exists := pc.cache.Get(key); !exists && pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}
	pc.cache.Set(key, v, pc.ttl)
}
