package service

import (
	"fmt"
	"sync"
	"time"
)

// RunMetrics tracks statistics about one daily prediction run
type RunMetrics struct {
	mu           sync.RWMutex
	StartTime    time.Time
	Duration     time.Duration
	Fixtures     int
	Analysed     int
	Recommended  int
	Skipped      int
	Synthetic    int
	Errors       int
	FailedSports int
}

// NewRunMetrics creates a new run tracker
func NewRunMetrics(start time.Time) *RunMetrics {
	return &RunMetrics{StartTime: start}
}

// RecordFixtures adds the fixtures scheduled for one sport
func (m *RunMetrics) RecordFixtures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fixtures += n
}

// RecordFailedSport increments the count of sports whose slate could not be fetched
func (m *RunMetrics) RecordFailedSport() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedSports++
}

// RecordError increments the count of fixtures that failed to analyse
func (m *RunMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordPrediction counts one analysed fixture by outcome
func (m *RunMetrics) RecordPrediction(recommended, skipped, synthetic bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Analysed++
	if recommended {
		m.Recommended++
	}
	if skipped {
		m.Skipped++
	}
	if synthetic {
		m.Synthetic++
	}
}

// Finish records the run duration
func (m *RunMetrics) Finish(end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = end.Sub(m.StartTime)
}

// String returns a formatted string representation of metrics
func (m *RunMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hitRate := float64(0)
	if m.Analysed > 0 {
		hitRate = float64(m.Recommended) / float64(m.Analysed) * 100
	}

	return fmt.Sprintf(
		"RunMetrics{Fixtures=%d, Analysed=%d, Recommended=%d (%.1f%%), Skipped=%d, Synthetic=%d, Errors=%d, FailedSports=%d, Duration=%v}",
		m.Fixtures,
		m.Analysed,
		m.Recommended,
		hitRate,
		m.Skipped,
		m.Synthetic,
		m.Errors,
		m.FailedSports,
		m.Duration,
	)
}
