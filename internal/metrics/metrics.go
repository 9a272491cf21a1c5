// Package metrics provides the centralized Prometheus metrics registry for the prediction service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gamepredict"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of fixture predictions by outcome status",
	}, []string{"sport", "status"})
	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of emitted recommendations",
	}, []string{"sport", "bet_type"})
	SyntheticFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "synthetic_fallbacks_total",
		Help:      "Total number of times H2H data was replaced with synthetic records",
	}, []string{"sport", "reason"})
	DroppedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_records_total",
		Help:      "Total number of malformed H2H records dropped by the normalizer",
	}, []string{"sport"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of prediction cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of prediction cache misses",
	})
)

// Gauge metrics
var (
	DailyRecommendations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "daily_recommendations",
		Help:      "Number of recommendations in the latest daily report",
	})
	LastDailyRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_daily_run_timestamp_seconds",
		Help:      "Unix time of the latest completed daily run",
	})
	StreamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Number of connected prediction stream clients",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Duration of a single fixture prediction in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"sport"})
	DailyRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "daily_run_duration_seconds",
		Help:      "Duration of a daily prediction run in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
	RecommendationConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommendation_confidence",
		Help:      "Confidence of emitted recommendations",
		Buckets:   []float64{0.75, 0.8, 0.85, 0.9, 0.95, 1},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(SyntheticFallbacksTotal)
		registry.MustRegister(DroppedRecordsTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)

		registry.MustRegister(DailyRecommendations)
		registry.MustRegister(LastDailyRunTimestamp)
		registry.MustRegister(StreamSubscribers)

		registry.MustRegister(PredictionDuration)
		registry.MustRegister(DailyRunDuration)
		registry.MustRegister(RecommendationConfidence)

		// Provider metrics
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(ProviderLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a finished fixture prediction.
func RecordPrediction(sport, status string, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(sport, status).Inc()
	PredictionDuration.WithLabelValues(sport).Observe(durationSeconds)
}

// RecordRecommendation records an emitted recommendation.
func RecordRecommendation(sport, betType string, confidence float64) {
	RecommendationsTotal.WithLabelValues(sport, betType).Inc()
	RecommendationConfidence.Observe(confidence)
}

// RecordSyntheticFallback records a switch to synthetic H2H data.
func RecordSyntheticFallback(sport, reason string) {
	SyntheticFallbacksTotal.WithLabelValues(sport, reason).Inc()
}

// RecordDroppedRecords records malformed records dropped for a sport.
func RecordDroppedRecords(sport string, count int) {
	if count <= 0 {
		return
	}
	DroppedRecordsTotal.WithLabelValues(sport).Add(float64(count))
}

// RecordCacheHit records a prediction cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a prediction cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordDailyRun records a completed daily report.
func RecordDailyRun(recommendations int, durationSeconds float64, completedAtUnix int64) {
	DailyRecommendations.Set(float64(recommendations))
	DailyRunDuration.Observe(durationSeconds)
	LastDailyRunTimestamp.Set(float64(completedAtUnix))
}

// UpdateStreamSubscribers updates the connected stream clients gauge.
func UpdateStreamSubscribers(count int) {
	StreamSubscribers.Set(float64(count))
}
