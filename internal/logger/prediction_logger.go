package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for the prediction pipeline.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs the outcome of one fixture analysis.
func (pl *PredictionLogger) LogPrediction(sport, match, status string, sampleSize, recommendations int, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"sport":           sport,
		"match":           match,
		"status":          status,
		"sample_size":     sampleSize,
		"recommendations": recommendations,
		"latency_ms":      latencyMs,
	}).Info("Fixture analysed")
}

// LogDailyReport logs a completed daily run.
func (pl *PredictionLogger) LogDailyReport(date string, analysed, recommendations, skipped int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"date":            date,
		"analysed":        analysed,
		"recommendations": recommendations,
		"skipped":         skipped,
		"duration_ms":     durationMs,
	}).Info("Daily predictions completed")
}

// LogProviderRequest logs an outbound provider call.
func (pl *PredictionLogger) LogProviderRequest(provider, endpoint string, statusCode int, latencyMs float64, err error) {
	entry := pl.WithFields(logrus.Fields{
		"provider":    provider,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"latency_ms":  latencyMs,
	})
	if err != nil {
		entry.WithError(err).Warn("Provider request failed")
		return
	}
	entry.Debug("Provider request completed")
}
