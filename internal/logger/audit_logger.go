package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger records data provenance decisions so that synthetic data is never silent.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSyntheticFallback logs the replacement of real H2H data with generated records.
func (al *AuditLogger) LogSyntheticFallback(sport, match, reason string, realRecords, syntheticRecords int) {
	al.WithFields(logrus.Fields{
		"event_type":        "synthetic_fallback",
		"sport":             sport,
		"match":             match,
		"reason":            reason,
		"real_records":      realRecords,
		"synthetic_records": syntheticRecords,
	}).Warn("H2H data replaced with synthetic records")
}

// LogSampleFixtures logs the use of built-in sample fixtures.
func (al *AuditLogger) LogSampleFixtures(sport, reason string, count int) {
	al.WithFields(logrus.Fields{
		"event_type": "sample_fixtures",
		"sport":      sport,
		"reason":     reason,
		"fixtures":   count,
	}).Warn("Schedule replaced with sample fixtures")
}

// LogDroppedRecords logs H2H records rejected by the normalizer.
func (al *AuditLogger) LogDroppedRecords(sport, match string, dropped int, firstErr error) {
	al.WithFields(logrus.Fields{
		"event_type": "records_dropped",
		"sport":      sport,
		"match":      match,
		"dropped":    dropped,
		"error":      firstErr,
	}).Info("Malformed H2H records dropped")
}

// LogSkipped logs a prediction skipped for insufficient data.
func (al *AuditLogger) LogSkipped(predictionID, sport, match, reason string, sampleSize int) {
	al.WithFields(logrus.Fields{
		"event_type":    "prediction_skipped",
		"prediction_id": predictionID,
		"sport":         sport,
		"match":         match,
		"reason":        reason,
		"sample_size":   sampleSize,
	}).Info("Prediction skipped")
}

// LogRecommendation logs an emitted recommendation together with its data provenance.
func (al *AuditLogger) LogRecommendation(predictionID, sport, match, betType, selection string, confidence float64, provenance string) {
	al.WithFields(logrus.Fields{
		"event_type":    "recommendation",
		"prediction_id": predictionID,
		"sport":         sport,
		"match":         match,
		"bet_type":      betType,
		"selection":     selection,
		"confidence":    confidence,
		"provenance":    provenance,
	}).Info("Recommendation emitted")
}
