// Package scheduler runs the daily prediction and H2H sync jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/models"
	"github.com/yourusername/gamepredict/internal/service"
)

// ReportRefresher recomputes today's report, bypassing any cached copy
type ReportRefresher interface {
	Refresh(ctx context.Context) (*models.DailyReport, error)
}

// H2HSyncer stores the real H2H history of a day's fixtures
type H2HSyncer interface {
	SyncH2H(ctx context.Context, date time.Time) (service.SyncResult, error)
}

// Broadcaster publishes a fresh report to live subscribers
type Broadcaster interface {
	BroadcastReport(report *models.DailyReport)
}

// Scheduler manages scheduled prediction jobs
type Scheduler struct {
	cron            *cron.Cron
	refresher       ReportRefresher
	syncer          H2HSyncer
	broadcaster     Broadcaster
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
	now             func() time.Time
}

// NewScheduler creates a new scheduler. The syncer and broadcaster may be nil.
func NewScheduler(refresher ReportRefresher, syncer H2HSyncer, broadcaster Broadcaster, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		refresher:       refresher,
		syncer:          syncer,
		broadcaster:     broadcaster,
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      30 * time.Minute,
		gracefulTimeout: 30 * time.Second,
		now:             time.Now,
	}
}

// ScheduleDailyPredictions schedules the daily report refresh
func (s *Scheduler) ScheduleDailyPredictions(cronExpression string) error {
	return s.schedule("daily_predictions", cronExpression, s.RunDailyPredictions)
}

// ScheduleH2HSync schedules storage of the day's real H2H history
func (s *Scheduler) ScheduleH2HSync(cronExpression string) error {
	if s.syncer == nil {
		return fmt.Errorf("h2h sync requires a syncer")
	}
	return s.schedule("h2h_sync", cronExpression, s.RunH2HSync)
}

func (s *Scheduler) schedule(name, cronExpression string, job func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "cron": cronExpression}).Info("Scheduled job")
	return nil
}

// RunDailyPredictions refreshes today's report and broadcasts it
func (s *Scheduler) RunDailyPredictions(ctx context.Context) error {
	report, err := s.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("daily predictions: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastReport(report)
	}
	s.logger.WithFields(logrus.Fields{
		"date":            report.Date,
		"recommendations": report.RecommendationsFound,
	}).Info("Scheduled daily predictions completed")
	return nil
}

// RunH2HSync stores the real H2H history of today's fixtures
func (s *Scheduler) RunH2HSync(ctx context.Context) error {
	if _, err := s.syncer.SyncH2H(ctx, s.now()); err != nil {
		return fmt.Errorf("h2h sync: %w", err)
	}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var next time.Time
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, id := range s.jobIDs {
		if entry := s.cron.Entry(id); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
