// Package main provides the entry point for the prediction API service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/api"
	"github.com/yourusername/gamepredict/internal/app"
	"github.com/yourusername/gamepredict/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := app.LoadConfig(ctx, "")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(ctx, cfg)
	if a == nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	defer a.Close()
	appLog := a.Logger

	apiCfg := api.Config{
		ServiceName:    cfg.App.Name,
		Version:        Version,
		Commit:         GitCommit,
		Address:        cfg.ListenAddress(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		Logger:         appLog,
		Sports:         cfg.EnabledSports(),
		MetricsPath:    cfg.Metrics.Path,
		DisableMetrics: !cfg.Metrics.Enabled,
	}
	if a.DB != nil {
		apiCfg.DB = a.DB
	}
	if err != nil {
		appLog.WithError(err).Error("Predictor unavailable, serving health endpoints only")
	} else {
		apiCfg.Predictions = a.Predictions
	}
	server := api.NewServer(apiCfg)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled && err == nil {
		sched = scheduler.NewScheduler(a.Predictions, a.Sync, server.Hub(), appLog)
		if expr := cfg.Scheduler.DailyPredictionsCron; expr != "" {
			if err := sched.ScheduleDailyPredictions(expr); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule daily predictions")
			}
		}
		if expr := cfg.Scheduler.H2HSyncCron; expr != "" && a.DB != nil {
			if err := sched.ScheduleH2HSync(expr); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule H2H sync")
			}
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		appLog.WithField("next_run", sched.GetNextRun()).Info("Scheduler started")
	}

	if err := server.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start API server")
	}

	appLog.WithFields(logrus.Fields{
		"address":   cfg.ListenAddress(),
		"version":   Version,
		"scheduler": sched != nil,
	}).Info("GamePredict API running")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error during scheduler shutdown")
		}
	}
	if err := server.Shutdown(time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second); err != nil {
		appLog.WithError(err).Error("Error during API server shutdown")
	}

	appLog.Info("GamePredict API shut down successfully")
}
