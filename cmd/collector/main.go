// Package main provides the entry point for the H2H history collector.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gamepredict/internal/app"
	"github.com/yourusername/gamepredict/internal/scheduler"
)

var (
	configFile string
	dateFlag   string
	days       int
	schedule   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().StringVarP(&dateFlag, "date", "d", "", "First fixture date (YYYY-MM-DD), defaults to today")
	rootCmd.Flags().IntVar(&days, "days", 1, "Number of consecutive days to collect")
	rootCmd.Flags().BoolVar(&schedule, "schedule", false, "Run the configured cron jobs until interrupted")
}

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Store real head-to-head history for upcoming fixtures",
	Long:  `Fetches the fixtures of each day and stores their real head-to-head results in the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		if dateFlag != "" {
			var err error
			if start, err = time.Parse("2006-01-02", dateFlag); err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}
		if days < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		return run(start, days)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(start time.Time, days int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := app.LoadConfig(ctx, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("collector requires database.enabled")
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		if a != nil {
			a.Close()
		}
		return err
	}
	defer a.Close()

	if schedule {
		return runScheduled(ctx, a)
	}

	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		res, err := a.Sync.SyncH2H(ctx, date)
		if err != nil {
			return fmt.Errorf("sync %s: %w", date.Format("2006-01-02"), err)
		}
		a.Logger.WithFields(logrus.Fields{
			"date":      date.Format("2006-01-02"),
			"fixtures":  res.Fixtures,
			"real":      res.Real,
			"synthetic": res.Synthetic,
			"failed":    res.Failed,
		}).Info("Collected H2H history")
	}

	for _, sport := range a.Daily.Sports() {
		n, err := a.Repos.Match.CountBySport(ctx, sport)
		if err != nil {
			return err
		}
		a.Logger.WithFields(logrus.Fields{"sport": sport, "stored": n}).Info("Stored H2H matches")
	}
	return nil
}

// runScheduled runs the H2H sync and the daily cache warmup on their cron schedules
func runScheduled(ctx context.Context, a *app.App) error {
	sc := a.Config.Scheduler
	sched := scheduler.NewScheduler(a.Predictions, a.Sync, nil, a.Logger)
	if sc.H2HSyncCron != "" {
		if err := sched.ScheduleH2HSync(sc.H2HSyncCron); err != nil {
			return err
		}
	}
	if sc.DailyPredictionsCron != "" {
		if err := sched.ScheduleDailyPredictions(sc.DailyPredictionsCron); err != nil {
			return err
		}
	}
	if err := sched.Start(); err != nil {
		return err
	}
	a.Logger.WithField("next_run", sched.GetNextRun()).Info("Collector scheduler running")

	<-ctx.Done()
	return sched.Stop()
}
