// Package main provides a command line interface to the prediction pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/gamepredict/internal/app"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

var (
	configFile string
	jsonOutput bool
	sportName  string
	matchSport string
	homeTeam   string
	awayTeam   string
	dateFlag   string
	timeout    time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON result")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall run timeout")

	dailyCmd.Flags().StringVarP(&sportName, "sport", "s", "", "Restrict the report to one sport")
	dailyCmd.Flags().StringVarP(&dateFlag, "date", "d", "", "Report date (YYYY-MM-DD), defaults to today")

	matchCmd.Flags().StringVar(&homeTeam, "home", "", "Home team")
	matchCmd.Flags().StringVar(&awayTeam, "away", "", "Away team")
	matchCmd.Flags().StringVarP(&matchSport, "sport", "s", "nfl", "Sport or alias")
	_ = matchCmd.MarkFlagRequired("home")
	_ = matchCmd.MarkFlagRequired("away")

	historyCmd.Flags().StringVarP(&dateFlag, "date", "d", "", "Day to list (YYYY-MM-DD), defaults to today")

	rootCmd.AddCommand(dailyCmd, matchCmd, historyCmd)
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Head-to-head betting predictions",
	Long:  `Analyses head-to-head history for today's fixtures or a single matchup and prints the qualifying bets.`,
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Analyse the day's fixtures across enabled sports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, cancel, err := setup()
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		date := time.Now()
		if dateFlag != "" {
			if date, err = time.Parse("2006-01-02", dateFlag); err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		sports := a.Daily.Sports()
		if sportName != "" {
			sport, err := h2h.ParseSport(sportName)
			if err != nil {
				return err
			}
			sports = []h2h.Sport{sport}
		}

		report, run, err := a.Daily.Run(ctx, date, sports)
		if err != nil {
			return err
		}
		a.Logger.Debug(run.String())
		if jsonOutput {
			return printJSON(report)
		}
		printReport(report)
		return nil
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Analyse a single matchup",
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := h2h.ParseSport(matchSport)
		if err != nil {
			return err
		}
		a, ctx, cancel, err := setup()
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		pred, err := a.Predictor.PredictMatch(ctx, sport, homeTeam, awayTeam)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(pred)
		}
		printPrediction(pred)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recommendations stored for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, cancel, err := setup()
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		if a.Repos == nil {
			return fmt.Errorf("history requires database.enabled")
		}
		date := time.Now()
		if dateFlag != "" {
			if date, err = time.Parse("2006-01-02", dateFlag); err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		recs, err := a.Repos.Recommendation.GetByDate(ctx, date)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(recs)
		}
		fmt.Printf("\nStored recommendations for %s: %d\n", date.Format("2006-01-02"), len(recs))
		for i, rec := range recs {
			fmt.Printf("%2d. %-40s %-22s conf %.1f%%  odds %s  %s\n",
				i+1, rec.Match, rec.Selection, rec.Confidence*100, rec.Odds.StringFixed(2), rec.DataProvenance)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() (*app.App, context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	cfg, err := app.LoadConfig(ctx, configFile)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		if a != nil {
			a.Close()
		}
		cancel()
		return nil, nil, nil, err
	}
	return a, ctx, cancel, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(r *models.DailyReport) {
	fmt.Printf("\nDaily predictions for %s\n", r.Date)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Matches analysed:    %d\n", r.TotalAnalyzed)
	fmt.Printf("Qualifying bets:     %d\n", r.RecommendationsFound)
	fmt.Printf("Skipped:             %d\n", r.Skipped)
	if r.SyntheticPredictions > 0 {
		fmt.Printf("Synthetic history:   %d\n", r.SyntheticPredictions)
	}
	fmt.Println()

	for i, rec := range r.Recommendations {
		fmt.Printf("%2d. %-40s %-22s conf %.1f%%  odds %s\n",
			i+1, rec.Match, rec.Selection, rec.Confidence*100, rec.Odds.StringFixed(2))
	}
	if r.AccumulatorOdds != nil {
		fmt.Printf("\nAccumulator odds: %s\n", r.AccumulatorOdds.StringFixed(2))
	}
	fmt.Printf("Strategy: %s\n", r.Strategy)
}

func printPrediction(p *models.Prediction) {
	fmt.Printf("\n%s (%s)\n", p.Fixture.MatchName(), p.Fixture.Sport)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Status:      %s\n", p.Status)
	if p.Reason != "" {
		fmt.Printf("Reason:      %s\n", p.Reason)
	}
	fmt.Printf("H2H games:   %d (%s)\n", p.SampleSize, p.DataProvenance)
	for _, rec := range p.Recommendations {
		fmt.Printf("  %-14s %-26s conf %.1f%%  odds %s  %s\n",
			rec.BetType, rec.Selection, rec.Confidence*100, rec.Odds.StringFixed(2), rec.Quality)
	}
}
