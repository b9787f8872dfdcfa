// Package main implements trackctl, the operator CLI for the tracking API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitepulse/api/dashboard"
	"sitepulse/api/logger"
)

var (
	// serverURL is the base URL of the tracking API
	serverURL string
	token     string
	apiKey    string
	timeout   time.Duration

	days     int
	fromDate string
	toDate   string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "Operator CLI for the tracking API",
	Long: `trackctl reads tracking summaries from the API and renders them as
tables, trends, insights or CSV files.

Credentials are taken from --token / --api-key, or from the TRACKCTL_TOKEN and
DASHBOARD_API_KEY environment variables.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TRACKCTL_SERVER", "http://localhost:8080"), "tracking API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("TRACKCTL_TOKEN"), "operator JWT")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("DASHBOARD_API_KEY"), "dashboard API key")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.PersistentFlags().IntVar(&days, "days", 0, "rolling window in days (default: server default)")
	rootCmd.PersistentFlags().StringVar(&fromDate, "from", "", "first day of an explicit range (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&toDate, "to", "", "last day of an explicit range (YYYY-MM-DD)")
	rootCmd.MarkFlagsMutuallyExclusive("days", "from")
	rootCmd.MarkFlagsMutuallyExclusive("days", "to")
	rootCmd.MarkFlagsRequiredTogether("from", "to")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func selectedRange() dashboard.Range {
	return dashboard.Range{Days: days, From: fromDate, To: toDate}
}

// loadBoard runs one summary query and returns the resulting board. A failed
// query is reported together with the retry hint.
func loadBoard(cmd *cobra.Command) (*dashboard.Board, error) {
	log, err := logger.New("development")
	if err != nil {
		log = zap.NewNop()
	}

	opts := []dashboard.Option{}
	if token != "" {
		opts = append(opts, dashboard.WithToken(token))
	}
	if apiKey != "" {
		opts = append(opts, dashboard.WithAPIKey(apiKey))
	}
	client, err := dashboard.NewClient(serverURL, opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	board := dashboard.NewBoard(client, log)
	if err := board.Load(ctx, selectedRange()); err != nil {
		return nil, fmt.Errorf("failed to load summary for %s: %w (re-run to retry)", selectedRange(), err)
	}
	return board, nil
}
