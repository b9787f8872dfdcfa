package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitepulse/api/models"
	"sitepulse/api/report"
)

var summaryJSON bool

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the raw summary as JSON")
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals, trends and insights",
	Long: `Show headline totals, first-to-last trends and insights for a range.

Examples:
  trackctl summary --days 7
  trackctl summary --from 2026-09-01 --to 2026-09-30
  trackctl summary --json`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	board, err := loadBoard(cmd)
	if err != nil {
		return err
	}
	summary := board.Snapshot().Summary
	out := cmd.OutOrStdout()

	if summaryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	printSummary(out, summary)
	return nil
}

func printSummary(out io.Writer, s models.TrackingSummary) {
	fmt.Fprintf(out, "Range:          %s .. %s\n", s.Since.Format(models.DateLayout), s.Until.Format(models.DateLayout))
	fmt.Fprintf(out, "Views:          %d\n", s.Totals.Views)
	fmt.Fprintf(out, "Clicks:         %d\n", s.Totals.Clicks)
	fmt.Fprintf(out, "Avg duration:   %.0f ms\n", s.Totals.AvgDurationMs)
	fmt.Fprintf(out, "Organic share:  %.1f%%\n", s.Totals.OrganicShare*100)

	fmt.Fprintln(out, "\nTrends (first day vs last day):")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, m := range []report.Metric{report.MetricViews, report.MetricClicks, report.MetricOrganic, report.MetricDirect} {
		res, ok := report.Trend(s.Timeseries, m)
		if !ok {
			fmt.Fprintf(tw, "  %s\tnot enough data\n", m)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%d -> %d\t%+d\t%+.1f%%\n", m, res.First, res.Last, res.Delta, res.Pct*100)
	}
	tw.Flush()

	in := report.Summarize(s.Pages, s.Totals)
	fmt.Fprintln(out, "\nInsights:")
	if in.TopClickRate != nil {
		fmt.Fprintf(out, "  Best click-through: %s (%.1f%%)\n", in.TopClickRate.Path, in.TopClickRate.ClickRate*100)
	}
	if in.LongestDwell != nil {
		fmt.Fprintf(out, "  Longest dwell:      %s (%.0f ms)\n", in.LongestDwell.Path, in.LongestDwell.AvgDurationMs)
	}
	if in.TopClickRate == nil && in.LongestDwell == nil {
		fmt.Fprintf(out, "  No page has %d or more views yet\n", report.MinInsightViews)
	}
	fmt.Fprintf(out, "  Organic share:      %.1f%%\n", in.OrganicShare*100)
}
