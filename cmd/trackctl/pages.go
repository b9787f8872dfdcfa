package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitepulse/api/models"
	"sitepulse/api/report"
)

var (
	pageFilter string
	pageSort   string
	pageAsc    bool
	exportOut  string
)

func init() {
	for _, c := range []*cobra.Command{pagesCmd, exportCmd} {
		c.Flags().StringVar(&pageFilter, "filter", "", "keep paths containing this text (case-insensitive)")
		c.Flags().StringVar(&pageSort, "sort", string(report.SortViews), "sort key: views, ctr, duration, clicks, unique")
		c.Flags().BoolVar(&pageAsc, "asc", false, "sort ascending")
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", report.CSVFileName, "output file, - for stdout")
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List per-page statistics",
	Long: `List per-page statistics, optionally filtered and sorted.

Examples:
  trackctl pages --days 30 --sort ctr
  trackctl pages --filter blog --sort duration --asc`,
	Args: cobra.NoArgs,
	RunE: runPages,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export per-page statistics as CSV",
	Long: `Export the filtered and sorted page table to a CSV file.

Examples:
  trackctl export --days 30
  trackctl export --filter blog -o -`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func selectedPages(cmd *cobra.Command) ([]models.TrackingPageStat, error) {
	key, err := report.ParseSortKey(pageSort)
	if err != nil {
		return nil, err
	}
	board, err := loadBoard(cmd)
	if err != nil {
		return nil, err
	}
	pages := report.FilterPages(board.Snapshot().Summary.Pages, pageFilter)
	return report.SortPages(pages, key, !pageAsc), nil
}

func runPages(cmd *cobra.Command, args []string) error {
	pages, err := selectedPages(cmd)
	if err != nil {
		return err
	}
	printPages(cmd.OutOrStdout(), pages)
	return nil
}

func printPages(out io.Writer, pages []models.TrackingPageStat) {
	if len(pages) == 0 {
		fmt.Fprintln(out, "No pages in range")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PATH\tVIEWS\tUNIQUE\tCLICKS\tCTR\tAVG MS\tORGANIC\tDIRECT\t")
	for _, p := range pages {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\t%.0f\t%d\t%d\t\n",
			p.Path, p.Views, p.UniqueVisitors, p.Clicks, p.ClickRate*100, p.AvgDurationMs, p.OrganicViews, p.DirectViews)
	}
	tw.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	pages, err := selectedPages(cmd)
	if err != nil {
		return err
	}

	if exportOut == "-" {
		return report.WriteCSV(cmd.OutOrStdout(), pages)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	if err := report.WriteCSV(f, pages); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d pages to %s (%s)\n", len(pages), exportOut, report.CSVContentType)
	return nil
}
