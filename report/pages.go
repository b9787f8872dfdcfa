// Package report turns a TrackingSummary into the views an operator reads:
// filtered and sorted page tables, trends, headline insights and CSV exports.
package report

import (
	"fmt"
	"sort"
	"strings"

	"sitepulse/api/models"
)

// SortKey names a column of the pages table.
type SortKey string

const (
	SortViews    SortKey = "views"
	SortCTR      SortKey = "ctr"
	SortDuration SortKey = "duration"
	SortClicks   SortKey = "clicks"
	SortUnique   SortKey = "unique"
)

// ParseSortKey accepts the key names used on the command line and in queries.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortViews, SortCTR, SortDuration, SortClicks, SortUnique:
		return k, nil
	case "":
		return SortViews, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (views, ctr, duration, clicks, unique)", s)
	}
}

// FilterPages keeps the pages whose path contains query, ignoring case.
// An empty query keeps everything. The input is not modified.
func FilterPages(pages []models.TrackingPageStat, query string) []models.TrackingPageStat {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.TrackingPageStat, 0, len(pages))
	for _, p := range pages {
		if query == "" || strings.Contains(strings.ToLower(p.Path), query) {
			out = append(out, p)
		}
	}
	return out
}

// SortPages returns a copy of pages ordered by key. Ties keep their input order.
func SortPages(pages []models.TrackingPageStat, key SortKey, desc bool) []models.TrackingPageStat {
	out := append([]models.TrackingPageStat(nil), pages...)
	value := sortValue(key)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := value(out[i]), value(out[j])
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

func sortValue(key SortKey) func(models.TrackingPageStat) float64 {
	switch key {
	case SortCTR:
		return func(p models.TrackingPageStat) float64 { return p.ClickRate }
	case SortDuration:
		return func(p models.TrackingPageStat) float64 { return p.AvgDurationMs }
	case SortClicks:
		return func(p models.TrackingPageStat) float64 { return float64(p.Clicks) }
	case SortUnique:
		return func(p models.TrackingPageStat) float64 { return float64(p.UniqueVisitors) }
	default:
		return func(p models.TrackingPageStat) float64 { return float64(p.Views) }
	}
}
