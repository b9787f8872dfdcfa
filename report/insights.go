package report

import (
	"fmt"
	"strings"

	"sitepulse/api/models"
)

// MinInsightViews is the traffic a page needs before it can headline an insight.
const MinInsightViews = 5

type Insights struct {
	TopClickRate *models.TrackingPageStat `json:"topClickRate,omitempty"`
	LongestDwell *models.TrackingPageStat `json:"longestDwell,omitempty"`
	OrganicShare float64                  `json:"organicShare"`
}

// Summarize picks the pages worth calling out. Pages with fewer than
// MinInsightViews views are ignored; the pointers are nil when none qualify.
func Summarize(pages []models.TrackingPageStat, totals models.TrackingTotals) Insights {
	in := Insights{OrganicShare: totals.OrganicShare}
	for i := range pages {
		p := pages[i]
		if p.Views < MinInsightViews {
			continue
		}
		if in.TopClickRate == nil || p.ClickRate > in.TopClickRate.ClickRate {
			in.TopClickRate = &p
		}
		if in.LongestDwell == nil || p.AvgDurationMs > in.LongestDwell.AvgDurationMs {
			in.LongestDwell = &p
		}
	}
	return in
}

// Metric selects a time series column.
type Metric string

const (
	MetricViews   Metric = "views"
	MetricClicks  Metric = "clicks"
	MetricOrganic Metric = "organic"
	MetricDirect  Metric = "direct"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricViews, MetricClicks, MetricOrganic, MetricDirect:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q (views, clicks, organic, direct)", s)
	}
}

// TrendResult compares the last point of a series with the first.
type TrendResult struct {
	First int     `json:"first"`
	Last  int     `json:"last"`
	Delta int     `json:"delta"`
	Pct   float64 `json:"pct"`
}

// Trend reports how metric moved across points. ok is false with fewer than
// two points. Growth from zero counts as 100%.
func Trend(points []models.TrackingTimeseriesPoint, metric Metric) (TrendResult, bool) {
	if len(points) < 2 {
		return TrendResult{}, false
	}
	first := pointValue(points[0], metric)
	last := pointValue(points[len(points)-1], metric)

	res := TrendResult{First: first, Last: last, Delta: last - first}
	switch {
	case first != 0:
		res.Pct = float64(res.Delta) / float64(first)
	case last > 0:
		res.Pct = 1
	}
	return res, true
}

func pointValue(p models.TrackingTimeseriesPoint, metric Metric) int {
	switch metric {
	case MetricClicks:
		return p.Clicks
	case MetricOrganic:
		return p.Organic
	case MetricDirect:
		return p.Direct
	default:
		return p.Views
	}
}
