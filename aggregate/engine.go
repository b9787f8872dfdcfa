// Package aggregate derives TrackingSummary values from the raw event log.
package aggregate

import (
	"sort"
	"time"

	"sitepulse/api/classify"
	"sitepulse/api/models"
)

// TrafficClassifier attributes a page view to a traffic source.
type TrafficClassifier interface {
	Classify(referrer, utmSource, utmMedium string) classify.Source
}

type pageAcc struct {
	views     int
	clicks    int
	sessions  map[string]struct{}
	exitSumMs int64
	exitCount int
	organic   int
	direct    int
}

// Summarize is a pure function of its inputs and is safe to call concurrently.
// Events outside [since, until] are ignored. Every UTC day touched by the range
// gets a time series point, including days without events.
func Summarize(events []models.Event, since, until time.Time, classifier TrafficClassifier) models.TrackingSummary {
	since, until = since.UTC(), until.UTC()
	summary := models.TrackingSummary{
		Since:      since,
		Until:      until,
		Timeseries: zeroSeries(since, until),
		Pages:      []models.TrackingPageStat{},
	}

	dayIndex := make(map[string]int, len(summary.Timeseries))
	for i, p := range summary.Timeseries {
		dayIndex[p.Date] = i
	}

	pages := make(map[string]*pageAcc)
	for _, ev := range events {
		ts := ev.Timestamp.UTC()
		if ts.Before(since) || ts.After(until) {
			continue
		}

		acc, ok := pages[ev.Path]
		if !ok {
			acc = &pageAcc{sessions: make(map[string]struct{})}
			pages[ev.Path] = acc
		}
		point := &summary.Timeseries[dayIndex[ts.Format(models.DateLayout)]]

		switch ev.Type {
		case models.EventPageView:
			acc.views++
			acc.sessions[ev.SessionID] = struct{}{}
			point.Views++
			switch classifier.Classify(ev.Referrer, ev.UTMSource, ev.UTMMedium) {
			case classify.Organic:
				acc.organic++
				point.Organic++
			case classify.Direct:
				acc.direct++
				point.Direct++
			}
		case models.EventClick:
			acc.clicks++
			point.Clicks++
		case models.EventPageExit:
			acc.exitSumMs += ev.DurationMs
			acc.exitCount++
		}
	}

	var organic int
	var weightedDuration float64
	for path, acc := range pages {
		stat := models.TrackingPageStat{
			Path:           path,
			Views:          acc.views,
			UniqueVisitors: len(acc.sessions),
			Clicks:         acc.clicks,
			ClickRate:      ratio(acc.clicks, acc.views),
			OrganicViews:   acc.organic,
			DirectViews:    acc.direct,
		}
		if acc.exitCount > 0 {
			stat.AvgDurationMs = float64(acc.exitSumMs) / float64(acc.exitCount)
		}
		summary.Pages = append(summary.Pages, stat)

		summary.Totals.Views += stat.Views
		summary.Totals.Clicks += stat.Clicks
		organic += stat.OrganicViews
		weightedDuration += stat.AvgDurationMs * float64(stat.Views)
	}

	if summary.Totals.Views > 0 {
		summary.Totals.AvgDurationMs = weightedDuration / float64(summary.Totals.Views)
	}
	summary.Totals.OrganicShare = ratio(organic, summary.Totals.Views)

	sort.SliceStable(summary.Pages, func(i, j int) bool {
		if summary.Pages[i].Views != summary.Pages[j].Views {
			return summary.Pages[i].Views > summary.Pages[j].Views
		}
		return summary.Pages[i].Path < summary.Pages[j].Path
	})

	return summary
}

// ratio returns n/d clamped to [0, 1], or 0 when d is 0.
func ratio(n, d int) float64 {
	if d <= 0 || n <= 0 {
		return 0
	}
	if n >= d {
		return 1
	}
	return float64(n) / float64(d)
}

func zeroSeries(since, until time.Time) []models.TrackingTimeseriesPoint {
	points := []models.TrackingTimeseriesPoint{}
	if until.Before(since) {
		return points
	}
	day := startOfDay(since)
	last := startOfDay(until)
	for !day.After(last) {
		points = append(points, models.TrackingTimeseriesPoint{Date: day.Format(models.DateLayout)})
		day = day.AddDate(0, 0, 1)
	}
	return points
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
