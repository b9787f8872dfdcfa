package models

import "time"

// DateLayout is the layout of TrackingTimeseriesPoint.Date.
const DateLayout = "2006-01-02"

// TrackingTimeseriesPoint is one UTC calendar day of traffic.
type TrackingTimeseriesPoint struct {
	Date    string `json:"date"`
	Views   int    `json:"views"`
	Clicks  int    `json:"clicks"`
	Organic int    `json:"organic"`
	Direct  int    `json:"direct"`
}

// TrackingPageStat aggregates every event recorded for one path.
type TrackingPageStat struct {
	Path           string  `json:"path"`
	Views          int     `json:"views"`
	UniqueVisitors int     `json:"uniqueVisitors"`
	Clicks         int     `json:"clicks"`
	ClickRate      float64 `json:"clickRate"`
	AvgDurationMs  float64 `json:"avgDurationMs"`
	OrganicViews   int     `json:"organicViews"`
	DirectViews    int     `json:"directViews"`
}

type TrackingTotals struct {
	Views         int     `json:"views"`
	Clicks        int     `json:"clicks"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	OrganicShare  float64 `json:"organicShare"`
}

// TrackingSummary is derived from the event log on every query and never stored.
type TrackingSummary struct {
	Since      time.Time                 `json:"since"`
	Until      time.Time                 `json:"until"`
	Timeseries []TrackingTimeseriesPoint `json:"timeseries"`
	Totals     TrackingTotals            `json:"totals"`
	Pages      []TrackingPageStat        `json:"pages"`
}
