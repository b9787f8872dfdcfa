package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/api/models"
)

func samplePages() []models.TrackingPageStat {
	return []models.TrackingPageStat{
		{Path: "/", Views: 40, UniqueVisitors: 30, Clicks: 10, ClickRate: 0.25, AvgDurationMs: 3200, OrganicViews: 12, DirectViews: 20},
		{Path: "/blog", Views: 20, UniqueVisitors: 18, Clicks: 2, ClickRate: 0.1, AvgDurationMs: 8100.5, OrganicViews: 15, DirectViews: 3},
		{Path: "/Blog/Launch-Notes", Views: 20, UniqueVisitors: 5, Clicks: 9, ClickRate: 0.45, AvgDurationMs: 5000, OrganicViews: 2, DirectViews: 1},
		{Path: "/blog/draft", Views: 3, UniqueVisitors: 3, Clicks: 3, ClickRate: 1, AvgDurationMs: 90000},
	}
}

func paths(pages []models.TrackingPageStat) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Path
	}
	return out
}

func TestFilterPages(t *testing.T) {
	pages := samplePages()

	assert.Equal(t, []string{"/blog", "/Blog/Launch-Notes", "/blog/draft"}, paths(FilterPages(pages, "BLOG")))
	assert.Equal(t, []string{"/Blog/Launch-Notes"}, paths(FilterPages(pages, "launch")))
	assert.Len(t, FilterPages(pages, ""), 4)
	assert.Empty(t, FilterPages(pages, "pricing"))
	assert.Equal(t, "/", pages[0].Path)
}

func TestSortPages_Stable(t *testing.T) {
	pages := samplePages()

	byViews := SortPages(pages, SortViews, true)
	assert.Equal(t, []string{"/", "/blog", "/Blog/Launch-Notes", "/blog/draft"}, paths(byViews))

	asc := SortPages(pages, SortViews, false)
	assert.Equal(t, []string{"/blog/draft", "/blog", "/Blog/Launch-Notes", "/"}, paths(asc))

	assert.Equal(t, []string{"/blog/draft", "/Blog/Launch-Notes", "/", "/blog"}, paths(SortPages(pages, SortCTR, true)))
	assert.Equal(t, []string{"/", "/blog", "/Blog/Launch-Notes", "/blog/draft"}, paths(pages), "input must not be reordered")
}

func TestSortPages_OtherKeys(t *testing.T) {
	pages := samplePages()

	assert.Equal(t, "/blog/draft", SortPages(pages, SortDuration, true)[0].Path)
	assert.Equal(t, "/", SortPages(pages, SortClicks, true)[0].Path)
	assert.Equal(t, "/blog/draft", SortPages(pages, SortUnique, false)[0].Path)
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("CTR")
	require.NoError(t, err)
	assert.Equal(t, SortCTR, k)

	k, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortViews, k)

	_, err = ParseSortKey("bounce")
	assert.Error(t, err)
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name        string
		first, last int
		wantDelta   int
		wantPct     float64
	}{
		{"flat at zero", 0, 0, 0, 0},
		{"growth from zero", 0, 10, 10, 1},
		{"growth", 10, 15, 5, 0.5},
		{"decline", 20, 5, -15, -0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := []models.TrackingTimeseriesPoint{
				{Date: "2026-10-01", Views: tt.first},
				{Date: "2026-10-02", Views: 99},
				{Date: "2026-10-03", Views: tt.last},
			}
			res, ok := Trend(points, MetricViews)
			require.True(t, ok)
			assert.Equal(t, tt.wantDelta, res.Delta)
			assert.InDelta(t, tt.wantPct, res.Pct, 1e-9)
		})
	}
}

func TestTrend_NeedsTwoPoints(t *testing.T) {
	_, ok := Trend(nil, MetricViews)
	assert.False(t, ok)

	_, ok = Trend([]models.TrackingTimeseriesPoint{{Date: "2026-10-01", Views: 3}}, MetricViews)
	assert.False(t, ok)
}

func TestTrend_Metrics(t *testing.T) {
	points := []models.TrackingTimeseriesPoint{
		{Date: "2026-10-01", Views: 10, Clicks: 1, Organic: 4, Direct: 6},
		{Date: "2026-10-02", Views: 12, Clicks: 3, Organic: 2, Direct: 6},
	}

	clicks, _ := Trend(points, MetricClicks)
	assert.Equal(t, 2, clicks.Delta)
	organic, _ := Trend(points, MetricOrganic)
	assert.InDelta(t, -0.5, organic.Pct, 1e-9)
	direct, _ := Trend(points, MetricDirect)
	assert.Zero(t, direct.Delta)

	_, err := ParseMetric("bounces")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	in := Summarize(samplePages(), models.TrackingTotals{Views: 83, OrganicShare: 0.35})

	require.NotNil(t, in.TopClickRate)
	assert.Equal(t, "/Blog/Launch-Notes", in.TopClickRate.Path)
	require.NotNil(t, in.LongestDwell)
	assert.Equal(t, "/blog", in.LongestDwell.Path)
	assert.Equal(t, 0.35, in.OrganicShare)
}

func TestSummarize_LowTraffic(t *testing.T) {
	pages := []models.TrackingPageStat{{Path: "/", Views: 4, ClickRate: 1, AvgDurationMs: 5000}}

	in := Summarize(pages, models.TrackingTotals{})

	assert.Nil(t, in.TopClickRate)
	assert.Nil(t, in.LongestDwell)
}

func TestWriteCSV_Format(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.TrackingPageStat{
		{Path: `/say-"hi"`, Views: 3, UniqueVisitors: 2, Clicks: 1, ClickRate: 1.0 / 3, AvgDurationMs: 1500, OrganicViews: 1, DirectViews: 2},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"path","views","uniqueVisitors","clicks","clickRate","avgDurationMs","organicViews","directViews"`, lines[0])
	assert.Equal(t, `"/say-""hi""","3","2","1","0.3333","1500","1","2"`, lines[1])
}

func TestCSV_RoundTrip(t *testing.T) {
	pages := samplePages()
	pages[0].ClickRate = 2.0 / 7

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, pages))

	parsed, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(pages))
	for i := range pages {
		assert.Equal(t, pages[i].Path, parsed[i].Path)
		assert.Equal(t, pages[i].Views, parsed[i].Views)
		assert.Equal(t, pages[i].UniqueVisitors, parsed[i].UniqueVisitors)
		assert.Equal(t, pages[i].Clicks, parsed[i].Clicks)
		assert.InDelta(t, pages[i].ClickRate, parsed[i].ClickRate, 0.00005)
		assert.InDelta(t, pages[i].AvgDurationMs, parsed[i].AvgDurationMs, 1e-9)
		assert.Equal(t, pages[i].OrganicViews, parsed[i].OrganicViews)
		assert.Equal(t, pages[i].DirectViews, parsed[i].DirectViews)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("\"path\",\"hits\",\"a\",\"b\",\"c\",\"d\",\"e\",\"f\"\r\n"))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	buf.WriteString(`"/","x","1","1","0.5000","10","0","0"` + "\r\n")
	_, err = ParseCSV(&buf)
	assert.Error(t, err)
}
