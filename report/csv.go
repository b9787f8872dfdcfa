package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sitepulse/api/models"
)

const (
	CSVFileName    = "tracking-pages.csv"
	CSVContentType = "text/csv"
)

var csvHeader = []string{
	"path", "views", "uniqueVisitors", "clicks",
	"clickRate", "avgDurationMs", "organicViews", "directViews",
}

// WriteCSV writes a header row and one row per page in the given order. Every
// field is quoted and clickRate carries exactly four decimals.
func WriteCSV(w io.Writer, pages []models.TrackingPageStat) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, p := range pages {
		row := []string{
			p.Path,
			strconv.Itoa(p.Views),
			strconv.Itoa(p.UniqueVisitors),
			strconv.Itoa(p.Clicks),
			strconv.FormatFloat(p.ClickRate, 'f', 4, 64),
			strconv.FormatFloat(p.AvgDurationMs, 'f', -1, 64),
			strconv.Itoa(p.OrganicViews),
			strconv.Itoa(p.DirectViews),
		}
		if err := writeRow(bw, row); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", p.Path, err)
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// ParseCSV reads a file produced by WriteCSV.
func ParseCSV(r io.Reader) ([]models.TrackingPageStat, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected CSV column %d: got %q, want %q", i+1, header[i], name)
		}
	}

	pages := []models.TrackingPageStat{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		p, err := parseRow(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func parseRow(rec []string) (models.TrackingPageStat, error) {
	p := models.TrackingPageStat{Path: rec[0]}
	ints := []struct {
		dst *int
		col int
	}{
		{&p.Views, 1}, {&p.UniqueVisitors, 2}, {&p.Clicks, 3}, {&p.OrganicViews, 6}, {&p.DirectViews, 7},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(rec[f.col])
		if err != nil {
			return p, fmt.Errorf("column %s: %w", csvHeader[f.col], err)
		}
		*f.dst = n
	}

	var err error
	if p.ClickRate, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return p, fmt.Errorf("column clickRate: %w", err)
	}
	if p.AvgDurationMs, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return p, fmt.Errorf("column avgDurationMs: %w", err)
	}
	return p, nil
}
