// Package view turns a Dataset into the artifacts shown on the dashboard.
// Every function here is pure: the same input always gives the same output
// and the input is never modified.
package view

import (
	"sort"
	"time"

	"github.com/i474232898/econ-dashboard/internal/econ"
)

const (
	// NoData is shown wherever there is nothing to render.
	NoData = "No data available"
	// ChartTitle heads the time series chart.
	ChartTitle = "Economic Indicators Over Time"
	// PageSize is the number of rows per raw table page.
	PageSize = 10
)

// Point is one plotted observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Label string    `json:"label"`
}

// Line is the plotted history of one series.
type Line struct {
	Title  string    `json:"title"`
	Unit   econ.Unit `json:"unit"`
	Points []Point   `json:"points"`
}

// Chart is the time series figure.
type Chart struct {
	Title       string `json:"title"`
	Lines       []Line `json:"lines"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool { return len(c.Lines) == 0 }

// TimeSeries builds one line per distinct title, in first-seen order, with
// points ascending by date. Missing values are left out of the line.
func TimeSeries(ds econ.Dataset) Chart {
	if ds.Empty() {
		return Chart{Title: NoData, Placeholder: NoData}
	}

	var lines []Line
	index := make(map[string]int)
	for _, row := range ds.Rows {
		i, ok := index[row.Title]
		if !ok {
			i = len(lines)
			index[row.Title] = i
			lines = append(lines, Line{Title: row.Title, Unit: row.Unit, Points: []Point{}})
		}
		f, ok := row.Value.Float64()
		if !ok {
			continue
		}
		lines[i].Points = append(lines[i].Points, Point{Date: row.Date, Value: f, Label: row.FormattedValue})
	}

	for i := range lines {
		pts := lines[i].Points
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Date.Before(pts[b].Date) })
	}
	return Chart{Title: ChartTitle, Lines: lines}
}

// Trend marks series whose direction is worth highlighting in the latest
// values table.
type Trend string

const (
	TrendNone    Trend = ""
	TrendAdverse Trend = "adverse"
	TrendGrowth  Trend = "growth"
)

var trends = map[string]Trend{
	"UNRATE": TrendAdverse,
	"GDP":    TrendGrowth,
}

// LatestRow is the most recent observation of one series.
type LatestRow struct {
	econ.Row
	Trend Trend `json:"trend,omitempty"`
}

// Latest returns, per series id, the row with the greatest date, ordered by
// series id. When several rows share that date the first one in store order
// wins.
func Latest(ds econ.Dataset) []LatestRow {
	best := make(map[string]int)
	for i, row := range ds.Rows {
		j, ok := best[row.SeriesID]
		if !ok || row.Date.After(ds.Rows[j].Date) {
			best[row.SeriesID] = i
		}
	}

	ids := make([]string, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]LatestRow, 0, len(ids))
	for _, id := range ids {
		out = append(out, LatestRow{Row: ds.Rows[best[id]], Trend: trends[id]})
	}
	return out
}

// Columns of the raw table, in dataset field order.
var Columns = []string{"Series ID", "Title", "Date", "Value", "Unit", "Formatted Value"}

// RawPage is one page of the raw table. Rows are rendered cells in Columns
// order.
type RawPage struct {
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	TotalRows  int        `json:"totalRows"`
	Message    string     `json:"message,omitempty"`
}

// Raw returns page (1-based) of the dataset in store order. Pages below 1
// give the first page and pages past the end give the last one.
func Raw(ds econ.Dataset, page int) RawPage {
	if ds.Empty() {
		return RawPage{Columns: Columns, Rows: [][]string{}, Message: NoData}
	}

	total := len(ds.Rows)
	pages := (total + PageSize - 1) / PageSize
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)

	rows := make([][]string, 0, end-start)
	for _, r := range ds.Rows[start:end] {
		rows = append(rows, []string{
			r.SeriesID,
			r.Title,
			r.Date.Format(econ.DateLayout),
			r.Value.String(),
			string(r.Unit),
			r.FormattedValue,
		})
	}
	return RawPage{Columns: Columns, Rows: rows, Page: page, TotalPages: pages, TotalRows: total}
}

// EventRow is a calendar event ready for display.
type EventRow struct {
	Time     string `json:"time"`
	Country  string `json:"country"`
	Event    string `json:"event"`
	Actual   string `json:"actual"`
	Forecast string `json:"forecast"`
}

// Calendar converts stored events into display rows, keeping their order.
func Calendar(events []econ.Event) []EventRow {
	out := make([]EventRow, 0, len(events))
	for _, e := range events {
		out = append(out, EventRow{
			Time:     e.Time,
			Country:  e.Country,
			Event:    e.Name,
			Actual:   e.Actual,
			Forecast: e.Forecast,
		})
	}
	return out
}
