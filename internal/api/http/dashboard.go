package httpapi

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/econ-dashboard/internal/econ"
	"github.com/i474232898/econ-dashboard/internal/store"
	"github.com/i474232898/econ-dashboard/internal/view"
)

const (
	panelWidth  = 640
	panelHeight = 160
	panelPad    = 24
)

// panel is one series of the chart drawn as an SVG polyline. Each panel has
// its own value scale; all panels share the date axis.
type panel struct {
	Title    string
	Points   string
	Dots     []dot
	MinLabel string
	MaxLabel string
	From     string
	To       string
}

type dot struct {
	X, Y  float64
	Label string
}

type pageLink struct {
	Page    int
	Current bool
}

type dashboardData struct {
	RefreshSeconds int
	LastUpdated    string
	ChartTitle     string
	Placeholder    string
	Panels         []panel
	Width, Height  int
	Latest         []view.LatestRow
	Raw            view.RawPage
	Pages          []pageLink
	Events         []view.EventRow
	StoreErr       string
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format(econ.DateLayout) },
}).Parse(dashboardHTML))

func renderDashboard(c *fiber.Ctx, snap store.Snapshot, raw view.RawPage, refresh time.Duration) error {
	data := dashboardData{
		RefreshSeconds: int(refresh.Seconds()),
		LastUpdated:    snap.LastUpdated,
		ChartTitle:     snap.Chart.Title,
		Placeholder:    snap.Chart.Placeholder,
		Panels:         buildPanels(snap.Chart),
		Width:          panelWidth,
		Height:         panelHeight,
		Latest:         snap.Latest,
		Raw:            raw,
		Events:         snap.Events,
	}
	if data.RefreshSeconds < 1 {
		data.RefreshSeconds = 300
	}
	for p := 1; p <= raw.TotalPages; p++ {
		data.Pages = append(data.Pages, pageLink{Page: p, Current: p == raw.Page})
	}
	if snap.StoreErr != nil {
		data.StoreErr = snap.StoreErr.Error()
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return dashboardTmpl.Execute(c, data)
}

func buildPanels(chart view.Chart) []panel {
	if chart.Empty() {
		return nil
	}

	var tmin, tmax time.Time
	for _, l := range chart.Lines {
		for _, p := range l.Points {
			if tmin.IsZero() || p.Date.Before(tmin) {
				tmin = p.Date
			}
			if p.Date.After(tmax) {
				tmax = p.Date
			}
		}
	}
	span := tmax.Sub(tmin)

	x := func(t time.Time) float64 {
		if span <= 0 {
			return panelWidth / 2
		}
		return panelPad + float64(t.Sub(tmin))/float64(span)*(panelWidth-2*panelPad)
	}

	panels := make([]panel, 0, len(chart.Lines))
	for _, l := range chart.Lines {
		pn := panel{Title: l.Title}
		if len(l.Points) == 0 {
			panels = append(panels, pn)
			continue
		}

		lo, hi := l.Points[0], l.Points[0]
		for _, p := range l.Points {
			if p.Value < lo.Value {
				lo = p
			}
			if p.Value > hi.Value {
				hi = p
			}
		}
		y := func(v float64) float64 {
			if hi.Value == lo.Value {
				return panelHeight / 2
			}
			return panelHeight - panelPad - (v-lo.Value)/(hi.Value-lo.Value)*(panelHeight-2*panelPad)
		}

		coords := make([]string, 0, len(l.Points))
		for _, p := range l.Points {
			d := dot{X: x(p.Date), Y: y(p.Value), Label: p.Date.Format(econ.DateLayout) + ": " + p.Label}
			pn.Dots = append(pn.Dots, d)
			coords = append(coords, fmt.Sprintf("%.1f,%.1f", d.X, d.Y))
		}
		pn.Points = strings.Join(coords, " ")
		pn.MinLabel = lo.Label
		pn.MaxLabel = hi.Label
		pn.From = l.Points[0].Date.Format(econ.DateLayout)
		pn.To = l.Points[len(l.Points)-1].Date.Format(econ.DateLayout)
		panels = append(panels, pn)
	}
	return panels
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
<title>FRED Economic Dashboard</title>
<style>
body { font-family: sans-serif; background: #f5f5f5; padding: 20px; }
header { background: #1f77b4; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
header h1 { margin: 0; }
.last-update { font-style: italic; }
.card { background: white; border-radius: 5px; padding: 15px; margin-bottom: 20px; box-shadow: 0 4px 8px 0 rgba(0,0,0,0.2); }
table { border-collapse: collapse; width: 100%; }
th { background: #f8f9fa; font-weight: bold; }
th, td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
.trend-adverse { background: #ffcccc; }
.trend-growth { background: #ccffcc; }
.warn { color: #a94442; }
polyline { fill: none; stroke: #1f77b4; stroke-width: 2; }
circle { fill: #1f77b4; }
</style>
</head>
<body>
<header>
<h1>FRED Economic Dashboard</h1>
<div class="last-update">{{.LastUpdated}}</div>
</header>
{{if .StoreErr}}<p class="warn">{{.StoreErr}}</p>{{end}}

<section class="card">
<h3>{{.ChartTitle}}</h3>
{{if .Placeholder}}<p>{{.Placeholder}}</p>{{end}}
{{range .Panels}}
<h4>{{.Title}}</h4>
{{if .Points}}
<svg width="{{$.Width}}" height="{{$.Height}}" viewBox="0 0 {{$.Width}} {{$.Height}}">
<polyline points="{{.Points}}"></polyline>
{{range .Dots}}<circle cx="{{printf "%.1f" .X}}" cy="{{printf "%.1f" .Y}}" r="3"><title>{{.Label}}</title></circle>{{end}}
</svg>
<div>{{.From}} to {{.To}}, min {{.MinLabel}}, max {{.MaxLabel}}</div>
{{else}}<p>No values</p>{{end}}
{{end}}
</section>

<section class="card">
<h3>Latest Values</h3>
<table>
<tr><th>Indicator</th><th>Date</th><th>Value</th><th>Trend</th></tr>
{{range .Latest}}<tr><td>{{.Title}}</td><td>{{date .Date}}</td><td>{{.FormattedValue}}</td><td{{if .Trend}} class="trend-{{.Trend}}"{{end}}>{{.SeriesID}}</td></tr>
{{end}}</table>
</section>

<section class="card">
<h3>Raw Data</h3>
{{if .Raw.Message}}<p>{{.Raw.Message}}</p>{{else}}
<table>
<tr>{{range .Raw.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Raw.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
<p>{{range .Pages}}{{if .Current}}<strong>{{.Page}}</strong> {{else}}<a href="?page={{.Page}}">{{.Page}}</a> {{end}}{{end}}</p>
{{end}}
</section>

<section class="card">
<h3>Economic Calendar</h3>
{{if .Events}}
<table>
<tr><th>Time</th><th>Country</th><th>Event</th><th>Actual</th><th>Forecast</th></tr>
{{range .Events}}<tr><td>{{.Time}}</td><td>{{.Country}}</td><td>{{.Event}}</td><td>{{.Actual}}</td><td>{{.Forecast}}</td></tr>
{{end}}</table>
{{else}}<p>No events</p>{{end}}
</section>
</body>
</html>
`
