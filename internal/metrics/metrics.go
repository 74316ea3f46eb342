// Package metrics holds the Prometheus collectors of both binaries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh result labels.
const (
	ResultOK               = "ok"
	ResultStoreUnavailable = "store_unavailable"
)

// Refresh instruments the dashboard refresh loop.
type Refresh struct {
	refreshes     *prometheus.CounterVec
	coalesced     prometheus.Counter
	duration      prometheus.Summary
	datasetRows   prometheus.Gauge
	events        prometheus.Gauge
	lastRefreshTS prometheus.Gauge
}

// NewRefresh creates the refresh collectors and registers them with reg.
func NewRefresh(reg prometheus.Registerer) *Refresh {
	m := &Refresh{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econ_dashboard",
			Name:      "refreshes_total",
			Help:      "Completed dashboard refreshes by result",
		}, []string{"result"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "econ_dashboard",
			Name:      "ticks_coalesced_total",
			Help:      "Timer ticks dropped because a refresh was already running",
		}),
		duration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "econ_dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Time spent loading the store and building views",
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_dashboard",
			Name:      "dataset_rows",
			Help:      "Rows in the currently published dataset",
		}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_dashboard",
			Name:      "calendar_events",
			Help:      "Calendar events in the currently published snapshot",
		}),
		lastRefreshTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_dashboard",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix timestamp of the last published refresh",
		}),
	}
	reg.MustRegister(m.refreshes, m.coalesced, m.duration, m.datasetRows, m.events, m.lastRefreshTS)
	return m
}

// Observe records one finished refresh.
func (m *Refresh) Observe(result string, took time.Duration, rows, events int, at time.Time) {
	m.refreshes.WithLabelValues(result).Inc()
	m.duration.Observe(took.Seconds())
	m.datasetRows.Set(float64(rows))
	m.events.Set(float64(events))
	m.lastRefreshTS.Set(float64(at.Unix()))
}

// Coalesced records a tick that found a refresh in progress.
func (m *Refresh) Coalesced() {
	m.coalesced.Inc()
}

// Acquisition instruments one acquisition run. The acquire binary exits
// after a single run, so these are written to a textfile rather than served.
type Acquisition struct {
	reg           *prometheus.Registry
	seriesFetches *prometheus.CounterVec
	records       prometheus.Gauge
	events        prometheus.Gauge
	rowFailures   prometheus.Gauge
	lastRunTS     prometheus.Gauge
}

// NewAcquisition creates the acquisition collectors on a private registry.
func NewAcquisition() *Acquisition {
	m := &Acquisition{
		reg: prometheus.NewRegistry(),
		seriesFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econ_acquire",
			Name:      "series_fetches_total",
			Help:      "Series fetches by series and result",
		}, []string{"series", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_acquire",
			Name:      "records_saved",
			Help:      "Observations written by the last run",
		}),
		events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_acquire",
			Name:      "events_saved",
			Help:      "Calendar events written by the last run",
		}),
		rowFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_acquire",
			Name:      "calendar_row_failures",
			Help:      "Calendar rows skipped by the last run",
		}),
		lastRunTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "econ_acquire",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last finished run",
		}),
	}
	m.reg.MustRegister(m.seriesFetches, m.records, m.events, m.rowFailures, m.lastRunTS)
	return m
}

// SeriesResult records the outcome of one series fetch.
func (m *Acquisition) SeriesResult(series, result string) {
	m.seriesFetches.WithLabelValues(series, result).Inc()
}

// RunFinished records the totals of a run.
func (m *Acquisition) RunFinished(records, events, rowFailures int, at time.Time) {
	m.records.Set(float64(records))
	m.events.Set(float64(events))
	m.rowFailures.Set(float64(rowFailures))
	m.lastRunTS.Set(float64(at.Unix()))
}

// Gatherer exposes the private registry.
func (m *Acquisition) Gatherer() prometheus.Gatherer {
	return m.reg
}

// WriteTextfile writes the collected metrics in the text exposition format,
// for pickup by a node_exporter textfile collector.
func (m *Acquisition) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
