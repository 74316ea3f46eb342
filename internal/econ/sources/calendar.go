package sources

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/i474232898/econ-dashboard/internal/econ"
)

const (
	DefaultCalendarURL = "https://tradingeconomics.com/calendar"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

// CalendarConfig configures the calendar page source.
type CalendarConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	Backoff   BackoffConfig
	// Now stamps CapturedAt; defaults to time.Now.
	Now func() time.Time
}

// CalendarSource implements econ.EventSource by scraping an HTML calendar.
type CalendarSource struct {
	name      string
	url       string
	userAgent string
	timeout   time.Duration
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
	now       func() time.Time
}

// NewCalendarSource creates a calendar page source using client for requests.
func NewCalendarSource(client *http.Client, cfg CalendarConfig) *CalendarSource {
	src := &CalendarSource{
		name:      "calendar",
		url:       cfg.URL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		httpCfg:   HTTPClientConfig{Client: client, Backoff: cfg.Backoff},
		circuit:   newBreaker("calendar"),
		now:       cfg.Now,
	}
	if src.url == "" {
		src.url = DefaultCalendarURL
	}
	if src.userAgent == "" {
		src.userAgent = DefaultUserAgent
	}
	if src.timeout <= 0 {
		src.timeout = 30 * time.Second
	}
	if src.httpCfg.Backoff.InitialInterval <= 0 {
		src.httpCfg.Backoff = DefaultBackoff
	}
	if src.now == nil {
		src.now = time.Now
	}
	return src
}

func (c *CalendarSource) Name() string {
	return c.name
}

// FetchEvents downloads the calendar page and extracts its rows. A failed
// download yields no events at all; incomplete rows are skipped one by one.
func (c *CalendarSource) FetchEvents(ctx context.Context) (econ.EventBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, c.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return econ.EventBatch{}, err
	}
	defer resp.Body.Close()

	return ParseCalendar(resp.Body, c.now())
}

// ParseCalendar extracts events from a calendar document. Rows are <tr>
// elements whose data-url contains "/calendar/"; the cells read are 1 time,
// 2 country, 3 event link, 5 actual and 6 forecast.
func ParseCalendar(r io.Reader, capturedAt time.Time) (econ.EventBatch, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return econ.EventBatch{}, fmt.Errorf("%w: read calendar document: %w", econ.ErrTransport, err)
	}

	rows := findAll(doc, isCalendarRow)
	if len(rows) == 0 {
		return econ.EventBatch{}, econ.ErrNoEvents
	}

	var batch econ.EventBatch
	for i, tr := range rows {
		ev, err := extractEvent(tr, capturedAt)
		if err != nil {
			batch.RowFailures++
			ref, _ := attr(tr, "data-url")
			log.Printf("WARN: calendar row %d (%s) skipped: %v", i+1, ref, err)
			continue
		}
		batch.Events = append(batch.Events, ev)
	}
	return batch, nil
}

func extractEvent(tr *html.Node, capturedAt time.Time) (econ.Event, error) {
	cells := elementChildren(tr)
	cell := func(pos int, name string) (*html.Node, error) {
		if pos > len(cells) || cells[pos-1].DataAtom != atom.Td {
			return nil, fmt.Errorf("%w: no %s cell", econ.ErrRow, name)
		}
		return cells[pos-1], nil
	}

	timeCell, err := cell(1, "time")
	if err != nil {
		return econ.Event{}, err
	}
	countryCell, err := cell(2, "country")
	if err != nil {
		return econ.Event{}, err
	}
	eventCell, err := cell(3, "event")
	if err != nil {
		return econ.Event{}, err
	}
	actualCell, err := cell(5, "actual")
	if err != nil {
		return econ.Event{}, err
	}
	forecastCell, err := cell(6, "forecast")
	if err != nil {
		return econ.Event{}, err
	}
	link := findFirst(eventCell, atom.A)
	if link == nil {
		return econ.Event{}, fmt.Errorf("%w: no event link", econ.ErrRow)
	}

	ev := econ.Event{
		CapturedAt: capturedAt,
		Time:       nodeText(timeCell),
		Country:    nodeText(countryCell),
		Name:       nodeText(link),
		Actual:     nodeText(actualCell),
		Forecast:   nodeText(forecastCell),
	}
	if ev.Name == "" {
		return econ.Event{}, fmt.Errorf("%w: empty event name", econ.ErrRow)
	}
	if ev.Country == "" {
		return econ.Event{}, fmt.Errorf("%w: empty country", econ.ErrRow)
	}
	return ev, nil
}
