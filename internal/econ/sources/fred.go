package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/econ-dashboard/internal/common"
	"github.com/i474232898/econ-dashboard/internal/econ"
)

// DefaultFREDBaseURL is the public FRED API root.
const DefaultFREDBaseURL = "https://api.stlouisfed.org/fred"

// FREDConfig configures the FRED series source.
type FREDConfig struct {
	BaseURL          string
	APIKey           string
	ObservationStart string // YYYY-MM-DD
	RatePerSecond    float64
	Backoff          BackoffConfig
}

// FREDSource implements econ.SeriesSource for the FRED observations API.
type FREDSource struct {
	name             string
	apiKey           string
	baseURL          string
	observationStart string
	httpCfg          HTTPClientConfig

	// One breaker per series id, so a failing series never trips the
	// others. The credential probe has its own.
	mu       sync.Mutex
	circuits map[string]*gobreaker.CircuitBreaker
	verify   *gobreaker.CircuitBreaker
}

// NewFREDSource creates a FRED series source using client for all requests.
func NewFREDSource(client *http.Client, cfg FREDConfig) *FREDSource {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultFREDBaseURL
	}
	start := cfg.ObservationStart
	if start == "" {
		start = "2024-01-01"
	}
	backoff := cfg.Backoff
	if backoff.InitialInterval <= 0 {
		backoff = DefaultBackoff
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &FREDSource{
		name:             "fred",
		apiKey:           cfg.APIKey,
		baseURL:          base,
		observationStart: start,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
			Limiter: limiter,
		},
		circuits: make(map[string]*gobreaker.CircuitBreaker),
		verify:   newBreaker("fred:verify"),
	}
}

// circuitFor returns the breaker of seriesID, creating it on first use.
func (p *FREDSource) circuitFor(seriesID string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	cb, ok := p.circuits[seriesID]
	if !ok {
		cb = newBreaker("fred:" + seriesID)
		p.circuits[seriesID] = cb
	}
	return cb
}

func (p *FREDSource) Name() string {
	return p.name
}

type fredObservation struct {
	Date  string          `json:"date"`
	Value json.RawMessage `json:"value"`
}

type fredPayload struct {
	Observations *[]fredObservation `json:"observations"`
	ErrorMessage string             `json:"error_message"`
}

// FetchSeries returns every observation of seriesID since the configured
// start date, newest first.
func (p *FREDSource) FetchSeries(ctx context.Context, seriesID string) ([]econ.Record, error) {
	info, ok := econ.LookupSeries(seriesID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", econ.ErrUnknownSeries, seriesID)
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: fred api key is not configured", econ.ErrCredentialInvalid)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("series_id", seriesID)
		values.Set("api_key", p.apiKey)
		values.Set("file_type", "json")
		values.Set("observation_start", p.observationStart)
		values.Set("sort_order", "desc")

		u := fmt.Sprintf("%s/series/observations?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuitFor(seriesID), buildRequest)
	if err != nil {
		return nil, classifyFREDError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", econ.ErrTransport, err)
	}

	var payload fredPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", econ.ErrShape, seriesID, err)
	}
	if payload.Observations == nil {
		msg := payload.ErrorMessage
		if msg == "" {
			msg = "no observations field"
		}
		return nil, fmt.Errorf("%w: %s: %s", econ.ErrShape, seriesID, msg)
	}

	records := make([]econ.Record, 0, len(*payload.Observations))
	for i, obs := range *payload.Observations {
		date, err := time.ParseInLocation(econ.DateLayout, strings.TrimSpace(obs.Date), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: %s observation %d: bad date %q", econ.ErrShape, seriesID, i, obs.Date)
		}
		records = append(records, econ.Record{
			SeriesID: info.ID,
			Title:    info.Title,
			Date:     date,
			Value:    econ.ParseValue(rawValue(obs.Value)),
			Unit:     info.Unit,
		})
	}

	records, dropped := econ.DedupeRecords(records)
	if dropped > 0 {
		log.Printf("WARN: fred %s: dropped %d duplicate observations", seriesID, dropped)
	}
	econ.SortByDateDesc(records)
	return records, nil
}

// VerifyCredential probes the series metadata endpoint with the configured key.
func (p *FREDSource) VerifyCredential(ctx context.Context) error {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("series_id", "UNRATE")
		values.Set("api_key", p.apiKey)
		values.Set("file_type", "json")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/series?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.verify, buildRequest)
	if err != nil {
		return classifyFREDError(err)
	}
	resp.Body.Close()
	return nil
}

// rawValue returns the observation value text without going through float64,
// so numbers keep every digit whether sent as JSON strings or numbers.
func rawValue(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return ""
		}
		return strings.TrimSpace(str)
	}
	if s == "null" {
		return ""
	}
	return s
}

// classifyFREDError separates rejected credentials from other transport
// failures. FRED answers a bad key with 400 and an error_message naming it.
func classifyFREDError(err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch {
	case se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", econ.ErrCredentialInvalid, se.Code, fredErrorMessage(se.Body))
	case se.Code == http.StatusBadRequest:
		msg := fredErrorMessage(se.Body)
		if common.ContainsAnyFold(msg, "api_key", "api key") {
			return fmt.Errorf("%w: %s", econ.ErrCredentialInvalid, msg)
		}
	}
	return err
}

func fredErrorMessage(body string) string {
	var payload struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.ErrorMessage != "" {
		return payload.ErrorMessage
	}
	return body
}
