package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/econ-dashboard/internal/econ"
	"github.com/i474232898/econ-dashboard/internal/store"
	"github.com/i474232898/econ-dashboard/internal/view"
)

func unrate(date, value string) econ.Record {
	d, _ := time.ParseInLocation(econ.DateLayout, date, time.UTC)
	return econ.Record{SeriesID: "UNRATE", Title: "US Unemployment Rate", Date: d, Value: econ.ParseValue(value), Unit: econ.UnitPercent}
}

func publishedStore(records []econ.Record) *store.MemoryStore {
	ds := econ.NewDataset(records)
	snaps := store.NewMemoryStore()
	snaps.Publish(store.Snapshot{
		Dataset:     ds,
		Chart:       view.TimeSeries(ds),
		Latest:      view.Latest(ds),
		Events:      view.Calendar([]econ.Event{{Time: "08:30 AM", Country: "US", Name: "Nonfarm Payrolls", Actual: "200K", Forecast: "180K"}}),
		LastUpdated: "Last updated: 2024-03-08 13:30:05",
	})
	return snaps
}

func newApp(snaps *store.MemoryStore) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, snaps, 5*time.Minute)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// TestNotRefreshedYet verifies every view answers 503 before the first
// refresh has been published.
func TestNotRefreshedYet(t *testing.T) {
	app := newApp(store.NewMemoryStore())

	for _, target := range []string{"/", "/api/v1/chart", "/api/v1/latest", "/api/v1/raw", "/api/v1/events", "/api/v1/status"} {
		resp, _ := get(t, app, target)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusServiceUnavailable, resp.StatusCode)
		}
	}
}

// TestRawPageValidation verifies the raw table rejects pages below 1 and
// non-numeric pages.
func TestRawPageValidation(t *testing.T) {
	app := newApp(publishedStore([]econ.Record{unrate("2024-02-01", "3.9")}))

	for _, target := range []string{"/api/v1/raw?page=0", "/api/v1/raw?page=-2", "/api/v1/raw?page=two", "/?page=0"} {
		resp, _ := get(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestRawPaging(t *testing.T) {
	var recs []econ.Record
	for m := 1; m <= 12; m++ {
		recs = append(recs, unrate(time.Date(2023, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format(econ.DateLayout), "3.5"))
	}
	app := newApp(publishedStore(recs))

	resp, body := get(t, app, "/api/v1/raw?page=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var page view.RawPage
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 2 || page.TotalPages != 2 || len(page.Rows) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestLatestEndpoint(t *testing.T) {
	app := newApp(publishedStore([]econ.Record{unrate("2024-01-01", "3.7"), unrate("2024-02-01", "3.9")}))

	resp, body := get(t, app, "/api/v1/latest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var out struct {
		LastUpdated string `json:"lastUpdated"`
		Rows        []struct {
			SeriesID       string `json:"seriesId"`
			Value          string `json:"value"`
			FormattedValue string `json:"formattedValue"`
		} `json:"rows"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Rows) != 1 || out.Rows[0].FormattedValue != "3.9%" || out.Rows[0].Value != "3.9" {
		t.Errorf("unexpected rows %+v", out.Rows)
	}
	if out.LastUpdated != "Last updated: 2024-03-08 13:30:05" {
		t.Errorf("last updated = %q", out.LastUpdated)
	}
}

func TestDashboardPage(t *testing.T) {
	app := newApp(publishedStore([]econ.Record{unrate("2024-01-01", "3.7"), unrate("2024-02-01", "3.9")}))

	resp, body := get(t, app, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	for _, want := range []string{
		`content="300"`,
		"Last updated: 2024-03-08 13:30:05",
		"<polyline",
		"3.9%",
		`class="trend-adverse"`,
		"Nonfarm Payrolls",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDashboardEmptyState(t *testing.T) {
	app := newApp(publishedStore(nil))

	resp, body := get(t, app, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if !strings.Contains(body, view.NoData) {
		t.Error("empty dashboard should show the no data placeholder")
	}
	if strings.Contains(body, "<polyline") {
		t.Error("empty dashboard must not draw lines")
	}
}
