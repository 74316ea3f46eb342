package econ_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/econ-dashboard/internal/econ"
	"github.com/i474232898/econ-dashboard/internal/econ/sources"
	"github.com/i474232898/econ-dashboard/internal/store"
)

// TestRun_FREDPartialFailure runs an acquisition against a fake FRED API
// where one series is refused and another keeps failing upstream; the
// healthy series must still reach the store.
func TestRun_FREDPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/series" {
			w.Write([]byte(`{"seriess":[{"id":"UNRATE"}]}`))
			return
		}
		switch r.URL.Query().Get("series_id") {
		case "GDP":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error_code":403,"error_message":"Forbidden"}`))
		case "CPIAUCSL":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.Write([]byte(`{"observations":[
				{"date":"2024-02-01","value":"3.9"},
				{"date":"2024-01-01","value":"3.7"}
			]}`))
		}
	}))
	defer srv.Close()

	fred := sources.NewFREDSource(srv.Client(), sources.FREDConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Backoff: sources.BackoffConfig{
			MaxRetries:      3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	})
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "fred_data.csv"), "")
	ids := []string{"GDP", "CPIAUCSL", "UNRATE", "PAYEMS"}
	svc := econ.NewService(fs, fred, ids, nil, 5*time.Second)

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.CredentialInvalid {
		t.Error("expected the 403 to be reported as a credential failure")
	}
	if !errors.Is(rep.SeriesFailed["GDP"], econ.ErrCredentialInvalid) {
		t.Errorf("GDP error = %v", rep.SeriesFailed["GDP"])
	}
	if !errors.Is(rep.SeriesFailed["CPIAUCSL"], econ.ErrTransport) {
		t.Errorf("CPIAUCSL error = %v", rep.SeriesFailed["CPIAUCSL"])
	}
	if len(rep.SeriesFailed) != 2 {
		t.Errorf("unexpected failures %v", rep.SeriesFailed)
	}

	ds, err := fs.LoadSeries()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := make(map[string]int)
	for _, row := range ds.Rows {
		got[row.SeriesID]++
	}
	if got["UNRATE"] != 2 || got["PAYEMS"] != 2 || len(got) != 2 {
		t.Errorf("store holds %v, want UNRATE and PAYEMS only", got)
	}
}
