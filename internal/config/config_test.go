package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/i474232898/econ-dashboard/internal/econ"
)

var configEnv = []string{
	"CONFIG_PATH", "STORE_PATH", "EVENTS_PATH", "REFRESH_INTERVAL", "FRED_API_KEY",
	"FRED_BASE_URL", "OBSERVATION_START", "CALENDAR_URL", "SERIES", "FETCH_TIMEOUT",
	"CALENDAR_TIMEOUT", "FRED_RATE_PER_SECOND", "PORT", "METRICS_TEXTFILE",
}

// clearEnv isolates a test from the caller's environment and any .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorePath != "fred_data.csv" || cfg.EventsPath != "economic_data.csv" {
		t.Errorf("paths = %q, %q", cfg.StorePath, cfg.EventsPath)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("interval = %v", cfg.RefreshInterval)
	}
	if cfg.ListenAddr != ":8050" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if !reflect.DeepEqual(cfg.Series, econ.KnownSeriesIDs()) {
		t.Errorf("series = %v", cfg.Series)
	}
	if cfg.APICredential != "" {
		t.Errorf("credential = %q", cfg.APICredential)
	}
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `store_path: /data/series.csv
refresh_interval: 1m
api_credential: from-file
listen_addr: 127.0.0.1:9000
series: [UNRATE, GDP]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FRED_API_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorePath != "/data/series.csv" || cfg.RefreshInterval != time.Minute {
		t.Errorf("yaml not applied: %+v", cfg)
	}
	if cfg.APICredential != "from-env" {
		t.Errorf("env must override file, got %q", cfg.APICredential)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if !reflect.DeepEqual(cfg.Series, []string{"UNRATE", "GDP"}) {
		t.Errorf("series = %v", cfg.Series)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad interval", "REFRESH_INTERVAL", "soon"},
		{"interval too short", "REFRESH_INTERVAL", "10ms"},
		{"unknown series", "SERIES", "UNRATE,NOPE"},
		{"bad start date", "OBSERVATION_START", "01/01/2024"},
		{"bad calendar url", "CALENDAR_URL", "not a url"},
		{"negative rate", "FRED_RATE_PER_SECOND", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}

	clearEnv(t)
	t.Setenv("SERIES", "NOPE")
	if _, err := Load(); !errors.Is(err, econ.ErrUnknownSeries) {
		t.Errorf("expected ErrUnknownSeries, got %v", err)
	}
}
