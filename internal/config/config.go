package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/econ-dashboard/internal/econ"
)

var validate = validator.New()

// fileConfig is the optional YAML file layout.
type fileConfig struct {
	StorePath       string   `yaml:"store_path"`
	EventsPath      string   `yaml:"events_path"`
	RefreshInterval string   `yaml:"refresh_interval"`
	APICredential   string   `yaml:"api_credential"`
	ListenAddr      string   `yaml:"listen_addr"`
	Series          []string `yaml:"series"`
	MetricsTextfile string   `yaml:"metrics_textfile"`
}

type AppConfig struct {
	// StorePath is the series CSV; EventsPath the calendar CSV.
	StorePath  string `validate:"required"`
	EventsPath string `validate:"required"`

	// RefreshInterval controls how often the dashboard reloads the store.
	RefreshInterval time.Duration `validate:"gte=1s"`

	// APICredential is the FRED API key. Empty disables series acquisition.
	APICredential    string
	FREDBaseURL      string   `validate:"required,url"`
	ObservationStart string   `validate:"required,datetime=2006-01-02"`
	RatePerSecond    float64  `validate:"gte=0"`
	Series           []string `validate:"min=1,dive,required"`

	CalendarURL     string        `validate:"required,url"`
	FetchTimeout    time.Duration `validate:"gt=0"`
	CalendarTimeout time.Duration `validate:"gt=0"`

	// MetricsTextfile, when set, receives the acquisition metrics.
	MetricsTextfile string

	ListenAddr string `validate:"required"`
}

// Load reads configuration from .env, the optional YAML file named by
// CONFIG_PATH and the environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	var fc fileConfig
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := &AppConfig{}
	cfg.StorePath = getenvDefault("STORE_PATH", firstNonEmpty(fc.StorePath, "fred_data.csv"))
	cfg.EventsPath = getenvDefault("EVENTS_PATH", firstNonEmpty(fc.EventsPath, "economic_data.csv"))
	cfg.APICredential = getenvDefault("FRED_API_KEY", fc.APICredential)
	cfg.FREDBaseURL = getenvDefault("FRED_BASE_URL", "https://api.stlouisfed.org/fred")
	cfg.ObservationStart = getenvDefault("OBSERVATION_START", "2024-01-01")
	cfg.CalendarURL = getenvDefault("CALENDAR_URL", "https://tradingeconomics.com/calendar")
	cfg.MetricsTextfile = getenvDefault("METRICS_TEXTFILE", fc.MetricsTextfile)

	// Dashboard refresh interval: default 5 minutes.
	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", firstNonEmpty(fc.RefreshInterval, "5m")))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	if cfg.FetchTimeout, err = time.ParseDuration(getenvDefault("FETCH_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	if cfg.CalendarTimeout, err = time.ParseDuration(getenvDefault("CALENDAR_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEOUT: %w", err)
	}
	if cfg.RatePerSecond, err = strconv.ParseFloat(getenvDefault("FRED_RATE_PER_SECOND", "2"), 64); err != nil {
		return nil, fmt.Errorf("invalid FRED_RATE_PER_SECOND: %w", err)
	}

	cfg.Series = fc.Series
	if v := os.Getenv("SERIES"); v != "" {
		cfg.Series = splitList(v)
	}
	if len(cfg.Series) == 0 {
		cfg.Series = econ.KnownSeriesIDs()
	}
	for _, id := range cfg.Series {
		if _, ok := econ.LookupSeries(id); !ok {
			return nil, fmt.Errorf("invalid SERIES: %w: %s", econ.ErrUnknownSeries, id)
		}
	}

	cfg.ListenAddr = fc.ListenAddr
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8050"
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
