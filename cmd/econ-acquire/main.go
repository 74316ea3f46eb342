package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i474232898/econ-dashboard/internal/config"
	"github.com/i474232898/econ-dashboard/internal/econ"
	"github.com/i474232898/econ-dashboard/internal/econ/sources"
	"github.com/i474232898/econ-dashboard/internal/metrics"
	"github.com/i474232898/econ-dashboard/internal/store"
)

// exitStoreWrite is the status returned when the store could not be written.
const exitStoreWrite = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound source calls; per-call deadlines come
	// from the service and the calendar source.
	httpClient := &http.Client{}

	var series econ.SeriesSource
	if cfg.APICredential == "" {
		log.Println("WARN: FRED_API_KEY is not set; skipping series acquisition")
	} else {
		series = sources.NewFREDSource(httpClient, sources.FREDConfig{
			BaseURL:          cfg.FREDBaseURL,
			APIKey:           cfg.APICredential,
			ObservationStart: cfg.ObservationStart,
			RatePerSecond:    cfg.RatePerSecond,
		})
	}

	events := sources.NewCalendarSource(httpClient, sources.CalendarConfig{
		URL:     cfg.CalendarURL,
		Timeout: cfg.CalendarTimeout,
	})

	fileStore := store.NewFileStore(cfg.StorePath, cfg.EventsPath)
	service := econ.NewService(fileStore, series, cfg.Series, events, cfg.FetchTimeout)

	m := metrics.NewAcquisition()
	service.SetObserver(m)

	start := time.Now()
	rep, err := service.Run(ctx)
	if cfg.MetricsTextfile != "" {
		if werr := m.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			log.Printf("ERROR: writing metrics to %s: %v", cfg.MetricsTextfile, werr)
		}
	}
	if err != nil {
		if errors.Is(err, econ.ErrStoreWrite) {
			log.Printf("FATAL: store write failed: %v", err)
			os.Exit(exitStoreWrite)
		}
		log.Fatalf("acquisition run %s failed: %v", rep.RunID, err)
	}

	log.Printf("INFO: run %s done in %s: %d observations (%d series ok, %d failed), %d events",
		rep.RunID, time.Since(start).Round(time.Millisecond), rep.Records, len(rep.SeriesOK), len(rep.SeriesFailed), rep.Events)
}
