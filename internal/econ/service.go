package econ

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Report summarizes one acquisition run.
type Report struct {
	RunID             string
	Records           int
	SeriesOK          []string
	SeriesFailed      map[string]error
	Events            int
	RowFailures       int
	EventsErr         error
	CredentialInvalid bool
}

// RunObserver receives per-series outcomes and run totals, for metrics.
type RunObserver interface {
	SeriesResult(seriesID, result string)
	RunFinished(records, events, rowFailures int, at time.Time)
}

// Series fetch result labels passed to a RunObserver.
const (
	ResultOK                = "ok"
	ResultCredentialInvalid = "credential_invalid"
	ResultError             = "error"
)

// Service runs one acquisition: every configured series plus the calendar,
// then replaces the durable store.
type Service struct {
	store        Store
	series       SeriesSource
	seriesIDs    []string
	events       EventSource
	fetchTimeout time.Duration
	observer     RunObserver
}

// NewService creates a new Service. series or events may be nil to skip
// that half of the run.
func NewService(store Store, series SeriesSource, seriesIDs []string, events EventSource, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Service{
		store:        store,
		series:       series,
		seriesIDs:    seriesIDs,
		events:       events,
		fetchTimeout: fetchTimeout,
	}
}

// SetObserver installs o to receive run outcomes.
func (s *Service) SetObserver(o RunObserver) {
	s.observer = o
}

// Run fetches all sources and writes whatever succeeded. Per-series and
// per-document failures are logged and recorded in the report; only a store
// write failure is returned as an error.
func (s *Service) Run(ctx context.Context) (Report, error) {
	rep := Report{
		RunID:        uuid.NewString(),
		SeriesFailed: make(map[string]error),
	}
	log.Printf("INFO: acquisition run %s started", rep.RunID)

	if s.series != nil && len(s.seriesIDs) > 0 {
		batch := s.fetchSeries(ctx, &rep)
		if len(batch) == 0 {
			log.Printf("WARN: run %s: no valid series data retrieved; keeping previous series store", rep.RunID)
		} else {
			if err := s.store.SaveSeries(batch); err != nil {
				return rep, err
			}
			rep.Records = len(batch)
			log.Printf("INFO: run %s: saved %d observations from %d series", rep.RunID, len(batch), len(rep.SeriesOK))
			logPreview(rep.RunID, batch)
		}
		if rep.CredentialInvalid {
			s.verifyCredential(ctx, rep.RunID)
		}
	}

	if s.events != nil {
		if err := s.fetchEvents(ctx, &rep); err != nil {
			return rep, err
		}
	}

	if s.observer != nil {
		s.observer.RunFinished(rep.Records, rep.Events, rep.RowFailures, time.Now())
	}
	log.Printf("INFO: acquisition run %s finished: %d observations, %d events, %d series failed",
		rep.RunID, rep.Records, rep.Events, len(rep.SeriesFailed))
	return rep, nil
}

func (s *Service) fetchSeries(ctx context.Context, rep *Report) []Record {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		bySeries = make(map[string][]Record, len(s.seriesIDs))
	)

	for _, id := range s.seriesIDs {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			recs, err := s.series.FetchSeries(fctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Scoped to this series; the rest of the batch continues.
				rep.SeriesFailed[id] = err
				if errors.Is(err, ErrCredentialInvalid) {
					rep.CredentialInvalid = true
					s.observe(id, ResultCredentialInvalid)
					log.Printf("ERROR: run %s: %s %s: credential invalid: %v", rep.RunID, s.series.Name(), id, err)
				} else {
					s.observe(id, ResultError)
					log.Printf("ERROR: run %s: %s %s fetch failed: %v", rep.RunID, s.series.Name(), id, err)
				}
				return
			}
			bySeries[id] = recs
			rep.SeriesOK = append(rep.SeriesOK, id)
			s.observe(id, ResultOK)
		}()
	}
	wg.Wait()

	sort.Strings(rep.SeriesOK)
	return AssembleBatch(s.seriesIDs, bySeries)
}

func (s *Service) observe(id, result string) {
	if s.observer != nil {
		s.observer.SeriesResult(id, result)
	}
}

func (s *Service) fetchEvents(ctx context.Context, rep *Report) error {
	batch, err := s.events.FetchEvents(ctx)
	rep.RowFailures = batch.RowFailures
	if err != nil {
		rep.EventsErr = err
		if errors.Is(err, ErrNoEvents) {
			log.Printf("WARN: run %s: %s: no events found", rep.RunID, s.events.Name())
		} else {
			log.Printf("ERROR: run %s: %s fetch failed: %v", rep.RunID, s.events.Name(), err)
		}
		return nil
	}
	if len(batch.Events) == 0 {
		log.Printf("WARN: run %s: %s: every row failed extraction (%d rows)", rep.RunID, s.events.Name(), batch.RowFailures)
		return nil
	}
	if err := s.store.SaveEvents(batch.Events); err != nil {
		return err
	}
	rep.Events = len(batch.Events)
	log.Printf("INFO: run %s: saved %d events (%d rows skipped)", rep.RunID, rep.Events, rep.RowFailures)
	return nil
}

func (s *Service) verifyCredential(ctx context.Context, runID string) {
	v, ok := s.series.(CredentialVerifier)
	if !ok {
		return
	}
	vctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	if err := v.VerifyCredential(vctx); err != nil {
		log.Printf("ERROR: run %s: api key check: %v", runID, err)
		return
	}
	log.Printf("INFO: run %s: api key check passed; credential errors were series specific", runID)
}

func logPreview(runID string, batch []Record) {
	n := len(batch)
	if n > 4 {
		n = 4
	}
	for _, r := range batch[:n] {
		log.Printf("DEBUG: run %s: %s", runID, fmt.Sprintf("%s,%s,%s,%s,%s",
			r.SeriesID, r.Title, r.Date.Format(DateLayout), r.Value.String(), r.Unit))
	}
}
