package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/econ-dashboard/internal/econ"
	"github.com/i474232898/econ-dashboard/internal/metrics"
	"github.com/i474232898/econ-dashboard/internal/store"
	"github.com/i474232898/econ-dashboard/internal/view"
)

// LastUpdatedLayout formats the refresh time shown on the dashboard.
const LastUpdatedLayout = "2006-01-02 15:04:05"

// Reader is the read side of the durable store.
type Reader interface {
	LoadSeries() (econ.Dataset, error)
	LoadEvents() ([]econ.Event, error)
}

// State of the refresh loop.
type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// Scheduler periodically rebuilds the dashboard snapshot from the store.
// At most one refresh runs at a time; ticks that arrive meanwhile are
// dropped, not queued.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reader    Reader
	snapshots *store.MemoryStore
	metrics   *metrics.Refresh
	interval  time.Duration
	now       func() time.Time

	running sync.Mutex
	mu      sync.Mutex
	state   State
}

// New creates a new Scheduler. m may be nil.
func New(reader Reader, snapshots *store.MemoryStore, interval time.Duration, m *metrics.Refresh) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		reader:    reader,
		snapshots: snapshots,
		metrics:   m,
		interval:  interval,
		now:       time.Now,
	}
}

// Start schedules the periodic refresh, runs the first one immediately and
// starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).StartImmediately().Do(func() {
		s.Tick(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future ticks.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// State reports whether a refresh is in progress.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tick runs one refresh unless one is already in progress. It reports
// whether a refresh ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.running.TryLock() {
		log.Println("scheduler: refresh already running; tick coalesced")
		if s.metrics != nil {
			s.metrics.Coalesced()
		}
		return false
	}
	defer s.running.Unlock()

	s.setState(Refreshing)
	defer s.setState(Idle)

	if err := ctx.Err(); err != nil {
		log.Printf("scheduler: refresh skipped: %v", err)
		return false
	}

	s.refresh()
	return true
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// refresh loads the store, builds every view and publishes the result. A
// store that cannot be read publishes the empty state.
func (s *Scheduler) refresh() {
	start := s.now()
	result := metrics.ResultOK

	ds, err := s.reader.LoadSeries()
	if err != nil {
		result = metrics.ResultStoreUnavailable
		if errors.Is(err, econ.ErrStoreUnavailable) {
			log.Printf("scheduler: series store unavailable: %v", err)
		} else {
			log.Printf("scheduler: loading series failed: %v", err)
		}
		ds = econ.Dataset{}
	}

	events, evErr := s.reader.LoadEvents()
	if evErr != nil {
		log.Printf("scheduler: event store unavailable: %v", evErr)
		events = nil
	}

	snap := store.Snapshot{
		Dataset:     ds,
		Chart:       view.TimeSeries(ds),
		Latest:      view.Latest(ds),
		Events:      view.Calendar(events),
		LastUpdated: "Last updated: " + start.Format(LastUpdatedLayout),
		RefreshedAt: start,
		StoreErr:    err,
	}
	s.snapshots.Publish(snap)

	took := s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.Observe(result, took, len(ds.Rows), len(snap.Events), start)
	}
	log.Printf("scheduler: published %d rows, %d events in %s", len(ds.Rows), len(snap.Events), took)
}
