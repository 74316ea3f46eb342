package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/econ-dashboard/internal/econ"
	"github.com/i474232898/econ-dashboard/internal/view"
)

var (
	// ErrNotFound is returned when nothing has been published yet.
	ErrNotFound = errors.New("no dashboard snapshot published yet")
)

// Snapshot is everything the dashboard shows after one refresh.
type Snapshot struct {
	Dataset     econ.Dataset
	Chart       view.Chart
	Latest      []view.LatestRow
	Events      []view.EventRow
	LastUpdated string
	RefreshedAt time.Time
	// StoreErr is set when the durable store could not be read; the views are
	// then the empty state.
	StoreErr error
}

// MemoryStore is a concurrency-safe holder of the latest published Snapshot.
// A publish replaces the previous snapshot as a whole.
type MemoryStore struct {
	mu sync.RWMutex

	current   *Snapshot
	published int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Publish makes snap the current snapshot.
func (s *MemoryStore) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &snap
	s.published++
}

// Latest returns the most recently published snapshot.
func (s *MemoryStore) Latest() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Snapshot{}, ErrNotFound
	}
	return *s.current, nil
}

// Published returns how many snapshots have been published.
func (s *MemoryStore) Published() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}
