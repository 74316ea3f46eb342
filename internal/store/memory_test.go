package store

import (
	"errors"
	"sync"
	"testing"
)

func TestMemoryStore_PublishAndLatest(t *testing.T) {
	ms := NewMemoryStore()

	if _, err := ms.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before publish, got %v", err)
	}

	ms.Publish(Snapshot{LastUpdated: "Last updated: 2024-03-08 13:30:05"})
	ms.Publish(Snapshot{LastUpdated: "Last updated: 2024-03-08 13:35:05"})

	snap, err := ms.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.LastUpdated != "Last updated: 2024-03-08 13:35:05" {
		t.Errorf("got %q", snap.LastUpdated)
	}
	if ms.Published() != 2 {
		t.Errorf("published = %d", ms.Published())
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ms := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ms.Publish(Snapshot{LastUpdated: "x"})
		}()
		go func() {
			defer wg.Done()
			_, _ = ms.Latest()
		}()
	}
	wg.Wait()
	if ms.Published() != 50 {
		t.Errorf("published = %d", ms.Published())
	}
}
