package econ

import "context"

// SeriesSource fetches observations for one registered series.
type SeriesSource interface {
	Name() string
	FetchSeries(ctx context.Context, seriesID string) ([]Record, error)
}

// CredentialVerifier is implemented by sources that can probe their API key.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context) error
}

// EventSource fetches calendar events.
type EventSource interface {
	Name() string
	FetchEvents(ctx context.Context) (EventBatch, error)
}

// Store is the durable handoff between acquisition and presentation.
type Store interface {
	SaveSeries(records []Record) error
	SaveEvents(events []Event) error
	LoadSeries() (Dataset, error)
	LoadEvents() ([]Event, error)
}
