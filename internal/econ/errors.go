package econ

import "errors"

var (
	// ErrTransport covers network errors, timeouts and non-2xx upstream answers.
	ErrTransport = errors.New("transport failure")
	// ErrShape is returned when an upstream payload lacks the expected structure.
	ErrShape = errors.New("unexpected response shape")
	// ErrRow marks a single calendar row that could not be fully extracted.
	ErrRow = errors.New("calendar row incomplete")
	// ErrCredentialInvalid is returned when the upstream rejects the API key.
	ErrCredentialInvalid = errors.New("api credential rejected")
	// ErrStoreUnavailable is returned when the durable store is missing or unreadable.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreWrite is returned when the durable store cannot be written.
	ErrStoreWrite = errors.New("store write failed")
	// ErrNoEvents is returned when a calendar page contains no calendar rows.
	ErrNoEvents = errors.New("no events found")
	// ErrUnknownSeries is returned for ids outside the series registry.
	ErrUnknownSeries = errors.New("unknown series")
)
