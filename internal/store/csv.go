package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/i474232898/econ-dashboard/internal/econ"
)

// TimestampLayout is the layout of the event store's capture time column.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	seriesHeader = []string{"Series ID", "Title", "Date", "Value", "Unit"}
	eventsHeader = []string{"Timestamp", "Time", "Country", "Event", "Actual", "Forecast"}
)

// FileStore keeps the series and events as two CSV files. Each save replaces
// the whole file.
type FileStore struct {
	seriesPath string
	eventsPath string
}

// NewFileStore creates a FileStore. Either path may be empty when the caller
// never touches that half.
func NewFileStore(seriesPath, eventsPath string) *FileStore {
	return &FileStore{seriesPath: seriesPath, eventsPath: eventsPath}
}

// SaveSeries replaces the series file with records, in the given order.
func (s *FileStore) SaveSeries(records []econ.Record) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, seriesHeader)
	for _, r := range records {
		rows = append(rows, []string{
			r.SeriesID,
			r.Title,
			r.Date.Format(econ.DateLayout),
			r.Value.String(),
			string(r.Unit),
		})
	}
	return writeAtomic(s.seriesPath, rows)
}

// SaveEvents replaces the events file.
func (s *FileStore) SaveEvents(events []econ.Event) error {
	rows := make([][]string, 0, len(events)+1)
	rows = append(rows, eventsHeader)
	for _, e := range events {
		rows = append(rows, []string{
			e.CapturedAt.Format(TimestampLayout),
			e.Time,
			e.Country,
			e.Name,
			e.Actual,
			e.Forecast,
		})
	}
	return writeAtomic(s.eventsPath, rows)
}

// LoadSeries reads the series file into a Dataset in file order. A missing or
// unreadable file, or one with the wrong header, yields an empty Dataset and
// econ.ErrStoreUnavailable.
func (s *FileStore) LoadSeries() (econ.Dataset, error) {
	rows, err := readTable(s.seriesPath, seriesHeader)
	if err != nil {
		return econ.Dataset{}, err
	}

	records := make([]econ.Record, 0, len(rows))
	for i, row := range rows {
		date, err := time.ParseInLocation(econ.DateLayout, row[2], time.UTC)
		if err != nil {
			log.Printf("WARN: %s line %d: skipping row with bad date %q", s.seriesPath, i+2, row[2])
			continue
		}
		records = append(records, econ.Record{
			SeriesID: row[0],
			Title:    row[1],
			Date:     date,
			Value:    econ.ParseValue(row[3]),
			Unit:     econ.Unit(row[4]),
		})
	}
	return econ.NewDataset(records), nil
}

// LoadEvents reads the events file. Capture times are read in the local zone
// they were written in; rows with a bad timestamp keep a zero CapturedAt.
func (s *FileStore) LoadEvents() ([]econ.Event, error) {
	rows, err := readTable(s.eventsPath, eventsHeader)
	if err != nil {
		return nil, err
	}

	events := make([]econ.Event, 0, len(rows))
	for i, row := range rows {
		captured, err := time.ParseInLocation(TimestampLayout, row[0], time.Local)
		if err != nil {
			log.Printf("WARN: %s line %d: bad timestamp %q", s.eventsPath, i+2, row[0])
		}
		events = append(events, econ.Event{
			CapturedAt: captured,
			Time:       row[1],
			Country:    row[2],
			Name:       row[3],
			Actual:     row[4],
			Forecast:   row[5],
		})
	}
	return events, nil
}

// readTable returns the data rows of a CSV file after checking its header.
// Short rows are skipped.
func readTable(path string, header []string) ([][]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path configured", econ.ErrStoreUnavailable)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", econ.ErrStoreUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	got, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", econ.ErrStoreUnavailable, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", econ.ErrStoreUnavailable, path, err)
	}
	if !sameHeader(got, header) {
		return nil, fmt.Errorf("%w: %s: unexpected header %q", econ.ErrStoreUnavailable, path, got)
	}

	var rows [][]string
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", econ.ErrStoreUnavailable, path, err)
		}
		if len(row) < len(header) {
			log.Printf("WARN: %s line %d: skipping short row", path, line)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// writeAtomic renders rows in memory, writes them to a temp file next to path
// and renames it over path, so readers see either the old or the new file.
func writeAtomic(path string, rows [][]string) error {
	if path == "" {
		return fmt.Errorf("%w: no path configured", econ.ErrStoreWrite)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("%w: encode %s: %w", econ.ErrStoreWrite, path, err)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", econ.ErrStoreWrite, err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", econ.ErrStoreWrite, path, err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", econ.ErrStoreWrite, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", econ.ErrStoreWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", econ.ErrStoreWrite, path, err)
	}
	return nil
}
