package econ

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func rec(t *testing.T, id, date, value string) Record {
	t.Helper()
	info, _ := LookupSeries(id)
	return Record{SeriesID: id, Title: info.Title, Date: mustDate(t, date), Value: ParseValue(value), Unit: info.Unit}
}

func TestDedupeRecords_KeepsFirst(t *testing.T) {
	in := []Record{
		rec(t, "UNRATE", "2024-02-01", "3.9"),
		rec(t, "UNRATE", "2024-02-01", "4.1"),
		rec(t, "GDP", "2024-02-01", "1"),
	}
	out, dropped := DedupeRecords(in)
	if dropped != 1 || len(out) != 2 {
		t.Fatalf("expected 2 kept and 1 dropped, got %d kept %d dropped", len(out), dropped)
	}
	if out[0].Value.String() != "3.9" {
		t.Errorf("first occurrence not kept: %s", out[0].Value.String())
	}
}

func TestAssembleBatch_GroupsBySeriesOrder(t *testing.T) {
	bySeries := map[string][]Record{
		"GDP":    {rec(t, "GDP", "2024-01-01", "27956.1")},
		"UNRATE": {rec(t, "UNRATE", "2024-02-01", "3.9"), rec(t, "UNRATE", "2024-01-01", "3.7")},
	}
	batch := AssembleBatch([]string{"UNRATE", "GDP", "PAYEMS"}, bySeries)
	if len(batch) != 3 {
		t.Fatalf("expected 3 records, got %d", len(batch))
	}
	want := []string{"UNRATE", "UNRATE", "GDP"}
	for i, id := range want {
		if batch[i].SeriesID != id {
			t.Errorf("batch[%d] = %s, want %s", i, batch[i].SeriesID, id)
		}
	}
}

func TestSortByDateDesc_Stable(t *testing.T) {
	recs := []Record{
		rec(t, "UNRATE", "2024-01-01", "3.7"),
		rec(t, "GDP", "2024-02-01", "1"),
		rec(t, "UNRATE", "2024-02-01", "3.9"),
	}
	SortByDateDesc(recs)
	if recs[0].SeriesID != "GDP" || recs[1].SeriesID != "UNRATE" || !recs[2].Date.Equal(mustDate(t, "2024-01-01")) {
		t.Errorf("unexpected order: %+v", recs)
	}
}
