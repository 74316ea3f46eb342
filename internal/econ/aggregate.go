package econ

import (
	"log"
	"sort"
)

// DedupeRecords drops repeated SeriesID+Date pairs, keeping the first
// occurrence. It returns the kept records and the number dropped.
func DedupeRecords(records []Record) ([]Record, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// AssembleBatch concatenates per-series results in the order of ids, so the
// batch is grouped by series regardless of fetch completion order.
func AssembleBatch(ids []string, bySeries map[string][]Record) []Record {
	var batch []Record
	for _, id := range ids {
		batch = append(batch, bySeries[id]...)
	}
	out, dropped := DedupeRecords(batch)
	if dropped > 0 {
		log.Printf("WARN: dropped %d duplicate observations from batch", dropped)
	}
	return out
}

// SortByDateDesc orders records newest first, keeping the relative order of
// equal dates.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
