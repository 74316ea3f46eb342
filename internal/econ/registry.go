package econ

// SeriesInfo statically describes a known series.
type SeriesInfo struct {
	ID    string
	Title string
	Unit  Unit
}

// KnownSeries is the registry of series the acquisition run may request.
var KnownSeries = []SeriesInfo{
	{ID: "UNRATE", Title: "US Unemployment Rate", Unit: UnitPercent},
	{ID: "GDP", Title: "Gross Domestic Product", Unit: UnitUSD},
	{ID: "CPIAUCSL", Title: "Consumer Price Index", Unit: UnitIndex},
	{ID: "PAYEMS", Title: "Total Nonfarm Payrolls", Unit: UnitCount},
}

// LookupSeries returns the registry entry for id.
func LookupSeries(id string) (SeriesInfo, bool) {
	for _, s := range KnownSeries {
		if s.ID == id {
			return s, true
		}
	}
	return SeriesInfo{}, false
}

// KnownSeriesIDs lists registry ids in registry order.
func KnownSeriesIDs() []string {
	ids := make([]string, 0, len(KnownSeries))
	for _, s := range KnownSeries {
		ids = append(ids, s.ID)
	}
	return ids
}
