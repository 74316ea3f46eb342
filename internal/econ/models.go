package econ

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the measurement unit of a series. The set is open: the store keeps
// whatever the source declared.
type Unit string

const (
	UnitPercent Unit = "Percent"
	UnitUSD     Unit = "USD"
	UnitIndex   Unit = "Index"
	UnitCount   Unit = "Count"
)

// DateLayout is the on-disk and display layout of observation dates.
const DateLayout = "2006-01-02"

// Value is an exact decimal observation value or the missing marker.
// The zero Value is missing.
type Value struct {
	d decimal.NullDecimal
}

// NewValue wraps a decimal as a present value.
func NewValue(d decimal.Decimal) Value {
	return Value{d: decimal.NullDecimal{Decimal: d, Valid: true}}
}

// Missing returns the missing marker.
func Missing() Value { return Value{} }

// ParseValue parses a raw upstream value. Anything that is not a decimal
// number (".", "", "N/A", ...) becomes Missing.
func ParseValue(raw string) Value {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Missing()
	}
	return NewValue(d)
}

// Valid reports whether the value is present.
func (v Value) Valid() bool { return v.d.Valid }

// Decimal returns the underlying decimal and whether it is present.
func (v Value) Decimal() (decimal.Decimal, bool) { return v.d.Decimal, v.d.Valid }

// Float64 returns an approximate float for plotting.
func (v Value) Float64() (float64, bool) {
	if !v.d.Valid {
		return 0, false
	}
	return v.d.Decimal.InexactFloat64(), true
}

// String renders the value as stored: the decimal digits, or "" when missing.
func (v Value) String() string {
	if !v.d.Valid {
		return ""
	}
	return v.d.Decimal.String()
}

// Equal compares two values numerically; two missing values are equal.
func (v Value) Equal(o Value) bool {
	if v.d.Valid != o.d.Valid {
		return false
	}
	return !v.d.Valid || v.d.Decimal.Equal(o.d.Decimal)
}

// MarshalJSON emits the number as a JSON string to keep every digit, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.d.MarshalJSON()
}

// Record is one normalized series observation.
type Record struct {
	SeriesID string    `json:"seriesId"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"` // observation date, UTC midnight
	Value    Value     `json:"value"`
	Unit     Unit      `json:"unit"`
}

// Key identifies the observation inside one store snapshot.
func (r Record) Key() string {
	return r.SeriesID + "@" + r.Date.Format(DateLayout)
}

// Event is one calendar row. Time, Actual and Forecast are opaque source text.
type Event struct {
	CapturedAt time.Time `json:"capturedAt"`
	Time       string    `json:"time"`
	Country    string    `json:"country"`
	Name       string    `json:"event"`
	Actual     string    `json:"actual"`
	Forecast   string    `json:"forecast"`
}

// EventBatch is the outcome of one calendar fetch.
type EventBatch struct {
	Events      []Event
	RowFailures int
}

// Row is a Record enriched with presentation fields.
type Row struct {
	Record
	FormattedValue string `json:"formattedValue"`
}

// Dataset is the in-memory view of the series store, in store order.
// It is built once per refresh and not modified afterwards.
type Dataset struct {
	Rows []Row `json:"rows"`
}

// Empty reports whether the dataset has no rows.
func (d Dataset) Empty() bool { return len(d.Rows) == 0 }

// NewDataset derives presentation fields for records, keeping their order.
func NewDataset(records []Record) Dataset {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{Record: r, FormattedValue: FormatValue(r.Value, r.Unit)})
	}
	return Dataset{Rows: rows}
}
