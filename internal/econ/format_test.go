package econ

import "testing"

func TestFormatValue(t *testing.T) {
	tests := []struct {
		raw  string
		unit Unit
		want string
	}{
		{"3.9", UnitPercent, "3.9%"},
		{"3.94", UnitPercent, "3.9%"},
		{"4", UnitPercent, "4.0%"},
		{"27956.1", UnitUSD, "27,956.1 USD"},
		{"27956.998", UnitUSD, "27,957.0 USD"},
		{"1234567.89", UnitCount, "1,234,567.9 Count"},
		{"310.326", UnitIndex, "310.3 Index"},
		{"-1234.5", UnitUSD, "-1,234.5 USD"},
		{"-0.01", UnitUSD, "0.0 USD"},
		{"0", UnitCount, "0.0 Count"},
		{"42", Unit("Thousands"), "42.0 Thousands"},
		{".", UnitPercent, MissingDisplay},
		{"", UnitUSD, MissingDisplay},
	}

	for _, tt := range tests {
		got := FormatValue(ParseValue(tt.raw), tt.unit)
		if got != tt.want {
			t.Errorf("FormatValue(%q, %s) = %q, want %q", tt.raw, tt.unit, got, tt.want)
		}
	}
}

func TestParseValue_KeepsDigits(t *testing.T) {
	v := ParseValue("27956.12345678901234567890")
	if !v.Valid() {
		t.Fatal("expected a value")
	}
	if v.String() != "27956.1234567890123456789" && v.String() != "27956.12345678901234567890" {
		t.Errorf("digits lost: %s", v.String())
	}
	if !v.Equal(ParseValue("27956.1234567890123456789")) {
		t.Error("expected numeric equality")
	}
	if ParseValue("N/A").Valid() {
		t.Error("N/A must be missing")
	}
	if !Missing().Equal(ParseValue(".")) {
		t.Error("missing values compare equal")
	}
}

func TestNewDataset_FormatsRows(t *testing.T) {
	ds := NewDataset([]Record{
		{SeriesID: "UNRATE", Date: mustDate(t, "2024-02-01"), Value: ParseValue("3.9"), Unit: UnitPercent},
		{SeriesID: "GDP", Date: mustDate(t, "2024-01-01"), Value: Missing(), Unit: UnitUSD},
	})
	if ds.Empty() || len(ds.Rows) != 2 {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	if ds.Rows[0].FormattedValue != "3.9%" || ds.Rows[1].FormattedValue != MissingDisplay {
		t.Errorf("unexpected formatting: %q, %q", ds.Rows[0].FormattedValue, ds.Rows[1].FormattedValue)
	}
	if !NewDataset(nil).Empty() {
		t.Error("nil records must give an empty dataset")
	}
}
