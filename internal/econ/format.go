package econ

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// MissingDisplay is shown in place of a missing value.
const MissingDisplay = "missing"

// FormatValue renders a value for display. Percent values become "3.9%";
// every other unit is grouped by thousands with one decimal and followed by
// the unit name, as in "27,956.1 USD".
func FormatValue(v Value, unit Unit) string {
	d, ok := v.Decimal()
	if !ok {
		return MissingDisplay
	}
	if unit == UnitPercent {
		return d.StringFixed(1) + "%"
	}

	rounded := d.Abs().Round(1)
	_, frac, _ := strings.Cut(rounded.StringFixed(1), ".")
	grouped := humanize.BigComma(rounded.Truncate(0).BigInt())
	sign := ""
	if d.Round(1).IsNegative() {
		sign = "-"
	}
	return sign + grouped + "." + frac + " " + string(unit)
}
