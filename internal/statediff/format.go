package statediff

import (
	"fmt"
	"strings"

	"github.com/star/stardiff/internal/transform"
)

// NumberFormatter renders one reported value.
type NumberFormatter interface {
	FormatNumber(v float64) string
}

// EpochFormatter renders an epoch given in seconds past J2000.
type EpochFormatter interface {
	FormatEpoch(sec float64) string
}

// ScientificFormatter prints signed scientific notation with a fixed number
// of fractional digits, e.g. "+1.2345000000000000E-03".
type ScientificFormatter struct {
	Precision int
}

// FormatNumber implements NumberFormatter.
func (f ScientificFormatter) FormatNumber(v float64) string {
	return fmt.Sprintf("%+.*E", f.Precision, v)
}

// DefaultNumbers is the formatter used when Options.Numbers is nil.
var DefaultNumbers NumberFormatter = ScientificFormatter{Precision: 16}

// SecondsFormatter prints the raw epoch in seconds past J2000.
type SecondsFormatter struct{}

// FormatEpoch implements EpochFormatter.
func (SecondsFormatter) FormatEpoch(sec float64) string {
	return fmt.Sprintf("%.6f", sec)
}

// JulianFormatter prints the epoch as a Julian date.
type JulianFormatter struct{}

// FormatEpoch implements EpochFormatter.
func (JulianFormatter) FormatEpoch(sec float64) string {
	return fmt.Sprintf("JD %.8f", transform.JulianDate(transform.EpochTime(sec)))
}

// CalendarLayout is the calendar form used when no layout is supplied.
const CalendarLayout = "2006-01-02 15:04:05.000000 UTC"

// CalendarFormatter prints the UTC calendar time using a Go time layout.
type CalendarFormatter struct {
	Layout string
}

// FormatEpoch implements EpochFormatter.
func (f CalendarFormatter) FormatEpoch(sec float64) string {
	layout := f.Layout
	if layout == "" {
		layout = CalendarLayout
	}
	return transform.EpochTime(sec).Format(layout)
}

// NewEpochFormatter maps a user supplied time format to a formatter:
// "" prints seconds, "jd" a Julian date, "iso" RFC 3339 with milliseconds,
// anything else is used as a Go time layout.
func NewEpochFormatter(format string) EpochFormatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		return SecondsFormatter{}
	case "jd":
		return JulianFormatter{}
	case "iso":
		return CalendarFormatter{Layout: "2006-01-02T15:04:05.000Z07:00"}
	default:
		return CalendarFormatter{Layout: format}
	}
}
