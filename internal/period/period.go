package period

import (
	"fmt"
	"time"
)

// Floating is the location of times read without a zone or offset, such
// as plain "2025-01-01" dates. Their wall clock is taken as-is in whatever
// calendar they are compared or bucketed in.
var Floating = time.FixedZone("floating", 0)

// In returns t in loc. A Floating time keeps its wall clock, so a plain
// date stays on the same calendar day in every location.
func In(t time.Time, loc *time.Location) time.Time {
	loc = location(loc)
	if t.Location() == Floating {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	return t.In(loc)
}

// FormatMonthKey returns a month key like "2025-01".
func FormatMonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// MonthKey returns the month key of t in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	t = In(t, loc)
	return FormatMonthKey(t.Year(), t.Month())
}

// MonthStart returns midnight on the first day of t's month in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = In(t, loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// LastMonths returns the starts of n consecutive calendar months ending
// with the month containing now, oldest first.
func LastMonths(now time.Time, n int, loc *time.Location) []time.Time {
	if n <= 0 {
		return nil
	}
	current := MonthStart(now, loc)
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddDate(0, i-(n-1), 0)
	}
	return months
}

// Year returns the calendar year of t in loc.
func Year(t time.Time, loc *time.Location) int {
	return In(t, loc).Year()
}

// InYear reports whether t falls in the calendar year in loc. A nil t is
// in no year.
func InYear(t *time.Time, year int, loc *time.Location) bool {
	if t == nil {
		return false
	}
	return Year(*t, loc) == year
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
