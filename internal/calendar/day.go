// Package calendar maps calendar days to the date columns of a holiday sheet.
//
// The header row of the sheet holds one column per day, labelled
// "Mon 02/01/06". An [Index] is the lookup from [Day] to that column and is
// built once, either by appending a fresh header ([BuildHeader]) or by reading
// an existing one ([ReadHeader]).
package calendar

import (
	"fmt"
	"time"
)

// Day is a calendar date with no time of day or location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf normalizes t to its calendar date in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Date is shorthand for a Day literal that is normalized through time.Date,
// so Date(2026, 2, 30) is 2 March 2026.
func Date(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Time returns midnight UTC on d.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (before, for negative n).
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than o.
func (d Day) Before(o Day) bool {
	return d.Time().Before(o.Time())
}

// After reports whether d is later than o.
func (d Day) After(o Day) bool {
	return d.Time().After(o.Time())
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

// String formats d as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseISO parses a YYYY-MM-DD date. Month and day may drop their leading
// zero, as in 2026-3-20.
func ParseISO(s string) (Day, error) {
	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date.
func (d *Day) UnmarshalText(b []byte) error {
	v, err := ParseISO(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
