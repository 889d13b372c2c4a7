package calendar

// Window is a run of consecutive calendar days.
type Window struct {
	Start Day
	Days  int
}

// YearWindow returns the calendar year for year. A non-zero offsetWeeks shifts
// the start forward from 1 January by that many weeks, giving a fiscal year.
// The window lasts 366 days when year is a leap year and 365 otherwise.
func YearWindow(year, offsetWeeks int) Window {
	days := 365
	if IsLeap(year) {
		days = 366
	}
	return Window{
		Start: Date(year, 1, 1).AddDays(offsetWeeks * 7),
		Days:  days,
	}
}

// End returns the window's last day.
func (w Window) End() Day {
	return w.Start.AddDays(w.Days - 1)
}

// Contains reports whether d lies within the window.
func (w Window) Contains(d Day) bool {
	return !d.Before(w.Start) && !d.After(w.End())
}

// Years lists every calendar year the window touches, in order.
func (w Window) Years() []int {
	if w.Days <= 0 {
		return nil
	}
	var years []int
	for y := w.Start.Year; y <= w.End().Year; y++ {
		years = append(years, y)
	}
	return years
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
