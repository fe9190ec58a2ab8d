package assistant

import (
	"fmt"
	"time"

	"wealthpulse/internal/core"
)

// DateRange is an inclusive start/end calendar-date pair. The all-time
// marker is its own flag rather than sentinel dates, so a bounded range
// always satisfies Start <= End.
type DateRange struct {
	Start     core.Date
	End       core.Date
	Unbounded bool
}

// NewRange builds a bounded inclusive range.
func NewRange(start, end core.Date) DateRange {
	return DateRange{Start: start, End: end}
}

// AllTime returns the unbounded range.
func AllTime() DateRange {
	return DateRange{Unbounded: true}
}

// MonthRange covers the whole calendar month containing ref.
func MonthRange(ref time.Time) DateRange {
	year, month := ref.Year(), int(ref.Month())
	return NewRange(core.NewDate(year, month, 1), core.NewDate(year, month, daysInMonth(year, month)))
}

// YearRange covers January 1 through December 31 of ref's year.
func YearRange(ref time.Time) DateRange {
	return NewRange(core.NewDate(ref.Year(), 1, 1), core.NewDate(ref.Year(), 12, 31))
}

// Valid reports whether the range is unbounded or properly ordered.
func (r DateRange) Valid() bool {
	return r.Unbounded || !r.Start.After(r.End)
}

// SingleDay reports whether the range covers exactly one date.
func (r DateRange) SingleDay() bool {
	return !r.Unbounded && r.Start.Equal(r.End.Time)
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d core.Date) bool {
	if r.Unbounded {
		return true
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

// String renders the range the way replies name periods: "December 5, 2025"
// for a single day, "December 2025" for a whole month, and explicit
// endpoints otherwise.
func (r DateRange) String() string {
	switch {
	case r.Unbounded:
		return "All Time"
	case r.SingleDay():
		return r.Start.Format("January 2, 2006")
	case r.wholeMonth():
		return r.Start.Format("January 2006")
	case r.Start.Year() == r.End.Year() && r.Start.Month() == 1 && r.Start.Day() == 1 &&
		r.End.Month() == 12 && r.End.Day() == 31:
		return fmt.Sprintf("%d", r.Start.Year())
	case r.Start.Year() == r.End.Year():
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2"), r.End.Format("Jan 2, 2006"))
	default:
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2, 2006"), r.End.Format("Jan 2, 2006"))
	}
}

func (r DateRange) wholeMonth() bool {
	return r.Start.Year() == r.End.Year() &&
		r.Start.Month() == r.End.Month() &&
		r.Start.Day() == 1 &&
		r.End.Day() == daysInMonth(r.Start.Year(), r.Start.Month())
}

// daysInMonth returns the number of days in the given month, leap years
// included (day zero of the following month).
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
