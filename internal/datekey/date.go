// Package datekey models local calendar dates used to address habit completions.
//
// A Date is a plain (year, month, day) triple. It never carries a clock time or a
// location, so two dates compare equal exactly when they name the same calendar day.
// Dates are built from the local components of a time.Time, never from a UTC-shifted
// instant, which keeps a completion recorded at 23:30 on the day the user sees.
package datekey

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical text form of a Date.
const Layout = "2006-01-02"

// ErrInvalidDate is returned when text is not a valid YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date without time or location. The zero value means "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a normalized Date. Out-of-range months and days roll over the way
// time.Date does, so New(2024, 2, 30) is March 1, 2024.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar date reported by now.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return FromTime(now().Local())
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return FromTime(t), nil
}

// MustParse is Parse for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats d as YYYY-MM-DD. The zero Date formats as the empty string.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of d in loc (UTC when loc is nil).
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// noon anchors arithmetic away from DST transitions.
func (d Date) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.noon().Weekday()
}

// MondayIndex returns 0 for Monday through 6 for Sunday.
func (d Date) MondayIndex() int {
	return (int(d.Weekday()) + 6) % 7
}

// StartOfWeek returns the Monday on or before d.
func (d Date) StartOfWeek() Date {
	return d.AddDays(-d.MondayIndex())
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// MonthOf returns the month containing d.
func (d Date) MonthOf() Month {
	return Month{Year: d.Year, Month: d.Month}
}

// MarshalText implements encoding.TextMarshaler so a Date can key a JSON object.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the number of days from a to b (negative when b is before a).
func DaysBetween(a, b Date) int {
	return int(b.noon().Sub(a.noon()).Hours() / 24)
}

// DaysInYear returns the day count from Jan 1 of year to Jan 1 of year+1.
func DaysInYear(year int) int {
	return DaysBetween(New(year, time.January, 1), New(year+1, time.January, 1))
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
