package datekey

import (
	"fmt"
	"time"
)

// Month identifies a calendar month of a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// IsZero reports whether m is unset.
func (m Month) IsZero() bool {
	return m == Month{}
}

// First returns the first day of m.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Last returns the last day of m.
func (m Month) Last() Date {
	return Date{Year: m.Year, Month: m.Month, Day: DaysInMonth(m.Year, m.Month)}
}

// Days returns the number of days in m.
func (m Month) Days() int {
	return DaysInMonth(m.Year, m.Month)
}

// Add returns m shifted by n months, carrying across year boundaries.
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month-1) + n
	year := idx / 12
	month := idx % 12
	if month < 0 {
		month += 12
		year--
	}
	return Month{Year: year, Month: time.Month(month + 1)}
}

// Contains reports whether d falls in m.
func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
