// Package calendar lays out habit history as calendar grids.
//
// Every builder is a pure function of its view mode, a Context and a completion
// lookup: it reads nothing else and mutates nothing, so the same inputs always
// produce the same Layout and builders may run concurrently.
package calendar

import (
	"time"

	"github.com/tOgg1/habitgrid/internal/datekey"
)

// Kind names a view mode.
type Kind int

const (
	KindYearGrid Kind = iota
	KindWeekAlignedYearGrid
	KindMonthGrid
	KindYearOverview
	KindTodayWeek
	KindRollingGrid
)

func (k Kind) String() string {
	switch k {
	case KindYearGrid:
		return "year"
	case KindWeekAlignedYearGrid:
		return "weeks"
	case KindMonthGrid:
		return "month"
	case KindYearOverview:
		return "overview"
	case KindTodayWeek:
		return "week"
	case KindRollingGrid:
		return "rolling"
	default:
		return "unknown"
	}
}

// ViewMode selects which grid to build. The set of modes is closed.
type ViewMode interface {
	Kind() Kind
	viewMode()
}

// YearGrid lays out every day of Year row-major across Columns columns.
type YearGrid struct {
	Year    int
	Columns int
}

// WeekAlignedYearGrid lays out Year in Monday-first week columns of seven rows.
type WeekAlignedYearGrid struct {
	Year int
}

// MonthGrid lays out one month in Monday-first week rows.
type MonthGrid struct {
	Year  int
	Month time.Month
}

// YearOverview lays out the twelve months of Year.
type YearOverview struct {
	Year int
}

// TodayWeek lays out the Monday-first week containing Reference.
type TodayWeek struct {
	Reference datekey.Date
}

// RollingGrid lays out the Days days ending at End (inclusive), row-major across
// Columns columns. A zero End means the context's today; Days defaults to 365.
type RollingGrid struct {
	End     datekey.Date
	Days    int
	Columns int
}

func (YearGrid) Kind() Kind            { return KindYearGrid }
func (WeekAlignedYearGrid) Kind() Kind { return KindWeekAlignedYearGrid }
func (MonthGrid) Kind() Kind           { return KindMonthGrid }
func (YearOverview) Kind() Kind        { return KindYearOverview }
func (TodayWeek) Kind() Kind           { return KindTodayWeek }
func (RollingGrid) Kind() Kind         { return KindRollingGrid }

func (YearGrid) viewMode()            {}
func (WeekAlignedYearGrid) viewMode() {}
func (MonthGrid) viewMode()           {}
func (YearOverview) viewMode()        {}
func (TodayWeek) viewMode()           {}
func (RollingGrid) viewMode()         {}

// CompletionLookup reports whether a date is completed. A nil lookup completes nothing.
type CompletionLookup func(datekey.Date) bool

// Context carries the reference point of a build.
type Context struct {
	// Today is the local calendar date used for IsToday, Future and month locking.
	Today datekey.Date

	// Unlocked lists future months the user opened in the year overview.
	Unlocked map[time.Month]bool
}

// IsUnlocked reports whether month was explicitly unlocked.
func (c Context) IsUnlocked(month time.Month) bool {
	return c.Unlocked[month]
}

// Cell is one day slot of a layout.
type Cell struct {
	Date datekey.Date

	// InScope is false for padding slots that do not belong to the view's range.
	InScope bool

	Completed bool
	IsToday   bool

	// Future is true for in-scope days after today.
	Future bool

	Row int
	Col int

	// MonthBoundary marks the first day of a calendar month.
	MonthBoundary bool
}

// MonthLabel marks where a month starts in a year layout.
type MonthLabel struct {
	Month time.Month
	Row   int
	Col   int
}

// MonthLayout is one month of a year overview.
type MonthLayout struct {
	Month datekey.Month

	// Locked months are laid out but not interactive.
	Locked bool

	// Future is true when the whole month lies after today.
	Future bool

	Rows           int
	Leading        int
	Cells          []Cell
	CompletedCount int
}

// Layout is the result of a build.
type Layout struct {
	Kind Kind

	// Start and End bound the in-scope dates.
	Start datekey.Date
	End   datekey.Date

	Rows int
	Cols int

	// Leading counts padding cells before Start.
	Leading int

	Cells       []Cell
	MonthLabels []MonthLabel

	// Months holds the per-month layouts of a year overview.
	Months []MonthLayout

	// CompletedCount counts in-scope completed cells.
	CompletedCount int
}

// InScope returns the in-scope cells of l in layout order.
func (l Layout) InScope() []Cell {
	out := make([]Cell, 0, len(l.Cells))
	for _, cell := range l.Cells {
		if cell.InScope {
			out = append(out, cell)
		}
	}
	return out
}

// CellAt returns the cell at row, col if one exists.
func (l Layout) CellAt(row, col int) (Cell, bool) {
	if l.Cols <= 0 || row < 0 || col < 0 || col >= l.Cols {
		return Cell{}, false
	}
	for _, cell := range l.Cells {
		if cell.Row == row && cell.Col == col {
			return cell, true
		}
	}
	return Cell{}, false
}
