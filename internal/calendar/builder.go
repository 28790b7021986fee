package calendar

import (
	"time"

	"github.com/tOgg1/habitgrid/internal/datekey"
)

// DaysPerWeek is the width of week-based layouts.
const DaysPerWeek = 7

const defaultRollingDays = 365

// Build dispatches to the builder for mode.
func Build(mode ViewMode, ctx Context, lookup CompletionLookup) Layout {
	switch m := mode.(type) {
	case YearGrid:
		return BuildYearGrid(m, ctx, lookup)
	case WeekAlignedYearGrid:
		return BuildWeekAlignedYearGrid(m, ctx, lookup)
	case MonthGrid:
		return BuildMonthGrid(m, ctx, lookup)
	case YearOverview:
		return BuildYearOverview(m, ctx, lookup)
	case TodayWeek:
		return BuildTodayWeek(m, ctx, lookup)
	case RollingGrid:
		return BuildRollingGrid(m, ctx, lookup)
	default:
		return Layout{}
	}
}

// BuildYearGrid lays out DaysInYear(year) days from Jan 1 row-major. Slots past the
// last day pad the final row and are out of scope. Columns below 1 are treated as 1.
func BuildYearGrid(mode YearGrid, ctx Context, lookup CompletionLookup) Layout {
	start := datekey.New(mode.Year, time.January, 1)
	layout := buildRowMajor(start, datekey.DaysInYear(mode.Year), mode.Columns, ctx, lookup)
	layout.Kind = KindYearGrid
	return layout
}

// BuildRollingGrid lays out the trailing window ending at mode.End row-major.
func BuildRollingGrid(mode RollingGrid, ctx Context, lookup CompletionLookup) Layout {
	end := mode.End
	if end.IsZero() {
		end = ctx.Today
	}
	days := mode.Days
	if days <= 0 {
		days = defaultRollingDays
	}
	start := end.AddDays(-(days - 1))
	layout := buildRowMajor(start, days, mode.Columns, ctx, lookup)
	layout.Kind = KindRollingGrid
	return layout
}

func buildRowMajor(start datekey.Date, days, columns int, ctx Context, lookup CompletionLookup) Layout {
	cols := columns
	if cols < 1 {
		cols = 1
	}
	rows := ceilDiv(days, cols)
	total := rows * cols

	layout := Layout{
		Start: start,
		End:   start.AddDays(days - 1),
		Rows:  rows,
		Cols:  cols,
		Cells: make([]Cell, 0, total),
	}
	for i := 0; i < total; i++ {
		date := start.AddDays(i)
		cell := classify(date, i < days, ctx, lookup)
		cell.Row = i / cols
		cell.Col = i % cols
		if cell.Completed {
			layout.CompletedCount++
		}
		if cell.InScope && (i == 0 || cell.MonthBoundary) {
			layout.MonthLabels = append(layout.MonthLabels, MonthLabel{Month: date.Month, Row: cell.Row, Col: cell.Col})
		}
		layout.Cells = append(layout.Cells, cell)
	}
	return layout
}

// BuildWeekAlignedYearGrid lays out the year in week columns. Row 0 is Monday. The grid
// starts on the Monday on or before Jan 1 and ends on the Sunday on or after Dec 31;
// days outside the year are out of scope. A month label is emitted at the column that
// holds the first day of each month.
func BuildWeekAlignedYearGrid(mode WeekAlignedYearGrid, ctx Context, lookup CompletionLookup) Layout {
	jan1 := datekey.New(mode.Year, time.January, 1)
	start := jan1.StartOfWeek()
	lead := datekey.DaysBetween(start, jan1)
	days := datekey.DaysInYear(mode.Year)
	cols := ceilDiv(lead+days, DaysPerWeek)
	total := cols * DaysPerWeek

	layout := Layout{
		Kind:    KindWeekAlignedYearGrid,
		Start:   jan1,
		End:     jan1.AddDays(days - 1),
		Rows:    DaysPerWeek,
		Cols:    cols,
		Leading: lead,
		Cells:   make([]Cell, 0, total),
	}
	for i := 0; i < total; i++ {
		date := start.AddDays(i)
		cell := classify(date, i >= lead && i < lead+days, ctx, lookup)
		cell.Col = i / DaysPerWeek
		cell.Row = i % DaysPerWeek
		if cell.Completed {
			layout.CompletedCount++
		}
		if cell.MonthBoundary {
			layout.MonthLabels = append(layout.MonthLabels, MonthLabel{Month: date.Month, Row: 0, Col: cell.Col})
		}
		layout.Cells = append(layout.Cells, cell)
	}
	return layout
}

// BuildMonthGrid lays out one month in Monday-first week rows. Leading slots fill the
// first row up to the month's first weekday; the final row stops at the last day.
func BuildMonthGrid(mode MonthGrid, ctx Context, lookup CompletionLookup) Layout {
	ml := buildMonth(datekey.Month{Year: mode.Year, Month: mode.Month}, ctx, lookup)
	return Layout{
		Kind:           KindMonthGrid,
		Start:          ml.Month.First(),
		End:            ml.Month.Last(),
		Rows:           ml.Rows,
		Cols:           DaysPerWeek,
		Leading:        ml.Leading,
		Cells:          ml.Cells,
		MonthLabels:    []MonthLabel{{Month: mode.Month, Row: 0, Col: ml.Leading}},
		CompletedCount: ml.CompletedCount,
	}
}

// BuildYearOverview lays out all twelve months of the year. A month whose first day is
// after today is locked unless the context unlocked it.
func BuildYearOverview(mode YearOverview, ctx Context, lookup CompletionLookup) Layout {
	layout := Layout{
		Kind:   KindYearOverview,
		Start:  datekey.New(mode.Year, time.January, 1),
		End:    datekey.New(mode.Year, time.December, 31),
		Months: make([]MonthLayout, 0, 12),
	}
	for m := time.January; m <= time.December; m++ {
		ml := buildMonth(datekey.Month{Year: mode.Year, Month: m}, ctx, lookup)
		ml.Future = IsFutureMonth(ml.Month, ctx.Today)
		ml.Locked = ml.Future && !ctx.IsUnlocked(m)
		layout.CompletedCount += ml.CompletedCount
		layout.Months = append(layout.Months, ml)
	}
	return layout
}

// BuildTodayWeek lays out the seven days of the Monday-first week containing
// mode.Reference (or today when Reference is zero).
func BuildTodayWeek(mode TodayWeek, ctx Context, lookup CompletionLookup) Layout {
	ref := mode.Reference
	if ref.IsZero() {
		ref = ctx.Today
	}
	start := ref.StartOfWeek()
	layout := Layout{
		Kind:  KindTodayWeek,
		Start: start,
		End:   start.AddDays(DaysPerWeek - 1),
		Rows:  1,
		Cols:  DaysPerWeek,
		Cells: make([]Cell, 0, DaysPerWeek),
	}
	for i := 0; i < DaysPerWeek; i++ {
		cell := classify(start.AddDays(i), true, ctx, lookup)
		cell.Col = i
		if cell.Completed {
			layout.CompletedCount++
		}
		layout.Cells = append(layout.Cells, cell)
	}
	return layout
}

// IsFutureMonth reports whether month starts after today. A zero today makes no month
// future.
func IsFutureMonth(month datekey.Month, today datekey.Date) bool {
	if today.IsZero() {
		return false
	}
	return month.First().After(today)
}

func buildMonth(month datekey.Month, ctx Context, lookup CompletionLookup) MonthLayout {
	first := month.First()
	lead := first.MondayIndex()
	days := month.Days()

	ml := MonthLayout{
		Month:   month,
		Rows:    ceilDiv(lead+days, DaysPerWeek),
		Leading: lead,
		Cells:   make([]Cell, 0, lead+days),
	}
	for i := 0; i < lead+days; i++ {
		cell := classify(first.AddDays(i-lead), i >= lead, ctx, lookup)
		cell.Row = i / DaysPerWeek
		cell.Col = i % DaysPerWeek
		if cell.Completed {
			ml.CompletedCount++
		}
		ml.Cells = append(ml.Cells, cell)
	}
	return ml
}

// classify fills the date-derived flags. Out-of-scope cells keep their date but are
// never completed, today or future.
func classify(date datekey.Date, inScope bool, ctx Context, lookup CompletionLookup) Cell {
	cell := Cell{Date: date, InScope: inScope}
	if !inScope {
		return cell
	}
	cell.MonthBoundary = date.Day == 1
	cell.IsToday = !ctx.Today.IsZero() && date == ctx.Today
	cell.Future = !ctx.Today.IsZero() && date.After(ctx.Today)
	if lookup != nil {
		cell.Completed = lookup(date)
	}
	return cell
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
