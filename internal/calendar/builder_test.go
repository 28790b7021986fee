package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/habitgrid/internal/datekey"
)

func day(s string) datekey.Date {
	return datekey.MustParse(s)
}

func setLookup(dates ...string) CompletionLookup {
	set := make(map[datekey.Date]bool, len(dates))
	for _, d := range dates {
		set[day(d)] = true
	}
	return func(d datekey.Date) bool { return set[d] }
}

func always(datekey.Date) bool { return true }

func countInScope(cells []Cell) int {
	n := 0
	for _, c := range cells {
		if c.InScope {
			n++
		}
	}
	return n
}

func TestYearGridLeapYear(t *testing.T) {
	layout := Build(YearGrid{Year: 2024, Columns: 53}, Context{}, nil)

	require.Equal(t, KindYearGrid, layout.Kind)
	require.Equal(t, 53, layout.Cols)
	require.Equal(t, 7, layout.Rows)
	require.Len(t, layout.Cells, 371)
	require.Equal(t, 366, countInScope(layout.Cells))
	require.Equal(t, day("2024-01-01"), layout.Start)
	require.Equal(t, day("2024-12-31"), layout.End)

	mar1 := layout.Cells[60]
	require.Equal(t, day("2024-03-01"), mar1.Date)
	require.Equal(t, 1, mar1.Row)
	require.Equal(t, 7, mar1.Col)
	require.True(t, mar1.MonthBoundary)

	for _, cell := range layout.Cells[366:] {
		require.False(t, cell.InScope)
	}
	require.Len(t, layout.MonthLabels, 12)
	require.Equal(t, MonthLabel{Month: time.March, Row: 1, Col: 7}, layout.MonthLabels[2])
}

func TestYearGridCommonYearAndDegenerateColumns(t *testing.T) {
	layout := BuildYearGrid(YearGrid{Year: 2023, Columns: 7}, Context{}, nil)
	require.Equal(t, 53, layout.Rows)
	require.Len(t, layout.Cells, 371)
	require.Equal(t, 365, countInScope(layout.Cells))

	single := BuildYearGrid(YearGrid{Year: 2023, Columns: 0}, Context{}, nil)
	require.Equal(t, 1, single.Cols)
	require.Equal(t, 365, single.Rows)
	require.Len(t, single.Cells, 365)
}

func TestYearGridPaddingNeverCompleted(t *testing.T) {
	layout := BuildYearGrid(YearGrid{Year: 2023, Columns: 10}, Context{Today: day("2023-06-01")}, always)
	require.Equal(t, 365, layout.CompletedCount)
	for _, cell := range layout.Cells {
		if !cell.InScope {
			require.False(t, cell.Completed)
			require.False(t, cell.IsToday)
			require.False(t, cell.Future)
		}
	}
}

func TestClassification(t *testing.T) {
	ctx := Context{Today: day("2024-03-03")}
	layout := BuildYearGrid(YearGrid{Year: 2024, Columns: 7}, ctx, setLookup("2024-03-02", "2024-03-03", "2023-12-31"))

	require.Equal(t, 2, layout.CompletedCount)
	var todays []Cell
	for _, cell := range layout.Cells {
		if cell.IsToday {
			todays = append(todays, cell)
		}
		if cell.InScope && cell.Date.After(ctx.Today) {
			require.True(t, cell.Future)
		}
	}
	require.Len(t, todays, 1)
	require.Equal(t, day("2024-03-03"), todays[0].Date)
	require.True(t, todays[0].Completed)
	require.False(t, todays[0].Future)
}

func TestWeekAlignedYearGridStartsOnMonday(t *testing.T) {
	// Jan 1, 2023 is a Sunday: six December days pad the first week.
	layout := Build(WeekAlignedYearGrid{Year: 2023}, Context{}, nil)

	require.Equal(t, 7, layout.Rows)
	require.Equal(t, 53, layout.Cols)
	require.Equal(t, 6, layout.Leading)
	require.Len(t, layout.Cells, 371)
	require.Equal(t, 365, countInScope(layout.Cells))

	first := layout.Cells[0]
	require.Equal(t, day("2022-12-26"), first.Date)
	require.False(t, first.InScope)

	jan1 := layout.Cells[6]
	require.Equal(t, day("2023-01-01"), jan1.Date)
	require.True(t, jan1.InScope)
	require.Equal(t, 6, jan1.Row)
	require.Equal(t, 0, jan1.Col)

	last := layout.Cells[370]
	require.Equal(t, day("2023-12-31"), last.Date)
	require.Equal(t, 6, last.Row)
	require.Equal(t, 52, last.Col)

	require.Len(t, layout.MonthLabels, 12)
	require.Equal(t, MonthLabel{Month: time.January, Row: 0, Col: 0}, layout.MonthLabels[0])
	require.Equal(t, MonthLabel{Month: time.February, Row: 0, Col: 5}, layout.MonthLabels[1])
}

func TestWeekAlignedYearGridTrailingPadding(t *testing.T) {
	// Jan 1, 2024 is a Monday and Dec 31, 2024 a Tuesday.
	layout := BuildWeekAlignedYearGrid(WeekAlignedYearGrid{Year: 2024}, Context{}, always)

	require.Equal(t, 0, layout.Leading)
	require.Equal(t, 53, layout.Cols)
	require.Equal(t, 366, countInScope(layout.Cells))
	require.Equal(t, 366, layout.CompletedCount)

	dec31 := layout.Cells[365]
	require.Equal(t, day("2024-12-31"), dec31.Date)
	require.Equal(t, 1, dec31.Row)
	require.Equal(t, 52, dec31.Col)
	for _, cell := range layout.Cells[366:] {
		require.False(t, cell.InScope)
		require.Equal(t, 2025, cell.Date.Year)
	}
}

func TestMonthGridFebruaryLeapYear(t *testing.T) {
	layout := Build(MonthGrid{Year: 2024, Month: time.February}, Context{}, nil)

	require.Equal(t, 3, layout.Leading)
	require.Len(t, layout.Cells, 32)
	require.Equal(t, 29, countInScope(layout.Cells))
	for i := 0; i < 3; i++ {
		require.False(t, layout.Cells[i].InScope)
	}
	first := layout.Cells[3]
	require.Equal(t, day("2024-02-01"), first.Date)
	require.Equal(t, 0, first.Row)
	require.Equal(t, 3, first.Col)

	last := layout.Cells[len(layout.Cells)-1]
	require.Equal(t, day("2024-02-29"), last.Date)
	require.True(t, last.InScope)
	require.Equal(t, 4, last.Row)
	require.Equal(t, 3, last.Col)
	require.Equal(t, 5, layout.Rows)
}

func TestMonthGridStartingSunday(t *testing.T) {
	// Sep 1, 2024 is a Sunday.
	layout := BuildMonthGrid(MonthGrid{Year: 2024, Month: time.September}, Context{}, nil)
	require.Equal(t, 6, layout.Leading)
	require.Equal(t, 6, layout.Rows)
	require.Len(t, layout.Cells, 36)

	cell, ok := layout.CellAt(0, 6)
	require.True(t, ok)
	require.Equal(t, day("2024-09-01"), cell.Date)
	_, ok = layout.CellAt(5, 6)
	require.False(t, ok)
}

func TestMonthGridStartingMonday(t *testing.T) {
	layout := BuildMonthGrid(MonthGrid{Year: 2024, Month: time.January}, Context{}, nil)
	require.Equal(t, 0, layout.Leading)
	require.Len(t, layout.Cells, 31)
	require.Equal(t, 5, layout.Rows)
}

func TestYearOverviewLocksFutureMonths(t *testing.T) {
	ctx := Context{
		Today:    day("2024-03-15"),
		Unlocked: map[time.Month]bool{time.May: true},
	}
	layout := Build(YearOverview{Year: 2024}, ctx, setLookup("2024-01-01", "2024-03-15", "2024-06-01"))

	require.Len(t, layout.Months, 12)
	require.Equal(t, 3, layout.CompletedCount)
	for _, ml := range layout.Months {
		switch {
		case ml.Month.Month <= time.March:
			require.False(t, ml.Future, ml.Month.String())
			require.False(t, ml.Locked, ml.Month.String())
		case ml.Month.Month == time.May:
			require.True(t, ml.Future)
			require.False(t, ml.Locked)
		default:
			require.True(t, ml.Future, ml.Month.String())
			require.True(t, ml.Locked, ml.Month.String())
		}
		require.Equal(t, ml.Month.Days(), countInScope(ml.Cells))
	}

	// Locked months are still laid out and classified.
	june := layout.Months[5]
	require.True(t, june.Locked)
	require.Equal(t, 1, june.CompletedCount)
}

func TestYearOverviewOtherYears(t *testing.T) {
	ctx := Context{Today: day("2024-03-15")}

	past := BuildYearOverview(YearOverview{Year: 2023}, ctx, nil)
	for _, ml := range past.Months {
		require.False(t, ml.Locked)
	}

	future := BuildYearOverview(YearOverview{Year: 2025}, ctx, nil)
	for _, ml := range future.Months {
		require.True(t, ml.Locked)
	}
}

func TestIsFutureMonthAcrossYears(t *testing.T) {
	today := day("2024-12-31")
	require.False(t, IsFutureMonth(datekey.Month{Year: 2024, Month: time.December}, today))
	require.False(t, IsFutureMonth(datekey.Month{Year: 2023, Month: time.December}, today))

	// Every month of a later year is future, January included.
	for m := time.January; m <= time.December; m++ {
		require.True(t, IsFutureMonth(datekey.Month{Year: 2025, Month: m}, today), m.String())
	}

	require.False(t, IsFutureMonth(datekey.Month{Year: 2030, Month: time.June}, datekey.Date{}))

	layout := BuildYearOverview(YearOverview{Year: 2025}, Context{
		Today:    today,
		Unlocked: map[time.Month]bool{time.January: true},
	}, nil)
	require.True(t, layout.Months[0].Future)
	require.False(t, layout.Months[0].Locked)
	for _, ml := range layout.Months[1:] {
		require.True(t, ml.Locked, ml.Month.String())
	}
}

func TestTodayWeek(t *testing.T) {
	ctx := Context{Today: day("2024-03-03")}
	layout := Build(TodayWeek{Reference: day("2024-03-03")}, ctx, setLookup("2024-02-26", "2024-03-01", "2024-03-04"))

	require.Len(t, layout.Cells, 7)
	require.Equal(t, day("2024-02-26"), layout.Start)
	require.Equal(t, day("2024-03-03"), layout.End)
	require.Equal(t, 2, layout.CompletedCount)

	for i, cell := range layout.Cells {
		require.True(t, cell.InScope)
		require.Equal(t, i, cell.Col)
		require.Equal(t, 0, cell.Row)
	}
	require.True(t, layout.Cells[6].IsToday)
	require.True(t, layout.Cells[4].MonthBoundary)

	// A zero reference falls back to today.
	fallback := BuildTodayWeek(TodayWeek{}, ctx, nil)
	require.Equal(t, layout.Start, fallback.Start)
}

func TestRollingGridEndsToday(t *testing.T) {
	ctx := Context{Today: day("2024-03-03")}
	layout := Build(RollingGrid{Columns: 53}, ctx, always)

	require.Equal(t, day("2023-03-05"), layout.Start)
	require.Equal(t, day("2024-03-03"), layout.End)
	require.Equal(t, 365, countInScope(layout.Cells))
	require.Equal(t, 365, layout.CompletedCount)
	require.True(t, layout.Cells[364].IsToday)
	require.Equal(t, time.March, layout.MonthLabels[0].Month)
	require.Equal(t, 0, layout.MonthLabels[0].Col)
}

func TestBuildIsPure(t *testing.T) {
	ctx := Context{Today: day("2024-03-03"), Unlocked: map[time.Month]bool{time.June: true}}
	lookup := setLookup("2024-03-01", "2024-03-02")
	modes := []ViewMode{
		YearGrid{Year: 2024, Columns: 20},
		WeekAlignedYearGrid{Year: 2024},
		MonthGrid{Year: 2024, Month: time.March},
		YearOverview{Year: 2024},
		TodayWeek{Reference: day("2024-03-03")},
		RollingGrid{Columns: 30},
	}
	for _, mode := range modes {
		first := Build(mode, ctx, lookup)
		second := Build(mode, ctx, lookup)
		require.Equal(t, first, second, mode.Kind().String())
		require.Equal(t, mode.Kind(), first.Kind)
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "overview", KindYearOverview.String())
	require.Equal(t, "unknown", Kind(99).String())
}
