// Package navigation holds the session cursor that decides which grid a view builds.
//
// State is created fresh for every session and is never persisted.
package navigation

import (
	"time"

	"github.com/tOgg1/habitgrid/internal/calendar"
	"github.com/tOgg1/habitgrid/internal/datekey"
)

// State is the per-session navigation cursor.
type State struct {
	selectedHabit string

	selectedYear int
	globalMonth  datekey.Month

	// habitMonths overrides globalMonth for individual habits.
	habitMonths map[string]datekey.Month

	// unlocked holds future months of selectedYear opened from the year overview.
	unlocked map[time.Month]bool
}

// New returns a cursor positioned on today's year and month with no habit selected.
func New(today datekey.Date) *State {
	return &State{
		selectedYear: today.Year,
		globalMonth:  today.MonthOf(),
		habitMonths:  make(map[string]datekey.Month),
		unlocked:     make(map[time.Month]bool),
	}
}

// SelectedHabit returns the selected habit, if any.
func (s *State) SelectedHabit() (string, bool) {
	return s.selectedHabit, s.selectedHabit != ""
}

// SelectHabit selects name when it is one of habits. It reports whether the selection
// was accepted.
func (s *State) SelectHabit(name string, habits []string) bool {
	if !contains(habits, name) {
		return false
	}
	s.selectedHabit = name
	return true
}

// Reconcile heals the cursor against the current habit list. A selection that no
// longer exists falls back to the first habit, or to none when habits is empty.
// Month overrides of vanished habits are dropped. It reports whether the selection
// changed, which is when a host needs to re-render.
func (s *State) Reconcile(habits []string) bool {
	for name := range s.habitMonths {
		if !contains(habits, name) {
			delete(s.habitMonths, name)
		}
	}
	if s.selectedHabit != "" && contains(habits, s.selectedHabit) {
		return false
	}
	prev := s.selectedHabit
	s.selectedHabit = ""
	if len(habits) > 0 {
		s.selectedHabit = habits[0]
	}
	return prev != s.selectedHabit
}

// SelectedYear returns the year shown by year views.
func (s *State) SelectedYear() int {
	return s.selectedYear
}

// SetYear moves year views to year. Unlocked months belong to a single year, so they
// are cleared when the year changes.
func (s *State) SetYear(year int) {
	if year == s.selectedYear {
		return
	}
	s.selectedYear = year
	s.unlocked = make(map[time.Month]bool)
}

// ShiftYear moves the year cursor by delta years.
func (s *State) ShiftYear(delta int) {
	s.SetYear(s.selectedYear + delta)
}

// GlobalMonth returns the month shown by habits without an override.
func (s *State) GlobalMonth() datekey.Month {
	return s.globalMonth
}

// SetGlobalMonth moves the global month cursor.
func (s *State) SetGlobalMonth(month datekey.Month) {
	s.globalMonth = month
}

// MonthFor returns the month cursor of habit: its override, or the global month.
func (s *State) MonthFor(habit string) datekey.Month {
	if month, ok := s.habitMonths[habit]; ok {
		return month
	}
	return s.globalMonth
}

// SetHabitMonth overrides the month cursor of one habit.
func (s *State) SetHabitMonth(habit string, month datekey.Month) {
	if habit == "" {
		return
	}
	s.habitMonths[habit] = month
}

// ShiftHabitMonth moves the month cursor of habit by delta months, creating an override.
func (s *State) ShiftHabitMonth(habit string, delta int) datekey.Month {
	month := s.MonthFor(habit).Add(delta)
	s.SetHabitMonth(habit, month)
	return month
}

// ClearHabitMonth drops the override of habit.
func (s *State) ClearHabitMonth(habit string) {
	delete(s.habitMonths, habit)
}

// SelectOverviewMonth handles a click on a month of the year overview: the global
// month cursor moves there and, when the month lies after today, it is unlocked.
func (s *State) SelectOverviewMonth(month time.Month, today datekey.Date) {
	target := datekey.Month{Year: s.selectedYear, Month: month}
	s.globalMonth = target
	if calendar.IsFutureMonth(target, today) {
		s.unlocked[month] = true
	}
}

// IsUnlocked reports whether month of the selected year was unlocked.
func (s *State) IsUnlocked(month time.Month) bool {
	return s.unlocked[month]
}

// Context returns the build context for today, carrying a copy of the unlocked set.
func (s *State) Context(today datekey.Date) calendar.Context {
	unlocked := make(map[time.Month]bool, len(s.unlocked))
	for month, ok := range s.unlocked {
		if ok {
			unlocked[month] = true
		}
	}
	return calendar.Context{Today: today, Unlocked: unlocked}
}

// YearGrid returns the contribution grid view of the selected year.
func (s *State) YearGrid(columns int) calendar.YearGrid {
	return calendar.YearGrid{Year: s.selectedYear, Columns: columns}
}

// WeekAlignedYearGrid returns the week-column view of the selected year.
func (s *State) WeekAlignedYearGrid() calendar.WeekAlignedYearGrid {
	return calendar.WeekAlignedYearGrid{Year: s.selectedYear}
}

// Overview returns the year overview of the selected year.
func (s *State) Overview() calendar.YearOverview {
	return calendar.YearOverview{Year: s.selectedYear}
}

// MonthGrid returns the month view for habit's cursor.
func (s *State) MonthGrid(habit string) calendar.MonthGrid {
	month := s.MonthFor(habit)
	return calendar.MonthGrid{Year: month.Year, Month: month.Month}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
