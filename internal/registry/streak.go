package registry

import (
	"sort"

	"github.com/tOgg1/habitgrid/internal/datekey"
)

// Streak counts consecutive completed days ending at asOf, inclusive. It stops at the
// first incomplete day or after StreakHorizon days, and is 0 when asOf itself is not
// completed.
func (r *Registry) Streak(name string, asOf datekey.Date) int {
	rec, ok := r.records[name]
	if !ok || asOf.IsZero() {
		return 0
	}
	streak := 0
	for i := 0; i < StreakHorizon; i++ {
		if !rec.completions[asOf.AddDays(-i)] {
			break
		}
		streak++
	}
	return streak
}

// CurrentStreak is Streak as of the registry's today.
func (r *Registry) CurrentStreak(name string) int {
	return r.Streak(name, r.Today())
}

// LongestStreak returns the longest run of consecutive completed days on record.
func (r *Registry) LongestStreak(name string) int {
	rec, ok := r.records[name]
	if !ok || len(rec.completions) == 0 {
		return 0
	}
	days := make([]datekey.Date, 0, len(rec.completions))
	for day, done := range rec.completions {
		if done {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for i, day := range days {
		if i > 0 && datekey.DaysBetween(days[i-1], day) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
