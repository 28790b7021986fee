package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/habitgrid/internal/calendar"
	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/logging"
	"github.com/tOgg1/habitgrid/internal/navigation"
	"github.com/tOgg1/habitgrid/internal/render"
)

var showViews = []string{"year", "weeks", "month", "overview", "week", "rolling"}

type showOptions struct {
	habit   string
	all     bool
	year    int
	month   string
	open    string
	columns int
	days    int

	habitMonth string
	step       int
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	so := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show [year|weeks|month|overview|week|rolling]",
		Short: "Draw a habit's calendar",
		Long: `Draw a habit's completions as a calendar grid.

Views:
  year      every day of the year, row-major (default)
  weeks     the year in Monday-first week columns
  month     one month in week rows
  overview  all twelve months of the year
  week      the current Monday-first week
  rolling   the trailing days ending today`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: showViews,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := "year"
			if len(args) == 1 {
				view = strings.ToLower(strings.TrimSpace(args[0]))
			}
			return withApp(cmd, opts, func(a *app) error {
				return runShow(cmd, a, view, so)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&so.habit, "habit", "", "habit to draw (default: first habit)")
	flags.BoolVar(&so.all, "all", false, "draw every habit")
	flags.IntVar(&so.year, "year", 0, "year for year views (default: current year)")
	flags.StringVar(&so.month, "month", "", "month for the month view (YYYY-MM)")
	flags.StringVar(&so.open, "open", "", "open a month of the overview (1-12 or name), unlocking future months")
	flags.IntVar(&so.columns, "columns", 0, "year grid columns (default: config or terminal width)")
	flags.IntVar(&so.days, "days", 0, "days in the rolling view (default 365)")
	flags.StringVar(&so.habitMonth, "habit-month", "", "month for the selected habit only (YYYY-MM)")
	flags.IntVar(&so.step, "step", 0, "move the month view by N months, or year views by N years")
	return cmd
}

func runShow(cmd *cobra.Command, a *app, view string, so *showOptions) error {
	theme, ok := render.ThemeByName(a.cfg.Display.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", a.cfg.Display.Theme, strings.Join(render.ThemeNames(), ", "))
	}

	habits := a.registry.Habits()
	if len(habits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No habits found. Add one with: habitgrid add NAME")
		return nil
	}

	today := a.today()
	nav := navigation.New(today)
	nav.Reconcile(habits)
	if so.habit != "" && !nav.SelectHabit(so.habit, habits) {
		return a.registry.CheckExists(so.habit)
	}
	if so.year != 0 {
		nav.SetYear(so.year)
		nav.SetGlobalMonth(datekey.Month{Year: so.year, Month: nav.GlobalMonth().Month})
	}
	if so.month != "" {
		month, err := parseMonthFlag(so.month)
		if err != nil {
			return err
		}
		nav.SetGlobalMonth(month)
	}
	selected, _ := nav.SelectedHabit()
	if so.habitMonth != "" {
		month, err := parseMonthFlag(so.habitMonth)
		if err != nil {
			return err
		}
		nav.SetHabitMonth(selected, month)
	}
	if so.step != 0 {
		switch view {
		case "month":
			nav.ShiftHabitMonth(selected, so.step)
		case "year", "weeks", "overview":
			nav.ShiftYear(so.step)
		default:
			return fmt.Errorf("--step does not apply to the %s view", view)
		}
	}
	if so.open != "" {
		month, err := parseMonthName(so.open)
		if err != nil {
			return err
		}
		nav.SelectOverviewMonth(month, today)
	}

	targets := habits
	if !so.all {
		targets = []string{selected}
	}

	out := cmd.OutOrStdout()
	for i, habit := range targets {
		mode, err := showMode(cmd, a, nav, view, habit, so)
		if err != nil {
			return err
		}
		layout := calendar.Build(mode, nav.Context(today), a.registry.Lookup(habit))
		logging.WithHabit(a.logger, habit).Debug().
			Str("view", layout.Kind.String()).
			Int("completed", layout.CompletedCount).
			Msg("built layout")
		color, _ := a.registry.Color(habit)
		r := render.New(theme, render.WithHabitColor(color))
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, r.Render(habit, layout))
	}
	return nil
}

func showMode(cmd *cobra.Command, a *app, nav *navigation.State, view, habit string, so *showOptions) (calendar.ViewMode, error) {
	switch view {
	case "year":
		return nav.YearGrid(showColumns(cmd, a, so)), nil
	case "weeks":
		return nav.WeekAlignedYearGrid(), nil
	case "month":
		return nav.MonthGrid(habit), nil
	case "overview":
		return nav.Overview(), nil
	case "week":
		return calendar.TodayWeek{Reference: a.today()}, nil
	case "rolling":
		if so.days < 0 {
			return nil, fmt.Errorf("--days must be positive, got %d", so.days)
		}
		return calendar.RollingGrid{End: a.today(), Days: so.days, Columns: showColumns(cmd, a, so)}, nil
	default:
		return nil, fmt.Errorf("unknown view %q (valid: %s)", view, strings.Join(showViews, ", "))
	}
}

// showColumns prefers the flag, then configuration, then the terminal width.
func showColumns(cmd *cobra.Command, a *app, so *showOptions) int {
	if so.columns > 0 {
		return so.columns
	}
	if a.cfg.Display.Columns > 0 {
		return a.cfg.Display.Columns
	}
	return gridColumns(cmd.OutOrStdout())
}

func parseMonthFlag(value string) (datekey.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return datekey.Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", value)
	}
	return datekey.Month{Year: t.Year(), Month: t.Month()}, nil
}

// parseMonthName accepts 1-12, a full month name or its three-letter prefix.
func parseMonthName(value string) (time.Month, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(value); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("invalid month %q: expected 1-12", value)
		}
		return time.Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if value == name || (len(value) == 3 && strings.HasPrefix(name, value)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", value)
}
