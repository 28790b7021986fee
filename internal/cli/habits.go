package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/habitgrid/internal/datekey"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Long:  "List habits in order with their color, completed days and streaks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				out := cmd.OutOrStdout()
				habits := a.registry.Habits()
				if len(habits) == 0 {
					fmt.Fprintln(out, "No habits found.")
					return nil
				}
				rows := make([][]string, 0, len(habits))
				for _, name := range habits {
					color, _ := a.registry.Color(name)
					rows = append(rows, []string{
						name,
						formatOptional(color),
						strconv.Itoa(a.registry.CompletedDays(name)),
						strconv.Itoa(a.registry.CurrentStreak(name)),
						strconv.Itoa(a.registry.LongestStreak(name)),
						formatYesNo(a.registry.IsCompleted(name, a.today())),
					})
				}
				return writeTable(out, []string{"HABIT", "COLOR", "DAYS", "STREAK", "LONGEST", "TODAY"}, rows)
			})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.registry.CheckAdd(args[0]); err != nil {
					return err
				}
				a.registry.AddHabit(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", strings.TrimSpace(args[0]))
				return nil
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a habit and its history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.registry.CheckExists(args[0]); err != nil {
					return err
				}
				a.registry.RemoveHabit(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a habit",
		Long:  "Rename a habit, keeping its position, completions and color.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.registry.CheckRename(args[0], args[1]); err != nil {
					return err
				}
				a.registry.RenameHabit(args[0], args[1])
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], strings.TrimSpace(args[1]))
				return nil
			})
		},
	}
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle NAME [DATE]",
		Short: "Toggle a day's completion",
		Long:  "Flip the completion of a habit on DATE (YYYY-MM-DD). DATE defaults to today.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				name := args[0]
				if err := a.registry.CheckExists(name); err != nil {
					return err
				}
				date, err := dateArg(args, 1, a.today())
				if err != nil {
					return err
				}
				done := a.registry.ToggleHabit(name, date)
				state := "not done"
				if done {
					state = "done"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", name, date, state)
				return nil
			})
		},
	}
}

func newStreakCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak NAME [DATE]",
		Short: "Show a habit's streak",
		Long:  "Show the run of completed days ending on DATE (default today) and the longest run on record.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				name := args[0]
				if err := a.registry.CheckExists(name); err != nil {
					return err
				}
				asOf, err := dateArg(args, 1, a.today())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s as of %s (longest %s)\n",
					name,
					formatDays(a.registry.Streak(name, asOf)),
					asOf,
					formatDays(a.registry.LongestStreak(name)),
				)
				return nil
			})
		},
	}
}

func newColorCmd(opts *rootOptions) *cobra.Command {
	var clearColor bool
	cmd := &cobra.Command{
		Use:   "color NAME [COLOR]",
		Short: "Show or set a habit's color",
		Long:  "Show a habit's color, or set it to COLOR (an ANSI-256 code or hex value).",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				name := args[0]
				if err := a.registry.CheckExists(name); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case clearColor:
					a.registry.SetColor(name, "")
					fmt.Fprintf(out, "Cleared color of %s\n", name)
				case len(args) == 2:
					a.registry.SetColor(name, args[1])
					fmt.Fprintf(out, "Set color of %s to %s\n", name, strings.TrimSpace(args[1]))
				default:
					color, _ := a.registry.Color(name)
					fmt.Fprintln(out, formatOptional(color))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearColor, "clear", false, "remove the habit's color")
	return cmd
}

// dateArg parses args[idx] as a date, falling back to def when it is absent.
func dateArg(args []string, idx int, def datekey.Date) (datekey.Date, error) {
	if len(args) <= idx {
		return def, nil
	}
	value := strings.TrimSpace(args[idx])
	if strings.EqualFold(value, "today") {
		return def, nil
	}
	if strings.EqualFold(value, "yesterday") {
		return def.AddDays(-1), nil
	}
	return datekey.Parse(value)
}

func formatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func formatOptional(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
