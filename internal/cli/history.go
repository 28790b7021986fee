package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/habitgrid/internal/persist"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List committed snapshots",
		Long:  "List the most recent committed snapshots. Requires the sqlite or postgres backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			return withApp(cmd, opts, func(a *app) error {
				history, ok := a.store.(persist.History)
				if !ok {
					return fmt.Errorf("the %s backend keeps no history", a.cfg.Storage.Backend)
				}
				revisions, err := history.Revisions(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("failed to list revisions: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(revisions) == 0 {
					fmt.Fprintln(out, "No revisions found.")
					return nil
				}
				rows := make([][]string, 0, len(revisions))
				for _, rev := range revisions {
					rows = append(rows, []string{
						shortID(rev.ID),
						rev.CreatedAt.Local().Format(time.DateTime),
						strconv.Itoa(rev.Habits),
						strconv.Itoa(rev.Completions),
					})
				}
				return writeTable(out, []string{"ID", "COMMITTED", "HABITS", "COMPLETIONS"}, rows)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of revisions")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
