package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/a11yaudit/a11yaudit/internal/config"
	"github.com/a11yaudit/a11yaudit/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scans recorded in the history database",
		Long: `History lists past scans, newest first, with per-severity counts
of aggregated violation groups.

Every completed or cancelled scan is recorded automatically unless
--no-history was given. The history lives in the XDG data directory.`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of scans to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "History database directory")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListScans(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPAGES\tCRITICAL\tSERIOUS\tMODERATE\tMINOR\tSTATE")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.ScanDate, r.URLCount,
			r.CriticalCount, r.SeriousCount, r.ModerateCount, r.MinorCount,
			r.State,
		)
	}
	return w.Flush()
}
