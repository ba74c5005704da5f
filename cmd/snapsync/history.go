package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ning0612/Snapsync/internal/config"
	"github.com/Ning0612/Snapsync/internal/state"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent snapshot and plan runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20,
		"maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	history, err := state.NewHistory(config.ExpandPath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer history.Close()

	records, err := history.Recent(flagHistoryLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tMODE\tDIRECTORY\tSTATUS\tOPS\tENTRIES\tERROR")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.StartTime.Format("2006-01-02 15:04:05"),
			r.Mode,
			r.Directory,
			r.Status,
			r.Operations,
			r.Entries,
			r.Error,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	last, err := history.LastSuccess("snapshot")
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Printf("\nlast successful snapshot: %s (%s, state %s)\n",
			last.Directory,
			last.StartTime.Format("2006-01-02 15:04:05"),
			last.StatePath,
		)
	}
	return nil
}
