package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/gantt/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history [project]",
	Short: "Show recorded dependency, completion and reschedule events",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 0, "show only the last N events")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := journal.ReadAll(a.cfg.JournalPath)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		p, err := a.project(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		events = journal.Filter(events, p.ID)
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	a.printer.History(events)
	return nil
}
