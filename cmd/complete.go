package cmd

import (
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <project> <task>",
	Short: "Mark a task completed and reschedule its dependents",
	Long: `Records the completion date of a task. If it finished late, every open
task downstream of it is pushed later so that nothing starts before its
prerequisites finish. Early finishes never pull work forward.`,
	Args: cobra.ExactArgs(2),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().String("at", "", "completion date, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	at := today()
	if s, _ := cmd.Flags().GetString("at"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return err
		}
		at = d
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	p, err := a.project(ctx, args[0])
	if err != nil {
		return err
	}
	res, err := a.tracker.Complete(ctx, p.ID, args[1], at)
	if err != nil {
		return err
	}
	a.printer.Completion(res)
	return nil
}
