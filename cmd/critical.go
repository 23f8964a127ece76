package cmd

import (
	"github.com/spf13/cobra"
)

var criticalCmd = &cobra.Command{
	Use:   "critical <project>",
	Short: "Show the longest dependency chain",
	Args:  cobra.ExactArgs(1),
	RunE:  runCritical,
}

func init() {
	criticalCmd.Flags().Bool("slack", false, "also show earliest/latest start and slack per task")
	criticalCmd.Flags().Bool("streams", false, "also show groups of tasks that share no dependencies")
	rootCmd.AddCommand(criticalCmd)
}

func runCritical(cmd *cobra.Command, args []string) error {
	slack, _ := cmd.Flags().GetBool("slack")
	streams, _ := cmd.Flags().GetBool("streams")

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
	path, err := a.tracker.CriticalPath(ctx, p.ID)
	if err != nil {
		return err
	}
	a.printer.CriticalPath(path)

	if slack {
		_, analysis, err := a.tracker.Slack(ctx, p.ID)
		if err != nil {
			return err
		}
		a.printer.Slack(analysis)
	}
	if streams {
		groups, err := a.tracker.Streams(ctx, p.ID)
		if err != nil {
			return err
		}
		a.printer.Streams(groups)
	}
	return nil
}
