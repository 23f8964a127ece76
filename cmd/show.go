package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/gantt/internal/schedule"
)

var showCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show the task hierarchy with calculated progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var progressCmd = &cobra.Command{
	Use:   "progress <project> [task]",
	Short: "Show or set task progress",
	Long: `Without --set, prints the calculated progress of one task or of every
task. With --set, stores the progress of a leaf task; the progress of a
parent is always derived from its children.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProgress,
}

func init() {
	progressCmd.Flags().Int("set", 0, "progress to store, 0-100 (leaf tasks only)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(progressCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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
	set, err := a.tracker.Snapshot(ctx, p.ID)
	if err != nil {
		return err
	}
	a.printer.Tasks(p.Name, set, schedule.ProgressAll(set), schedule.CriticalPath(set))
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
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

	if cmd.Flags().Changed("set") {
		if len(args) < 2 {
			return fmt.Errorf("--set needs a task")
		}
		pct, _ := cmd.Flags().GetInt("set")
		if err := a.tracker.SetProgress(ctx, p.ID, args[1], pct); err != nil {
			return err
		}
		a.printer.Success("%s progress set to %d%%", args[1], pct)
		return nil
	}

	set, progress, err := a.tracker.Progress(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(args) == 2 {
		t, err := set.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d%%\n", t.ID, progress[t.ID])
		return nil
	}
	a.printer.Tasks(p.Name, set, progress, nil)
	return nil
}
