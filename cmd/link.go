package cmd

import (
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <project> <task> <prerequisite>",
	Short: "Make a task wait on a prerequisite",
	Long: `Adds a finish-to-start dependency. The edge is rejected if the task
would depend on itself or if the prerequisite already waits on the task,
directly or through other tasks.`,
	Args: cobra.ExactArgs(3),
	RunE: runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <project> <task> <prerequisite>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(3),
	RunE:  runUnlink,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
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
	if err := a.tracker.Link(ctx, p.ID, args[1], args[2]); err != nil {
		return err
	}
	a.printer.Success("%s now waits on %s", args[1], args[2])
	return nil
}

func runUnlink(cmd *cobra.Command, args []string) error {
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
	if err := a.tracker.Unlink(ctx, p.ID, args[1], args[2]); err != nil {
		return err
	}
	a.printer.Success("%s no longer waits on %s", args[1], args[2])
	return nil
}
