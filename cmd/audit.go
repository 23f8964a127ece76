package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit <project>",
	Short: "Check a stored project for cycles, bad records and overlaps",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
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
	r, err := a.tracker.Audit(ctx, p.ID)
	if err != nil {
		return err
	}
	a.printer.Audit(r)
	if !r.OK() {
		return fmt.Errorf("audit of %q found problems", p.Name)
	}
	return nil
}
