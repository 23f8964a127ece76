package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/gantt/internal/log"
	"github.com/papapumpkin/gantt/internal/project"
	"github.com/papapumpkin/gantt/internal/schedule"
	"github.com/papapumpkin/gantt/internal/ui"
	"github.com/papapumpkin/gantt/internal/watch"
)

var checkCmd = &cobra.Command{
	Use:   "check <project.toml>",
	Short: "Validate a project file without touching the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var watchCmd = &cobra.Command{
	Use:   "watch <project.toml>",
	Short: "Re-check a project file every time it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := newPrinter(cmd, cfg)

	f, err := project.Load(args[0])
	if err != nil {
		return err
	}
	if !checkFile(p, f) {
		return fmt.Errorf("%s is not valid", args[0])
	}
	return nil
}

// checkFile prints the validation result for f and, when it is valid, its
// critical path. It reports whether f is valid.
func checkFile(p *ui.Printer, f *project.File) bool {
	errs := project.Validate(f)
	p.Validation(f.Project.Name, len(f.Tasks), errs)
	if len(errs) > 0 {
		return false
	}
	set, err := f.Tasks()
	if err != nil {
		p.Error(err.Error())
		return false
	}
	p.CriticalPath(schedule.CriticalPath(set))
	return true
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := newPrinter(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.NewWatcher(args[0])
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	if f, err := project.Load(args[0]); err == nil {
		checkFile(p, f)
	} else {
		p.Error(err.Error())
	}
	p.Info("watching %s (ctrl-c to stop)", w.File)

	return watchLoop(ctx, p, w.Changes)
}

// watchLoop re-checks the project file for every change until ctx is done
// or the change stream closes.
func watchLoop(ctx context.Context, p *ui.Printer, changes <-chan watch.Change) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			log.Get().WithField("kind", c.Kind.String()).Debug("project file changed")
			switch {
			case c.Kind == watch.ChangeRemoved:
				p.Info("%s was removed", c.File)
			case c.Err != nil:
				p.Error(c.Err.Error())
			default:
				checkFile(p, c.Project)
			}
		}
	}
}
