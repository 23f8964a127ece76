package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/gantt/internal/log"
	"github.com/papapumpkin/gantt/internal/project"
	"github.com/papapumpkin/gantt/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <project.toml>",
	Short: "Load a project file into the database",
	Long: `Validates a project file and stores its tasks. A project that already
exists is left alone unless --replace is given, in which case its tasks are
replaced by the file's.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <project> <out.toml>",
	Short: "Write a stored project back to a project file",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List stored projects",
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

func init() {
	importCmd.Flags().String("name", "", "project name (default: name in the file)")
	importCmd.Flags().Bool("replace", false, "replace the tasks of an existing project")
	exportCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	replace, _ := cmd.Flags().GetBool("replace")

	f, err := project.Load(args[0])
	if err != nil {
		return err
	}
	if name == "" {
		name = f.Project.Name
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if errs := project.Validate(f); len(errs) > 0 {
		a.printer.Validation(f.Project.Name, len(f.Tasks), errs)
		return fmt.Errorf("%s: validation failed with %d error(s)", args[0], len(errs))
	}
	set, err := f.Tasks()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := a.store.CreateProject(ctx, name)
	if errors.Is(err, store.ErrProjectExists) && replace {
		p, err = a.store.ProjectByName(ctx, name)
	}
	if err != nil {
		return err
	}
	if err := a.store.ImportTasks(ctx, p.ID, set); err != nil {
		return err
	}

	log.Project(p.ID).WithField("tasks", set.Len()).Info("project imported")
	a.printer.Success("imported %q: %d tasks (id %s)", p.Name, set.Len(), p.ID)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

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
	if err := project.Write(args[1], project.FromSet(p.Name, set), project.WriteOptions{Overwrite: force}); err != nil {
		return err
	}
	a.printer.Success("wrote %d tasks to %s", set.Len(), args[1])
	return nil
}

func runProjects(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.store.Projects(cmd.Context())
	if err != nil {
		return err
	}
	a.printer.Projects(projects)
	return nil
}
