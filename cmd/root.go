package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "gantt",
	Short: "Task dependency tracking and schedule cascading",
	Long: `gantt stores project plans, keeps their dependency graph acyclic, rolls
progress up the task hierarchy, finds the critical path, and pushes
dependent tasks later when a prerequisite finishes late.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.New(os.Stderr, viper.GetBool("color")).Error(describe(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .gantt.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("db", "", "SQLite database path (default gantt.db)")
	pf.String("journal", "", "journal file path (default .gantt/journal.jsonl)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("journal_path", pf.Lookup("journal"))
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", pf.Lookup("log-format"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".gantt")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("GANTT")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()

	if noColor, _ := rootCmd.PersistentFlags().GetBool("no-color"); noColor {
		viper.Set("color", false)
	}
}

// describe turns dependency errors into messages that name the conflict.
func describe(err error) string {
	var ge *dag.GraphError
	if !errors.As(err, &ge) {
		return err.Error()
	}
	switch {
	case errors.Is(ge, dag.ErrSelfDependency):
		return fmt.Sprintf("%s cannot depend on itself", ge.Dependent)
	case errors.Is(ge, dag.ErrCyclicDependency):
		return fmt.Sprintf("%s cannot wait on %s: %s already waits on %s (%s)",
			ge.Dependent, ge.Prerequisite, ge.Prerequisite, ge.Dependent, strings.Join(ge.Path, " → "))
	}
	return err.Error()
}
