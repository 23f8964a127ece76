package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/project"
	"github.com/papapumpkin/gantt/internal/ui"
	"github.com/papapumpkin/gantt/internal/watch"
)

const relaunch = `
[project]
name = "Relaunch"

[[tasks]]
id = "a"
title = "Research"
start = 2026-03-02
end = 2026-03-04
estimated_hours = 8

[[tasks]]
id = "b"
title = "Design"
start = 2026-03-05
end = 2026-03-06
estimated_hours = 8
depends_on = ["a"]
`

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProject(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "plan.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommands_Registered(t *testing.T) {
	t.Parallel()

	want := []string{
		"import", "export", "projects", "show", "progress", "link", "unlink",
		"complete", "critical", "audit", "check", "watch", "history",
	}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("expected %q subcommand to be registered on rootCmd", name)
		}
	}
}

func TestCommands_Flags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  string
		flag string
	}{
		{"import", "name"},
		{"import", "replace"},
		{"export", "force"},
		{"complete", "at"},
		{"progress", "set"},
		{"critical", "slack"},
		{"critical", "streams"},
		{"history", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			t.Parallel()
			c, _, err := rootCmd.Find([]string{tt.cmd})
			if err != nil {
				t.Fatal(err)
			}
			if c.Flags().Lookup(tt.flag) == nil {
				t.Errorf("expected flag %q on %s", tt.flag, tt.cmd)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := parseDate("2026-03-06")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}
	if _, err := parseDate("06/03/2026"); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "self",
			err:  &dag.GraphError{Kind: dag.ErrSelfDependency, Dependent: "a", Prerequisite: "a"},
			want: "a cannot depend on itself",
		},
		{
			name: "cycle",
			err:  &dag.GraphError{Kind: dag.ErrCyclicDependency, Dependent: "a", Prerequisite: "c", Path: []string{"a", "b", "c"}},
			want: "a cannot wait on c: c already waits on a (a → b → c)",
		},
		{
			name: "plain",
			err:  errors.New("boom"),
			want: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := describe(tt.err); got != tt.want {
				t.Errorf("describe = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckFile(t *testing.T) {
	t.Parallel()

	f, err := project.Parse([]byte(relaunch))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if !checkFile(ui.New(&out, false), f) {
		t.Fatalf("checkFile reported invalid file:\n%s", out.String())
	}
	for _, want := range []string{`project "Relaunch": 2 tasks, no errors`, "critical path", "1."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	bad, err := project.Parse([]byte(strings.Replace(relaunch, `depends_on = ["a"]`, `depends_on = ["zz"]`, 1)))
	if err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if checkFile(ui.New(&out, false), bad) {
		t.Error("expected unknown dependency to fail the check")
	}
}

func TestWatchLoop(t *testing.T) {
	t.Parallel()

	f, err := project.Parse([]byte(relaunch))
	if err != nil {
		t.Fatal(err)
	}
	changes := make(chan watch.Change, 3)
	changes <- watch.Change{Kind: watch.ChangeModified, File: "plan.toml", Project: f}
	changes <- watch.Change{Kind: watch.ChangeModified, File: "plan.toml", Err: errors.New("toml: bad")}
	changes <- watch.Change{Kind: watch.ChangeRemoved, File: "plan.toml"}
	close(changes)

	var out bytes.Buffer
	if err := watchLoop(context.Background(), ui.New(&out, false), changes); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"no errors", "error: toml: bad", "plan.toml was removed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestWorkflow(t *testing.T) {
	// Not parallel: drives the shared rootCmd and viper state.
	dir := t.TempDir()
	plan := writeProject(t, dir, relaunch)
	global := []string{
		"--db", filepath.Join(dir, "gantt.db"),
		"--journal", filepath.Join(dir, "journal.jsonl"),
		"--no-color",
	}
	run := func(args ...string) (string, error) {
		t.Helper()
		return execute(t, append(args, global...)...)
	}

	out, err := run("import", plan)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, `imported "Relaunch": 2 tasks`) {
		t.Errorf("import output = %q", out)
	}
	if _, err := run("import", plan); err == nil {
		t.Error("expected second import without --replace to fail")
	}

	out, err = run("projects")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !strings.Contains(out, "Relaunch") {
		t.Errorf("projects output = %q", out)
	}

	out, err = run("show", "Relaunch")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	// Both tasks sit on the critical path of the stored plan.
	for _, want := range []string{"Research", "Design", "★"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	_, err = run("link", "Relaunch", "a", "b")
	if !errors.Is(err, dag.ErrCyclicDependency) {
		t.Fatalf("link a -> b: err = %v, want cycle", err)
	}

	out, err = run("complete", "Relaunch", "a", "--at", "2026-03-06")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	for _, want := range []string{"a completed 2026-03-06 (2.0 days late)", "2026-03-05 → 2026-03-07"} {
		if !strings.Contains(out, want) {
			t.Errorf("complete output missing %q:\n%s", want, out)
		}
	}

	out, err = run("critical", "Relaunch", "--slack", "--streams")
	if err != nil {
		t.Fatalf("critical: %v", err)
	}
	for _, want := range []string{"critical path", "slack", "critical: a, b", "1. a, b"} {
		if !strings.Contains(out, want) {
			t.Errorf("critical output missing %q:\n%s", want, out)
		}
	}

	out, err = run("history", "Relaunch")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"complete", "shift", "2026-03-05 → 2026-03-07 after a"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}

	exported := filepath.Join(dir, "out.toml")
	if _, err := run("export", "Relaunch", exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := project.Load(exported)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	set, err := f.Tasks()
	if err != nil {
		t.Fatalf("exported file invalid: %v", err)
	}
	b, err := set.Get("b")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC); !b.Start.Equal(want) {
		t.Errorf("exported b.Start = %v, want %v", b.Start, want)
	}
}
