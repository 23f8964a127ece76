package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/papapumpkin/gantt/internal/project"
)

const plan = "[project]\nname = \"demo\"\n\n[[tasks]]\nid = \"a\"\nstart = 2026-01-01\nend = 2026-01-02\n"

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func next(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
	return Change{}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	if err := os.WriteFile(path, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, path)

	updated := plan + "\n[[tasks]]\nid = \"b\"\nstart = 2026-01-03\nend = 2026-01-04\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	c := next(t, w)
	if c.Kind != ChangeModified || c.Err != nil {
		t.Fatalf("change = %+v", c)
	}
	if c.Project == nil || len(c.Project.Tasks) != 2 {
		t.Errorf("parsed project = %+v, want 2 tasks", c.Project)
	}
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	if err := os.WriteFile(path, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, path)

	f, err := project.Parse([]byte(plan))
	if err != nil {
		t.Fatal(err)
	}
	f.Project.Name = "renamed"
	if err := project.Write(path, f, project.WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	c := next(t, w)
	if c.Kind != ChangeModified || c.Project == nil || c.Project.Project.Name != "renamed" {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_ReportsParseErrorsAndRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	if err := os.WriteFile(path, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("[project\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := next(t, w); c.Err == nil {
		t.Errorf("expected parse error, got %+v", c)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if c := next(t, w); c.Kind != ChangeRemoved {
		t.Errorf("kind = %v, want removed", c.Kind)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	if err := os.WriteFile(path, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, path)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Changes:
		t.Errorf("unexpected change event: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "project.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
	if _, ok := <-w.Changes; ok {
		t.Error("Changes should be closed after Stop")
	}
}

// stopWithin fails the test if Stop does not return promptly.
func stopWithin(t *testing.T, w *Watcher) {
	t.Helper()
	returned := make(chan struct{})
	go func() {
		w.Stop()
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "project.toml"))
	if err != nil {
		t.Fatal(err)
	}
	stopWithin(t, w)
	if _, ok := <-w.Changes; ok {
		t.Error("Changes should be closed after Stop")
	}
	if err := w.Start(); !errors.Is(err, ErrStopped) {
		t.Errorf("Start after Stop: err = %v, want ErrStopped", err)
	}
}

func TestWatcher_StartFailsOnMissingDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "project.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err == nil {
		t.Fatal("expected Start to fail for a missing directory")
	}
	stopWithin(t, w)
	stopWithin(t, w)
}
