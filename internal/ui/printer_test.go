package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/journal"
	"github.com/papapumpkin/gantt/internal/project"
	"github.com/papapumpkin/gantt/internal/schedule"
	"github.com/papapumpkin/gantt/internal/store"
	"github.com/papapumpkin/gantt/internal/task"
	"github.com/papapumpkin/gantt/internal/tracker"
)

var now = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func testPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	p := New(&buf, false)
	p.now = func() time.Time { return now }
	return p, &buf
}

func assertContains(t *testing.T, out string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			t.Errorf("expected output to contain %q, got:\n%s", s, out)
		}
	}
}

func sampleSet(t *testing.T) *task.Set {
	t.Helper()
	done := day(3)
	s, err := task.NewSet(
		&task.Task{ID: "phase", Title: "Phase one", Start: day(0), End: day(10), Status: task.StatusInProgress, Priority: task.PriorityNormal},
		&task.Task{ID: "a", Start: day(0), End: day(2), Completed: &done, Status: task.StatusCompleted,
			Priority: task.PriorityNormal, Progress: 100, ParentID: "phase"},
		&task.Task{ID: "b", Start: day(4), End: day(7), Status: task.StatusInProgress,
			Priority: task.PriorityNormal, Progress: 40, ParentID: "phase", Dependencies: []string{"a"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTasks(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	s := sampleSet(t)
	a, _ := s.Get("a")
	b, _ := s.Get("b")

	p.Tasks("demo", s, schedule.ProgressAll(s), []*task.Task{a, b})
	out := buf.String()

	assertContains(t, out,
		"demo (3 tasks)",
		"phase Phase one",
		"  a",
		"★ ✓   a",
		"after a",
		"done 2026-03-04",
		"██████████ 100%",
		"████░░░░░░  40%",
		"overdue, due 1 week ago",
	)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "phase") || !strings.Contains(lines[3], "b") {
		t.Errorf("hierarchy order wrong:\n%s", out)
	}
}

func TestCriticalPath(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	s := sampleSet(t)
	a, _ := s.Get("a")
	b, _ := s.Get("b")
	p.CriticalPath([]*task.Task{a, b})
	assertContains(t, buf.String(), "critical path (2 tasks, 5 days)", "1. a", "2. b")

	p2, buf2 := testPrinter()
	p2.CriticalPath(nil)
	assertContains(t, buf2.String(), "no critical path")
}

func TestSlack(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	a, err := schedule.Analyze(sampleSet(t))
	if err != nil {
		t.Fatal(err)
	}
	p.Slack(a)
	crit := a.CriticalIDs()
	if len(crit) == 0 {
		t.Fatal("no critical tasks in sample plan")
	}
	assertContains(t, buf.String(), "slack (span 10 days)", "ES", "+0d", "★",
		"critical: "+strings.Join(crit, ", "))
}

func TestStreams(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	p.Streams([]dag.Stream{
		{ID: 0, TaskIDs: []string{"a", "b", "c"}},
		{ID: 1, TaskIDs: []string{"z"}},
	})
	assertContains(t, buf.String(), "streams (2 independent groups)", "1. a, b, c", "2. z")
}

func TestCompletion(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	s := sampleSet(t)
	b, _ := s.Get("b")
	b.MarkCompleted(day(9))
	c, _ := s.Get("a")

	dep := &task.Task{ID: "c", Start: day(11), End: day(12)}
	shift := schedule.Shift{Task: dep, FromStart: day(8), FromEnd: day(9), Cause: "b"}
	p.Completion(&tracker.Completion{Task: b, Shifts: []schedule.Shift{shift}})
	assertContains(t, buf.String(),
		"b completed 2026-03-10 (2.0 days late)",
		"rescheduled 1 task:",
		"c",
		"2026-03-09 → 2026-03-12",
		"+3 days",
		"after b",
	)

	p2, buf2 := testPrinter()
	p2.Completion(&tracker.Completion{Task: c})
	assertContains(t, buf2.String(), "a completed 2026-03-04 (1.0 days late)", "no dependents rescheduled")
}

func TestValidation(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	p.Validation("demo", 3, nil)
	assertContains(t, buf.String(), `project "demo": 3 tasks, no errors`)

	p2, buf2 := testPrinter()
	p2.Validation("demo", 3, []project.ValidationError{
		{Category: project.ValCatUnknownDep, TaskID: "b", Err: errors.New("depends on unknown task")},
	})
	assertContains(t, buf2.String(), "1 error", "task b: depends on unknown task")
}

func TestAudit(t *testing.T) {
	t.Parallel()
	s := sampleSet(t)
	a, _ := s.Get("a")
	b, _ := s.Get("b")

	p, buf := testPrinter()
	p.Audit(&tracker.AuditReport{
		Overdue: []*task.Task{b},
		AtRisk:  map[string][]string{"b": {"c", "d"}},
	})
	assertContains(t, buf.String(), "no integrity problems", "b overdue", "at risk: c, d")

	p2, buf2 := testPrinter()
	p2.Audit(&tracker.AuditReport{
		Problems: []error{errors.New("bad record")},
		Cycles:   []string{"x", "y"},
		Blocked:  []tracker.Conflict{{Task: b, Prerequisite: a}},
	})
	out := buf2.String()
	assertContains(t, out, "bad record", "cycle reachable from: x, y", "b starts 2026-03-05, before a finishes")
	if strings.Contains(out, "no integrity problems") {
		t.Errorf("failing audit reported success:\n%s", out)
	}
}

func TestProjectsAndHistory(t *testing.T) {
	t.Parallel()
	p, buf := testPrinter()
	p.Projects([]store.Project{{ID: "1234", Name: "site", CreatedAt: now.Add(-2 * time.Hour)}})
	assertContains(t, buf.String(), "site", "1234", "created 2 hours ago")

	p2, buf2 := testPrinter()
	p2.History([]journal.Event{
		{Timestamp: now.Add(-time.Minute), Kind: journal.KindLink, TaskID: "b",
			Data: map[string]any{"prerequisite": "a"}},
		{Timestamp: now, Kind: journal.KindShift, TaskID: "c",
			Data: map[string]any{"cause": "b", "from_start": "2026-03-09T00:00:00Z", "to_start": "2026-03-12T00:00:00Z"}},
		{Timestamp: now, Kind: journal.KindProgress, TaskID: "b",
			Data: map[string]any{"from": 10.0, "to": 40.0}},
	})
	assertContains(t, buf2.String(),
		"now waits on a",
		"2026-03-09 → 2026-03-12 after b",
		"10% → 40%",
	)

	p3, buf3 := testPrinter()
	p3.History(nil)
	assertContains(t, buf3.String(), "no history")
}
