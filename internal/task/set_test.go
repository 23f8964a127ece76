package task

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTask(id, parent string, deps ...string) *Task {
	return &Task{
		ID:           id,
		Start:        day(0),
		End:          day(1),
		Status:       StatusNotStarted,
		Priority:     PriorityNormal,
		ParentID:     parent,
		Dependencies: deps,
	}
}

func mustSet(t *testing.T, tasks ...*Task) *Set {
	t.Helper()
	s, err := NewSet(tasks...)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func TestNewSet_DerivedEdges(t *testing.T) {
	t.Parallel()
	s := mustSet(t,
		newTask("p", ""),
		newTask("a", "p"),
		newTask("b", "p", "a"),
		newTask("c", "", "a", "b"),
	)

	p, _ := s.Get("p")
	if diff := cmp.Diff([]string{"a", "b"}, p.Children); diff != "" {
		t.Errorf("p.Children mismatch (-want +got):\n%s", diff)
	}
	a, _ := s.Get("a")
	if diff := cmp.Diff([]string{"b", "c"}, a.Dependents); diff != "" {
		t.Errorf("a.Dependents mismatch (-want +got):\n%s", diff)
	}
	if !a.IsLeaf() || p.IsLeaf() {
		t.Error("IsLeaf wrong for a or p")
	}
	if diff := cmp.Diff([]string{"p", "a", "b", "c"}, s.IDs()); diff != "" {
		t.Errorf("IDs order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSet_Duplicate(t *testing.T) {
	t.Parallel()
	_, err := NewSet(newTask("a", ""), newTask("a", ""))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	s := mustSet(t, newTask("a", ""))
	_, err := s.Get("missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestLinkUnlink(t *testing.T) {
	t.Parallel()
	s := mustSet(t, newTask("a", ""), newTask("b", ""))

	if err := s.Link("b", "a"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := s.Link("b", "a"); err != nil {
		t.Fatalf("Link (repeat): %v", err)
	}
	b, _ := s.Get("b")
	if diff := cmp.Diff([]string{"a"}, b.Dependencies); diff != "" {
		t.Errorf("b.Dependencies mismatch (-want +got):\n%s", diff)
	}
	if got := s.Dependents("a"); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Dependents(a) = %v, want [b]", got)
	}

	if removed, err := s.Unlink("b", "a"); err != nil || !removed {
		t.Fatalf("Unlink = %v, %v; want true, nil", removed, err)
	}
	if removed, err := s.Unlink("b", "a"); err != nil || removed {
		t.Errorf("Unlink (repeat) = %v, %v; want false, nil", removed, err)
	}
	if _, err := s.Unlink("zzz", "a"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Unlink from unknown: err = %v, want ErrTaskNotFound", err)
	}
	if got := s.Dependents("a"); len(got) != 0 {
		t.Errorf("Dependents(a) after unlink = %v, want empty", got)
	}
	if err := s.Link("b", "zzz"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Link to unknown: err = %v, want ErrTaskNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	bad := newTask("bad", "ghost", "bad", "nowhere")
	bad.End = day(-1)
	bad.Progress = 120
	bad.EstimatedHours = -2
	bad.Status = "done"
	bad.Priority = "urgent"
	s := mustSet(t, newTask("ok", ""), bad)

	errs := s.Validate()
	if len(errs) != 8 {
		t.Fatalf("Validate() returned %d errors, want 8: %v", len(errs), errs)
	}
	var notFound int
	for _, err := range errs {
		if errors.Is(err, ErrTaskNotFound) {
			notFound++
		}
	}
	if notFound != 2 {
		t.Errorf("got %d not-found errors, want 2 (parent and dependency)", notFound)
	}
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()
	s := mustSet(t, newTask("a", ""), newTask("b", "", "a"))
	c := s.Clone()
	cb, _ := c.Get("b")
	cb.ShiftTo(day(20))
	b, _ := s.Get("b")
	if b.Start.Equal(day(20)) {
		t.Error("mutating a cloned task changed the original set")
	}
}
