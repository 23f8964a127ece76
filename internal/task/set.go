package task

import (
	"fmt"
)

// Set is an ordered, ID-indexed snapshot of a project's tasks. Insertion order
// is the stable enumeration order used by every algorithm that walks the set,
// so callers that want reproducible results should add tasks in a consistent
// order (for example sorted by ID).
//
// A Set is not safe for concurrent use.
type Set struct {
	order []*Task
	byID  map[string]*Task
}

// NewSet builds a set from tasks, rejecting duplicate or empty IDs. The tasks
// are stored by pointer; derived Children and Dependents fields are rebuilt.
func NewSet(tasks ...*Task) (*Set, error) {
	s := &Set{byID: make(map[string]*Task, len(tasks))}
	for _, t := range tasks {
		if err := s.insert(t); err != nil {
			return nil, err
		}
	}
	s.reindex()
	return s, nil
}

// Add appends a task to the set.
func (s *Set) Add(t *Task) error {
	if err := s.insert(t); err != nil {
		return err
	}
	s.reindex()
	return nil
}

func (s *Set) insert(t *Task) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTask)
	}
	if _, ok := s.byID[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	s.byID[t.ID] = t
	s.order = append(s.order, t)
	return nil
}

// Get returns the task with the given ID or ErrTaskNotFound.
func (s *Set) Get(id string) (*Task, error) {
	t, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}

// Has reports whether the set contains id.
func (s *Set) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of tasks in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Tasks returns the tasks in insertion order. The slice is a copy; the tasks
// are shared.
func (s *Set) Tasks() []*Task {
	out := make([]*Task, len(s.order))
	copy(out, s.order)
	return out
}

// IDs returns task IDs in insertion order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.order))
	for i, t := range s.order {
		ids[i] = t.ID
	}
	return ids
}

// DependenciesOf returns the IDs id waits on, or nil if id is unknown.
func (s *Set) DependenciesOf(id string) []string {
	if t, ok := s.byID[id]; ok {
		return t.Dependencies
	}
	return nil
}

// Dependents returns the tasks that directly depend on id, in set order.
func (s *Set) Dependents(id string) []*Task {
	return s.resolve(s.byID[id], func(t *Task) []string { return t.Dependents })
}

// Children returns the direct children of id, in set order.
func (s *Set) Children(id string) []*Task {
	return s.resolve(s.byID[id], func(t *Task) []string { return t.Children })
}

func (s *Set) resolve(t *Task, edges func(*Task) []string) []*Task {
	if t == nil {
		return nil
	}
	ids := edges(t)
	out := make([]*Task, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Roots returns top-level tasks (no parent, or a parent missing from the set).
func (s *Set) Roots() []*Task {
	var roots []*Task
	for _, t := range s.order {
		if t.ParentID == "" || !s.Has(t.ParentID) {
			roots = append(roots, t)
		}
	}
	return roots
}

// Link records that dependent waits on prerequisite. It does not check for
// cycles; gate calls with dag's Graph.AddEdge first. Linking an existing edge
// is a no-op.
func (s *Set) Link(dependent, prerequisite string) error {
	t, err := s.Get(dependent)
	if err != nil {
		return err
	}
	if _, err := s.Get(prerequisite); err != nil {
		return err
	}
	if t.DependsOn(prerequisite) {
		return nil
	}
	t.Dependencies = append(t.Dependencies, prerequisite)
	s.reindex()
	return nil
}

// Unlink removes the edge dependent → prerequisite and reports whether it
// was present.
func (s *Set) Unlink(dependent, prerequisite string) (bool, error) {
	t, err := s.Get(dependent)
	if err != nil {
		return false, err
	}
	if !t.DependsOn(prerequisite) {
		return false, nil
	}
	kept := t.Dependencies[:0]
	for _, dep := range t.Dependencies {
		if dep != prerequisite {
			kept = append(kept, dep)
		}
	}
	t.Dependencies = kept
	s.reindex()
	return true, nil
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{
		order: make([]*Task, len(s.order)),
		byID:  make(map[string]*Task, len(s.order)),
	}
	for i, t := range s.order {
		ct := t.Clone()
		c.order[i] = ct
		c.byID[ct.ID] = ct
	}
	return c
}

// Validate checks every record invariant that does not require graph
// traversal: date ordering, value ranges, enum values, self-dependencies and
// dangling references. It returns all problems found.
func (s *Set) Validate() []error {
	var errs []error
	for _, t := range s.order {
		if t.End.Before(t.Start) {
			errs = append(errs, fmt.Errorf("%w: %s: end %s before start %s",
				ErrInvalidTask, t.ID, t.End.Format("2006-01-02"), t.Start.Format("2006-01-02")))
		}
		if t.Progress < 0 || t.Progress > 100 {
			errs = append(errs, fmt.Errorf("%w: %s: progress %d out of range 0-100", ErrInvalidTask, t.ID, t.Progress))
		}
		if t.EstimatedHours < 0 {
			errs = append(errs, fmt.Errorf("%w: %s: negative estimated hours %g", ErrInvalidTask, t.ID, t.EstimatedHours))
		}
		if !t.Status.Valid() {
			errs = append(errs, fmt.Errorf("%w: %s: unknown status %q", ErrInvalidTask, t.ID, t.Status))
		}
		if !t.Priority.Valid() {
			errs = append(errs, fmt.Errorf("%w: %s: unknown priority %q", ErrInvalidTask, t.ID, t.Priority))
		}
		if t.Completed != nil && t.Status != StatusCompleted {
			errs = append(errs, fmt.Errorf("%w: %s: completion date set but status is %s", ErrInvalidTask, t.ID, t.Status))
		}
		if t.ParentID != "" && !s.Has(t.ParentID) {
			errs = append(errs, fmt.Errorf("%w: %s: parent %s", ErrTaskNotFound, t.ID, t.ParentID))
		}
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				errs = append(errs, fmt.Errorf("%w: %s depends on itself", ErrInvalidTask, t.ID))
				continue
			}
			if !s.Has(dep) {
				errs = append(errs, fmt.Errorf("%w: %s: dependency %s", ErrTaskNotFound, t.ID, dep))
			}
		}
	}
	return errs
}

// reindex rebuilds the derived Children and Dependents edges in set order.
func (s *Set) reindex() {
	for _, t := range s.order {
		t.Children = nil
		t.Dependents = nil
	}
	for _, t := range s.order {
		if p, ok := s.byID[t.ParentID]; ok && t.ParentID != "" {
			p.Children = append(p.Children, t.ID)
		}
		for _, dep := range t.Dependencies {
			if d, ok := s.byID[dep]; ok && !containsID(d.Dependents, t.ID) {
				d.Dependents = append(d.Dependents, t.ID)
			}
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
