package project

import (
	"fmt"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/task"
)

// Validate checks a project file for structural correctness: required
// fields, value bounds, unique IDs, known references, and acyclic
// dependency and parent edges.
func Validate(f *File) []ValidationError {
	var errs []ValidationError
	add := func(cat ValidationCategory, id, field string, err error) {
		errs = append(errs, ValidationError{Category: cat, TaskID: id, Field: field, Err: err})
	}

	if f.Project.Name == "" {
		add(ValCatMissingField, "", "project.name", fmt.Errorf("%w: project.name", ErrMissingField))
	}

	ids := make(map[string]bool, len(f.Tasks))
	duplicates := false
	for _, ts := range f.Tasks {
		if ts.ID == "" {
			add(ValCatMissingField, "", "id", fmt.Errorf("%w: id", ErrMissingField))
			continue
		}
		if ids[ts.ID] {
			add(ValCatDuplicateID, ts.ID, "id", fmt.Errorf("%w: %q", ErrDuplicateID, ts.ID))
			duplicates = true
		}
		ids[ts.ID] = true
		errs = append(errs, validateFields(ts)...)
	}

	for _, ts := range f.Tasks {
		if ts.Parent != "" && !ids[ts.Parent] {
			add(ValCatUnknownParent, ts.ID, "parent",
				fmt.Errorf("%w: %q has parent %q", ErrUnknownParent, ts.ID, ts.Parent))
		}
		for _, dep := range ts.DependsOn {
			switch {
			case dep == ts.ID:
				add(ValCatCycle, ts.ID, "depends_on", fmt.Errorf("%w: %q depends on itself", ErrDependencyCycle, ts.ID))
			case !ids[dep]:
				add(ValCatUnknownDep, ts.ID, "depends_on",
					fmt.Errorf("%w: %q depends on unknown task %q", ErrUnknownDep, ts.ID, dep))
			}
		}
	}

	// Graph checks need a well-formed set; skip them if IDs collide.
	if duplicates || hasCategory(errs, ValCatMissingField, "id") {
		return errs
	}
	return append(errs, validateGraph(f)...)
}

func validateFields(ts TaskSpec) []ValidationError {
	var errs []ValidationError
	bounds := func(field string, format string, args ...any) {
		errs = append(errs, ValidationError{
			Category: ValCatBoundsViolation,
			TaskID:   ts.ID,
			Field:    field,
			Err:      fmt.Errorf("%w: "+format, append([]any{ErrOutOfBounds}, args...)...),
		})
	}

	if isZero(ts.Start) {
		errs = append(errs, ValidationError{Category: ValCatMissingField, TaskID: ts.ID, Field: "start",
			Err: fmt.Errorf("%w: start", ErrMissingField)})
	}
	if isZero(ts.End) {
		errs = append(errs, ValidationError{Category: ValCatMissingField, TaskID: ts.ID, Field: "end",
			Err: fmt.Errorf("%w: end", ErrMissingField)})
	}
	if !isZero(ts.Start) && !isZero(ts.End) && Date(ts.End).Before(Date(ts.Start)) {
		bounds("end", "end %s before start %s", ts.End, ts.Start)
	}
	if ts.Progress < 0 || ts.Progress > 100 {
		bounds("progress", "progress %d not in 0..100", ts.Progress)
	}
	if ts.EstimatedHours < 0 {
		bounds("estimated_hours", "estimated_hours %g is negative", ts.EstimatedHours)
	}
	if _, err := task.ParseStatus(ts.Status); err != nil {
		bounds("status", "status %q", ts.Status)
	}
	if _, err := task.ParsePriority(ts.Priority); err != nil {
		bounds("priority", "priority %q", ts.Priority)
	}
	if ts.Completed != nil && ts.Status != "" && ts.Status != string(task.StatusCompleted) {
		bounds("completed", "completed date set but status is %q", ts.Status)
	}
	return errs
}

// validateGraph reports dependency and parent cycles.
func validateGraph(f *File) []ValidationError {
	ids := make(map[string]bool, len(f.Tasks))
	for _, ts := range f.Tasks {
		ids[ts.ID] = true
	}
	// Self and dangling edges are reported above; leave them out here.
	tasks := make([]*task.Task, 0, len(f.Tasks))
	for _, ts := range f.Tasks {
		var deps []string
		for _, dep := range ts.DependsOn {
			if dep != ts.ID && ids[dep] {
				deps = append(deps, dep)
			}
		}
		tasks = append(tasks, &task.Task{ID: ts.ID, ParentID: ts.Parent, Dependencies: deps})
	}
	s, err := task.NewSet(tasks...)
	if err != nil {
		return nil
	}

	var errs []ValidationError
	for _, id := range dag.Cycles(s.IDs(), s) {
		errs = append(errs, ValidationError{
			Category: ValCatCycle,
			TaskID:   id,
			Field:    "depends_on",
			Err:      fmt.Errorf("%w: reachable from %q", ErrDependencyCycle, id),
		})
	}
	for _, t := range s.Tasks() {
		if inParentLoop(s, t) {
			errs = append(errs, ValidationError{
				Category: ValCatCycle,
				TaskID:   t.ID,
				Field:    "parent",
				Err:      fmt.Errorf("%w: %q is its own ancestor", ErrParentCycle, t.ID),
			})
		}
	}
	return errs
}

func inParentLoop(s *task.Set, t *task.Task) bool {
	seen := map[string]bool{}
	for cur := t.ParentID; cur != ""; {
		if cur == t.ID {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		p, err := s.Get(cur)
		if err != nil {
			return false
		}
		cur = p.ParentID
	}
	return false
}

func hasCategory(errs []ValidationError, cat ValidationCategory, field string) bool {
	for _, e := range errs {
		if e.Category == cat && e.Field == field {
			return true
		}
	}
	return false
}
