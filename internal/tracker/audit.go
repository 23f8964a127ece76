package tracker

import (
	"context"
	"time"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/log"
	"github.com/papapumpkin/gantt/internal/task"
)

// AuditReport lists integrity problems found in a stored project.
type AuditReport struct {
	// Problems are record-level violations such as end before start or a
	// dangling dependency.
	Problems []error
	// Cycles holds the IDs of tasks whose dependency closure contains a
	// cycle.
	Cycles []string
	// Overdue holds open tasks whose planned end has passed.
	Overdue []*task.Task
	// AtRisk maps each overdue task ID to the open tasks that transitively
	// wait on it, sorted. Overdue tasks with nothing open downstream are
	// omitted.
	AtRisk map[string][]string
	// Blocked holds open tasks that start before a prerequisite's planned
	// or actual finish.
	Blocked []Conflict
}

// Conflict is a dependent scheduled to start before its prerequisite ends.
type Conflict struct {
	Task         *task.Task
	Prerequisite *task.Task
}

// OK reports whether the audit found no structural problems. Overdue tasks
// are informational and do not fail the audit.
func (r *AuditReport) OK() bool {
	return len(r.Problems) == 0 && len(r.Cycles) == 0 && len(r.Blocked) == 0
}

// Audit checks a project for data that bypassed the engine's gates.
func (t *Tracker) Audit(ctx context.Context, projectID string) (*AuditReport, error) {
	set, err := t.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	r := Check(set, t.now())
	log.Project(projectID).WithField("ok", r.OK()).Debug("audit finished")
	return r, nil
}

// Check audits a snapshot as of now.
func Check(set *task.Set, now time.Time) *AuditReport {
	r := &AuditReport{
		Problems: set.Validate(),
		Cycles:   dag.Cycles(set.IDs(), set),
		AtRisk:   make(map[string][]string),
	}
	g := dag.FromSet(set)
	for _, tk := range set.Tasks() {
		if tk.IsLeaf() && tk.IsOverdue(now) {
			r.Overdue = append(r.Overdue, tk)
			if open := openTasks(set, g.Descendants(tk.ID)); len(open) > 0 {
				r.AtRisk[tk.ID] = open
			}
		}
		if tk.IsTerminal() {
			continue
		}
		for _, dep := range tk.Dependencies {
			pre, err := set.Get(dep)
			if err != nil {
				continue
			}
			if tk.Start.Before(finish(pre)) {
				r.Blocked = append(r.Blocked, Conflict{Task: tk, Prerequisite: pre})
			}
		}
	}
	return r
}

func openTasks(set *task.Set, ids []string) []string {
	var open []string
	for _, id := range ids {
		if t, err := set.Get(id); err == nil && !t.IsTerminal() {
			open = append(open, id)
		}
	}
	return open
}

func finish(t *task.Task) time.Time {
	if t.Completed != nil {
		return *t.Completed
	}
	return t.End
}
