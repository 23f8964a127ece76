// Package schedule implements the read and write algorithms over a task
// snapshot: hierarchical progress roll-up, critical path search, slack
// analysis, and forward-only cascade rescheduling.
//
// Every function is a pure computation over the *task.Set it is given. Only
// the rescheduler mutates tasks, and it reports each mutation so the caller
// can persist it.
package schedule

import (
	"math"

	"github.com/papapumpkin/gantt/internal/task"
)

// minWeight is the floor applied to a child's estimated hours so that
// unestimated tasks still count toward their parent's average.
const minWeight = 1.0

// Aggregator derives progress for parent tasks from their leaves. Results
// are memoised for the aggregator's lifetime only; create a new one after
// the snapshot changes.
type Aggregator struct {
	set      *task.Set
	memo     map[string]int
	visiting map[string]bool
}

// NewAggregator returns an aggregator over s.
func NewAggregator(s *task.Set) *Aggregator {
	return &Aggregator{
		set:      s,
		memo:     make(map[string]int),
		visiting: make(map[string]bool),
	}
}

// Progress returns the effective progress of t in 0..100. Leaf tasks report
// their stored progress verbatim. Parents report the mean of their
// children's effective progress weighted by max(EstimatedHours, 1), rounded
// to the nearest integer. Stored progress on parents is never read.
func (a *Aggregator) Progress(t *task.Task) int {
	if v, ok := a.memo[t.ID]; ok {
		return v
	}
	if t.IsLeaf() {
		return t.Progress
	}
	// A task reached again while its own subtree is being summed means the
	// hierarchy loops; it contributes nothing rather than recursing forever.
	if a.visiting[t.ID] {
		return 0
	}
	a.visiting[t.ID] = true
	defer delete(a.visiting, t.ID)

	var sum, weight float64
	for _, child := range a.set.Children(t.ID) {
		w := math.Max(child.EstimatedHours, minWeight)
		sum += float64(a.Progress(child)) * w
		weight += w
	}
	v := 0
	if weight > 0 {
		v = int(math.Round(sum / weight))
	}
	a.memo[t.ID] = v
	return v
}

// CalculatedProgress returns the effective progress of t within s.
func CalculatedProgress(t *task.Task, s *task.Set) int {
	return NewAggregator(s).Progress(t)
}

// ProgressAll returns the effective progress of every task in s keyed by ID.
func ProgressAll(s *task.Set) map[string]int {
	a := NewAggregator(s)
	out := make(map[string]int, s.Len())
	for _, t := range s.Tasks() {
		out[t.ID] = a.Progress(t)
	}
	return out
}
