package schedule

import (
	"time"

	"github.com/papapumpkin/gantt/internal/task"
)

// CriticalPath returns the dependency chain whose summed task duration is
// greatest. Chains start at source tasks (no dependencies) and follow
// dependents forward to a sink. Sources and dependents are enumerated in set
// order and ties keep the chain found first, so the result is deterministic
// for a given insertion order.
//
// The result is empty when s is empty or has no source task. Cyclic edges in
// malformed data are skipped rather than followed.
func CriticalPath(s *task.Set) []*task.Task {
	f := &pathFinder{
		set:    s,
		memo:   make(map[string][]*task.Task),
		onPath: make(map[string]bool),
	}

	var best []*task.Task
	var bestDur time.Duration
	for _, t := range s.Tasks() {
		if len(t.Dependencies) != 0 {
			continue
		}
		chain := f.longest(t)
		if d := PathDuration(chain); best == nil || d > bestDur {
			best, bestDur = chain, d
		}
	}
	return best
}

// PathDuration sums the planned duration of every task in path.
func PathDuration(path []*task.Task) time.Duration {
	var total time.Duration
	for _, t := range path {
		total += t.Duration()
	}
	return total
}

type pathFinder struct {
	set    *task.Set
	memo   map[string][]*task.Task
	onPath map[string]bool
}

// longest returns [t] followed by the longest chain through t's dependents.
func (f *pathFinder) longest(t *task.Task) []*task.Task {
	if chain, ok := f.memo[t.ID]; ok {
		return chain
	}
	f.onPath[t.ID] = true
	defer delete(f.onPath, t.ID)

	var best []*task.Task
	var bestDur time.Duration
	for _, dep := range f.set.Dependents(t.ID) {
		if f.onPath[dep.ID] {
			continue
		}
		sub := f.longest(dep)
		if f.crossesPath(sub) {
			continue
		}
		if d := PathDuration(sub); best == nil || d > bestDur {
			best, bestDur = sub, d
		}
	}

	chain := make([]*task.Task, 0, len(best)+1)
	chain = append(chain, t)
	chain = append(chain, best...)
	f.memo[t.ID] = chain
	return chain
}

// crossesPath reports whether a memoised chain revisits a task on the
// current walk, which only happens when the graph has a cycle.
func (f *pathFinder) crossesPath(chain []*task.Task) bool {
	for _, t := range chain {
		if f.onPath[t.ID] {
			return true
		}
	}
	return false
}
