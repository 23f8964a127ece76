package schedule

import (
	"time"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/task"
)

// Timing holds critical path method figures for one task. All values are
// offsets from the start of the project, assuming every task starts as soon
// as its prerequisites finish.
type Timing struct {
	EarliestStart  time.Duration
	EarliestFinish time.Duration
	LatestStart    time.Duration
	LatestFinish   time.Duration
	Slack          time.Duration
	Critical       bool
}

// Analysis is the result of a forward and backward pass over the graph.
type Analysis struct {
	Timings map[string]Timing
	// Order is the topological order the passes used.
	Order []string
	// Span is the minimum project length given the dependency graph.
	Span time.Duration
}

// Analyze computes earliest and latest start and finish plus slack for every
// task. Tasks with zero slack are critical. Unlike CriticalPath it needs a
// valid topological order, so it fails with dag.ErrCyclicDependency on
// cyclic data.
func Analyze(s *task.Set) (*Analysis, error) {
	order, err := dag.FromSet(s).TopologicalSort()
	if err != nil {
		return nil, err
	}

	timings := make(map[string]Timing, len(order))
	var span time.Duration

	// Forward pass: ES = max(EF of prerequisites).
	for _, id := range order {
		t, _ := s.Get(id)
		var es time.Duration
		for _, dep := range t.Dependencies {
			if pt, ok := timings[dep]; ok && pt.EarliestFinish > es {
				es = pt.EarliestFinish
			}
		}
		ef := es + t.Duration()
		timings[id] = Timing{EarliestStart: es, EarliestFinish: ef}
		if ef > span {
			span = ef
		}
	}

	// Backward pass: LF = min(LS of dependents), or the span for sinks.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		t, _ := s.Get(id)
		lf := span
		for _, dep := range t.Dependents {
			if dt, ok := timings[dep]; ok && dt.LatestStart < lf {
				lf = dt.LatestStart
			}
		}
		tm := timings[id]
		tm.LatestFinish = lf
		tm.LatestStart = lf - t.Duration()
		tm.Slack = tm.LatestStart - tm.EarliestStart
		tm.Critical = tm.Slack == 0
		timings[id] = tm
	}

	return &Analysis{Timings: timings, Order: order, Span: span}, nil
}

// CriticalIDs returns the zero-slack tasks in topological order.
func (a *Analysis) CriticalIDs() []string {
	var ids []string
	for _, id := range a.Order {
		if a.Timings[id].Critical {
			ids = append(ids, id)
		}
	}
	return ids
}
