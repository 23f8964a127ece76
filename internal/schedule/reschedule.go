package schedule

import (
	"math"
	"time"

	"github.com/papapumpkin/gantt/internal/task"
)

// Options tunes the reschedule engine.
type Options struct {
	// ToleranceDays is the completion variance below which a finish counts
	// as on schedule and nothing is shifted.
	ToleranceDays float64
	// Gap is the time between a prerequisite's finish and the earliest
	// start of a dependent.
	Gap time.Duration
}

// DefaultOptions returns a 0.1 day tolerance and a one day gap.
func DefaultOptions() Options {
	return Options{ToleranceDays: 0.1, Gap: task.Day}
}

// Shift records one date change made by the rescheduler.
type Shift struct {
	Task      *task.Task
	FromStart time.Time
	FromEnd   time.Time
	// Cause is the ID of the prerequisite whose finish forced the shift.
	Cause string
}

// Delta is how far the task moved.
func (s Shift) Delta() time.Duration {
	return s.Task.Start.Sub(s.FromStart)
}

// Rescheduler cascades schedule delays from a finished task to everything
// downstream of it.
type Rescheduler struct {
	opts Options
}

// NewRescheduler returns a rescheduler using opts.
func NewRescheduler(opts Options) *Rescheduler {
	return &Rescheduler{opts: opts}
}

// ShiftDependents applies DefaultOptions and returns the tasks whose dates
// changed, in the order the caller should persist them.
func ShiftDependents(completedID string, s *task.Set) ([]*task.Task, error) {
	shifts, err := NewRescheduler(DefaultOptions()).Plan(completedID, s)
	if err != nil {
		return nil, err
	}
	return Tasks(shifts), nil
}

// Tasks extracts the shifted tasks from shifts.
func Tasks(shifts []Shift) []*task.Task {
	out := make([]*task.Task, len(shifts))
	for i, sh := range shifts {
		out[i] = sh.Task
	}
	return out
}

// Plan pushes the dependents of completedID forward so none of them starts
// before the completed task's actual finish plus the gap, and repeats the
// push transitively from every task it moves. Tasks are mutated in place in
// s. Dates only ever move later; an early finish never pulls work forward.
// Completed and cancelled tasks are never touched, nor are hierarchy edges.
//
// Nothing happens when completedID has no completion date or finished
// within the tolerance of its planned end. A task moved more than once
// appears once, at the position of its final move, so every entry follows
// the entries for the prerequisites that pushed it.
func (r *Rescheduler) Plan(completedID string, s *task.Set) ([]Shift, error) {
	done, err := s.Get(completedID)
	if err != nil {
		return nil, err
	}
	if done.Completed == nil {
		return nil, nil
	}
	if math.Abs(done.CompletionVarianceDays()) < r.opts.ToleranceDays {
		return nil, nil
	}

	c := &cascade{
		set:    s,
		gap:    r.opts.Gap,
		onPath: map[string]bool{done.ID: true},
		pos:    make(map[string]int),
	}
	c.push(done, *done.Completed)
	return c.result(), nil
}

type cascade struct {
	set    *task.Set
	gap    time.Duration
	onPath map[string]bool
	shifts []Shift
	pos    map[string]int // task ID → index of its live entry in shifts
}

// push moves every open dependent of anchor to start no earlier than
// finish+gap, then recurses from each task it moved using the new end as
// that task's finish.
func (c *cascade) push(anchor *task.Task, finish time.Time) {
	earliest := finish.Add(c.gap)
	for _, dep := range c.set.Dependents(anchor.ID) {
		if dep.IsTerminal() || c.onPath[dep.ID] {
			continue
		}
		if !earliest.After(dep.Start) {
			continue
		}
		sh := Shift{Task: dep, FromStart: dep.Start, FromEnd: dep.End, Cause: anchor.ID}
		if i, ok := c.pos[dep.ID]; ok {
			// Keep the original planned dates from the first move.
			sh.FromStart, sh.FromEnd = c.shifts[i].FromStart, c.shifts[i].FromEnd
			c.shifts[i].Task = nil
		}
		dep.ShiftTo(earliest)
		c.pos[dep.ID] = len(c.shifts)
		c.shifts = append(c.shifts, sh)

		c.onPath[dep.ID] = true
		c.push(dep, dep.End)
		delete(c.onPath, dep.ID)
	}
}

func (c *cascade) result() []Shift {
	out := make([]Shift, 0, len(c.pos))
	for _, sh := range c.shifts {
		if sh.Task != nil {
			out = append(out, sh)
		}
	}
	return out
}
