// Package task defines the task record the scheduling engine operates on and
// the in-memory snapshot (Set) a caller hands to it for one operation.
package task

import (
	"fmt"
	"time"
)

// Day is the unit used for completion variance and schedule shifts.
const Day = 24 * time.Hour

// Status is the lifecycle state of a task.
type Status string

// Valid task statuses.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a recognized status. The empty string is not valid;
// callers apply StatusNotStarted as the default before validating.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a status the reschedule engine never mutates.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus converts a string into a Status, accepting the empty string as
// StatusNotStarted.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusNotStarted, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTask, s)
	}
	return st, nil
}

// Priority is a task's scheduling importance.
type Priority string

// Valid task priorities, lowest first.
const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank maps a priority onto an integer where higher means more important.
// Unknown priorities rank as PriorityNormal.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return 1
	}
}

// Valid reports whether p is a recognized priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ParsePriority converts a string into a Priority, accepting the empty string
// as PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, s)
	}
	return p, nil
}

// Task is a single schedulable unit of work.
//
// Dependencies lists the IDs this task waits on (finish-to-start). Children
// and Dependents are inverse edges derived by Set and must not be edited by
// hand; they are rebuilt whenever the Set's edges change.
type Task struct {
	ID             string
	Title          string
	Start          time.Time
	End            time.Time
	Completed      *time.Time // set only once Status is StatusCompleted
	Status         Status
	Priority       Priority
	Progress       int     // 0-100; meaningful for leaf tasks only
	EstimatedHours float64 // roll-up weight
	ParentID       string  // "" for top-level tasks
	Dependencies   []string

	Children   []string
	Dependents []string
}

// Duration is the planned length of the task.
func (t *Task) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// IsMilestone reports whether the task has zero planned duration.
func (t *Task) IsMilestone() bool {
	return t.End.Equal(t.Start)
}

// IsLeaf reports whether the task has no children.
func (t *Task) IsLeaf() bool {
	return len(t.Children) == 0
}

// IsTerminal reports whether the task is completed or cancelled.
func (t *Task) IsTerminal() bool {
	return t.Status.Terminal()
}

// IsOverdue reports whether the planned end lies before now and the task is
// still open.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.End.Before(now) && !t.IsTerminal()
}

// CompletionVarianceDays returns End minus Completed in days. Positive values
// mean the task finished early, negative values mean it finished late. It is
// zero when no completion date is recorded.
func (t *Task) CompletionVarianceDays() float64 {
	if t.Completed == nil {
		return 0
	}
	return float64(t.End.Sub(*t.Completed)) / float64(Day)
}

// DependsOn reports whether id is among the task's dependencies.
func (t *Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.Completed != nil {
		done := *t.Completed
		c.Completed = &done
	}
	c.Dependencies = append([]string(nil), t.Dependencies...)
	c.Children = append([]string(nil), t.Children...)
	c.Dependents = append([]string(nil), t.Dependents...)
	return &c
}

// MarkCompleted sets the status to completed with the given completion time.
// Only a leaf's stored progress is set to 100; a parent's progress is always
// derived from its children and is left untouched.
func (t *Task) MarkCompleted(at time.Time) {
	t.Status = StatusCompleted
	t.Completed = &at
	if t.IsLeaf() {
		t.Progress = 100
	}
}

// ShiftTo moves the task so that it starts at start, preserving its duration.
func (t *Task) ShiftTo(start time.Time) {
	d := t.Duration()
	t.Start = start
	t.End = start.Add(d)
}
